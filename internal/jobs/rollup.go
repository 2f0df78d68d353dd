package jobs

import (
	"time"

	"log/slog"

	"topupdesk/internal/config"
	"topupdesk/internal/database"
	"topupdesk/internal/daterange"
	"topupdesk/internal/reports"
)

// RollupJob recomputes the daily order stats for a trailing window, so
// recent edits and deletes are reflected without rescanning history.
type RollupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewRollupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *RollupJob {
	return &RollupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run recomputes the last RollupWindowDays of daily stats.
func (j *RollupJob) Run() error {
	db := j.dbManager.GetConnection()

	now := time.Now().UTC()
	window := daterange.Range{
		From: now.AddDate(0, 0, -j.cfg.RollupWindowDays),
		To:   now,
	}

	days, err := reports.RecomputeDailyStats(j.logger, db, window)
	if err != nil {
		j.logger.Error("Daily stat rollup failed", slog.Any("error", err))
		return err
	}

	j.logger.Info("Daily stat rollup completed",
		slog.Int("window_days", j.cfg.RollupWindowDays),
		slog.Int("days_written", days))
	return nil
}
