package jobs

import (
	"time"

	"log/slog"

	"topupdesk/internal/config"
	"topupdesk/internal/database"
	"topupdesk/internal/reports"
)

// CleanupJob drops rollup rows past the retention horizon. Raw orders
// are never touched; only the derived stats table is trimmed.
type CleanupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run removes daily stats older than the retention period.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.RollupRetentionDays
	db := j.dbManager.GetConnection()
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	deleted, err := reports.DeleteStatsBefore(j.logger, db, cutoff)
	if err != nil {
		j.logger.Error("Failed to delete old daily stats", slog.Any("error", err))
		return err
	}

	if deleted > 0 {
		j.logger.Info("Cleaned up old daily stats",
			slog.Int64("deleted_count", deleted),
			slog.Int("retention_days", retentionDays))
	}

	// Fold the WAL back into the main file while the writer is quiet.
	if err := j.dbManager.CheckpointWAL("TRUNCATE"); err != nil {
		j.logger.Warn("Failed to checkpoint WAL after cleanup", slog.Any("error", err))
	}
	return nil
}
