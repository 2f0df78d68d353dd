package reports

import (
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"topupdesk/internal/daterange"
)

// DailyOrderStat is a pre-computed per-day rollup of the orders table,
// maintained by the background rollup job so the dashboard does not have
// to re-scan orders for long ranges.
type DailyOrderStat struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Day         string          `gorm:"uniqueIndex;not null"`
	OrdersCount int             `gorm:"not null;default:0"`
	Revenue     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Profit      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	UpdatedAt   time.Time
}

// RecomputeDailyStats rebuilds the rollup rows for every local day that
// overlaps the given range. Days are recomputed wholesale rather than
// incremented, so re-running over the same window is idempotent. The
// window's start is widened to its Bangkok day boundary; a mid-day start
// would rewrite that day's row from only part of its orders.
func RecomputeDailyStats(logger *slog.Logger, db *gorm.DB, r daterange.Range) (int, error) {
	window := daterange.Range{From: daterange.DayStart(r.From).UTC(), To: r.To}

	buckets, err := queryBuckets(db, SummaryParams{Range: window}, dayBucketExpr, true)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute daily stats: %w", err)
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		// Days with rows today may have none tomorrow after deletes;
		// clear the window before rewriting it.
		if err := tx.Where("day BETWEEN ? AND ?",
			daterange.DayKey(window.From), daterange.DayKey(window.To)).
			Delete(&DailyOrderStat{}).Error; err != nil {
			return err
		}

		for _, b := range buckets {
			stat := DailyOrderStat{
				Day:         b.Key,
				OrdersCount: b.Count,
				Revenue:     b.Revenue,
				Cost:        b.Cost,
				Profit:      b.Profit,
			}
			if err := tx.Create(&stat).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(buckets), nil
}

// GetDailyStats reads the rollup rows for a range in day order.
func GetDailyStats(db *gorm.DB, r daterange.Range) ([]DailyOrderStat, error) {
	var stats []DailyOrderStat
	err := db.Where("day BETWEEN ? AND ?",
		daterange.DayKey(r.From), daterange.DayKey(r.To)).
		Order("day ASC").
		Find(&stats).Error
	return stats, err
}

// DeleteStatsBefore drops rollup rows older than the given cutoff day.
func DeleteStatsBefore(logger *slog.Logger, db *gorm.DB, cutoff time.Time) (int64, error) {
	var affected int64
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Where("day < ?", daterange.DayKey(cutoff)).Delete(&DailyOrderStat{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	return affected, err
}
