package packages

import (
	"fmt"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Bulk catalog actions. Each applies to an explicit list of package IDs
// in a single write transaction.
const (
	BulkActivate   = "activate"
	BulkDeactivate = "deactivate"
	BulkDelete     = "delete"
)

// ApplyBulkAction runs one of the bulk catalog actions over the given
// package IDs and returns the number of rows affected.
func ApplyBulkAction(logger *slog.Logger, db *gorm.DB, action string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var affected int64
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		var result *gorm.DB
		switch action {
		case BulkActivate:
			result = tx.Model(&Package{}).Where("id IN ?", ids).Update("active", true)
		case BulkDeactivate:
			result = tx.Model(&Package{}).Where("id IN ?", ids).Update("active", false)
		case BulkDelete:
			result = tx.Where("id IN ?", ids).Delete(&Package{})
		default:
			return fmt.Errorf("unknown bulk action: %s", action)
		}
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// ReorderPackages rewrites sort_order so packages appear in the given ID
// order. IDs not present in the catalog are skipped.
func ReorderPackages(logger *slog.Logger, db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		for position, id := range ids {
			if err := tx.Model(&Package{}).Where("id = ?", id).
				Update("sort_order", position+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
