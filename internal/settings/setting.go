// Package settings stores back-office configuration rows. The
// excluded-operators list is read on every report request, so it sits
// behind a short-lived cache.
package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/cache"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Setting represents a configuration item in the database
type Setting struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"uniqueIndex;not null"`
	Value     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:milli"`
}

const (
	// KeyExcludedOperators is a comma-separated list of operator names
	// whose orders are dropped from every report.
	KeyExcludedOperators = "excluded_operators"
	// KeyDefaultGame preselects a game on the package management page.
	KeyDefaultGame = "default_game"
)

var excludedOperatorsCache *cache.Cache[string, []string]

// SetupDefaultSettings initializes default settings in the database
func SetupDefaultSettings(dbConn *gorm.DB) error {
	defaults := []Setting{
		{Key: KeyExcludedOperators, Value: ""},
		{Key: KeyDefaultGame, Value: ""},
	}
	err := sqlite.PerformWrite(slog.Default(), dbConn, func(tx *gorm.DB) error {
		for _, setting := range defaults {
			err := tx.Exec(`
                INSERT INTO settings (key, value, created_at, updated_at)
                VALUES (?, ?, ?, ?)
                ON CONFLICT(key) DO NOTHING
            `, setting.Key, setting.Value, time.Now().UTC(), time.Now().UTC()).Error
			if err != nil {
				slog.Default().Error("Failed to upsert setting", slog.String("key", setting.Key), slog.Any("error", err))
				return fmt.Errorf("failed to upsert setting %s: %w", setting.Key, err)
			}
		}
		return nil
	})

	loadCache(dbConn, slog.Default())

	return err
}

// GetExcludedOperators returns the cached operator exclusion list.
// Before the cache is initialized it reports an empty list.
func GetExcludedOperators() ([]string, error) {
	if excludedOperatorsCache == nil {
		return nil, nil
	}

	operators, err := excludedOperatorsCache.Get(KeyExcludedOperators)
	if err != nil {
		return nil, fmt.Errorf("failed to read excluded operators: %w", err)
	}
	return operators, nil
}

// IsOperatorExcluded reports whether the operator is on the exclusion list.
func IsOperatorExcluded(operator string) (bool, error) {
	operators, err := GetExcludedOperators()
	if err != nil {
		return false, err
	}
	for _, excluded := range operators {
		if excluded == operator {
			return true, nil
		}
	}
	return false, nil
}

// GetSetting retrieves a setting value from the database
func GetSetting(dbConn *gorm.DB, key string) (string, error) {
	var setting Setting
	result := dbConn.Where("key = ?", key).First(&setting)

	if result.Error != nil {
		return "", result.Error
	}

	return setting.Value, nil
}

// UpdateSetting writes a setting, creating the row if it does not exist,
// and refreshes the exclusion cache.
func UpdateSetting(dbConn *gorm.DB, key string, value string) error {
	err := sqlite.PerformWrite(slog.Default(), dbConn, func(tx *gorm.DB) error {
		result := tx.Model(&Setting{}).Where("key = ?", key).Update("value", value)
		if result.Error != nil {
			return fmt.Errorf("failed to update setting: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			setting := Setting{Key: key, Value: value}
			if err := tx.Create(&setting).Error; err != nil {
				return fmt.Errorf("failed to create setting: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if excludedOperatorsCache != nil {
		excludedOperatorsCache.Clear()
	}
	loadCache(dbConn, slog.Default())

	return nil
}

// SettingResponse represents a setting key-value pair for API responses
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetAllSettingsForDisplay retrieves every setting row for the admin
// settings page.
func GetAllSettingsForDisplay(db *gorm.DB) ([]SettingResponse, error) {
	var allSettings []Setting
	if err := db.Order("key ASC").Find(&allSettings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	result := make([]SettingResponse, 0, len(allSettings))
	for _, setting := range allSettings {
		result = append(result, SettingResponse{
			Key:   setting.Key,
			Value: setting.Value,
		})
	}
	return result, nil
}

func loadCache(dbConn *gorm.DB, logger *slog.Logger) {
	fetchFunc := func(key string) ([]string, error) {
		var value string
		err := dbConn.WithContext(context.Background()).
			Raw("SELECT value FROM settings WHERE key = ? LIMIT 1", key).Scan(&value).Error
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(value) == "" {
			return nil, nil
		}
		parts := strings.Split(value, ",")
		operators := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				operators = append(operators, trimmed)
			}
		}
		return operators, nil
	}
	excludedOperatorsCache = cache.NewCache[string, []string](logger, 5*time.Minute, fetchFunc)
}
