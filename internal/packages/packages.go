// Package packages manages the top-up package catalog: the denominations
// offered per game and channel, their prices and display order.
package packages

import (
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PackageNotFoundError is returned when a package lookup fails.
type PackageNotFoundError struct {
	ID uint
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package not found: %d", e.ID)
}

// Package is one sellable top-up denomination.
type Package struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Game         string          `gorm:"index;not null" json:"game"`
	Name         string          `gorm:"not null" json:"name"`
	TopupChannel string          `json:"topupChannel"`
	Price        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Cost         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cost"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	SortOrder    int             `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// GetPackageByID retrieves a single package.
func GetPackageByID(db *gorm.DB, id uint) (*Package, error) {
	var pkg Package
	if err := db.First(&pkg, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &PackageNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("unexpected error querying package: %w", err)
	}
	return &pkg, nil
}

// GetPackages lists packages, optionally scoped to a game, in catalog
// display order.
func GetPackages(db *gorm.DB, game string) ([]Package, error) {
	query := db.Model(&Package{})
	if game != "" {
		query = query.Where("game = ?", game)
	}

	var pkgs []Package
	if err := query.Order("sort_order ASC, id ASC").Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

// GetDistinctGames lists every game that has at least one package.
func GetDistinctGames(db *gorm.DB) ([]string, error) {
	var games []string
	err := db.Model(&Package{}).
		Where("game <> ''").
		Distinct("game").
		Order("game ASC").
		Pluck("game", &games).Error
	return games, err
}

// GetDistinctChannels lists every top-up channel in the catalog.
func GetDistinctChannels(db *gorm.DB) ([]string, error) {
	var channels []string
	err := db.Model(&Package{}).
		Where("topup_channel <> ''").
		Distinct("topup_channel").
		Order("topup_channel ASC").
		Pluck("topup_channel", &channels).Error
	return channels, err
}

// CreatePackage inserts a new package at the end of its game's display
// order.
func CreatePackage(logger *slog.Logger, db *gorm.DB, pkg *Package) error {
	pkg.Game = strings.TrimSpace(pkg.Game)
	pkg.Name = strings.TrimSpace(pkg.Name)
	if pkg.Game == "" {
		return fmt.Errorf("game cannot be empty")
	}
	if pkg.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if pkg.SortOrder == 0 {
			var maxOrder int
			tx.Model(&Package{}).Where("game = ?", pkg.Game).
				Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder)
			pkg.SortOrder = maxOrder + 1
		}
		return tx.Create(pkg).Error
	})
}

// UpdatePackage replaces the mutable fields of a package.
func UpdatePackage(logger *slog.Logger, db *gorm.DB, id uint, updated Package) (*Package, error) {
	if _, err := GetPackageByID(db, id); err != nil {
		return nil, err
	}

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(&Package{}).Where("id = ?", id).Updates(map[string]any{
			"game":          strings.TrimSpace(updated.Game),
			"name":          strings.TrimSpace(updated.Name),
			"topup_channel": strings.TrimSpace(updated.TopupChannel),
			"price":         updated.Price,
			"cost":          updated.Cost,
			"active":        updated.Active,
			"sort_order":    updated.SortOrder,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update package %d: %w", id, err)
	}
	return GetPackageByID(db, id)
}

// DeletePackage removes a package from the catalog.
func DeletePackage(logger *slog.Logger, db *gorm.DB, id uint) error {
	if _, err := GetPackageByID(db, id); err != nil {
		return err
	}
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Delete(&Package{}, id).Error
	})
}
