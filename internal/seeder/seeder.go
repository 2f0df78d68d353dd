// Package seeder fills a development database with plausible orders and
// a starter package catalog.
package seeder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/shopspring/decimal"

	"topupdesk/internal/orders"
	"topupdesk/internal/packages"
	"topupdesk/internal/settings"
	"topupdesk/internal/users"
)

// Seeder handles the demo-data seeding process.
type Seeder struct {
	DBManager  cartridge.DBManager
	Logger     *slog.Logger
	OrderCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, orderCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:  dbManager,
		Logger:     logger,
		OrderCount: orderCount,
	}
}

var seedGames = []string{"Dragon Saga", "Valor Arena", "Mystic Quest", "Star Frontier"}
var seedPlatforms = []string{"iOS", "Android", "PC"}
var seedChannels = []string{"TrueMoney", "PromptPay", "Card", "Razer Gold"}
var seedOperators = []string{"somchai", "mali", "nok", "prem"}
var seedStatuses = []string{
	orders.StatusCompleted, orders.StatusCompleted, orders.StatusCompleted,
	orders.StatusPending, orders.StatusCanceled,
}

// Run seeds the catalog, an admin user, default settings and a batch of
// orders spread over the trailing ninety days.
func (s *Seeder) Run(ctx context.Context, adminEmail string) error {
	start := time.Now()
	db := s.DBManager.GetConnection()

	s.Logger.Info("Seeding demo data...", slog.Int("orderCount", s.OrderCount))

	if err := settings.SetupDefaultSettings(db); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	if adminEmail != "" {
		users.SetupAdminUserIfNotExists(db, adminEmail)
	}

	catalog, err := s.seedCatalog()
	if err != nil {
		return err
	}

	for i := 0; i < s.OrderCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.seedOrder(catalog); err != nil {
			return fmt.Errorf("failed to seed order %d: %w", i, err)
		}
	}

	s.Logger.Info("Seeding completed",
		slog.Int("orders", s.OrderCount),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Seeder) seedCatalog() ([]packages.Package, error) {
	db := s.DBManager.GetConnection()

	existing, err := packages.GetPackages(db, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check catalog: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	tiers := []struct {
		name  string
		price string
	}{
		{"60 Gems", "35.00"},
		{"300 Gems", "159.00"},
		{"980 Gems", "499.00"},
		{"1980 Gems", "990.00"},
	}

	var catalog []packages.Package
	for _, game := range seedGames {
		for _, tier := range tiers {
			price := decimal.RequireFromString(tier.price)
			pkg := packages.Package{
				Game:         game,
				Name:         tier.name,
				TopupChannel: seedChannels[rand.IntN(len(seedChannels))],
				Price:        price,
				Cost:         price.Mul(decimal.NewFromFloat(0.85)).Round(2),
				Active:       true,
			}
			if err := packages.CreatePackage(s.Logger, db, &pkg); err != nil {
				return nil, fmt.Errorf("failed to seed package: %w", err)
			}
			catalog = append(catalog, pkg)
		}
	}

	s.Logger.Info("Seeded package catalog", slog.Int("packages", len(catalog)))
	return catalog, nil
}

func (s *Seeder) seedOrder(catalog []packages.Package) error {
	db := s.DBManager.GetConnection()

	pkg := catalog[rand.IntN(len(catalog))]
	quantity := 1 + rand.IntN(3)
	totalPaid := pkg.Price.Mul(decimal.NewFromInt(int64(quantity)))
	cost := pkg.Cost.Mul(decimal.NewFromInt(int64(quantity)))

	orderDate := time.Now().UTC().
		AddDate(0, 0, -rand.IntN(90)).
		Add(-time.Duration(rand.IntN(24*60)) * time.Minute)

	_, err := orders.CreateOrder(s.Logger, db, orders.CreateOrderInput{
		OrderDate:    orderDate,
		Game:         pkg.Game,
		Platform:     seedPlatforms[rand.IntN(len(seedPlatforms))],
		TopupChannel: pkg.TopupChannel,
		Status:       seedStatuses[rand.IntN(len(seedStatuses))],
		Operator:     seedOperators[rand.IntN(len(seedOperators))],
		TotalPaid:    totalPaid,
		Cost:         cost,
		Items: []orders.OrderItem{
			{PackageName: pkg.Name, Quantity: quantity, UnitPrice: pkg.Price},
		},
	})
	return err
}
