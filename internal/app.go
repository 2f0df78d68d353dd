// Package internal wires the topupdesk application together.
package internal

import (
	"fmt"

	"github.com/karloscodes/cartridge"

	"topupdesk/internal/config"
	"topupdesk/internal/database"
	"topupdesk/internal/jobs"
	"topupdesk/internal/settings"
	"topupdesk/internal/users"
)

// Application wraps cartridge.Application with topupdesk-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithRoutes(cfg, MountAppRoutes)
}

// NewAppWithRoutes creates a new application with a custom route mounting function
func NewAppWithRoutes(cfg *config.Config, routeMount func(*cartridge.Server)) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	scheduler, err := jobs.NewScheduler(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:            cfg,
		Logger:            logger,
		DBManager:         dbManager,
		RouteMountFunc:    routeMount,
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
	}, nil
}

// Bootstrap seeds the baseline rows the application expects: default
// settings and, when TOPUPDESK_ADMIN_EMAIL is set, the admin user.
// Safe to call on every start.
func (a *Application) Bootstrap() error {
	db := a.DBManager.GetConnection()

	if err := settings.SetupDefaultSettings(db); err != nil {
		return fmt.Errorf("failed to set up default settings: %w", err)
	}

	if email := config.GetConfig().AdminEmail; email != "" {
		users.SetupAdminUserIfNotExists(db, email)
	}

	return nil
}
