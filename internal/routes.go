package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"topupdesk/internal/config"
	"topupdesk/internal/http"
)

// SetupSession configures session management on the server.
func SetupSession(srv *cartridge.Server) {
	cfg := config.GetConfig()
	sessionMgr := cartridge.NewSessionManager(cartridge.SessionConfig{
		CookieName: cfg.AppName + "_session",
		Secret:     cfg.GetSessionSecret(),
		TTL:        time.Duration(cfg.GetLoginSessionTimeout()) * time.Second,
		Secure:     cfg.IsProduction(),
		LoginPath:  "/login",
	})
	srv.SetSession(sessionMgr)
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	SetupSession(srv)
	MountAppRoutesWithoutSession(srv)
}

// MountAppRoutesWithoutSession mounts routes without setting up session.
func MountAppRoutesWithoutSession(srv *cartridge.Server) {
	cfg := config.GetConfig()
	sessionMgr := srv.Session()

	// Rate limiting would interfere with testing, so it only applies in
	// production.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Strict limit on auth endpoints to slow brute force attempts.
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Every admin API route sits behind the session check.
	adminAPIConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			sessionMgr.Middleware(),
		},
	}

	// === HEALTH ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === AUTHENTICATION ===
	loginConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{authRateLimiter},
	}
	srv.Get("/login", http.LoginShowAction)
	srv.Post("/login", http.ProcessLoginAction, loginConfig)
	srv.Post("/api/login", http.ProcessLoginAction, loginConfig)
	srv.Post("/api/logout", http.LogoutAction, adminAPIConfig)
	srv.Get("/api/session", http.SessionShowAction)
	srv.Post("/api/account/password", http.ChangePasswordAction, adminAPIConfig)

	// === ORDERS ===
	srv.Get("/api/orders", http.OrdersIndexAction, adminAPIConfig)
	srv.Get("/api/orders/export/csv", http.OrdersExportCSVAction, adminAPIConfig)
	srv.Get("/api/orders/:id", http.OrderShowAction, adminAPIConfig)
	srv.Post("/api/orders", http.OrderCreateAction, adminAPIConfig)
	srv.Put("/api/orders/:id", http.OrderUpdateAction, adminAPIConfig)
	srv.Delete("/api/orders/:id", http.OrderDeleteAction, adminAPIConfig)

	// === REPORTS ===
	srv.Get("/api/summary", http.SummaryIndexAction, adminAPIConfig)
	srv.Get("/api/summary/daily", http.DailyStatsAction, adminAPIConfig)
	srv.Get("/api/dashboard-data", http.DashboardDataAction, adminAPIConfig)

	// === PACKAGE CATALOG ===
	srv.Get("/api/packages", http.PackagesIndexAction, adminAPIConfig)
	srv.Post("/api/packages", http.PackageCreateAction, adminAPIConfig)
	srv.Put("/api/packages/:id", http.PackageUpdateAction, adminAPIConfig)
	srv.Delete("/api/packages/:id", http.PackageDeleteAction, adminAPIConfig)
	srv.Post("/api/packages/bulk-actions", http.PackagesBulkAction, adminAPIConfig)
	srv.Post("/api/packages/reorder", http.PackagesReorderAction, adminAPIConfig)

	// === SETTINGS ===
	srv.Get("/api/settings", http.SettingsIndexAction, adminAPIConfig)
	srv.Put("/api/settings", http.SettingsUpdateAction, adminAPIConfig)
}
