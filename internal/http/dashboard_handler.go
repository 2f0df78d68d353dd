package http

import (
	"github.com/gofiber/fiber/v2"
	"log/slog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/karloscodes/cartridge"

	"topupdesk/internal/orders"
	"topupdesk/internal/packages"
	"topupdesk/internal/settings"
)

var titleCaser = cases.Title(language.English)

// packageView is a Package plus its display label.
type packageView struct {
	packages.Package
	Label string `json:"label"`
}

// DashboardDataAction handles GET /api/dashboard-data. It bundles the
// reference data the admin pages need to build their filter dropdowns
// and the package picker, optionally scoped to one game.
func DashboardDataAction(ctx *cartridge.Context) error {
	db := ctx.DB()
	game := ctx.Query("game")

	if game == "" {
		if defaultGame, err := settings.GetSetting(db, settings.KeyDefaultGame); err == nil && defaultGame != "" {
			game = defaultGame
		}
	}

	pkgs, err := packages.GetPackages(db, game)
	if err != nil {
		ctx.Logger.Error("Failed to load packages", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load packages"})
	}

	games, err := packages.GetDistinctGames(db)
	if err != nil {
		ctx.Logger.Error("Failed to load games", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load games"})
	}

	channels, err := packages.GetDistinctChannels(db)
	if err != nil {
		ctx.Logger.Error("Failed to load channels", slog.Any("error", err))
		channels = []string{}
	}

	platforms, err := orders.GetDistinctPlatforms(db)
	if err != nil {
		ctx.Logger.Error("Failed to load platforms", slog.Any("error", err))
		platforms = []string{}
	}

	views := make([]packageView, 0, len(pkgs))
	for _, p := range pkgs {
		views = append(views, packageView{
			Package: p,
			Label:   titleCaser.String(p.Name),
		})
	}

	return ctx.JSON(fiber.Map{
		"packages":  views,
		"games":     games,
		"channels":  channels,
		"platforms": platforms,
	})
}
