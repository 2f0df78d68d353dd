package http

import (
	"github.com/gofiber/fiber/v2"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"topupdesk/internal/settings"
)

// SettingsIndexAction handles GET /api/settings
func SettingsIndexAction(ctx *cartridge.Context) error {
	all, err := settings.GetAllSettingsForDisplay(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to load settings", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load settings"})
	}
	return ctx.JSON(fiber.Map{"settings": all})
}

// SettingsUpdateAction handles PUT /api/settings
func SettingsUpdateAction(ctx *cartridge.Context) error {
	var payload struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if payload.Key == "" {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Setting key is required"})
	}

	if err := settings.UpdateSetting(ctx.DB(), payload.Key, payload.Value); err != nil {
		ctx.Logger.Error("Failed to update setting",
			slog.String("key", payload.Key),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update setting"})
	}

	ctx.Logger.Info("Setting updated", slog.String("key", payload.Key))
	return ctx.JSON(fiber.Map{"status": "ok"})
}
