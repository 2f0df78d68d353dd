package http

import (
	"github.com/gofiber/fiber/v2"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"topupdesk/internal/numeric"
	"topupdesk/internal/packages"
)

type packagePayload struct {
	Game         string `json:"game"`
	Name         string `json:"name"`
	TopupChannel string `json:"topupChannel"`
	Price        any    `json:"price"`
	Cost         any    `json:"cost"`
	Active       *bool  `json:"active"`
	SortOrder    int    `json:"sortOrder"`
}

func (p *packagePayload) toPackage() packages.Package {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return packages.Package{
		Game:         p.Game,
		Name:         p.Name,
		TopupChannel: p.TopupChannel,
		Price:        numeric.CoerceDecimal(p.Price),
		Cost:         numeric.CoerceDecimal(p.Cost),
		Active:       active,
		SortOrder:    p.SortOrder,
	}
}

// PackagesIndexAction handles GET /api/packages
func PackagesIndexAction(ctx *cartridge.Context) error {
	pkgs, err := packages.GetPackages(ctx.DB(), ctx.Query("game"))
	if err != nil {
		ctx.Logger.Error("Failed to list packages", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list packages"})
	}
	return ctx.JSON(fiber.Map{"packages": pkgs})
}

// PackageCreateAction handles POST /api/packages
func PackageCreateAction(ctx *cartridge.Context) error {
	var payload packagePayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pkg := payload.toPackage()
	if err := packages.CreatePackage(ctx.Logger, ctx.DB(), &pkg); err != nil {
		ctx.Logger.Error("Failed to create package", slog.Any("error", err))
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Logger.Info("Package created",
		slog.Uint64("id", uint64(pkg.ID)),
		slog.String("game", pkg.Game),
		slog.String("name", pkg.Name))
	return ctx.Status(fiber.StatusCreated).JSON(pkg)
}

// PackageUpdateAction handles PUT /api/packages/:id
func PackageUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package ID"})
	}

	var payload packagePayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pkg, err := packages.UpdatePackage(ctx.Logger, ctx.DB(), uint(id), payload.toPackage())
	if err != nil {
		if _, ok := err.(*packages.PackageNotFoundError); ok {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
		}
		ctx.Logger.Error("Failed to update package", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(pkg)
}

// PackageDeleteAction handles DELETE /api/packages/:id
func PackageDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package ID"})
	}

	if err := packages.DeletePackage(ctx.Logger, ctx.DB(), uint(id)); err != nil {
		if _, ok := err.(*packages.PackageNotFoundError); ok {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
		}
		ctx.Logger.Error("Failed to delete package", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete package"})
	}
	return ctx.JSON(fiber.Map{"status": "deleted"})
}

// PackagesBulkAction handles POST /api/packages/bulk-actions
func PackagesBulkAction(ctx *cartridge.Context) error {
	var payload struct {
		Action string `json:"action"`
		IDs    []uint `json:"ids"`
	}
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	affected, err := packages.ApplyBulkAction(ctx.Logger, ctx.DB(), payload.Action, payload.IDs)
	if err != nil {
		ctx.Logger.Error("Bulk action failed",
			slog.String("action", payload.Action),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Logger.Info("Bulk action applied",
		slog.String("action", payload.Action),
		slog.Int64("affected", affected))
	return ctx.JSON(fiber.Map{"affected": affected})
}

// PackagesReorderAction handles POST /api/packages/reorder
func PackagesReorderAction(ctx *cartridge.Context) error {
	var payload struct {
		IDs []uint `json:"ids"`
	}
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := packages.ReorderPackages(ctx.Logger, ctx.DB(), payload.IDs); err != nil {
		ctx.Logger.Error("Failed to reorder packages", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reorder packages"})
	}
	return ctx.JSON(fiber.Map{"status": "ok"})
}
