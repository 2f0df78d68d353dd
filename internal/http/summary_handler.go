package http

import (
	"github.com/gofiber/fiber/v2"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"topupdesk/internal/daterange"
	"topupdesk/internal/reports"
	"topupdesk/internal/settings"
)

// SummaryIndexAction handles GET /api/summary. It returns the
// pre-aggregated report for a date range, shaped exactly like a local
// aggregation over the same orders.
func SummaryIndexAction(ctx *cartridge.Context) error {
	parser := daterange.NewParser()
	r, err := parser.Parse(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	excluded, err := settings.GetExcludedOperators()
	if err != nil {
		ctx.Logger.Warn("Failed to load excluded operators, reporting unfiltered", slog.Any("error", err))
		excluded = nil
	}

	result, err := reports.GetSummary(ctx.Ctx.Context(), ctx.DB(), reports.SummaryParams{
		Range:             r,
		FilterStatus:      ctx.Query("status"),
		ExcludedOperators: excluded,
	})
	if err != nil {
		ctx.Logger.Error("Failed to compute summary", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute summary"})
	}

	return ctx.JSON(result)
}

// DailyStatsAction handles GET /api/summary/daily. It serves the
// rollup table the background job maintains, for long-range charts.
func DailyStatsAction(ctx *cartridge.Context) error {
	parser := daterange.NewParser()
	r, err := parser.Parse(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	stats, err := reports.GetDailyStats(ctx.DB(), r)
	if err != nil {
		ctx.Logger.Error("Failed to read daily stats", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read daily stats"})
	}

	daily := make([]fiber.Map, 0, len(stats))
	for _, s := range stats {
		daily = append(daily, fiber.Map{
			"day":     s.Day,
			"orders":  s.OrdersCount,
			"revenue": s.Revenue,
			"cost":    s.Cost,
			"profit":  s.Profit,
		})
	}
	return ctx.JSON(fiber.Map{"daily": daily})
}
