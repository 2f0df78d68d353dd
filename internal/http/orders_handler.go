package http

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"topupdesk/internal/config"
	"topupdesk/internal/daterange"
	"topupdesk/internal/numeric"
	"topupdesk/internal/orders"
)

// orderPayload is the request body for order create/update. Money
// fields are typed any so currency-formatted strings from legacy
// clients still parse; they are coerced server-side.
type orderPayload struct {
	OrderDate    string             `json:"orderDate"`
	Game         string             `json:"game"`
	Platform     string             `json:"platform"`
	TopupChannel string             `json:"topupChannel"`
	Status       string             `json:"status"`
	Operator     string             `json:"operator"`
	TotalPaid    any                `json:"totalPaid"`
	Cost         any                `json:"cost"`
	Items        []orderItemPayload `json:"items"`
}

type orderItemPayload struct {
	PackageName string `json:"packageName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   any    `json:"unitPrice"`
}

func (p *orderPayload) toInput() (orders.CreateOrderInput, error) {
	var orderDate time.Time
	if p.OrderDate != "" {
		var err error
		orderDate, err = time.Parse(time.RFC3339, p.OrderDate)
		if err != nil {
			orderDate, err = time.ParseInLocation(daterange.DateFormat, p.OrderDate, daterange.ReportZone)
			if err != nil {
				return orders.CreateOrderInput{}, fmt.Errorf("invalid order date %q", p.OrderDate)
			}
		}
	}

	items := make([]orders.OrderItem, 0, len(p.Items))
	for _, item := range p.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, orders.OrderItem{
			PackageName: item.PackageName,
			Quantity:    quantity,
			UnitPrice:   numeric.CoerceDecimal(item.UnitPrice),
		})
	}

	return orders.CreateOrderInput{
		OrderDate:    orderDate,
		Game:         p.Game,
		Platform:     p.Platform,
		TopupChannel: p.TopupChannel,
		Status:       p.Status,
		Operator:     p.Operator,
		TotalPaid:    numeric.CoerceDecimal(p.TotalPaid),
		Cost:         numeric.CoerceDecimal(p.Cost),
		Items:        items,
	}, nil
}

// OrdersIndexAction handles GET /api/orders
func OrdersIndexAction(ctx *cartridge.Context) error {
	parser := daterange.NewParser()
	r, err := parser.Parse(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	page, _ := strconv.Atoi(ctx.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	if limit <= 0 {
		limit = orders.DefaultPageSize
	}

	result, err := orders.GetFilteredOrders(ctx.DB(), orders.OrderFilters{
		FromDate: r.From,
		ToDate:   r.To,
		Status:   ctx.Query("status"),
		Platform: ctx.Query("platform"),
		Search:   ctx.Query("q"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		ctx.Logger.Error("Failed to list orders", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list orders"})
	}

	return ctx.JSON(fiber.Map{
		"orders": result.Orders,
		"total":  result.Total,
	})
}

// OrderShowAction handles GET /api/orders/:id
func OrderShowAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := orders.GetOrderByID(ctx.DB(), uint(id))
	if err != nil {
		if _, ok := err.(*orders.OrderNotFoundError); ok {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		ctx.Logger.Error("Failed to get order", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get order"})
	}
	return ctx.JSON(order)
}

// OrderCreateAction handles POST /api/orders
func OrderCreateAction(ctx *cartridge.Context) error {
	var payload orderPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input, err := payload.toInput()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := orders.CreateOrder(ctx.Logger, ctx.DB(), input)
	if err != nil {
		ctx.Logger.Error("Failed to create order", slog.Any("error", err))
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Logger.Info("Order created",
		slog.Uint64("id", uint64(order.ID)),
		slog.String("reference", order.Reference))
	return ctx.Status(fiber.StatusCreated).JSON(order)
}

// OrderUpdateAction handles PUT /api/orders/:id
func OrderUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var payload orderPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input, err := payload.toInput()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := orders.UpdateOrder(ctx.Logger, ctx.DB(), uint(id), input)
	if err != nil {
		if _, ok := err.(*orders.OrderNotFoundError); ok {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		ctx.Logger.Error("Failed to update order", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(order)
}

// OrderDeleteAction handles DELETE /api/orders/:id
func OrderDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	if err := orders.DeleteOrder(ctx.Logger, ctx.DB(), uint(id)); err != nil {
		if _, ok := err.(*orders.OrderNotFoundError); ok {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		ctx.Logger.Error("Failed to delete order", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete order"})
	}

	ctx.Logger.Info("Order deleted", slog.Int("id", id))
	return ctx.JSON(fiber.Map{"status": "deleted"})
}

// OrdersExportCSVAction handles GET /api/orders/export/csv
func OrdersExportCSVAction(ctx *cartridge.Context) error {
	parser := daterange.NewParser()
	r, err := parser.Parse(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := orders.CollectForExport(ctx.DB(), r.From, r.To, config.GetConfig().ExportRowLimit)
	if err != nil {
		ctx.Logger.Error("Failed to collect orders for export", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Export failed"})
	}

	filename := fmt.Sprintf("orders-%s.csv", uuid.NewString()[:8])
	ctx.Set("Content-Type", "text/csv; charset=utf-8")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	w := csv.NewWriter(ctx.Response().BodyWriter())
	if err := w.Write(orders.ExportHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := w.Write(orders.ExportRow(&rows[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
