package orders

import (
	"time"

	"gorm.io/gorm"
)

// ExportHeader is the column order of the CSV export.
var ExportHeader = []string{
	"reference", "order_date", "game", "platform", "topup_channel",
	"status", "operator", "total_paid", "cost", "profit",
}

// ExportRow flattens an order for CSV output. Profit is derived here,
// same as everywhere else.
func ExportRow(o *Order) []string {
	return []string{
		o.Reference,
		o.OrderDate.UTC().Format(time.RFC3339),
		o.Game,
		o.Platform,
		o.TopupChannel,
		o.Status,
		o.Operator,
		o.TotalPaid.StringFixed(2),
		o.Cost.StringFixed(2),
		o.Profit().StringFixed(2),
	}
}

// CollectForExport fetches up to limit orders in the range for CSV
// streaming, oldest first so the file reads chronologically.
func CollectForExport(db *gorm.DB, from, to time.Time, limit int) ([]Order, error) {
	var orders []Order
	err := db.Where("order_date BETWEEN ? AND ?", from, to).
		Order("order_date ASC, id ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
