package orders

import (
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOrderInput carries the fields the admin API accepts on create.
// Monetary fields are already coerced by the handler.
type CreateOrderInput struct {
	OrderDate    time.Time
	Game         string
	Platform     string
	TopupChannel string
	Status       string
	Operator     string
	TotalPaid    decimal.Decimal
	Cost         decimal.Decimal
	Items        []OrderItem
}

// CreateOrder inserts a new order with a generated reference.
func CreateOrder(logger *slog.Logger, db *gorm.DB, input CreateOrderInput) (*Order, error) {
	if input.OrderDate.IsZero() {
		return nil, fmt.Errorf("order date is required")
	}

	items := input.Items
	for i := range items {
		items[i].UnitPrice = items[i].UnitPrice.Round(2)
	}

	// Money is stored in whole cents. Coerced input may carry sub-cent
	// fractions; quantizing here keeps stored rows and every report sum
	// in agreement.
	order := Order{
		Reference:    uuid.NewString(),
		OrderDate:    input.OrderDate.UTC(),
		Game:         strings.TrimSpace(input.Game),
		Platform:     strings.TrimSpace(input.Platform),
		TopupChannel: strings.TrimSpace(input.TopupChannel),
		Status:       strings.TrimSpace(input.Status),
		Operator:     strings.TrimSpace(input.Operator),
		TotalPaid:    input.TotalPaid.Round(2),
		Cost:         input.Cost.Round(2),
		Items:        items,
	}

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

// UpdateOrder replaces the mutable fields of an existing order. Items
// are replaced wholesale when provided.
func UpdateOrder(logger *slog.Logger, db *gorm.DB, id uint, input CreateOrderInput) (*Order, error) {
	order, err := GetOrderByID(db, id)
	if err != nil {
		return nil, err
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		updates := map[string]any{
			"game":          strings.TrimSpace(input.Game),
			"platform":      strings.TrimSpace(input.Platform),
			"topup_channel": strings.TrimSpace(input.TopupChannel),
			"status":        strings.TrimSpace(input.Status),
			"operator":      strings.TrimSpace(input.Operator),
			"total_paid":    input.TotalPaid.Round(2),
			"cost":          input.Cost.Round(2),
		}
		if !input.OrderDate.IsZero() {
			updates["order_date"] = input.OrderDate.UTC()
		}
		if err := tx.Model(&Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if input.Items != nil {
			if err := tx.Where("order_id = ?", id).Delete(&OrderItem{}).Error; err != nil {
				return err
			}
			for i := range input.Items {
				input.Items[i].ID = 0
				input.Items[i].OrderID = id
				input.Items[i].UnitPrice = input.Items[i].UnitPrice.Round(2)
			}
			if len(input.Items) > 0 {
				if err := tx.Create(&input.Items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", order.ID, err)
	}

	return GetOrderByID(db, id)
}

// DeleteOrder removes an order and its items.
func DeleteOrder(logger *slog.Logger, db *gorm.DB, id uint) error {
	if _, err := GetOrderByID(db, id); err != nil {
		return err
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Order{}, id).Error
	})
}
