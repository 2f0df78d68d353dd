// Package orders holds the top-up order store: models, filtered queries
// and the write paths the admin API uses.
package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses as the back office records them.
const (
	StatusCompleted = "สำเร็จ"
	StatusPending   = "รอดำเนินการ"
	StatusCanceled  = "ยกเลิก"
)

// UnknownValue is the single sentinel for missing categorical values
// (game, platform, channel, status, operator). The legacy dashboards
// used both "UNKNOWN" and "N/A"; this codebase standardizes on one.
const UnknownValue = "UNKNOWN"

// OrderNotFoundError is returned when an order lookup fails.
type OrderNotFoundError struct {
	ID uint
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order not found: %d", e.ID)
}

// NewOrderNotFoundError creates a new OrderNotFoundError
func NewOrderNotFoundError(id uint) *OrderNotFoundError {
	return &OrderNotFoundError{ID: id}
}

// Order represents one top-up transaction.
type Order struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"orderId"`
	Reference    string          `gorm:"uniqueIndex;not null" json:"reference"`
	OrderDate    time.Time       `gorm:"index;not null" json:"orderDate"`
	Game         string          `gorm:"index" json:"game"`
	Platform     string          `gorm:"index" json:"platform"`
	TopupChannel string          `json:"topupChannel"`
	Status       string          `gorm:"index" json:"status"`
	Operator     string          `json:"operator"`
	TotalPaid    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"totalPaid"`
	Cost         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cost"`
	Items        []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem is one line of an order. The sum of quantity*unit_price
// across items should equal the order's total_paid by convention; the
// store does not enforce it.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"-"`
	PackageName string          `gorm:"not null" json:"packageName"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unitPrice"`
}

// Profit is always derived, never stored.
func (o *Order) Profit() decimal.Decimal {
	return o.TotalPaid.Sub(o.Cost)
}

// GetOrderByID retrieves an order with its items.
func GetOrderByID(db *gorm.DB, id uint) (*Order, error) {
	var order Order
	if err := db.Preload("Items").First(&order, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewOrderNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying order: %w", err)
	}
	return &order, nil
}
