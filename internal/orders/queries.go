package orders

import (
	"time"

	"gorm.io/gorm"
)

// OrderFilters represents filtering options for order listings
type OrderFilters struct {
	FromDate time.Time
	ToDate   time.Time
	Status   string
	Platform string
	Search   string // matches reference, game or operator
	Limit    int
	Offset   int
}

// OrdersResult represents a paginated orders result
type OrdersResult struct {
	Orders []Order
	Total  int64
}

// DefaultPageSize caps listings when the caller does not set a limit.
const DefaultPageSize = 50

// MaxPageSize is the hard ceiling for a single page. The report
// orchestrator pages at this size.
const MaxPageSize = 1000

// GetFilteredOrders retrieves filtered and paginated orders, newest
// first, items preloaded.
func GetFilteredOrders(db *gorm.DB, filters OrderFilters) (OrdersResult, error) {
	query := db.Model(&Order{}).
		Where("order_date BETWEEN ? AND ?", filters.FromDate, filters.ToDate)

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.Platform != "" {
		query = query.Where("platform = ?", filters.Platform)
	}

	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("(reference LIKE ? OR game LIKE ? OR operator LIKE ?)", like, like, like)
	}

	// Get total count for pagination
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return OrdersResult{}, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	var orders []Order
	if err := query.Preload("Items").
		Order("order_date DESC, id DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&orders).Error; err != nil {
		return OrdersResult{}, err
	}

	return OrdersResult{
		Orders: orders,
		Total:  total,
	}, nil
}

// GetOrdersInRange returns every order in the range ordered by date,
// without pagination. The summary queries and rollup job use it when a
// full scan is cheaper than paging.
func GetOrdersInRange(db *gorm.DB, from, to time.Time) ([]Order, error) {
	var orders []Order
	err := db.Preload("Items").
		Where("order_date BETWEEN ? AND ?", from, to).
		Order("order_date ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

// GetDistinctPlatforms lists the platforms seen across all orders.
func GetDistinctPlatforms(db *gorm.DB) ([]string, error) {
	var platforms []string
	err := db.Model(&Order{}).
		Where("platform <> ''").
		Distinct("platform").
		Order("platform ASC").
		Pluck("platform", &platforms).Error
	return platforms, err
}
