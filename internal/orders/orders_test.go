package orders_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topupdesk/internal/orders"
	"topupdesk/internal/testsupport"
)

func TestCreateOrder(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	t.Run("creates order with items and reference", func(t *testing.T) {
		input := orders.CreateOrderInput{
			OrderDate:    time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC),
			Game:         " Dragon Saga ",
			Platform:     "iOS",
			TopupChannel: "TrueMoney",
			Status:       orders.StatusCompleted,
			Operator:     "somchai",
			TotalPaid:    decimal.RequireFromString("70.00"),
			Cost:         decimal.RequireFromString("60.00"),
			Items: []orders.OrderItem{
				{PackageName: "60 Gems", Quantity: 2, UnitPrice: decimal.RequireFromString("35.00")},
			},
		}

		order, err := orders.CreateOrder(logger, db, input)
		require.NoError(t, err)

		assert.NotEmpty(t, order.Reference)
		assert.Equal(t, "Dragon Saga", order.Game)
		assert.True(t, order.Profit().Equal(decimal.RequireFromString("10.00")))

		stored, err := orders.GetOrderByID(db, order.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, "60 Gems", stored.Items[0].PackageName)
		assert.Equal(t, 2, stored.Items[0].Quantity)
	})

	t.Run("rejects zero order date", func(t *testing.T) {
		_, err := orders.CreateOrder(logger, db, orders.CreateOrderInput{})
		assert.Error(t, err)
	})
}

func TestUpdateOrderReplacesItems(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	created, err := orders.CreateOrder(logger, db, orders.CreateOrderInput{
		OrderDate: time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC),
		Game:      "Dragon Saga",
		Status:    orders.StatusPending,
		TotalPaid: decimal.RequireFromString("35.00"),
		Cost:      decimal.RequireFromString("30.00"),
		Items: []orders.OrderItem{
			{PackageName: "60 Gems", Quantity: 1, UnitPrice: decimal.RequireFromString("35.00")},
		},
	})
	require.NoError(t, err)

	updated, err := orders.UpdateOrder(logger, db, created.ID, orders.CreateOrderInput{
		Game:      "Dragon Saga",
		Status:    orders.StatusCompleted,
		TotalPaid: decimal.RequireFromString("159.00"),
		Cost:      decimal.RequireFromString("140.00"),
		Items: []orders.OrderItem{
			{PackageName: "300 Gems", Quantity: 1, UnitPrice: decimal.RequireFromString("159.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, orders.StatusCompleted, updated.Status)
	assert.Equal(t, created.Reference, updated.Reference, "reference survives updates")
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "300 Gems", updated.Items[0].PackageName)
	assert.WithinDuration(t, created.OrderDate, updated.OrderDate, time.Second, "zero input date leaves order date alone")
}

func TestUpdateMissingOrder(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	_, err := orders.UpdateOrder(logger, db, 424242, orders.CreateOrderInput{})
	var notFound *orders.OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	created, err := orders.CreateOrder(logger, db, orders.CreateOrderInput{
		OrderDate: time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC),
		TotalPaid: decimal.RequireFromString("35.00"),
		Cost:      decimal.RequireFromString("30.00"),
		Items: []orders.OrderItem{
			{PackageName: "60 Gems", Quantity: 1, UnitPrice: decimal.RequireFromString("35.00")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, orders.DeleteOrder(logger, db, created.ID))

	_, err = orders.GetOrderByID(db, created.ID)
	var notFound *orders.OrderNotFoundError
	assert.ErrorAs(t, err, &notFound)

	var itemCount int64
	db.Model(&orders.OrderItem{}).Where("order_id = ?", created.ID).Count(&itemCount)
	assert.Zero(t, itemCount)
}

func TestGetFilteredOrders(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	base := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{OrderDate: base, Game: "Dragon Saga", Platform: "iOS", Status: orders.StatusCompleted, Operator: "somchai"})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{OrderDate: base.Add(time.Hour), Game: "Valor Arena", Platform: "Android", Status: orders.StatusPending, Operator: "mali"})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{OrderDate: base.Add(2 * time.Hour), Game: "Valor Arena", Platform: "iOS", Status: orders.StatusCompleted, Operator: "somchai"})

	from := base.Add(-time.Hour)
	to := base.Add(24 * time.Hour)

	t.Run("newest first with total", func(t *testing.T) {
		result, err := orders.GetFilteredOrders(db, orders.OrderFilters{FromDate: from, ToDate: to})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
		require.Len(t, result.Orders, 3)
		assert.True(t, result.Orders[0].OrderDate.After(result.Orders[2].OrderDate))
	})

	t.Run("status and platform filters", func(t *testing.T) {
		result, err := orders.GetFilteredOrders(db, orders.OrderFilters{
			FromDate: from, ToDate: to,
			Status: orders.StatusCompleted, Platform: "iOS",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("search matches game and operator", func(t *testing.T) {
		result, err := orders.GetFilteredOrders(db, orders.OrderFilters{
			FromDate: from, ToDate: to, Search: "Valor",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)

		result, err = orders.GetFilteredOrders(db, orders.OrderFilters{
			FromDate: from, ToDate: to, Search: "mali",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := orders.GetFilteredOrders(db, orders.OrderFilters{
			FromDate: from, ToDate: to, Limit: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
		assert.Len(t, result.Orders, 2)

		result, err = orders.GetFilteredOrders(db, orders.OrderFilters{
			FromDate: from, ToDate: to, Limit: 2, Offset: 2,
		})
		require.NoError(t, err)
		assert.Len(t, result.Orders, 1)
	})
}

func TestExportRow(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	order := testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC),
		Game:      "Dragon Saga",
		Status:    orders.StatusCompleted,
		TotalPaid: "1234.50",
		Cost:      "1000.00",
	})

	row := orders.ExportRow(order)
	require.Len(t, row, len(orders.ExportHeader))
	assert.Equal(t, order.Reference, row[0])
	assert.Equal(t, "2025-03-01T04:00:00Z", row[1])
	assert.Equal(t, "1234.50", row[7])
	assert.Equal(t, "1000.00", row[8])
	assert.Equal(t, "234.50", row[9])
}
