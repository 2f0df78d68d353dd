package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topupdesk/internal/daterange"
	"topupdesk/internal/orders"
	"topupdesk/internal/reports"
	"topupdesk/internal/testsupport"
)

func TestSummaryMatchesEngineAggregation(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	r := daterange.Range{
		From: time.Date(2025, 2, 28, 17, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 31, 16, 59, 59, 0, time.UTC),
	}

	seed := []testsupport.TestOrderInput{
		{OrderDate: time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC), Game: "Dragon Saga", Platform: "iOS", TopupChannel: "TrueMoney", Status: orders.StatusCompleted, Operator: "somchai", TotalPaid: "1234.50", Cost: "1000.00"},
		{OrderDate: time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC), Game: "Dragon Saga", Platform: "Android", TopupChannel: "PromptPay", Status: orders.StatusCompleted, Operator: "mali", TotalPaid: "99.99", Cost: "70.50"},
		{OrderDate: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), Game: "Valor Arena", Platform: "iOS", Status: orders.StatusPending, Operator: "somchai", TotalPaid: "450.00", Cost: "400.00"},
		{OrderDate: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), Game: "", Platform: "PC", TopupChannel: "Card", Status: orders.StatusCanceled, Operator: "mali", TotalPaid: "20.25", Cost: "20.25"},
	}
	for _, in := range seed {
		testsupport.CreateTestOrder(t, db, in)
	}

	summary, err := reports.GetSummary(context.Background(), db, reports.SummaryParams{Range: r})
	require.NoError(t, err)

	raw, err := orders.GetOrdersInRange(db, r.From, r.To)
	require.NoError(t, err)
	local := reports.Aggregate(reports.RecordsFromOrders(raw), reports.Options{})

	assert.Equal(t, local.Totals.Orders, summary.Totals.Orders)
	assert.True(t, local.Totals.Revenue.Equal(summary.Totals.Revenue),
		"revenue mismatch: engine=%s sql=%s", local.Totals.Revenue, summary.Totals.Revenue)
	assert.True(t, local.Totals.Cost.Equal(summary.Totals.Cost))
	assert.True(t, local.Totals.Profit.Equal(summary.Totals.Profit))
	assert.InDelta(t, local.Totals.ProfitMargin, summary.Totals.ProfitMargin, 1e-9)

	assertBucketsEqual(t, local.Daily, summary.Daily)
	assertBucketsEqual(t, local.ByGame, summary.ByGame)
	assertBucketsEqual(t, local.ByPlatform, summary.ByPlatform)
	assertBucketsEqual(t, local.ByTopupChannel, summary.ByTopupChannel)
	assertBucketsEqual(t, local.ByStatus, summary.ByStatus)
}

func TestSummaryStatusFilterAndExclusions(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	r := daterange.Range{
		From: time.Date(2025, 3, 31, 17, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 4, 30, 16, 59, 59, 0, time.UTC),
	}

	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 4, 2, 6, 0, 0, 0, time.UTC),
		Status:    orders.StatusCompleted, Operator: "somchai", TotalPaid: "100.00", Cost: "40.00",
	})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 4, 3, 6, 0, 0, 0, time.UTC),
		Status:    orders.StatusCompleted, Operator: "trainee", TotalPaid: "500.00", Cost: "100.00",
	})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 4, 4, 6, 0, 0, 0, time.UTC),
		Status:    orders.StatusCanceled, Operator: "somchai", TotalPaid: "75.00", Cost: "75.00",
	})

	params := reports.SummaryParams{
		Range:             r,
		FilterStatus:      orders.StatusCompleted,
		ExcludedOperators: []string{"trainee"},
	}
	summary, err := reports.GetSummary(context.Background(), db, params)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Totals.Orders)
	assert.Equal(t, "100", summary.Totals.Revenue.String())
	assert.Equal(t, "60", summary.Totals.Profit.String())

	raw, err := orders.GetOrdersInRange(db, r.From, r.To)
	require.NoError(t, err)
	local := reports.Aggregate(reports.RecordsFromOrders(raw), reports.Options{
		FilterStatus:      orders.StatusCompleted,
		ExcludedOperators: []string{"trainee"},
	})
	assert.Equal(t, local.Totals.Orders, summary.Totals.Orders)
	assert.True(t, local.Totals.Revenue.Equal(summary.Totals.Revenue))
}

func TestSummaryEmptyRange(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	r := daterange.Range{
		From: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	summary, err := reports.GetSummary(context.Background(), db, reports.SummaryParams{Range: r})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Totals.Orders)
	assert.True(t, summary.Totals.Revenue.IsZero())
	assert.Empty(t, summary.Daily)
	assert.Empty(t, summary.ByGame)
}

// assertBucketsEqual ignores ordering among equal-revenue buckets, where
// SQL makes no stability promise.
func assertBucketsEqual(t *testing.T, engine, sql []reports.Bucket) {
	t.Helper()
	require.Equal(t, len(engine), len(sql))

	byKey := make(map[string]reports.Bucket, len(sql))
	for _, b := range sql {
		byKey[b.Key] = b
	}
	for _, e := range engine {
		s, ok := byKey[e.Key]
		require.True(t, ok, "missing bucket %q in sql output", e.Key)
		assert.Equal(t, e.Count, s.Count, "count mismatch for %q", e.Key)
		assert.True(t, e.Revenue.Equal(s.Revenue), "revenue mismatch for %q: engine=%s sql=%s", e.Key, e.Revenue, s.Revenue)
		assert.True(t, e.Cost.Equal(s.Cost), "cost mismatch for %q", e.Key)
		assert.True(t, e.Profit.Equal(s.Profit), "profit mismatch for %q", e.Key)
	}
}
