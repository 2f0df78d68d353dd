package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topupdesk/internal/orders"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string, hour int) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour) * time.Hour)
}

func TestAggregateStatusFilter(t *testing.T) {
	records := []Record{
		{OrderDate: day("2025-03-01", 5), Status: orders.StatusCompleted, TotalPaid: money("100"), Cost: money("40")},
		{OrderDate: day("2025-03-01", 6), Status: orders.StatusCanceled, TotalPaid: money("50"), Cost: money("10")},
	}

	result := Aggregate(records, Options{FilterStatus: orders.StatusCompleted})

	assert.Equal(t, 1, result.Totals.Orders)
	assert.True(t, result.Totals.Revenue.Equal(money("100")))
	assert.True(t, result.Totals.Cost.Equal(money("40")))
	assert.True(t, result.Totals.Profit.Equal(money("60")))
	assert.InDelta(t, 0.6, result.Totals.ProfitMargin, 1e-9)
}

func TestAggregateEmptyInput(t *testing.T) {
	result := Aggregate(nil, Options{})

	assert.Equal(t, 0, result.Totals.Orders)
	assert.True(t, result.Totals.Revenue.IsZero())
	assert.Zero(t, result.Totals.ProfitMargin)
	assert.Empty(t, result.Daily)
	assert.Empty(t, result.ByGame)
	assert.Empty(t, result.ByStatus)
}

func TestGroupByRevenueOrdering(t *testing.T) {
	records := []Record{
		{OrderDate: day("2025-03-01", 1), Game: "Valor Arena", TotalPaid: money("50"), Cost: money("20")},
		{OrderDate: day("2025-03-01", 2), Game: "Dragon Saga", TotalPaid: money("300"), Cost: money("200")},
		{OrderDate: day("2025-03-02", 3), Game: "Valor Arena", TotalPaid: money("75"), Cost: money("30")},
	}

	buckets := GroupBy(records, DimensionGame)
	require.Len(t, buckets, 2)

	assert.Equal(t, "Dragon Saga", buckets[0].Key)
	assert.True(t, buckets[0].Revenue.Equal(money("300")))
	assert.Equal(t, "Valor Arena", buckets[1].Key)
	assert.Equal(t, 2, buckets[1].Count)
	assert.True(t, buckets[1].Revenue.Equal(money("125")))
	assert.True(t, buckets[1].Profit.Equal(money("75")))
}

func TestGroupByTiesKeepFirstSeenOrder(t *testing.T) {
	records := []Record{
		{OrderDate: day("2025-03-01", 1), Platform: "iOS", TotalPaid: money("100"), Cost: money("10")},
		{OrderDate: day("2025-03-01", 2), Platform: "Android", TotalPaid: money("100"), Cost: money("20")},
	}

	buckets := GroupBy(records, DimensionPlatform)
	require.Len(t, buckets, 2)
	assert.Equal(t, "iOS", buckets[0].Key)
	assert.Equal(t, "Android", buckets[1].Key)
}

func TestGroupByMissingKeysCollapseToUnknown(t *testing.T) {
	records := []Record{
		{OrderDate: day("2025-03-01", 1), TotalPaid: money("10"), Cost: money("5")},
		{OrderDate: day("2025-03-01", 2), TotalPaid: money("20"), Cost: money("5")},
		{OrderDate: day("2025-03-01", 3), Game: "Dragon Saga", TotalPaid: money("5"), Cost: money("1")},
	}

	buckets := GroupBy(records, DimensionGame)
	require.Len(t, buckets, 2)
	assert.Equal(t, orders.UnknownValue, buckets[0].Key)
	assert.Equal(t, 2, buckets[0].Count)
	assert.True(t, buckets[0].Revenue.Equal(money("30")))
}

func TestGroupByDayBucketsBangkokOffset(t *testing.T) {
	// 17:30 UTC is already past local midnight in Bangkok.
	late, err := time.Parse(time.RFC3339, "2025-01-01T17:30:00Z")
	require.NoError(t, err)
	early, err := time.Parse(time.RFC3339, "2025-01-01T10:00:00Z")
	require.NoError(t, err)

	records := []Record{
		{OrderDate: late, TotalPaid: money("10"), Cost: money("1")},
		{OrderDate: early, TotalPaid: money("20"), Cost: money("2")},
	}

	buckets := GroupBy(records, DimensionDay)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2025-01-01", buckets[0].Key)
	assert.Equal(t, "2025-01-02", buckets[1].Key)
}

func TestAggregateConservation(t *testing.T) {
	records := []Record{
		{OrderDate: day("2025-03-01", 1), Game: "A", Platform: "iOS", Status: orders.StatusCompleted, TotalPaid: money("123.45"), Cost: money("67.89")},
		{OrderDate: day("2025-03-02", 2), Game: "B", Platform: "Android", Status: orders.StatusPending, TotalPaid: money("0.01"), Cost: money("0.01")},
		{OrderDate: day("2025-03-03", 3), Game: "A", Status: orders.StatusCompleted, TotalPaid: money("999.99"), Cost: money("500")},
	}

	result := Aggregate(records, Options{})

	for _, dims := range [][]Bucket{result.Daily, result.ByGame, result.ByPlatform, result.ByTopupChannel, result.ByStatus} {
		sum := decimal.Zero
		profitSum := decimal.Zero
		for _, b := range dims {
			sum = sum.Add(b.Revenue)
			profitSum = profitSum.Add(b.Profit)
			assert.True(t, b.Profit.Equal(b.Revenue.Sub(b.Cost)))
		}
		assert.True(t, sum.Equal(result.Totals.Revenue), "bucket revenue must sum to total revenue")
		assert.True(t, profitSum.Equal(result.Totals.Profit))
	}
}

func TestAggregateSubCentAmountsStillConserve(t *testing.T) {
	// Coercion accepts text like "0.005"; rounding per bucket instead of
	// per record would make three such games sum to 0.03 against a 0.02
	// grand total.
	records := []Record{
		{OrderDate: day("2025-03-01", 1), Game: "A", TotalPaid: money("0.005"), Cost: money("0.001")},
		{OrderDate: day("2025-03-01", 2), Game: "B", TotalPaid: money("0.005"), Cost: money("0.001")},
		{OrderDate: day("2025-03-01", 3), Game: "C", TotalPaid: money("0.005"), Cost: money("0.001")},
	}

	result := Aggregate(records, Options{})

	bucketSum := decimal.Zero
	for _, b := range result.ByGame {
		bucketSum = bucketSum.Add(b.Revenue)
	}
	assert.True(t, bucketSum.Equal(result.Totals.Revenue),
		"bucket revenue must sum to total revenue, got %s vs %s", bucketSum, result.Totals.Revenue)
	assert.True(t, result.Totals.Revenue.Equal(money("0.03")))

	daySum := decimal.Zero
	for _, b := range result.Daily {
		daySum = daySum.Add(b.Revenue)
	}
	assert.True(t, daySum.Equal(result.Totals.Revenue))
}

func TestAggregateExcludedOperators(t *testing.T) {
	records := []Record{
		{OrderDate: day("2025-03-01", 1), Operator: "somchai", TotalPaid: money("100"), Cost: money("50")},
		{OrderDate: day("2025-03-01", 2), Operator: "trainee", TotalPaid: money("999"), Cost: money("1")},
	}

	result := Aggregate(records, Options{ExcludedOperators: []string{"trainee"}})

	assert.Equal(t, 1, result.Totals.Orders)
	assert.True(t, result.Totals.Revenue.Equal(money("100")))
}
