// Package reports turns raw order rows into KPI totals, grouped sums and
// daily time series. The same numbers are reachable two ways: the engine
// in this file aggregates in memory over raw records, while summary.go
// asks SQLite to pre-aggregate. Both paths must agree to the cent.
package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"topupdesk/internal/daterange"
	"topupdesk/internal/orders"
)

// Dimension selects which categorical attribute a grouping pass keys on.
type Dimension string

const (
	DimensionGame         Dimension = "game"
	DimensionPlatform     Dimension = "platform"
	DimensionTopupChannel Dimension = "topupChannel"
	DimensionStatus       Dimension = "status"
	DimensionDay          Dimension = "day"
)

// Record is the engine's input row: one order, already coerced to typed
// values. Missing categorical attributes are empty strings here; the
// engine collapses them into the orders.UnknownValue bucket.
type Record struct {
	OrderDate    time.Time
	Game         string
	Platform     string
	TopupChannel string
	Status       string
	Operator     string
	TotalPaid    decimal.Decimal
	Cost         decimal.Decimal
}

// Bucket is one aggregation group.
type Bucket struct {
	Key     string          `json:"key"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// Totals holds the ungrouped KPI numbers.
type Totals struct {
	Orders       int             `json:"orders"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin float64         `json:"profitMargin"`
}

// Result is the full aggregation output across every dimension.
type Result struct {
	Totals         Totals   `json:"totals"`
	Daily          []Bucket `json:"daily"`
	ByGame         []Bucket `json:"byGame"`
	ByPlatform     []Bucket `json:"byPlatform"`
	ByTopupChannel []Bucket `json:"byTopupChannel"`
	ByStatus       []Bucket `json:"byStatus"`
}

// Options narrows which records an aggregation pass sees.
type Options struct {
	// FilterStatus, when non-empty, keeps only records whose status
	// matches exactly.
	FilterStatus string
	// ExcludedOperators drops records handled by these operators before
	// any totals are computed.
	ExcludedOperators []string
}

// Aggregate computes totals and every grouped view in a single pass over
// the records. It is a pure function of its input: empty input yields
// zero totals and empty bucket slices, never an error.
func Aggregate(records []Record, opts Options) Result {
	filtered := filterRecords(records, opts)

	var result Result
	result.Totals = computeTotals(filtered)
	result.Daily = GroupBy(filtered, DimensionDay)
	result.ByGame = GroupBy(filtered, DimensionGame)
	result.ByPlatform = GroupBy(filtered, DimensionPlatform)
	result.ByTopupChannel = GroupBy(filtered, DimensionTopupChannel)
	result.ByStatus = GroupBy(filtered, DimensionStatus)
	return result
}

// GroupBy builds one bucket per distinct key of the given dimension.
// Revenue-bearing dimensions come back sorted by descending revenue with
// first-seen order preserved on ties; day buckets come back in ascending
// date order.
func GroupBy(records []Record, dim Dimension) []Bucket {
	index := make(map[string]int)
	buckets := make([]Bucket, 0)

	for _, r := range records {
		key := bucketKey(r, dim)
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{
				Key:     key,
				Revenue: decimal.Zero,
				Cost:    decimal.Zero,
				Profit:  decimal.Zero,
			})
		}
		buckets[i].Count++
		buckets[i].Revenue = buckets[i].Revenue.Add(r.TotalPaid)
		buckets[i].Cost = buckets[i].Cost.Add(r.Cost)
	}

	for i := range buckets {
		buckets[i].Revenue = buckets[i].Revenue.Round(2)
		buckets[i].Cost = buckets[i].Cost.Round(2)
		buckets[i].Profit = buckets[i].Revenue.Sub(buckets[i].Cost)
	}

	if dim == DimensionDay {
		sort.Slice(buckets, func(a, b int) bool {
			return buckets[a].Key < buckets[b].Key
		})
	} else {
		sort.SliceStable(buckets, func(a, b int) bool {
			return buckets[a].Revenue.GreaterThan(buckets[b].Revenue)
		})
	}
	return buckets
}

func filterRecords(records []Record, opts Options) []Record {
	excluded := make(map[string]bool, len(opts.ExcludedOperators))
	for _, op := range opts.ExcludedOperators {
		excluded[op] = true
	}

	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if opts.FilterStatus != "" && r.Status != opts.FilterStatus {
			continue
		}
		if excluded[r.Operator] {
			continue
		}
		// Permissive coercion can hand us sub-cent amounts. Quantize
		// each record once so every grouping of the same rows sums to
		// the same grand total.
		r.TotalPaid = r.TotalPaid.Round(2)
		r.Cost = r.Cost.Round(2)
		filtered = append(filtered, r)
	}
	return filtered
}

func computeTotals(records []Record) Totals {
	revenue := decimal.Zero
	cost := decimal.Zero
	for _, r := range records {
		revenue = revenue.Add(r.TotalPaid)
		cost = cost.Add(r.Cost)
	}
	revenue = revenue.Round(2)
	cost = cost.Round(2)
	profit := revenue.Sub(cost)

	margin := 0.0
	if revenue.GreaterThan(decimal.Zero) {
		margin, _ = profit.Div(revenue).Float64()
	}

	return Totals{
		Orders:       len(records),
		Revenue:      revenue,
		Cost:         cost,
		Profit:       profit,
		ProfitMargin: margin,
	}
}

func bucketKey(r Record, dim Dimension) string {
	var key string
	switch dim {
	case DimensionGame:
		key = r.Game
	case DimensionPlatform:
		key = r.Platform
	case DimensionTopupChannel:
		key = r.TopupChannel
	case DimensionStatus:
		key = r.Status
	case DimensionDay:
		return daterange.DayKey(r.OrderDate)
	}
	if key == "" {
		return orders.UnknownValue
	}
	return key
}

// RecordFromOrder adapts a stored order into an engine record.
func RecordFromOrder(o orders.Order) Record {
	return Record{
		OrderDate:    o.OrderDate,
		Game:         o.Game,
		Platform:     o.Platform,
		TopupChannel: o.TopupChannel,
		Status:       o.Status,
		Operator:     o.Operator,
		TotalPaid:    o.TotalPaid,
		Cost:         o.Cost,
	}
}

// RecordsFromOrders adapts a slice of stored orders.
func RecordsFromOrders(list []orders.Order) []Record {
	records := make([]Record, len(list))
	for i, o := range list {
		records[i] = RecordFromOrder(o)
	}
	return records
}
