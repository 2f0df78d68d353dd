package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"topupdesk/internal/daterange"
	"topupdesk/internal/orders"
	"topupdesk/internal/pkg/async"
)

// dayBucketExpr converts a UTC order timestamp into its Asia/Bangkok
// calendar day. Must stay in lockstep with daterange.DayKey.
const dayBucketExpr = "strftime('%Y-%m-%d', datetime(order_date, '+7 hours'))"

// SummaryParams scopes a summary query.
type SummaryParams struct {
	Range             daterange.Range
	FilterStatus      string
	ExcludedOperators []string
}

type bucketRow struct {
	Key     string
	Count   int
	Revenue float64
	Cost    float64
}

type totalsRow struct {
	Orders  int
	Revenue float64
	Cost    float64
}

// GetSummary computes the full aggregation result in SQL, fanning the
// totals and each grouped view out across a worker pool. Output is
// shaped identically to Aggregate over the same rows.
func GetSummary(ctx context.Context, db *gorm.DB, params SummaryParams) (*Result, error) {
	pool := async.NewPool(6)
	tasks := []async.Task{
		{Name: "totals", Execute: func() (any, error) {
			return queryTotals(db, params)
		}},
		{Name: "daily", Execute: func() (any, error) {
			return queryBuckets(db, params, dayBucketExpr, true)
		}},
		{Name: "byGame", Execute: func() (any, error) {
			return queryBuckets(db, params, "game", false)
		}},
		{Name: "byPlatform", Execute: func() (any, error) {
			return queryBuckets(db, params, "platform", false)
		}},
		{Name: "byTopupChannel", Execute: func() (any, error) {
			return queryBuckets(db, params, "topup_channel", false)
		}},
		{Name: "byStatus", Execute: func() (any, error) {
			return queryBuckets(db, params, "status", false)
		}},
	}

	results := pool.Execute(ctx, tasks)
	if len(results) != len(tasks) {
		return nil, ctx.Err()
	}
	if err := async.FirstError(results); err != nil {
		return nil, fmt.Errorf("summary query failed: %w", err)
	}

	out := &Result{
		Totals:         results["totals"].Data.(Totals),
		Daily:          results["daily"].Data.([]Bucket),
		ByGame:         results["byGame"].Data.([]Bucket),
		ByPlatform:     results["byPlatform"].Data.([]Bucket),
		ByTopupChannel: results["byTopupChannel"].Data.([]Bucket),
		ByStatus:       results["byStatus"].Data.([]Bucket),
	}
	return out, nil
}

func summaryWhere(params SummaryParams) (string, []any) {
	clauses := []string{"order_date BETWEEN ? AND ?"}
	args := []any{params.Range.From.UTC(), params.Range.To.UTC()}

	if params.FilterStatus != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, params.FilterStatus)
	}
	if len(params.ExcludedOperators) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(params.ExcludedOperators)), ",")
		clauses = append(clauses, fmt.Sprintf("operator NOT IN (%s)", placeholders))
		for _, op := range params.ExcludedOperators {
			args = append(args, op)
		}
	}
	return strings.Join(clauses, " AND "), args
}

func queryTotals(db *gorm.DB, params SummaryParams) (Totals, error) {
	where, args := summaryWhere(params)
	// Amounts are rounded per row before summing, matching the engine's
	// record quantization, so both paths agree even on sub-cent noise.
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) as orders,
			COALESCE(ROUND(SUM(ROUND(total_paid, 2)), 2), 0) as revenue,
			COALESCE(ROUND(SUM(ROUND(cost, 2)), 2), 0) as cost
		FROM orders
		WHERE %s
	`, where)

	var row totalsRow
	if err := db.Raw(query, args...).Scan(&row).Error; err != nil {
		return Totals{}, fmt.Errorf("error computing order totals: %w", err)
	}

	revenue := decimal.NewFromFloat(row.Revenue).Round(2)
	cost := decimal.NewFromFloat(row.Cost).Round(2)
	profit := revenue.Sub(cost)

	margin := 0.0
	if revenue.GreaterThan(decimal.Zero) {
		margin, _ = profit.Div(revenue).Float64()
	}

	return Totals{
		Orders:       row.Orders,
		Revenue:      revenue,
		Cost:         cost,
		Profit:       profit,
		ProfitMargin: margin,
	}, nil
}

func queryBuckets(db *gorm.DB, params SummaryParams, keyExpr string, ascendingByKey bool) ([]Bucket, error) {
	where, args := summaryWhere(params)

	// Day keys sort chronologically; every other dimension leads with
	// its biggest earner.
	ordering := "revenue DESC"
	if ascendingByKey {
		ordering = "key ASC"
	}

	query := fmt.Sprintf(`
		SELECT
			CASE WHEN %s IS NULL OR %s = '' THEN ? ELSE %s END as key,
			COUNT(*) as count,
			COALESCE(ROUND(SUM(ROUND(total_paid, 2)), 2), 0) as revenue,
			COALESCE(ROUND(SUM(ROUND(cost, 2)), 2), 0) as cost
		FROM orders
		WHERE %s
		GROUP BY key
		ORDER BY %s
	`, keyExpr, keyExpr, keyExpr, where, ordering)

	queryArgs := append([]any{orders.UnknownValue}, args...)

	var rows []bucketRow
	if err := db.Raw(query, queryArgs...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error grouping orders by %s: %w", keyExpr, err)
	}

	buckets := make([]Bucket, len(rows))
	for i, row := range rows {
		revenue := decimal.NewFromFloat(row.Revenue).Round(2)
		cost := decimal.NewFromFloat(row.Cost).Round(2)
		buckets[i] = Bucket{
			Key:     row.Key,
			Count:   row.Count,
			Revenue: revenue,
			Cost:    cost,
			Profit:  revenue.Sub(cost),
		}
	}
	return buckets, nil
}
