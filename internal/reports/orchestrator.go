package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"log/slog"

	"topupdesk/internal/daterange"
	"topupdesk/internal/numeric"
)

// State names the orchestrator's report lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateAggregating State = "aggregating"
	StateRendered    State = "rendered"
	StateError       State = "error"
)

const (
	// FetchPageSize is how many orders one page request asks for.
	FetchPageSize = 1000
	// maxFetchPages bounds the pagination loop against a server that
	// reports a bogus total.
	maxFetchPages = 1000
)

// WireOrder is one order as the list endpoint serializes it. Money
// fields arrive loosely typed (numbers, currency strings, null) and are
// coerced before aggregation.
type WireOrder struct {
	OrderID      int64  `json:"orderId"`
	OrderDate    string `json:"orderDate"`
	Game         string `json:"game"`
	Platform     string `json:"platform"`
	TopupChannel string `json:"topupChannel"`
	Status       string `json:"status"`
	Operator     string `json:"operator"`
	TotalPaid    any    `json:"totalPaid"`
	Cost         any    `json:"cost"`
}

// Page is one list-endpoint response.
type Page struct {
	Orders []WireOrder `json:"orders"`
	Total  int         `json:"total"`
}

// OrderSource fetches one page of orders for a date range.
type OrderSource interface {
	FetchPage(ctx context.Context, r daterange.Range, page, limit int) (*Page, error)
}

// HTTPOrderSource reads pages from a running topupdesk instance's
// /api/orders endpoint, authenticating with a session cookie.
type HTTPOrderSource struct {
	BaseURL       string
	SessionCookie *http.Cookie
	Client        *http.Client
}

func NewHTTPOrderSource(baseURL string, sessionCookie *http.Cookie) *HTTPOrderSource {
	return &HTTPOrderSource{
		BaseURL:       baseURL,
		SessionCookie: sessionCookie,
		Client:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPOrderSource) FetchPage(ctx context.Context, r daterange.Range, page, limit int) (*Page, error) {
	query := url.Values{}
	query.Set("startDate", r.From.In(daterange.ReportZone).Format(daterange.DateFormat))
	query.Set("endDate", r.To.In(daterange.ReportZone).Format(daterange.DateFormat))
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.BaseURL+"/api/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if s.SessionCookie != nil {
		req.AddCookie(s.SessionCookie)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading order page: %w", err)
	}

	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("malformed order page: %w", err)
	}
	return &p, nil
}

// Snapshot is the orchestrator's externally visible state.
type Snapshot struct {
	State        State
	Range        daterange.Range
	FilterStatus string
	Err          error
	Result       Result
	OrderCount   int
}

// Orchestrator drives the fetch-then-aggregate report cycle. It caches
// raw records per date range so a status-filter change re-aggregates in
// memory without touching the source, while a range change re-fetches.
// A generation counter lets a newer request supersede a stale in-flight
// one without its results landing.
type Orchestrator struct {
	source OrderSource
	logger *slog.Logger

	mu                sync.Mutex
	generation        uint64
	state             State
	currentRange      daterange.Range
	filterStatus      string
	excludedOperators []string
	records           []Record
	result            Result
	lastErr           error
}

func NewOrchestrator(source OrderSource, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		source: source,
		logger: logger,
		state:  StateIdle,
	}
}

// Snapshot returns the current lifecycle state and last result.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		State:        o.state,
		Range:        o.currentRange,
		FilterStatus: o.filterStatus,
		Err:          o.lastErr,
		Result:       o.result,
		OrderCount:   len(o.records),
	}
}

// SetRange fetches the full order set for the range and aggregates it.
// If the range matches the cached one, the fetch is skipped and only
// aggregation re-runs.
func (o *Orchestrator) SetRange(ctx context.Context, r daterange.Range) (Result, error) {
	o.mu.Lock()
	if o.state == StateRendered && o.currentRange.Equal(r) {
		status := o.filterStatus
		o.mu.Unlock()
		return o.reaggregate(status)
	}

	o.generation++
	gen := o.generation
	o.state = StateFetching
	o.lastErr = nil
	o.mu.Unlock()

	records, err := o.fetchAll(ctx, r)
	if err != nil {
		o.mu.Lock()
		defer o.mu.Unlock()
		if gen == o.generation {
			o.state = StateError
			o.lastErr = err
		}
		return Result{}, err
	}

	o.mu.Lock()
	if gen != o.generation {
		// A newer request superseded this fetch; drop its results.
		o.mu.Unlock()
		return Result{}, context.Canceled
	}
	o.state = StateAggregating
	o.currentRange = r
	o.records = records
	status := o.filterStatus
	o.mu.Unlock()

	return o.reaggregate(status)
}

// SetExcludedOperators replaces the operator exclusion list applied to
// every aggregation, mirroring the excluded_operators setting the
// summary endpoint honors. When an order set is already loaded the
// result is recomputed from cache.
func (o *Orchestrator) SetExcludedOperators(operators []string) (Result, error) {
	o.mu.Lock()
	o.excludedOperators = append([]string(nil), operators...)
	if o.state != StateRendered && o.state != StateAggregating {
		o.mu.Unlock()
		return Result{}, nil
	}
	o.state = StateAggregating
	status := o.filterStatus
	o.mu.Unlock()

	return o.reaggregate(status)
}

// SetStatusFilter re-aggregates the cached order set under a new status
// filter. It never re-fetches.
func (o *Orchestrator) SetStatusFilter(status string) (Result, error) {
	o.mu.Lock()
	if o.state != StateRendered && o.state != StateAggregating {
		o.mu.Unlock()
		return Result{}, fmt.Errorf("no order set loaded; set a date range first")
	}
	o.state = StateAggregating
	o.filterStatus = status
	o.mu.Unlock()

	return o.reaggregate(status)
}

func (o *Orchestrator) reaggregate(status string) (Result, error) {
	o.mu.Lock()
	records := o.records
	excluded := o.excludedOperators
	o.mu.Unlock()

	result := Aggregate(records, Options{FilterStatus: status, ExcludedOperators: excluded})

	o.mu.Lock()
	o.state = StateRendered
	o.result = result
	o.filterStatus = status
	o.mu.Unlock()
	return result, nil
}

// fetchAll walks the list endpoint page by page until the reported total
// is exhausted. An empty page or the page cap also stops the loop, so a
// wrong server-side total cannot spin it forever.
func (o *Orchestrator) fetchAll(ctx context.Context, r daterange.Range) ([]Record, error) {
	var records []Record
	total := -1

	for page := 1; page <= maxFetchPages; page++ {
		p, err := o.source.FetchPage(ctx, r, page, FetchPageSize)
		if err != nil {
			return nil, err
		}
		if len(p.Orders) == 0 {
			break
		}
		if total < 0 {
			total = p.Total
		}

		for _, wo := range p.Orders {
			rec, err := coerceWireOrder(wo)
			if err != nil {
				o.logger.Warn("skipping malformed order", "orderId", wo.OrderID, "error", err)
				continue
			}
			records = append(records, rec)
		}

		if total >= 0 && len(records) >= total {
			break
		}
		if len(p.Orders) < FetchPageSize {
			break
		}
	}
	return records, nil
}

func coerceWireOrder(wo WireOrder) (Record, error) {
	orderDate, err := time.Parse(time.RFC3339, wo.OrderDate)
	if err != nil {
		// List responses may carry bare dates for legacy rows.
		orderDate, err = time.ParseInLocation(daterange.DateFormat, wo.OrderDate, daterange.ReportZone)
		if err != nil {
			return Record{}, fmt.Errorf("unparseable order date %q", wo.OrderDate)
		}
	}

	return Record{
		OrderDate:    orderDate.UTC(),
		Game:         wo.Game,
		Platform:     wo.Platform,
		TopupChannel: wo.TopupChannel,
		Status:       wo.Status,
		Operator:     wo.Operator,
		TotalPaid:    numeric.CoerceDecimal(wo.TotalPaid).Round(2),
		Cost:         numeric.CoerceDecimal(wo.Cost).Round(2),
	}, nil
}
