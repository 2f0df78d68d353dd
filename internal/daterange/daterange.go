// Package daterange parses report date ranges and owns the reporting
// timezone. All day bucketing uses a fixed UTC+7 offset (Asia/Bangkok,
// no DST), so a bucket key can be derived from an instant without
// consulting the timezone database.
package daterange

import (
	"fmt"
	"time"
)

// ReportZone is the fixed-offset reporting timezone. Orders are recorded
// in UTC; every calendar-day boundary in reports is a Bangkok midnight.
var ReportZone = time.FixedZone("Asia/Bangkok", 7*60*60)

// DateFormat is the wire format for startDate/endDate query params.
const DateFormat = "2006-01-02"

// DefaultRangeDays is how far back a report reaches when no startDate is
// given.
const DefaultRangeDays = 30

// Range is a closed interval of instants, stored in UTC.
type Range struct {
	From time.Time
	To   time.Time
}

// TimeProvider abstracts the clock for deterministic tests.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Parser turns startDate/endDate query params into a Range.
type Parser struct {
	timeProvider TimeProvider
}

// NewParser creates a Parser. A custom TimeProvider may be supplied for
// tests.
func NewParser(timeProvider ...TimeProvider) *Parser {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	return &Parser{timeProvider: provider}
}

// Parse interprets startDate and endDate ("2006-01-02", Bangkok local
// dates). Missing startDate defaults to DefaultRangeDays ago; missing
// endDate defaults to today. The start is the beginning of its day, the
// end is the last instant of its day, both in ReportZone.
func (p *Parser) Parse(startDate, endDate string) (Range, error) {
	now := p.timeProvider.Now().In(ReportZone)

	from := startOfDay(now.AddDate(0, 0, -DefaultRangeDays))
	if startDate != "" {
		d, err := time.ParseInLocation(DateFormat, startDate, ReportZone)
		if err != nil {
			return Range{}, fmt.Errorf("invalid startDate: %w", err)
		}
		from = d
	}

	toDay := startOfDay(now)
	if endDate != "" {
		d, err := time.ParseInLocation(DateFormat, endDate, ReportZone)
		if err != nil {
			return Range{}, fmt.Errorf("invalid endDate: %w", err)
		}
		toDay = d
	}
	to := endOfDay(toDay)

	if from.After(to) {
		return Range{}, fmt.Errorf("startDate must not be after endDate")
	}

	return Range{From: from.UTC(), To: to.UTC()}, nil
}

// DayKey assigns an instant to its Bangkok calendar day, zero-padded so
// lexicographic order equals chronological order.
func DayKey(t time.Time) string {
	return t.In(ReportZone).Format(DateFormat)
}

// DayStart returns the first instant of t's Bangkok calendar day.
func DayStart(t time.Time) time.Time {
	return startOfDay(t.In(ReportZone))
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Equal reports whether two ranges cover the same interval.
func (r Range) Equal(other Range) bool {
	return r.From.Equal(other.From) && r.To.Equal(other.To)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ReportZone)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, ReportZone)
}
