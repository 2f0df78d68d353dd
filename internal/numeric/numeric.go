// Package numeric provides best-effort coercion of loosely-typed values
// into monetary numbers. Order data arrives from spreadsheets, payment
// panels and hand-edited forms, so amounts show up as numbers, currency
// strings ("1,234.50 ฿") or nothing at all. The policy is availability
// over strictness: anything that cannot be read as a finite number
// degrades silently to zero.
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyGlyphs are stripped before parsing. Covers the currencies the
// top-up channels settle in plus the usual suspects.
const currencyGlyphs = "฿$€£¥₫₹₱"

// Coerce converts an arbitrary value into a finite float64.
// Numbers pass through unchanged, nil becomes 0, text is cleaned and
// parsed. Invalid input yields 0, never an error.
func Coerce(v any) float64 {
	f, _ := CoerceDecimal(v).Float64()
	return f
}

// CoerceDecimal is Coerce with exact decimal output. All monetary
// accumulation goes through decimals so the raw-order path and the SQL
// summary path agree to the cent.
func CoerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return CoerceDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case uint:
		return decimal.NewFromInt(int64(n))
	case uint64:
		return decimal.NewFromInt(int64(n))
	case json.Number:
		return parseCleaned(string(n))
	case string:
		return parseCleaned(n)
	default:
		return decimal.Zero
	}
}

// parseCleaned strips currency glyphs, thousands separators and
// whitespace, then parses the remainder as a decimal number.
func parseCleaned(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',' || r == ' ' || r == '\t' || r == ' ':
			return -1
		case strings.ContainsRune(currencyGlyphs, r):
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if cleaned == "" {
		return decimal.Zero
	}

	// strconv first to reject junk like "1.2.3" and non-finite forms
	// that decimal.NewFromString would also refuse, but with a cheap
	// finite check for exponent forms.
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
