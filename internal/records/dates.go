package records

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// maxDateMillis bounds the representable date range (±100,000,000 days
// around the epoch), matching the scripting runtime the sheet data comes from.
const maxDateMillis = 8.64e15

// parseDateMillis interprets a field value as a point in time, returning
// milliseconds since the Unix epoch. Numbers, and strings holding only a
// number, are taken as milliseconds since the epoch.
func parseDateMillis(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return validMillis(v)
	case int:
		return validMillis(float64(v))
	case int64:
		return validMillis(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		// Numeric text bypasses dateparse, which would read "2024" as a year
		// and 10-digit values as epoch seconds. Keeping the millisecond reading
		// makes "1700000000000" and 1700000000000 sort the same.
		if n, ok := parseNumber(s); ok {
			return validMillis(n)
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return 0, false
		}
		return validMillis(float64(t.UnixMilli()))
	default:
		return 0, false
	}
}

func validMillis(ms float64) (float64, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxDateMillis {
		return 0, false
	}
	return ms, true
}

// parseNumber accepts finite decimal literals only; "NaN", "Inf" and hex
// forms are rejected.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// numericValue is the comparison fallback for values that are not dates.
// Anything non-numeric counts as 0.
func numericValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if n, ok := parseNumber(strings.TrimSpace(v)); ok {
			return n
		}
	}
	return 0
}
