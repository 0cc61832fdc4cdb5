package records

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/georgeshao/results-proxy/pkg/types"
)

// Result carries the transformed records together with the keys that drove
// the transformation.
type Result struct {
	Records   []types.Record
	DateKey   Key
	StatusKey Key
	SortKey   Key
}

// Transform sorts a copy of recs newest first and, when filter is non-blank,
// keeps only records whose status matches it. The input slice is not
// modified.
func Transform(recs []types.Record, filter string) Result {
	dateKey := DetectDateKey(recs)
	statusKey := DetectStatusKey(recs)

	sorted, sortKey := sortRecords(recs, dateKey)

	return Result{
		Records:   Filter(sorted, statusKey, filter),
		DateKey:   dateKey,
		StatusKey: statusKey,
		SortKey:   sortKey,
	}
}

// sortRecords returns a copy of recs ordered most recent first by dateKey.
// Without a date key it falls back to a descending id/row/index field, and
// without that it keeps upstream order. The returned Key is the field used.
func sortRecords(recs []types.Record, dateKey Key) ([]types.Record, Key) {
	out := slices.Clone(recs)
	if out == nil {
		out = []types.Record{}
	}

	var (
		key     Key
		sortVal func(any) float64
	)
	switch {
	case dateKey.Found:
		key = dateKey
		sortVal = func(v any) float64 {
			if ms, ok := parseDateMillis(v); ok {
				return ms
			}
			return numericValue(v)
		}
	default:
		key = DetectIDKey(recs)
		if !key.Found {
			return out, Key{}
		}
		sortVal = numericValue
	}

	type keyed struct {
		rec types.Record
		val float64
	}
	rows := make([]keyed, len(out))
	for i, rec := range out {
		v, _ := rec.Get(key.Name)
		rows[i] = keyed{rec: rec, val: sortVal(v)}
	}

	slices.SortStableFunc(rows, func(a, b keyed) int {
		return cmp.Compare(b.val, a.val)
	})

	for i := range rows {
		out[i] = rows[i].rec
	}
	return out, key
}

// Filter keeps records whose status value contains filter, ignoring case.
// With a detected statusKey only that field is checked; otherwise any field
// whose name contains "status" may match. A blank filter returns recs as is.
func Filter(recs []types.Record, statusKey Key, filter string) []types.Record {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return recs
	}

	kept := make([]types.Record, 0, len(recs))
	for _, rec := range recs {
		if matchesStatus(rec, statusKey, needle) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func matchesStatus(rec types.Record, statusKey Key, needle string) bool {
	if statusKey.Found {
		value, ok := rec.Get(statusKey.Name)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(stringify(value)), needle)
	}

	for _, name := range rec.Keys() {
		if !isStatusField(name) {
			continue
		}
		value, _ := rec.Get(name)
		if strings.Contains(strings.ToLower(stringify(value)), needle) {
			return true
		}
	}
	return false
}

// stringify renders a scalar the way the upstream script runtime prints it.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e21 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
