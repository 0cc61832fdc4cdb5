package records

import (
	"strings"

	"github.com/georgeshao/results-proxy/pkg/types"
)

const dateSampleSize = 10

// Preferred field names, checked in order against the first record.
var (
	dateKeyNames = []string{
		"Timestamp", "timestamp",
		"Submitted At", "submitted_at",
		"created_at", "Created",
		"Date", "date",
		"Time", "time",
	}
	statusKeyNames = []string{
		"Exam Status", "ExamStatus",
		"Status", "status",
		"exam_status", "Exam_Status",
	}
	idKeyNames = []string{"id", "row", "index"}
)

// Key is the outcome of a field detection. The zero Key means no suitable
// field was found.
type Key struct {
	Name  string
	Found bool
}

func found(name string) Key {
	return Key{Name: name, Found: true}
}

func (k Key) String() string {
	if !k.Found {
		return "<none>"
	}
	return k.Name
}

// DetectDateKey picks the field most likely to hold a timestamp. A preferred
// name present on the first record wins outright; otherwise each field of the
// first record is scored by how many of the first ten records hold a parseable
// date in it, and the best field must cover at least half of that sample.
func DetectDateKey(recs []types.Record) Key {
	if len(recs) == 0 {
		return Key{}
	}

	first := recs[0]
	if key, ok := firstPresent(first, dateKeyNames); ok {
		return key
	}

	sample := recs[:min(len(recs), dateSampleSize)]
	threshold := (len(sample) + 1) / 2

	var best Key
	bestScore := 0
	for _, name := range first.Keys() {
		score := 0
		for _, rec := range sample {
			value, ok := rec.Get(name)
			if !ok {
				continue
			}
			if _, ok := parseDateMillis(value); ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = found(name), score
		}
	}

	if bestScore == 0 || bestScore < threshold {
		return Key{}
	}
	return best
}

// DetectStatusKey returns the first preferred status field present on the
// first record.
func DetectStatusKey(recs []types.Record) Key {
	if len(recs) == 0 {
		return Key{}
	}
	key, _ := firstPresent(recs[0], statusKeyNames)
	return key
}

// DetectIDKey returns the first field of the first record named id, row or
// index, ignoring case.
func DetectIDKey(recs []types.Record) Key {
	if len(recs) == 0 {
		return Key{}
	}
	for _, name := range recs[0].Keys() {
		for _, candidate := range idKeyNames {
			if strings.EqualFold(name, candidate) {
				return found(name)
			}
		}
	}
	return Key{}
}

func firstPresent(rec types.Record, names []string) (Key, bool) {
	for _, name := range names {
		if _, ok := rec.Get(name); ok {
			return found(name), true
		}
	}
	return Key{}, false
}

// isStatusField reports whether a field name suggests a status column.
func isStatusField(name string) bool {
	return strings.Contains(strings.ToLower(name), "status")
}
