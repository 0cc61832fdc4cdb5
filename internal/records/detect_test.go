package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/georgeshao/results-proxy/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDetectDateKey(t *testing.T) {
	tests := []struct {
		name string
		recs []types.Record
		want Key
	}{
		{
			name: "empty collection",
			recs: nil,
			want: Key{},
		},
		{
			name: "preferred name wins over better scoring field",
			recs: []types.Record{
				types.RecordOf("When", "2024-01-01", "Date", "not a date"),
				types.RecordOf("When", "2024-02-01", "Date", "still not"),
			},
			want: Key{Name: "Date", Found: true},
		},
		{
			name: "preferred list order beats record order",
			recs: []types.Record{
				types.RecordOf("date", "x", "Timestamp", "y"),
			},
			want: Key{Name: "Timestamp", Found: true},
		},
		{
			name: "scored field",
			recs: []types.Record{
				types.RecordOf("Name", "Ann", "Finished", "2024-03-01T10:00:00Z"),
				types.RecordOf("Name", "Bob", "Finished", "2024-03-02T10:00:00Z"),
			},
			want: Key{Name: "Finished", Found: true},
		},
		{
			name: "first maximal field wins ties",
			recs: []types.Record{
				types.RecordOf("Start", "2024-01-01", "End", "2024-01-02"),
				types.RecordOf("Start", "2024-02-01", "End", "2024-02-02"),
			},
			want: Key{Name: "Start", Found: true},
		},
		{
			name: "below half threshold",
			recs: []types.Record{
				types.RecordOf("Name", "Ann", "Seen", "2024-01-01"),
				types.RecordOf("Name", "Bob", "Seen", "never"),
				types.RecordOf("Name", "Cid", "Seen", "never"),
			},
			want: Key{},
		},
		{
			name: "exactly half rounded up",
			recs: []types.Record{
				types.RecordOf("Name", "Ann", "Seen", "2024-01-01"),
				types.RecordOf("Name", "Bob", "Seen", "2024-01-02"),
				types.RecordOf("Name", "Cid", "Seen", "never"),
			},
			want: Key{Name: "Seen", Found: true},
		},
		{
			name: "numbers count as epoch milliseconds",
			recs: []types.Record{
				types.RecordOf("Name", "Ann", "n", float64(1700000000000)),
				types.RecordOf("Name", "Bob", "n", "1700000001000"),
			},
			want: Key{Name: "n", Found: true},
		},
		{
			name: "no date-like values",
			recs: []types.Record{
				types.RecordOf("Name", "Ann", "Status", "Done"),
				types.RecordOf("Name", "Bob", "Status", "Pending"),
			},
			want: Key{},
		},
		{
			name: "fields missing on later records do not score",
			recs: []types.Record{
				types.RecordOf("Name", "Ann", "Seen", "2024-01-01"),
				types.RecordOf("Name", "Bob"),
				types.RecordOf("Name", "Cid"),
			},
			want: Key{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDateKey(tt.recs))
		})
	}
}

func TestDetectDateKeySamplesFirstTenRecords(t *testing.T) {
	var recs []types.Record
	for i := 0; i < 10; i++ {
		recs = append(recs, types.RecordOf("Label", "plain", "Seen", "unknown"))
	}
	for i := 0; i < 20; i++ {
		recs = append(recs, types.RecordOf("Label", "plain", "Seen", "2024-05-01"))
	}

	assert.Equal(t, Key{}, DetectDateKey(recs))
}

func TestDetectStatusKey(t *testing.T) {
	assert.Equal(t, Key{}, DetectStatusKey(nil))

	recs := []types.Record{types.RecordOf("status", "a", "Exam Status", "b")}
	assert.Equal(t, Key{Name: "Exam Status", Found: true}, DetectStatusKey(recs))

	recs = []types.Record{types.RecordOf("Name", "x", "Exam_Status", "b")}
	assert.Equal(t, Key{Name: "Exam_Status", Found: true}, DetectStatusKey(recs))

	recs = []types.Record{types.RecordOf("Review status", "open")}
	assert.Equal(t, Key{}, DetectStatusKey(recs))
}

func TestDetectIDKey(t *testing.T) {
	assert.Equal(t, Key{}, DetectIDKey(nil))

	recs := []types.Record{types.RecordOf("Name", "x", "ROW", 3, "id", 1)}
	assert.Equal(t, Key{Name: "ROW", Found: true}, DetectIDKey(recs))

	recs = []types.Record{types.RecordOf("row_id", 3, "identifier", 1)}
	assert.Equal(t, Key{}, DetectIDKey(recs))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "<none>", Key{}.String())
	assert.Equal(t, "Date", Key{Name: "Date", Found: true}.String())
}
