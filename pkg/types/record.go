package types

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one row of the upstream collection. Field order is kept as
// received so that detection and re-serialization see the upstream order.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

func NewRecord() Record {
	return Record{fields: orderedmap.New[string, any]()}
}

// RecordOf builds a record from alternating key/value pairs.
func RecordOf(pairs ...any) Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("types.RecordOf: key at %d is %T, not string", i, pairs[i]))
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns field names in upstream order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (r Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(key, value)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		r.fields = orderedmap.New[string, any]()
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	r.fields = fields
	return nil
}
