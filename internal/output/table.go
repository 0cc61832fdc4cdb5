package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/georgeshao/results-proxy/pkg/types"
)

// Columns returns the union of field names across recs, in first-seen order.
func Columns(recs []types.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range recs {
		for _, key := range rec.Keys() {
			if !seen[key] {
				seen[key] = true
				cols = append(cols, key)
			}
		}
	}
	return cols
}

// WriteTable renders recs as a table, one row per record, with a leading
// rank column. Missing fields render as empty cells.
func WriteTable(w io.Writer, recs []types.Record) error {
	cols := Columns(recs)

	table := tablewriter.NewWriter(w)
	table.Header(append([]string{"#"}, cols...))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(recs))
	for i, rec := range recs {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, col := range cols {
			value, ok := rec.Get(col)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, cell(value))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func cell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
