package connection

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one result row keyed by column name. Numbers decode as json.Number
// because ClickHouse may quote 64-bit integers.
type Row = map[string]any

// Statistics reports server-side execution cost.
type Statistics struct {
	Elapsed   float64 `json:"elapsed"`
	RowsRead  uint64  `json:"rows_read"`
	BytesRead uint64  `json:"bytes_read"`
}

// ColumnMeta describes one result column.
type ColumnMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Result is a decoded query response.
type Result struct {
	Data       []Row        `json:"data"`
	Statistics Statistics   `json:"statistics"`
	Meta       []ColumnMeta `json:"meta"`
	Rows       int          `json:"rows"`
	// Raw holds the body for non-JSON formats.
	Raw []byte `json:"-"`
}

func emptyResult() *Result {
	return &Result{Data: []Row{}, Meta: []ColumnMeta{}}
}

func decodeResult(body []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	res := emptyResult()
	if err := dec.Decode(res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if res.Data == nil {
		res.Data = []Row{}
	}
	if res.Meta == nil {
		res.Meta = []ColumnMeta{}
	}
	return res, nil
}

// First returns the first row, or nil when the result is empty.
func (r *Result) First() Row {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return r.Data[0]
}

// Column collects one column across all rows.
func (r *Result) Column(name string) []any {
	if r == nil {
		return nil
	}
	out := make([]any, 0, len(r.Data))
	for _, row := range r.Data {
		out = append(out, row[name])
	}
	return out
}

// Strings collects one column across all rows as strings.
func (r *Result) Strings(name string) []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Data))
	for _, row := range r.Data {
		out = append(out, fmt.Sprint(row[name]))
	}
	return out
}
