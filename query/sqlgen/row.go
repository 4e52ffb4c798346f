package sqlgen

import "sort"

// Row is an ordered set of column assignments. Column order is the order in
// which columns were first set, which is the order INSERT and UPDATE render.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a row from alternating column, value arguments. A trailing
// column without a value is assigned nil.
func NewRow(pairs ...any) Row {
	r := Row{}
	for i := 0; i < len(pairs); i += 2 {
		column, _ := pairs[i].(string)
		var value any
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		r = r.Set(column, value)
	}
	return r
}

// RowOf builds a row from a map. Go maps are unordered, so columns are
// sorted by name.
func RowOf(m map[string]any) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := Row{columns: keys, values: make(map[string]any, len(m))}
	for _, k := range keys {
		r.values[k] = m[k]
	}
	return r
}

// Set returns a copy of the row with value assigned to column. New columns
// are appended; existing ones keep their position.
func (r Row) Set(column string, value any) Row {
	values := make(map[string]any, len(r.values)+1)
	for k, v := range r.values {
		values[k] = v
	}
	columns := r.columns
	if _, ok := values[column]; !ok {
		columns = append(columns[:len(columns):len(columns)], column)
	}
	values[column] = value
	return Row{columns: columns, values: values}
}

// Get returns the value assigned to column.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the columns in assignment order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.columns)
}

// Map returns the assignments as a plain map.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
