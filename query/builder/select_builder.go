package builder

import (
	"github.com/satishbabariya/chorm/query/sqlgen"
)

// Select replaces the column list and makes the builder a SELECT. Columns
// are strings or sqlgen expressions; no columns selects *.
func (q *QueryBuilder) Select(columns ...any) *QueryBuilder {
	q.stmt.Type = sqlgen.SelectStatement
	q.stmt.Columns = nil
	return q.AddSelect(columns...)
}

// AddSelect appends to the column list.
func (q *QueryBuilder) AddSelect(columns ...any) *QueryBuilder {
	for _, c := range columns {
		expr, ok := q.column("Select", c)
		if !ok {
			return q
		}
		q.stmt.Columns = append(q.stmt.Columns, expr)
	}
	return q
}

// SelectRaw appends a raw select expression after binding ? placeholders.
func (q *QueryBuilder) SelectRaw(sql string, bindings ...any) *QueryBuilder {
	q.stmt.Columns = append(q.stmt.Columns, sqlgen.NewRaw(sqlgen.Bind(sql, bindings...)))
	return q
}

// Columns returns a copy of the selected column expressions.
func (q *QueryBuilder) Columns() []sqlgen.Expression {
	out := make([]sqlgen.Expression, len(q.stmt.Columns))
	copy(out, q.stmt.Columns)
	return out
}
