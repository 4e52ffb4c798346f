// Package builder provides mutation state for INSERT, UPDATE and DELETE.
package builder

import (
	"github.com/satishbabariya/chorm/query/sqlgen"
)

// Values replaces the rows to insert and makes the builder an INSERT.
func (q *QueryBuilder) Values(rows ...Row) *QueryBuilder {
	q.stmt.Type = sqlgen.InsertStatement
	q.stmt.Rows = append([]Row(nil), rows...)
	return q
}

// SetUpdate sets the assignments and makes the builder an UPDATE mutation.
func (q *QueryBuilder) SetUpdate(values Row) *QueryBuilder {
	q.stmt.Type = sqlgen.UpdateStatement
	q.stmt.Updates = values
	return q
}

// SetDelete makes the builder a DELETE mutation.
func (q *QueryBuilder) SetDelete() *QueryBuilder {
	q.stmt.Type = sqlgen.DeleteStatement
	return q
}
