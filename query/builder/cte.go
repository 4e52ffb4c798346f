// Package builder provides CTE (Common Table Expression) building functionality
package builder

import (
	"github.com/satishbabariya/chorm/query/sqlgen"
)

// With adds a named common table expression. query is a *QueryBuilder or
// any sqlgen expression such as sqlgen.Raw.
func (q *QueryBuilder) With(name string, query sqlgen.Expression) *QueryBuilder {
	if name == "" {
		return q.fail(sqlgen.NewValidationError("With", "name is required"))
	}
	if sub, ok := query.(*QueryBuilder); ok && !q.subquery("With", sub) {
		return q
	}
	if query == nil {
		return q.fail(sqlgen.NewValidationError("With", "query for %s is nil", name))
	}
	q.stmt.CTEs = append(q.stmt.CTEs, sqlgen.CTE{Name: name, Query: query})
	return q
}
