// Package builder provides subquery building functionality
package builder

import (
	"github.com/satishbabariya/chorm/query/sqlgen"
)

// existsExpr renders EXISTS (subquery) lazily so later changes to the
// subquery are reflected.
type existsExpr struct {
	sub *QueryBuilder
}

func (e existsExpr) SQL() string {
	return "EXISTS (" + e.sub.SQL() + ")"
}

// WhereInQuery adds column IN (subquery).
func (q *QueryBuilder) WhereInQuery(column any, sub *QueryBuilder) *QueryBuilder {
	if !q.subquery("WhereInQuery", sub) {
		return q
	}
	return q.addWhere("WhereInQuery", column, "IN", sub, sqlgen.And, false)
}

// WhereNotInQuery adds NOT column IN (subquery).
func (q *QueryBuilder) WhereNotInQuery(column any, sub *QueryBuilder) *QueryBuilder {
	if !q.subquery("WhereNotInQuery", sub) {
		return q
	}
	return q.addWhere("WhereNotInQuery", column, "IN", sub, sqlgen.And, true)
}

// WhereExists adds EXISTS (subquery).
func (q *QueryBuilder) WhereExists(sub *QueryBuilder) *QueryBuilder {
	if !q.subquery("WhereExists", sub) {
		return q
	}
	return q.addWhere("WhereExists", existsExpr{sub: sub}, "", nil, sqlgen.And, false)
}

// WhereNotExists adds NOT EXISTS (subquery).
func (q *QueryBuilder) WhereNotExists(sub *QueryBuilder) *QueryBuilder {
	if !q.subquery("WhereNotExists", sub) {
		return q
	}
	return q.addWhere("WhereNotExists", existsExpr{sub: sub}, "", nil, sqlgen.And, true)
}

// FromQuery selects from (subquery) AS alias.
func (q *QueryBuilder) FromQuery(sub *QueryBuilder, alias string) *QueryBuilder {
	if !q.subquery("FromQuery", sub) {
		return q
	}
	table := "(" + sub.SQL() + ")"
	if alias != "" {
		table += " AS " + alias
	}
	q.stmt.Table = table
	return q
}
