package builder

import (
	"sort"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// addWhere validates a condition at the call site and appends it.
func (q *QueryBuilder) addWhere(method string, column any, op string, value any, boolean sqlgen.Boolean, negated bool) *QueryBuilder {
	expr, ok := q.column(method, column)
	if !ok {
		return q
	}
	cond := sqlgen.Condition{
		Column:   expr,
		Operator: op,
		Value:    value,
		Boolean:  boolean,
		Negated:  negated,
	}
	if err := cond.Validate(); err != nil {
		if ve, ok := err.(*sqlgen.ValidationError); ok {
			ve.Method = method
		}
		return q.fail(err)
	}
	if q.stmt.Where == nil {
		q.stmt.Where = sqlgen.NewWhereClause()
	}
	q.stmt.Where.AddCondition(cond)
	return q
}

// Where adds column = value joined with AND.
func (q *QueryBuilder) Where(column any, value any) *QueryBuilder {
	return q.addWhere("Where", column, "=", value, sqlgen.And, false)
}

// WhereOp adds column op value joined with AND.
func (q *QueryBuilder) WhereOp(column any, op string, value any) *QueryBuilder {
	return q.addWhere("Where", column, op, value, sqlgen.And, false)
}

// WhereMap adds one equality per entry, all joined with AND. Keys are applied
// in sorted order so the rendered SQL is deterministic.
func (q *QueryBuilder) WhereMap(values map[string]any) *QueryBuilder {
	for _, k := range sortedKeys(values) {
		q.addWhere("Where", k, "=", values[k], sqlgen.And, false)
	}
	return q
}

// OrWhere adds column = value joined with OR.
func (q *QueryBuilder) OrWhere(column any, value any) *QueryBuilder {
	return q.addWhere("OrWhere", column, "=", value, sqlgen.Or, false)
}

// OrWhereOp adds column op value joined with OR.
func (q *QueryBuilder) OrWhereOp(column any, op string, value any) *QueryBuilder {
	return q.addWhere("OrWhere", column, op, value, sqlgen.Or, false)
}

// OrWhereMap joins the first entry with OR and the remaining ones with AND.
func (q *QueryBuilder) OrWhereMap(values map[string]any) *QueryBuilder {
	for i, k := range sortedKeys(values) {
		boolean := sqlgen.And
		if i == 0 {
			boolean = sqlgen.Or
		}
		q.addWhere("OrWhere", k, "=", values[k], boolean, false)
	}
	return q
}

// WhereNot adds NOT column = value.
func (q *QueryBuilder) WhereNot(column any, value any) *QueryBuilder {
	return q.addWhere("WhereNot", column, "=", value, sqlgen.And, true)
}

// WhereNotOp adds NOT column op value.
func (q *QueryBuilder) WhereNotOp(column any, op string, value any) *QueryBuilder {
	return q.addWhere("WhereNot", column, op, value, sqlgen.And, true)
}

// WhereIn adds column IN (values...). values must be a non-empty slice.
func (q *QueryBuilder) WhereIn(column any, values any) *QueryBuilder {
	return q.addWhere("WhereIn", column, "IN", values, sqlgen.And, false)
}

// OrWhereIn adds column IN (values...) joined with OR.
func (q *QueryBuilder) OrWhereIn(column any, values any) *QueryBuilder {
	return q.addWhere("OrWhereIn", column, "IN", values, sqlgen.Or, false)
}

// WhereNotIn adds NOT column IN (values...).
func (q *QueryBuilder) WhereNotIn(column any, values any) *QueryBuilder {
	return q.addWhere("WhereNotIn", column, "IN", values, sqlgen.And, true)
}

// WhereBetween adds column BETWEEN a AND b. values must hold exactly two
// elements.
func (q *QueryBuilder) WhereBetween(column any, values any) *QueryBuilder {
	return q.addWhere("WhereBetween", column, "BETWEEN", values, sqlgen.And, false)
}

// OrWhereBetween adds column BETWEEN a AND b joined with OR.
func (q *QueryBuilder) OrWhereBetween(column any, values any) *QueryBuilder {
	return q.addWhere("OrWhereBetween", column, "BETWEEN", values, sqlgen.Or, false)
}

// WhereNotBetween adds NOT column BETWEEN a AND b.
func (q *QueryBuilder) WhereNotBetween(column any, values any) *QueryBuilder {
	return q.addWhere("WhereNotBetween", column, "BETWEEN", values, sqlgen.And, true)
}

// WhereNull adds column IS NULL.
func (q *QueryBuilder) WhereNull(column any) *QueryBuilder {
	return q.addWhere("WhereNull", column, "IS", nil, sqlgen.And, false)
}

// OrWhereNull adds column IS NULL joined with OR.
func (q *QueryBuilder) OrWhereNull(column any) *QueryBuilder {
	return q.addWhere("OrWhereNull", column, "IS", nil, sqlgen.Or, false)
}

// WhereNotNull adds column IS NOT NULL.
func (q *QueryBuilder) WhereNotNull(column any) *QueryBuilder {
	return q.addWhere("WhereNotNull", column, "IS", nil, sqlgen.And, true)
}

// OrWhereNotNull adds column IS NOT NULL joined with OR.
func (q *QueryBuilder) OrWhereNotNull(column any) *QueryBuilder {
	return q.addWhere("OrWhereNotNull", column, "IS", nil, sqlgen.Or, true)
}

// WhereRaw adds a verbatim predicate. Each ? is replaced by the next binding
// formatted as a literal.
func (q *QueryBuilder) WhereRaw(sql string, bindings ...any) *QueryBuilder {
	return q.addWhere("WhereRaw", sqlgen.NewRaw(sqlgen.Bind(sql, bindings...)), "", nil, sqlgen.And, false)
}

// OrWhereRaw adds a verbatim predicate joined with OR.
func (q *QueryBuilder) OrWhereRaw(sql string, bindings ...any) *QueryBuilder {
	return q.addWhere("OrWhereRaw", sqlgen.NewRaw(sqlgen.Bind(sql, bindings...)), "", nil, sqlgen.Or, false)
}

// Wheres returns a copy of the WHERE conditions.
func (q *QueryBuilder) Wheres() []sqlgen.Condition {
	if q.stmt.Where.IsEmpty() {
		return nil
	}
	out := make([]sqlgen.Condition, len(q.stmt.Where.Conditions))
	copy(out, q.stmt.Where.Conditions)
	return out
}

// addHaving appends a HAVING condition.
func (q *QueryBuilder) addHaving(method string, column any, op string, value any, boolean sqlgen.Boolean) *QueryBuilder {
	expr, ok := q.column(method, column)
	if !ok {
		return q
	}
	cond := sqlgen.Condition{Column: expr, Operator: op, Value: value, Boolean: boolean}
	if err := cond.Validate(); err != nil {
		return q.fail(err)
	}
	if q.stmt.Having == nil {
		q.stmt.Having = sqlgen.NewWhereClause()
	}
	q.stmt.Having.AddCondition(cond)
	return q
}

// Having adds column = value to HAVING.
func (q *QueryBuilder) Having(column any, value any) *QueryBuilder {
	return q.addHaving("Having", column, "=", value, sqlgen.And)
}

// HavingOp adds column op value to HAVING.
func (q *QueryBuilder) HavingOp(column any, op string, value any) *QueryBuilder {
	return q.addHaving("Having", column, op, value, sqlgen.And)
}

// OrHaving adds column op value to HAVING joined with OR.
func (q *QueryBuilder) OrHaving(column any, op string, value any) *QueryBuilder {
	return q.addHaving("OrHaving", column, op, value, sqlgen.Or)
}

// HavingRaw adds a verbatim HAVING predicate.
func (q *QueryBuilder) HavingRaw(sql string, bindings ...any) *QueryBuilder {
	return q.addHaving("HavingRaw", sqlgen.NewRaw(sqlgen.Bind(sql, bindings...)), "", nil, sqlgen.And)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
