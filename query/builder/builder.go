// Package builder provides a fluent query builder API.
package builder

import (
	"fmt"

	"github.com/satishbabariya/chorm/query/sqlgen"
	"github.com/satishbabariya/chorm/runtime/connection"
)

// Row is an insertion-ordered set of column values for INSERT and UPDATE.
type Row = sqlgen.Row

// NewRow builds a Row from alternating column, value arguments.
func NewRow(pairs ...any) Row {
	return sqlgen.NewRow(pairs...)
}

// RowOf builds a Row from a map with columns sorted by name.
func RowOf(m map[string]any) Row {
	return sqlgen.RowOf(m)
}

// QueryBuilder accumulates one SELECT, INSERT, UPDATE or DELETE. Every
// mutator returns the receiver. State is not reset after rendering or
// execution, so ToSQL is idempotent and a builder can be refined further
// after a terminal call.
//
// A QueryBuilder is not safe for concurrent use.
type QueryBuilder struct {
	exec      connection.Executor
	generator *sqlgen.Generator
	stmt      sqlgen.Statement
	// err is the first construction error; it is returned by ToSQL and every
	// terminal so that nothing is sent once a call was rejected.
	err error
}

// New creates a builder for table. exec may be nil for builders that are
// only rendered, such as subqueries and CTEs.
func New(exec connection.Executor, table string) *QueryBuilder {
	return &QueryBuilder{
		exec:      exec,
		generator: sqlgen.NewGenerator(),
		stmt: sqlgen.Statement{
			Type:  sqlgen.SelectStatement,
			Table: table,
		},
	}
}

// Table sets the target table.
func (q *QueryBuilder) Table(table string) *QueryBuilder {
	q.stmt.Table = table
	return q
}

// From is an alias of Table.
func (q *QueryBuilder) From(table string) *QueryBuilder {
	return q.Table(table)
}

// Final adds the FINAL modifier.
func (q *QueryBuilder) Final() *QueryBuilder {
	q.stmt.Final = true
	return q
}

// Sample adds SAMPLE rate. rate must be within [0, 1].
func (q *QueryBuilder) Sample(rate float64) *QueryBuilder {
	if rate < 0 || rate > 1 {
		return q.fail(sqlgen.NewValidationError("Sample", "rate must be between 0 and 1, got %v", rate))
	}
	q.stmt.Sample = &rate
	return q
}

// GroupBy appends GROUP BY expressions.
func (q *QueryBuilder) GroupBy(columns ...any) *QueryBuilder {
	for _, c := range columns {
		expr, ok := q.column("GroupBy", c)
		if !ok {
			return q
		}
		q.stmt.Groups = append(q.stmt.Groups, expr)
	}
	return q
}

// OrderBy appends an ORDER BY term. Any direction other than DESC
// (case-insensitive) renders ASC.
func (q *QueryBuilder) OrderBy(column any, direction string) *QueryBuilder {
	expr, ok := q.column("OrderBy", column)
	if !ok {
		return q
	}
	q.stmt.Orders = append(q.stmt.Orders, sqlgen.OrderBy{Column: expr, Direction: direction})
	return q
}

// OrderByDesc appends a descending ORDER BY term.
func (q *QueryBuilder) OrderByDesc(column any) *QueryBuilder {
	return q.OrderBy(column, "DESC")
}

// Limit sets LIMIT.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	if n < 0 {
		return q.fail(sqlgen.NewValidationError("Limit", "must not be negative, got %d", n))
	}
	q.stmt.Limit = &n
	return q
}

// Offset sets OFFSET. It only renders together with a LIMIT.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	if n < 0 {
		return q.fail(sqlgen.NewValidationError("Offset", "must not be negative, got %d", n))
	}
	q.stmt.Offset = &n
	return q
}

// Err returns the first construction error, if any.
func (q *QueryBuilder) Err() error {
	return q.err
}

// TableName returns the target table.
func (q *QueryBuilder) TableName() string {
	return q.stmt.Table
}

// Type returns the statement type the builder currently renders.
func (q *QueryBuilder) Type() sqlgen.StatementType {
	return q.stmt.Type
}

// ToSQL renders the statement. It has no side effects.
func (q *QueryBuilder) ToSQL() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	return q.generator.Generate(&q.stmt)
}

// SQL renders the builder as a SELECT for use inside another statement. A
// builder with errors renders empty; the enclosing builder records the error
// when the subquery is attached.
func (q *QueryBuilder) SQL() string {
	if q.err != nil {
		return ""
	}
	sql, err := q.generator.GenerateSelect(&q.stmt)
	if err != nil {
		return ""
	}
	return sql
}

// String implements fmt.Stringer.
func (q *QueryBuilder) String() string {
	sql, err := q.ToSQL()
	if err != nil {
		return fmt.Sprintf("<invalid query: %v>", err)
	}
	return sql
}

// fail records the first construction error.
func (q *QueryBuilder) fail(err error) *QueryBuilder {
	if q.err == nil {
		q.err = err
	}
	return q
}

// column converts a column argument given as a string or Expression.
func (q *QueryBuilder) column(method string, v any) (sqlgen.Expression, bool) {
	expr, ok := sqlgen.AsExpression(v)
	if !ok {
		q.fail(sqlgen.NewValidationError(method, "column must be a string or expression, got %T", v))
		return nil, false
	}
	return expr, true
}

// subquery checks an embedded builder and records its error.
func (q *QueryBuilder) subquery(method string, sub *QueryBuilder) bool {
	if sub == nil {
		q.fail(sqlgen.NewValidationError(method, "subquery is nil"))
		return false
	}
	if sub.err != nil {
		q.fail(fmt.Errorf("%s: invalid subquery: %w", method, sub.err))
		return false
	}
	if _, err := sub.generator.GenerateSelect(&sub.stmt); err != nil {
		q.fail(fmt.Errorf("%s: invalid subquery: %w", method, err))
		return false
	}
	return true
}
