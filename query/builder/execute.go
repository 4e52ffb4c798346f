package builder

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/satishbabariya/chorm/query/sqlgen"
	"github.com/satishbabariya/chorm/runtime/connection"
)

func (q *QueryBuilder) run(ctx context.Context, sql string, opts []connection.QueryOption) (*connection.Result, error) {
	if q.exec == nil {
		return nil, ErrNoExecutor
	}
	return q.exec.Query(ctx, sql, opts...)
}

// render renders the builder as stmtType. Read terminals force SELECT.
func (q *QueryBuilder) render(stmtType sqlgen.StatementType) (string, error) {
	q.stmt.Type = stmtType
	return q.ToSQL()
}

// Get runs the query as a SELECT and returns all rows.
func (q *QueryBuilder) Get(ctx context.Context, opts ...connection.QueryOption) ([]connection.Row, error) {
	sql, err := q.render(sqlgen.SelectStatement)
	if err != nil {
		return nil, err
	}
	res, err := q.run(ctx, sql, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// First sets LIMIT 1 and returns the first row, or nil when there is none.
func (q *QueryBuilder) First(ctx context.Context, opts ...connection.QueryOption) (connection.Row, error) {
	rows, err := q.Limit(1).Get(ctx, opts...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Value selects column and returns it from the first row.
func (q *QueryBuilder) Value(ctx context.Context, column string, opts ...connection.QueryOption) (any, error) {
	row, err := q.Select(column).First(ctx, opts...)
	if err != nil || row == nil {
		return nil, err
	}
	return row[column], nil
}

// Pluck selects column and returns it from every row.
func (q *QueryBuilder) Pluck(ctx context.Context, column string, opts ...connection.QueryOption) ([]any, error) {
	rows, err := q.Select(column).Get(ctx, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row[column]
	}
	return out, nil
}

// aggregate swaps the select list for a single aggregate expression, reads
// its alias from the first row and restores the previous columns and limit.
func (q *QueryBuilder) aggregate(ctx context.Context, fn sqlgen.AggregateFunction, column string, opts []connection.QueryOption) (any, error) {
	columns, limit, typ := q.stmt.Columns, q.stmt.Limit, q.stmt.Type
	defer func() {
		q.stmt.Columns, q.stmt.Limit, q.stmt.Type = columns, limit, typ
	}()

	q.stmt.Columns = []sqlgen.Expression{fn.Expression(column)}
	row, err := q.First(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s: %w", fn.Function, err)
	}
	if row == nil {
		return nil, nil
	}
	return row[fn.Alias], nil
}

// Count returns count(*) over the current filters.
func (q *QueryBuilder) Count(ctx context.Context, opts ...connection.QueryOption) (int64, error) {
	v, err := q.aggregate(ctx, sqlgen.CountAggregate, "", opts)
	if err != nil || v == nil {
		return 0, err
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("failed to read count: %w", err)
	}
	return n, nil
}

// Exists reports whether Count is positive.
func (q *QueryBuilder) Exists(ctx context.Context, opts ...connection.QueryOption) (bool, error) {
	n, err := q.Count(ctx, opts...)
	return n > 0, err
}

// DoesntExist reports whether Count is zero.
func (q *QueryBuilder) DoesntExist(ctx context.Context, opts ...connection.QueryOption) (bool, error) {
	exists, err := q.Exists(ctx, opts...)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Min returns min(column). The value is returned as decoded, since columns
// may be dates or strings; nil means no rows.
func (q *QueryBuilder) Min(ctx context.Context, column string, opts ...connection.QueryOption) (any, error) {
	return q.aggregate(ctx, sqlgen.MinAggregate, column, opts)
}

// Max returns max(column).
func (q *QueryBuilder) Max(ctx context.Context, column string, opts ...connection.QueryOption) (any, error) {
	return q.aggregate(ctx, sqlgen.MaxAggregate, column, opts)
}

// Sum returns sum(column) as a float64.
func (q *QueryBuilder) Sum(ctx context.Context, column string, opts ...connection.QueryOption) (float64, error) {
	return q.numericAggregate(ctx, sqlgen.SumAggregate, column, opts)
}

// Avg returns avg(column) as a float64.
func (q *QueryBuilder) Avg(ctx context.Context, column string, opts ...connection.QueryOption) (float64, error) {
	return q.numericAggregate(ctx, sqlgen.AvgAggregate, column, opts)
}

func (q *QueryBuilder) numericAggregate(ctx context.Context, fn sqlgen.AggregateFunction, column string, opts []connection.QueryOption) (float64, error) {
	v, err := q.aggregate(ctx, fn, column, opts)
	if err != nil || v == nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", fn.Alias, err)
	}
	return f, nil
}

// Insert appends rows and runs the INSERT.
func (q *QueryBuilder) Insert(ctx context.Context, rows ...Row) (*connection.Result, error) {
	return q.Values(rows...).Exec(ctx)
}

// Update sets the assignments and runs the ALTER TABLE ... UPDATE mutation.
func (q *QueryBuilder) Update(ctx context.Context, values Row) (*connection.Result, error) {
	return q.SetUpdate(values).Exec(ctx)
}

// Delete runs ALTER TABLE ... DELETE. Without a WHERE clause it fails with a
// MissingWhereClauseError and sends nothing.
func (q *QueryBuilder) Delete(ctx context.Context) (*connection.Result, error) {
	return q.SetDelete().Exec(ctx)
}

// Exec renders the builder in its current mode and runs it.
func (q *QueryBuilder) Exec(ctx context.Context, opts ...connection.QueryOption) (*connection.Result, error) {
	sql, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	return q.run(ctx, sql, opts)
}

// RawQuery runs sql unchanged on the builder's executor.
func (q *QueryBuilder) RawQuery(ctx context.Context, sql string, opts ...connection.QueryOption) ([]connection.Row, error) {
	res, err := q.run(ctx, sql, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
