package builder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/chorm/query/sqlgen"
	"github.com/satishbabariya/chorm/runtime/connection"
)

// fakeExecutor records every query and answers with canned rows.
type fakeExecutor struct {
	queries []string
	rows    []connection.Row
	err     error
}

func (f *fakeExecutor) Query(ctx context.Context, sql string, opts ...connection.QueryOption) (*connection.Result, error) {
	f.queries = append(f.queries, sql)
	if f.err != nil {
		return nil, f.err
	}
	return &connection.Result{Data: f.rows}, nil
}

func (f *fakeExecutor) last() string {
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

func toSQL(t *testing.T, q *QueryBuilder) string {
	t.Helper()
	sql, err := q.ToSQL()
	require.NoError(t, err)
	return sql
}

func TestSelectDefaults(t *testing.T) {
	assert.Equal(t, "SELECT * FROM users", toSQL(t, New(nil, "users")))
	assert.Equal(t, "SELECT id, name FROM users", toSQL(t, New(nil, "users").Select("id", "name")))
	assert.Equal(t, "SELECT * FROM users", toSQL(t, New(nil, "users").Select()))
}

func TestWhereScenarios(t *testing.T) {
	sql := toSQL(t, New(nil, "t").Where("id", 1).Where("name", "test"))
	assert.Contains(t, sql, "WHERE id = 1 AND name = 'test'")

	sql = toSQL(t, New(nil, "t").Where("id", 1).OrWhere("id", 2))
	assert.Contains(t, sql, "WHERE id = 1 OR id = 2")

	sql = toSQL(t, New(nil, "t").OrWhere("id", 1))
	assert.Equal(t, "SELECT * FROM t WHERE id = 1", sql)
}

func TestWhereVariants(t *testing.T) {
	q := New(nil, "events").
		WhereOp("age", ">=", 18).
		WhereIn("status", []string{"a", "b"}).
		WhereNotIn("id", []int{3}).
		WhereBetween("score", []float64{1.5, 2.5}).
		WhereNotBetween("day", []int{1, 2}).
		WhereNull("deleted_at").
		WhereNotNull("email").
		WhereNot("kind", "bot").
		OrWhereRaw("length(name) > ?", 3)

	assert.Equal(t,
		"SELECT * FROM events WHERE age >= 18 AND status IN ('a', 'b') AND NOT id IN (3) "+
			"AND score BETWEEN 1.5 AND 2.5 AND NOT day BETWEEN 1 AND 2 AND deleted_at IS NULL "+
			"AND email IS NOT NULL AND NOT kind = 'bot' OR length(name) > 3",
		toSQL(t, q))
}

func TestWhereMapIsSorted(t *testing.T) {
	q := New(nil, "t").WhereMap(map[string]any{"b": 2, "a": 1})
	assert.Equal(t, "SELECT * FROM t WHERE a = 1 AND b = 2", toSQL(t, q))

	q = New(nil, "t").Where("x", 0).OrWhereMap(map[string]any{"b": 2, "a": 1})
	assert.Equal(t, "SELECT * FROM t WHERE x = 0 OR a = 1 AND b = 2", toSQL(t, q))
}

func TestConstructionErrorsAreImmediate(t *testing.T) {
	tests := []struct {
		name   string
		build  func(q *QueryBuilder) *QueryBuilder
		method string
	}{
		{"empty in", func(q *QueryBuilder) *QueryBuilder { return q.WhereIn("id", []int{}) }, "WhereIn"},
		{"scalar in", func(q *QueryBuilder) *QueryBuilder { return q.WhereIn("id", 5) }, "WhereIn"},
		{"between arity", func(q *QueryBuilder) *QueryBuilder { return q.WhereBetween("id", []int{1}) }, "WhereBetween"},
		{"sample range", func(q *QueryBuilder) *QueryBuilder { return q.Sample(1.5) }, "Sample"},
		{"bad column", func(q *QueryBuilder) *QueryBuilder { return q.Where(42, 1) }, "Where"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			q := tt.build(New(exec, "t"))

			require.Error(t, q.Err())
			assert.ErrorIs(t, q.Err(), ErrInvalidArgument)
			var ve *ValidationError
			require.True(t, errors.As(q.Err(), &ve))
			assert.Equal(t, tt.method, ve.Method)

			_, err := q.Where("ok", 1).ToSQL()
			assert.Equal(t, q.Err(), err, "first error is kept")

			_, err = q.Get(context.Background())
			assert.Error(t, err)
			assert.Empty(t, exec.queries)
		})
	}
}

func TestSelectClauseOrder(t *testing.T) {
	recent := New(nil, "events").Select("user_id").WhereOp("ts", ">", 0)

	q := New(nil, "events").
		With("recent", recent).
		Select("user_id", sqlgen.NewRaw("count() AS cnt")).
		Final().
		Sample(0.5).
		LeftJoin("users", "users.id", "=", "events.user_id").
		Where("status", "active").
		GroupBy("user_id").
		HavingOp("cnt", ">", 5).
		OrderByDesc("cnt").
		OrderBy("user_id", "asc").
		Limit(10).
		Offset(20)

	want := "WITH recent AS (SELECT user_id FROM events WHERE ts > 0) " +
		"SELECT user_id, count() AS cnt FROM events FINAL SAMPLE 0.5 " +
		"LEFT JOIN users ON users.id = events.user_id " +
		"WHERE status = 'active' GROUP BY user_id HAVING cnt > 5 " +
		"ORDER BY cnt DESC, user_id ASC LIMIT 10 OFFSET 20"
	assert.Equal(t, want, toSQL(t, q))
	assert.Equal(t, want, toSQL(t, q), "rendering is idempotent")
}

func TestJoinOn(t *testing.T) {
	q := New(nil, "a").
		JoinOn(sqlgen.InnerJoin, "b", func(j *JoinClause) {
			j.On("a.id", "=", "b.a_id").OrOn("a.alt", "=", "b.a_id")
		}).
		CrossJoin("c")

	assert.Equal(t, "SELECT * FROM a INNER JOIN b ON a.id = b.a_id OR a.alt = b.a_id CROSS JOIN c", toSQL(t, q))
}

func TestSubqueries(t *testing.T) {
	active := New(nil, "sessions").Select("user_id").Where("active", true)

	q := New(nil, "users").WhereInQuery("id", active).WhereNotExists(New(nil, "bans").WhereRaw("bans.user_id = users.id"))
	assert.Equal(t,
		"SELECT * FROM users WHERE id IN (SELECT user_id FROM sessions WHERE active = 1) "+
			"AND NOT EXISTS (SELECT * FROM bans WHERE bans.user_id = users.id)",
		toSQL(t, q))

	q = New(nil, "").FromQuery(active, "s").Select("count()")
	assert.Equal(t, "SELECT count() FROM (SELECT user_id FROM sessions WHERE active = 1) AS s", toSQL(t, q))

	bad := New(nil, "x").WhereIn("id", []int{})
	q = New(nil, "users").WhereInQuery("id", bad)
	assert.ErrorIs(t, q.Err(), ErrInvalidArgument)
}

func TestWindowFunctions(t *testing.T) {
	w := Over().PartitionBy("user_id").OrderBy("ts", "desc").Rows(UnboundedPreceding(), CurrentRow())
	q := New(nil, "events").Select("user_id", RowNumber(w, "rn"), LagInFrame("ts", 1, Over().OrderBy("ts", ""), "prev"))

	assert.Equal(t,
		"SELECT user_id, row_number() OVER (PARTITION BY user_id ORDER BY ts DESC ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) AS rn, "+
			"lagInFrame(ts, 1) OVER (ORDER BY ts ASC) AS prev FROM events",
		toSQL(t, q))
	assert.Equal(t, "count(*) OVER (PARTITION BY a) AS c", CountOver("", Over().PartitionBy("a"), "c").SQL())
	assert.Equal(t, "RANGE BETWEEN 2 PRECEDING AND 3 FOLLOWING", Over().Range(Preceding(2), Following(3)).SQL())
}

func TestInsertScenario(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := New(exec, "t").Insert(context.Background(), NewRow("id", 1, "name", "Test", "email", "test@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (id, name, email) VALUES (1, 'Test', 'test@example.com')", exec.last())

	_, err = New(exec, "t").Insert(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
	assert.Len(t, exec.queries, 1)
}

func TestInsertTwiceSendsEachBatchOnce(t *testing.T) {
	exec := &fakeExecutor{}
	b := New(exec, "t")
	ctx := context.Background()

	_, err := b.Insert(ctx, NewRow("id", 1))
	require.NoError(t, err)
	_, err = b.Insert(ctx, NewRow("id", 2), NewRow("id", 3))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"INSERT INTO t (id) VALUES (1)",
		"INSERT INTO t (id) VALUES (2), (3)",
	}, exec.queries)

	sql, err := b.Values(NewRow("id", 4)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (id) VALUES (4)", sql)
}

func TestUpdateScenario(t *testing.T) {
	exec := &fakeExecutor{}
	_, err := New(exec, "t").WhereOp("id", "=", 1).Update(context.Background(), NewRow("name", "Updated"))
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE t UPDATE name = 'Updated' WHERE id = 1", exec.last())

	_, err = New(exec, "t").Update(context.Background(), Row{})
	assert.ErrorIs(t, err, ErrNoUpdateValues)
}

func TestDeleteRequiresWhere(t *testing.T) {
	exec := &fakeExecutor{}

	_, err := New(exec, "t").Delete(context.Background())
	var missing *MissingWhereClauseError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "t", missing.Table)
	assert.Empty(t, exec.queries, "nothing is sent without a where clause")

	_, err = New(exec, "t").Where("id", 7).Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE t DELETE WHERE id = 7", exec.last())
}

func TestReadTerminals(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{rows: []connection.Row{{"name": "a"}, {"name": "b"}}}

	rows, err := New(exec, "users").Where("active", true).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "SELECT * FROM users WHERE active = 1", exec.last())

	row, err := New(exec, "users").First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", row["name"])
	assert.Equal(t, "SELECT * FROM users LIMIT 1", exec.last())

	v, err := New(exec, "users").Value(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, "SELECT name FROM users LIMIT 1", exec.last())

	names, err := New(exec, "users").Pluck(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, names)

	raw, err := New(exec, "users").RawQuery(ctx, "SELECT 42")
	require.NoError(t, err)
	assert.Len(t, raw, 2)
	assert.Equal(t, "SELECT 42", exec.last())

	exec.rows = nil
	row, err = New(exec, "users").First(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestAggregatesRestoreColumns(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{rows: []connection.Row{{"count": "12"}}}

	q := New(exec, "orders").Select("id", "total").Where("status", "paid")
	n, err := q.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, "SELECT count(*) as count FROM orders WHERE status = 'paid' LIMIT 1", exec.last())

	assert.Equal(t, "SELECT id, total FROM orders WHERE status = 'paid'", toSQL(t, q))

	exec.rows = []connection.Row{{"sum_value": json.Number("10.5")}}
	sum, err := q.Sum(ctx, "total")
	require.NoError(t, err)
	assert.InDelta(t, 10.5, sum, 1e-9)
	assert.Equal(t, "SELECT sum(total) as sum_value FROM orders WHERE status = 'paid' LIMIT 1", exec.last())

	exec.rows = []connection.Row{{"avg_value": 2.5}}
	avg, err := q.Avg(ctx, "total")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, avg, 1e-9)

	exec.rows = []connection.Row{{"max_value": "2024-01-02 00:00:00"}}
	maxV, err := q.Max(ctx, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 00:00:00", maxV)

	exec.rows = []connection.Row{{"min_value": json.Number("1")}}
	minV, err := q.Min(ctx, "total")
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), minV)

	assert.Equal(t, "SELECT id, total FROM orders WHERE status = 'paid'", toSQL(t, q))
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	exec := &fakeExecutor{rows: []connection.Row{{"count": json.Number("0")}}}

	ok, err := New(exec, "t").Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	none, err := New(exec, "t").DoesntExist(ctx)
	require.NoError(t, err)
	assert.True(t, none)

	exec.rows = []connection.Row{{"count": json.Number("3")}}
	ok, err = New(exec, "t").Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecutorErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	exec := &fakeExecutor{err: boom}

	_, err := New(exec, "t").Count(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = New(nil, "t").Get(context.Background())
	assert.ErrorIs(t, err, ErrNoExecutor)
}

func TestBuilderKeepsStateAfterExecution(t *testing.T) {
	exec := &fakeExecutor{}
	q := New(exec, "t").Where("a", 1)
	_, err := q.Get(context.Background())
	require.NoError(t, err)

	q.Where("b", 2)
	sql := toSQL(t, q)
	assert.True(t, strings.HasSuffix(sql, "WHERE a = 1 AND b = 2"))
}
