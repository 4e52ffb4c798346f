package sqlgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cond(column string, op string, value any, b Boolean) Condition {
	return Condition{Column: Ident(column), Operator: op, Value: value, Boolean: b}
}

func TestWhereClauseBuild(t *testing.T) {
	tests := []struct {
		name  string
		conds []Condition
		want  string
	}{
		{
			name:  "single",
			conds: []Condition{cond("id", "=", 1, And)},
			want:  "id = 1",
		},
		{
			name:  "first boolean is ignored",
			conds: []Condition{cond("id", "=", 1, Or), cond("name", "=", "test", And)},
			want:  "id = 1 AND name = 'test'",
		},
		{
			name:  "or",
			conds: []Condition{cond("id", "=", 1, And), cond("id", "=", 2, Or)},
			want:  "id = 1 OR id = 2",
		},
		{
			name:  "in",
			conds: []Condition{cond("id", "IN", []int{1, 2, 3}, And)},
			want:  "id IN (1, 2, 3)",
		},
		{
			name:  "not in via negation",
			conds: []Condition{{Column: Ident("id"), Operator: "IN", Value: []string{"a"}, Boolean: And, Negated: true}},
			want:  "NOT id IN ('a')",
		},
		{
			name:  "not in operator",
			conds: []Condition{cond("id", "not in", []int{4}, And)},
			want:  "id NOT IN (4)",
		},
		{
			name:  "between",
			conds: []Condition{cond("age", "BETWEEN", []int{18, 30}, And)},
			want:  "age BETWEEN 18 AND 30",
		},
		{
			name: "negated between after another condition",
			conds: []Condition{
				cond("a", "=", 1, And),
				{Column: Ident("age"), Operator: "BETWEEN", Value: [2]int{1, 2}, Boolean: Or, Negated: true},
			},
			want: "a = 1 OR NOT age BETWEEN 1 AND 2",
		},
		{
			name:  "is null",
			conds: []Condition{cond("deleted_at", "IS", nil, And)},
			want:  "deleted_at IS NULL",
		},
		{
			name:  "is not null",
			conds: []Condition{{Column: Ident("deleted_at"), Operator: "IS", Boolean: And, Negated: true}},
			want:  "deleted_at IS NOT NULL",
		},
		{
			name: "raw",
			conds: []Condition{
				cond("a", "=", 1, And),
				{Column: NewRaw("length(name) > 3"), Boolean: Or},
			},
			want: "a = 1 OR length(name) > 3",
		},
		{
			name:  "negated comparison",
			conds: []Condition{{Column: Ident("status"), Operator: "=", Value: "x", Boolean: And, Negated: true}},
			want:  "NOT status = 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWhereClause()
			for _, c := range tt.conds {
				w.AddCondition(c)
			}
			got, err := w.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhereClauseBooleanCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		w := NewWhereClause()
		for i := 0; i < n; i++ {
			b := And
			if i%2 == 1 {
				b = Or
			}
			w.AddCondition(cond("c", "=", i, b))
		}
		got, err := w.Build()
		require.NoError(t, err)

		keywords := strings.Count(got, " AND ") + strings.Count(got, " OR ")
		assert.Equal(t, n-1, keywords)
		assert.False(t, strings.HasPrefix(got, "AND") || strings.HasPrefix(got, "OR"))
	}
}

func TestConditionValidate(t *testing.T) {
	assert.NoError(t, cond("a", "IN", []int{1}, And).Validate())
	assert.ErrorIs(t, cond("a", "IN", []int{}, And).Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, cond("a", "IN", 5, And).Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, cond("a", "BETWEEN", []int{1}, And).Validate(), ErrInvalidArgument)
	assert.ErrorIs(t, cond("a", "BETWEEN", []int{1, 2, 3}, And).Validate(), ErrInvalidArgument)
	assert.NoError(t, cond("a", "=", nil, And).Validate())
}

func TestJoinBuild(t *testing.T) {
	j := Join{
		Type:  LeftJoin,
		Table: "orders",
		Conditions: []JoinCondition{
			{First: Ident("users.id"), Operator: "=", Second: Ident("orders.user_id")},
			{First: Ident("users.tenant"), Operator: "=", Second: Ident("orders.tenant"), Boolean: And},
			{First: Ident("orders.flag"), Operator: "=", Second: NewRaw("1"), Boolean: Or},
		},
	}
	assert.Equal(t, "LEFT JOIN orders ON users.id = orders.user_id AND users.tenant = orders.tenant OR orders.flag = 1", j.Build())
	assert.Equal(t, "CROSS JOIN regions", Join{Type: CrossJoin, Table: "regions"}.Build())
}

func TestGenerateSelect(t *testing.T) {
	g := NewGenerator()
	limit, offset := 10, 20
	sample := 0.1

	where := NewWhereClause()
	where.AddCondition(cond("status", "=", "active", And))
	having := NewWhereClause()
	having.AddCondition(cond("cnt", ">", 5, And))

	s := &Statement{
		Table:   "events",
		Columns: []Expression{Ident("user_id"), NewRaw("count() AS cnt")},
		CTEs:    []CTE{{Name: "recent", Query: NewRaw("SELECT 1")}},
		Final:   true,
		Sample:  &sample,
		Joins:   []Join{{Type: InnerJoin, Table: "users", Conditions: []JoinCondition{{First: Ident("users.id"), Operator: "=", Second: Ident("events.user_id")}}}},
		Where:   where,
		Groups:  []Expression{Ident("user_id")},
		Having:  having,
		Orders:  []OrderBy{{Column: Ident("cnt"), Direction: "desc"}},
		Limit:   &limit,
		Offset:  &offset,
	}

	sql, err := g.Generate(s)
	require.NoError(t, err)
	assert.Equal(t,
		"WITH recent AS (SELECT 1) SELECT user_id, count() AS cnt FROM events FINAL SAMPLE 0.1 "+
			"INNER JOIN users ON users.id = events.user_id WHERE status = 'active' GROUP BY user_id "+
			"HAVING cnt > 5 ORDER BY cnt DESC LIMIT 10 OFFSET 20",
		sql)

	again, err := g.Generate(s)
	require.NoError(t, err)
	assert.Equal(t, sql, again)
}

func TestGenerateSelectDefaults(t *testing.T) {
	g := NewGenerator()
	offset := 5

	sql, err := g.GenerateSelect(&Statement{Table: "t", Offset: &offset})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t", sql)

	_, err = g.GenerateSelect(&Statement{})
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestGenerateInsert(t *testing.T) {
	g := NewGenerator()

	sql, err := g.GenerateInsert(&Statement{
		Table: "t",
		Rows:  []Row{NewRow("id", 1, "name", "Test", "email", "test@example.com")},
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (id, name, email) VALUES (1, 'Test', 'test@example.com')", sql)

	sql, err = g.GenerateInsert(&Statement{
		Table: "t",
		Rows:  []Row{NewRow("id", 1, "name", "a"), NewRow("id", 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (id, name) VALUES (1, 'a'), (2, NULL)", sql)

	_, err = g.GenerateInsert(&Statement{
		Table: "t",
		Rows:  []Row{NewRow("id", 1), NewRow("id", 2, "extra", true)},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = g.GenerateInsert(&Statement{Table: "t"})
	assert.True(t, IsNoData(err))
	var noData *NoDataError
	require.True(t, errors.As(err, &noData))
	assert.Equal(t, "t", noData.Table)
}

func TestGenerateUpdate(t *testing.T) {
	g := NewGenerator()
	where := NewWhereClause()
	where.AddCondition(cond("id", "=", 1, And))

	sql, err := g.GenerateUpdate(&Statement{Table: "t", Updates: NewRow("name", "Updated"), Where: where})
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE t UPDATE name = 'Updated' WHERE id = 1", sql)

	_, err = g.GenerateUpdate(&Statement{Table: "t"})
	assert.ErrorIs(t, err, ErrNoUpdateValues)
}

func TestGenerateDelete(t *testing.T) {
	g := NewGenerator()

	_, err := g.GenerateDelete(&Statement{Table: "t"})
	assert.True(t, IsMissingWhere(err))

	where := NewWhereClause()
	where.AddCondition(cond("id", "=", 1, And))
	sql, err := g.GenerateDelete(&Statement{Table: "t", Where: where})
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE t DELETE WHERE id = 1", sql)
}

func TestRow(t *testing.T) {
	r := NewRow("b", 1, "a", 2)
	r2 := r.Set("b", 3).Set("c", 4)

	assert.Equal(t, []string{"b", "a"}, r.Columns())
	assert.Equal(t, []string{"b", "a", "c"}, r2.Columns())
	v, _ := r.Get("b")
	assert.Equal(t, 1, v)
	v, _ = r2.Get("b")
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{"a", "b"}, RowOf(map[string]any{"b": 1, "a": 2}).Columns())
	assert.Equal(t, map[string]any{"b": 1, "a": 2}, r.Map())
}

func TestAggregateExpression(t *testing.T) {
	assert.Equal(t, "count(*) as count", CountAggregate.Expression("").SQL())
	assert.Equal(t, "max(price) as max_value", MaxAggregate.Expression("price").SQL())
	assert.Equal(t, "avg(x) as avg_value", AvgAggregate.Expression("x").SQL())
}
