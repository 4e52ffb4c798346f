// Package builder provides JOIN building functionality
package builder

import (
	"github.com/satishbabariya/chorm/query/sqlgen"
)

// JoinClause collects the ON conditions of one join inside a JoinOn callback.
type JoinClause struct {
	q    *QueryBuilder
	join *sqlgen.Join
}

// On adds first op second joined with AND.
func (j *JoinClause) On(first any, op string, second any) *JoinClause {
	return j.on(first, op, second, sqlgen.And)
}

// OrOn adds first op second joined with OR.
func (j *JoinClause) OrOn(first any, op string, second any) *JoinClause {
	return j.on(first, op, second, sqlgen.Or)
}

func (j *JoinClause) on(first any, op string, second any, boolean sqlgen.Boolean) *JoinClause {
	a, ok := j.q.column("Join", first)
	if !ok {
		return j
	}
	b, ok := j.q.column("Join", second)
	if !ok {
		return j
	}
	j.join.Conditions = append(j.join.Conditions, sqlgen.JoinCondition{
		First:    a,
		Operator: op,
		Second:   b,
		Boolean:  boolean,
	})
	return j
}

// Join adds an INNER JOIN table ON first op second.
func (q *QueryBuilder) Join(table string, first any, op string, second any) *QueryBuilder {
	return q.joinWithType(sqlgen.InnerJoin, table, first, op, second)
}

// LeftJoin adds a LEFT JOIN.
func (q *QueryBuilder) LeftJoin(table string, first any, op string, second any) *QueryBuilder {
	return q.joinWithType(sqlgen.LeftJoin, table, first, op, second)
}

// RightJoin adds a RIGHT JOIN.
func (q *QueryBuilder) RightJoin(table string, first any, op string, second any) *QueryBuilder {
	return q.joinWithType(sqlgen.RightJoin, table, first, op, second)
}

// FullJoin adds a FULL JOIN.
func (q *QueryBuilder) FullJoin(table string, first any, op string, second any) *QueryBuilder {
	return q.joinWithType(sqlgen.FullJoin, table, first, op, second)
}

// CrossJoin adds a CROSS JOIN with no conditions.
func (q *QueryBuilder) CrossJoin(table string) *QueryBuilder {
	q.stmt.Joins = append(q.stmt.Joins, sqlgen.Join{Type: sqlgen.CrossJoin, Table: table})
	return q
}

// JoinOn adds a join whose conditions are declared by fn.
func (q *QueryBuilder) JoinOn(joinType sqlgen.JoinType, table string, fn func(*JoinClause)) *QueryBuilder {
	join := sqlgen.Join{Type: joinType, Table: table}
	if fn != nil {
		fn(&JoinClause{q: q, join: &join})
	}
	q.stmt.Joins = append(q.stmt.Joins, join)
	return q
}

func (q *QueryBuilder) joinWithType(joinType sqlgen.JoinType, table string, first any, op string, second any) *QueryBuilder {
	return q.JoinOn(joinType, table, func(j *JoinClause) {
		j.On(first, op, second)
	})
}
