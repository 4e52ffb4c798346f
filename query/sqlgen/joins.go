// Package sqlgen provides JOIN clause generation.
package sqlgen

import (
	"strings"
)

// JoinType is the kind of JOIN.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
	CrossJoin JoinType = "CROSS"
)

// JoinCondition is one ON predicate comparing two column expressions.
type JoinCondition struct {
	First    Expression
	Operator string
	Second   Expression
	Boolean  Boolean
}

// Join represents a JOIN clause
type Join struct {
	Type       JoinType
	Table      string
	Conditions []JoinCondition
}

// Build renders the join as TYPE JOIN table [ON a = b [AND|OR c = d]].
func (j Join) Build() string {
	var sb strings.Builder
	sb.WriteString(string(j.Type))
	sb.WriteString(" JOIN ")
	sb.WriteString(j.Table)

	if len(j.Conditions) == 0 {
		return sb.String()
	}

	sb.WriteString(" ON")
	for i, cond := range j.Conditions {
		if i > 0 {
			b := cond.Boolean
			if b == "" {
				b = And
			}
			sb.WriteString(" ")
			sb.WriteString(string(b))
		}
		sb.WriteString(" ")
		sb.WriteString(cond.First.SQL())
		sb.WriteString(" ")
		sb.WriteString(cond.Operator)
		sb.WriteString(" ")
		sb.WriteString(cond.Second.SQL())
	}
	return sb.String()
}

func buildJoins(joins []Join) string {
	parts := make([]string, len(joins))
	for i, j := range joins {
		parts[i] = j.Build()
	}
	return strings.Join(parts, " ")
}
