package sqlgen

import (
	"reflect"
	"strings"
)

// Boolean joins a condition to the conditions before it.
type Boolean string

const (
	And Boolean = "AND"
	Or  Boolean = "OR"
)

// Condition represents a single filter condition
type Condition struct {
	Column   Expression
	Operator string // "=", "!=", ">", "<", ">=", "<=", "IN", "BETWEEN", "IS", "" for raw SQL
	Value    any    // a slice for IN and BETWEEN; an Expression for IN renders as a subquery
	Boolean  Boolean
	Negated  bool
}

// WhereClause represents an ordered list of conditions evaluated left to
// right. There is no grouping: each condition's own Boolean decides how it
// joins the clause accumulated so far, and the first Boolean is ignored.
type WhereClause struct {
	Conditions []Condition
}

// NewWhereClause creates a new WHERE clause
func NewWhereClause() *WhereClause {
	return &WhereClause{
		Conditions: []Condition{},
	}
}

// AddCondition adds a condition to the WHERE clause
func (w *WhereClause) AddCondition(condition Condition) {
	w.Conditions = append(w.Conditions, condition)
}

// IsEmpty returns true if the WHERE clause is empty
func (w *WhereClause) IsEmpty() bool {
	return w == nil || len(w.Conditions) == 0
}

// Build renders the conditions without the WHERE keyword.
func (w *WhereClause) Build() (string, error) {
	if w.IsEmpty() {
		return "", nil
	}

	var sb strings.Builder
	for i, cond := range w.Conditions {
		part, err := cond.build(i == 0)
		if err != nil {
			return "", err
		}
		sb.WriteString(part)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Validate checks operator/value arity.
func (c Condition) Validate() error {
	switch normalizeOperator(c.Operator) {
	case "IN", "NOT IN":
		if _, ok := c.Value.(Expression); ok {
			return nil
		}
		values, ok := toSlice(c.Value)
		if !ok || len(values) == 0 {
			return NewValidationError(c.Operator, "requires a non-empty list of values")
		}
	case "BETWEEN", "NOT BETWEEN":
		values, ok := toSlice(c.Value)
		if !ok || len(values) != 2 {
			return NewValidationError(c.Operator, "requires exactly two values")
		}
	}
	return nil
}

func (c Condition) build(first bool) (string, error) {
	boolean := ""
	if !first {
		b := c.Boolean
		if b == "" {
			b = And
		}
		boolean = " " + string(b)
	}
	not := ""
	if c.Negated {
		not = " NOT"
	}

	if c.Operator == "" {
		return boolean + not + " " + c.Column.SQL(), nil
	}

	column := c.Column.SQL()
	op := normalizeOperator(c.Operator)

	switch op {
	case "IN", "NOT IN":
		if sub, ok := c.Value.(Expression); ok {
			return boolean + not + " " + column + " " + op + " (" + sub.SQL() + ")", nil
		}
		values, ok := toSlice(c.Value)
		if !ok || len(values) == 0 {
			return "", NewValidationError(op, "requires a non-empty list of values")
		}
		formatted := make([]string, len(values))
		for i, v := range values {
			formatted[i] = FormatValue(v)
		}
		return boolean + not + " " + column + " " + op + " (" + strings.Join(formatted, ", ") + ")", nil

	case "BETWEEN", "NOT BETWEEN":
		values, ok := toSlice(c.Value)
		if !ok || len(values) != 2 {
			return "", NewValidationError(op, "requires exactly two values")
		}
		return boolean + not + " " + column + " " + op + " " + FormatValue(values[0]) + " AND " + FormatValue(values[1]), nil

	case "IS":
		return boolean + " " + column + " IS" + not + " NULL", nil

	case "IS NOT":
		if c.Negated {
			return boolean + " " + column + " IS NULL", nil
		}
		return boolean + " " + column + " IS NOT NULL", nil

	default:
		return boolean + not + " " + column + " " + c.Operator + " " + FormatValue(c.Value), nil
	}
}

func normalizeOperator(op string) string {
	return strings.ToUpper(strings.Join(strings.Fields(op), " "))
}

// toSlice flattens a slice or array value into []any.
func toSlice(v any) ([]any, bool) {
	if values, ok := v.([]any); ok {
		return values, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if _, isBytes := v.([]byte); isBytes {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
