package sqlgen

import (
	"fmt"
	"strings"
)

// Expression is a pre-rendered SQL fragment.
type Expression interface {
	SQL() string
}

// Raw wraps SQL text that is emitted verbatim, bypassing escaping.
type Raw struct {
	value string
}

// NewRaw creates a raw SQL expression
func NewRaw(sql string) Raw {
	return Raw{value: sql}
}

// SQL returns the raw SQL text
func (r Raw) SQL() string {
	return r.value
}

// String implements fmt.Stringer
func (r Raw) String() string {
	return r.value
}

// Column returns a backtick-quoted column reference.
func Column(name string) Raw {
	return Raw{value: QuoteIdentifier(name)}
}

// Table returns a backtick-quoted table reference.
func Table(name string) Raw {
	return Raw{value: QuoteIdentifier(name)}
}

// Now returns the now() function call.
func Now() Raw {
	return Raw{value: "now()"}
}

// Today returns the today() function call.
func Today() Raw {
	return Raw{value: "today()"}
}

// Fn renders a function call. Raw params are inlined, strings are quoted,
// nil becomes NULL and everything else is printed as-is.
func Fn(name string, params ...any) Raw {
	formatted := make([]string, len(params))
	for i, param := range params {
		switch p := param.(type) {
		case Expression:
			formatted[i] = p.SQL()
		case string:
			formatted[i] = EscapeString(p)
		case nil:
			formatted[i] = "NULL"
		default:
			formatted[i] = fmt.Sprint(p)
		}
	}
	return Raw{value: name + "(" + strings.Join(formatted, ", ") + ")"}
}

// Ident is a column or table name rendered without quoting.
type Ident string

// SQL returns the identifier unchanged
func (i Ident) SQL() string {
	return string(i)
}

// AsExpression converts a column reference given as a string or Expression.
func AsExpression(v any) (Expression, bool) {
	switch e := v.(type) {
	case string:
		return Ident(e), true
	case Expression:
		return e, true
	default:
		return nil, false
	}
}

// render joins expressions with ", ".
func render(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, ", ")
}
