package chtype

import (
	"strconv"
	"strings"
)

// String renders t in canonical form: no spaces inside parentheses, ", "
// between arguments and single-quoted strings.
func (t *Type) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "(" + strings.Join(args, ", ") + ")"
}

func (a *Arg) String() string {
	switch {
	case a.Enum != nil:
		return a.Enum.Name + " = " + strconv.Itoa(a.Enum.Value)
	case a.Number != nil:
		return *a.Number
	case a.Str != nil:
		return *a.Str
	case a.Field != nil:
		return a.Field.Name + " " + a.Field.Type.String()
	case a.Type != nil:
		return a.Type.String()
	}
	return ""
}

// IsNullable reports whether t is Nullable(...), looking through
// LowCardinality.
func (t *Type) IsNullable() bool {
	switch t.Name {
	case "Nullable":
		return true
	case "LowCardinality":
		if inner := t.Inner(); inner != nil {
			return inner.IsNullable()
		}
	}
	return false
}

// Inner returns the first type argument, or nil.
func (t *Type) Inner() *Type {
	for _, a := range t.Args {
		if a.Type != nil {
			return a.Type
		}
	}
	return nil
}

// TypeArgs returns the type arguments in order. Named tuple elements
// contribute their type.
func (t *Type) TypeArgs() []*Type {
	var out []*Type
	for _, a := range t.Args {
		switch {
		case a.Type != nil:
			out = append(out, a.Type)
		case a.Field != nil:
			out = append(out, a.Field.Type)
		}
	}
	return out
}

// Fields returns the named elements of a Tuple or Nested type.
func (t *Type) Fields() []*Field {
	var out []*Field
	for _, a := range t.Args {
		if a.Field != nil {
			out = append(out, a.Field)
		}
	}
	return out
}

// EnumValues returns the unquoted names and values of an Enum type.
func (t *Type) EnumValues() map[string]int {
	out := map[string]int{}
	for _, a := range t.Args {
		if a.Enum != nil {
			out[unquote(a.Enum.Name)] = a.Enum.Value
		}
	}
	return out
}

// Params returns the literal arguments (numbers and unquoted strings), such
// as the precision and timezone of DateTime64.
func (t *Type) Params() []string {
	var out []string
	for _, a := range t.Args {
		switch {
		case a.Number != nil:
			out = append(out, *a.Number)
		case a.Str != nil:
			out = append(out, unquote(*a.Str))
		}
	}
	return out
}
