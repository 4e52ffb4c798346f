// Package chtype parses ClickHouse type expressions such as
// "Array(Nullable(DateTime64(3, 'UTC')))" and maps them to Go types.
package chtype

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:\\.|''|[^'\\])*'`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Type is one parsed type expression.
type Type struct {
	Pos  lexer.Position
	Name string `@Ident`
	Args []*Arg `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

// Arg is one parameter of a type. Exactly one field is set.
type Arg struct {
	Pos    lexer.Position
	Enum   *EnumValue `  @@`
	Number *string    `| @Number`
	Str    *string    `| @String`
	Field  *Field     `| @@`
	Type   *Type      `| @@`
}

// EnumValue is a 'name' = value pair of Enum8 and Enum16.
type EnumValue struct {
	Name  string `@String "="`
	Value int    `@Number`
}

// Field is a named element of Tuple or Nested.
type Field struct {
	Name string `@Ident`
	Type *Type  `@@`
}

var parser = participle.MustBuild[Type](
	participle.Lexer(typeLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(4),
)

// Parse parses a single type expression.
func Parse(expr string) (*Type, error) {
	return parser.ParseString("", strings.TrimSpace(expr))
}

// MustParse is Parse that panics on error.
func MustParse(expr string) *Type {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// unquote strips the quotes of a string literal and resolves '' and
// backslash escapes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '\\' || (c == '\'' && i+1 < len(s) && s[i+1] == '\'')) && i+1 < len(s) {
			i++
			c = s[i]
		}
		b.WriteByte(c)
	}
	return b.String()
}
