package chtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"UInt64", "UInt64"},
		{" Nullable( String ) ", "Nullable(String)"},
		{"Array(Nullable(UInt8))", "Array(Nullable(UInt8))"},
		{"Map(String,Array(UInt64))", "Map(String, Array(UInt64))"},
		{"DateTime64(3,'Europe/Berlin')", "DateTime64(3, 'Europe/Berlin')"},
		{"Decimal(18, 4)", "Decimal(18, 4)"},
		{"Enum8('a' = 1, 'b' = -2)", "Enum8('a' = 1, 'b' = -2)"},
		{"Tuple(String, UInt8)", "Tuple(String, UInt8)"},
		{"Tuple(name String, age UInt8)", "Tuple(name String, age UInt8)"},
		{"AggregateFunction(quantiles(0.5, 0.9), UInt64)", "AggregateFunction(quantiles(0.5, 0.9), UInt64)"},
		{"LowCardinality(Nullable(String))", "LowCardinality(Nullable(String))"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "Array(", "Map(String,)", "(UInt8)", "Nullable(String))"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
	assert.Panics(t, func() { MustParse("Array(") })
}

func TestAccessors(t *testing.T) {
	dt := MustParse("DateTime64(3, 'UTC')")
	assert.Equal(t, []string{"3", "UTC"}, dt.Params())
	assert.Nil(t, dt.Inner())

	enum := MustParse(`Enum16('it''s' = 1, 'b\'c' = 2)`)
	assert.Equal(t, map[string]int{"it's": 1, "b'c": 2}, enum.EnumValues())

	tuple := MustParse("Tuple(id UInt64, tags Array(String))")
	require.Len(t, tuple.Fields(), 2)
	assert.Equal(t, "tags", tuple.Fields()[1].Name)
	assert.Equal(t, "Array(String)", tuple.TypeArgs()[1].String())

	assert.True(t, MustParse("Nullable(Int8)").IsNullable())
	assert.True(t, MustParse("LowCardinality(Nullable(String))").IsNullable())
	assert.False(t, MustParse("Array(Nullable(String))").IsNullable())
}

func TestGoType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		imports []string
	}{
		{"UInt32", "uint32", nil},
		{"Int16", "int16", nil},
		{"Float32", "float32", nil},
		{"Int128", "string", nil},
		{"Decimal(10, 2)", "float64", nil},
		{"Bool", "bool", nil},
		{"UUID", "string", nil},
		{"DateTime('UTC')", "time.Time", []string{"time"}},
		{"Nullable(DateTime64(3))", "*time.Time", []string{"time"}},
		{"LowCardinality(String)", "string", nil},
		{"Array(Nullable(UInt8))", "[]*uint8", nil},
		{"Map(String, Array(Date))", "map[string][]time.Time", []string{"time"}},
		{"Tuple(String, UInt8)", "[]any", nil},
		{"Tuple(a String)", "map[string]any", nil},
		{"Nested(a String, b UInt8)", "[]map[string]any", nil},
		{"SimpleAggregateFunction(sum, UInt64)", "uint64", nil},
		{"Point", "any", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			g := MustParse(tt.in).GoType()
			assert.Equal(t, tt.want, g.String())
			assert.Equal(t, tt.imports, g.Imports())
		})
	}
}
