package sqlgen

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	name := "alice"
	var nilPtr *string

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"string", "test", "'test'"},
		{"string with quote", "O'Brien", "'O''Brien'"},
		{"string with backslash", `a\b`, `'a\\b'`},
		{"true", true, "1"},
		{"false", false, "0"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float", 3.14, "3.14"},
		{"float32", float32(0.5), "0.5"},
		{"json number", json.Number("12345678901234567890"), "12345678901234567890"},
		{"time", time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC), "toDateTime('2024-03-09 14:05:07')"},
		{"int slice", []int{1, 2, 3}, "[1, 2, 3]"},
		{"mixed slice", []any{"a", 1, nil}, "['a', 1, NULL]"},
		{"nested slice", [][]string{{"x"}, {"y", "z"}}, "[['x'], ['y', 'z']]"},
		{"empty slice", []string{}, "[]"},
		{"pointer", &name, "'alice'"},
		{"nil pointer", nilPtr, "NULL"},
		{"map", map[string]int{"a": 1}, `'{"a":1}'`},
		{"struct", struct {
			A string `json:"a"`
		}{A: "it's"}, `'{"a":"it''s"}'`},
		{"raw", NewRaw("now()"), "now()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value))
		})
	}
}

func TestFormatValueConvertsTimeToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 1, 1, 2, 0, 0, 0, loc)
	assert.Equal(t, "toDateTime('2024-01-01 00:00:00')", FormatValue(ts))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`", QuoteIdentifier("users"))
	assert.Equal(t, "`db`.`users`", QuoteIdentifier("db.users"))
	assert.Equal(t, "`db`.`users`.`id`", QuoteIdentifier("db.users.id"))
}

func TestBind(t *testing.T) {
	assert.Equal(t, "age > 18 AND name = 'bob'", Bind("age > ? AND name = ?", 18, "bob"))
	assert.Equal(t, "a = 1 AND b = ?", Bind("a = ? AND b = ?", 1))
	assert.Equal(t, "x = ?", Bind("x = ?"))
	assert.Equal(t, "id IN [1, 2]", Bind("id IN ?", []int{1, 2}))
}

func TestRawHelpers(t *testing.T) {
	assert.Equal(t, "`users`.`id`", Column("users.id").SQL())
	assert.Equal(t, "`name`", Column("name").SQL())
	assert.Equal(t, "`analytics`.`events`", Table("analytics.events").SQL())
	assert.Equal(t, "now()", Now().SQL())
	assert.Equal(t, "today()", Today().SQL())
	assert.Equal(t, "toStartOfDay(created_at)", Fn("toStartOfDay", NewRaw("created_at")).SQL())
	assert.Equal(t, "concat('it''s', NULL, 42)", Fn("concat", "it's", nil, 42).SQL())
	assert.Equal(t, "rand()", Fn("rand").SQL())
	assert.Equal(t, "x + 1", NewRaw("x + 1").String())
}

func TestAsExpression(t *testing.T) {
	e, ok := AsExpression("id")
	assert.True(t, ok)
	assert.Equal(t, "id", e.SQL())

	e, ok = AsExpression(NewRaw("count()"))
	assert.True(t, ok)
	assert.Equal(t, "count()", e.SQL())

	_, ok = AsExpression(42)
	assert.False(t, ok)
}
