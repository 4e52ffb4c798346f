package sqlgen

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the layout used for DateTime literals.
const DateTimeLayout = "2006-01-02 15:04:05"

// EscapeString quotes s as a string literal. Single quotes are doubled and
// backslashes escaped, so the literal survives ClickHouse escape processing.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return "'" + s + "'"
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return "'" + s + "'"
}

// QuoteIdentifier backtick-quotes an identifier. Dotted names have each
// segment quoted separately: db.table becomes `db`.`table`.
func QuoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = "`" + part + "`"
	}
	return strings.Join(parts, ".")
}

// FormatValue renders a Go value as a ClickHouse literal.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case Expression:
		return val.SQL()
	case string:
		return EscapeString(val)
	case []byte:
		return EscapeString(string(val))
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case time.Time:
		return "toDateTime('" + val.UTC().Format(DateTimeLayout) + "')"
	case *time.Time:
		if val == nil {
			return "NULL"
		}
		return FormatValue(*val)
	}

	return formatReflect(reflect.ValueOf(v))
}

func formatReflect(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL"
		}
		return FormatValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "[]"
		}
		fallthrough
	case reflect.Array:
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(items, ", ") + "]"
	case reflect.String:
		return EscapeString(rv.String())
	case reflect.Bool:
		return FormatValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Map, reflect.Struct:
		if s, ok := rv.Interface().(fmt.Stringer); ok && rv.Kind() == reflect.Struct {
			return EscapeString(s.String())
		}
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return EscapeString(fmt.Sprint(rv.Interface()))
		}
		return EscapeString(string(data))
	}

	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return EscapeString(s.String())
	}
	return EscapeString(fmt.Sprint(rv.Interface()))
}

// Bind replaces each ? placeholder in sql, left to right, with the
// formatted value of the matching argument. Placeholders without a matching
// argument are left untouched.
func Bind(sql string, args ...any) string {
	if len(args) == 0 {
		return sql
	}

	var sb strings.Builder
	sb.Grow(len(sql))
	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(args) {
			sb.WriteString(FormatValue(args[next]))
			next++
			continue
		}
		sb.WriteByte(sql[i])
	}
	return sb.String()
}
