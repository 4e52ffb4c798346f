package model

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/inflect"
)

// TagName is the struct tag read for column names and options, e.g.
// `ch:"user_id,primary"`. A tag of "-" skips the field.
const TagName = "ch"

var timeType = reflect.TypeOf(time.Time{})

// field maps one struct field to a column.
type field struct {
	column  string
	name    string
	index   []int
	primary bool
}

// structFields walks typ and returns its columns in declaration order.
// Untagged exported fields map to the snake_case of their name. Untagged
// embedded structs are flattened.
func structFields(typ reflect.Type) []field {
	return collectFields(typ, nil)
}

func collectFields(typ reflect.Type, parent []int) []field {
	var fields []field
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		tag, hasTag := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}

		index := append(append([]int(nil), parent...), i)
		if sf.Anonymous && !hasTag {
			ft := sf.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				if sf.Type.Kind() == reflect.Struct {
					fields = append(fields, collectFields(ft, index)...)
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = inflect.Underscore(sf.Name)
		}
		f := field{column: name, name: sf.Name, index: index}
		for _, opt := range strings.Split(opts, ",") {
			if strings.TrimSpace(opt) == "primary" {
				f.primary = true
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// primaryKeys returns the tagged primary columns. Without any, a column
// named "id" is used.
func primaryKeys(fields []field) []field {
	var keys []field
	for _, f := range fields {
		if f.primary {
			keys = append(keys, f)
		}
	}
	if len(keys) > 0 {
		return keys
	}
	for _, f := range fields {
		if f.column == "id" {
			return []field{f}
		}
	}
	return nil
}

// normalizeName folds snake_case and CamelCase to one comparable form so
// that "created_at" matches the field CreatedAt.
func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
