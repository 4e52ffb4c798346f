package generator

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"github.com/spf13/cast"

	"github.com/satishbabariya/chorm/internal/chtype"
	"github.com/satishbabariya/chorm/runtime/connection"
)

// Column is one table column of a generated model.
type Column struct {
	Name    string
	Type    string // ClickHouse type expression
	Primary bool
	Comment string
}

// ModelSpec describes a model struct to generate.
type ModelSpec struct {
	// Name is the Go type name; derived from Table when empty.
	Name    string
	Table   string
	Package string
	Columns []Column
}

// ColumnsFromRows converts system.columns rows (name, type,
// is_in_primary_key, comment) into columns.
func ColumnsFromRows(rows []connection.Row) []Column {
	cols := make([]Column, 0, len(rows))
	for _, row := range rows {
		cols = append(cols, Column{
			Name:    cast.ToString(row["name"]),
			Type:    cast.ToString(row["type"]),
			Primary: cast.ToBool(row["is_in_primary_key"]),
			Comment: cast.ToString(row["comment"]),
		})
	}
	return cols
}

// ParseColumns parses "name:Type[:primary]" entries as given on the command
// line, e.g. "id:UInt64:primary".
func ParseColumns(defs []string) ([]Column, error) {
	cols := make([]Column, 0, len(defs))
	for _, def := range defs {
		name, rest, ok := strings.Cut(def, ":")
		if !ok || name == "" || rest == "" {
			return nil, fmt.Errorf("invalid column %q: expected name:Type", def)
		}
		col := Column{Name: name, Type: rest}
		if typ, ok := strings.CutSuffix(rest, ":primary"); ok {
			col.Type, col.Primary = typ, true
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// TypeName returns the Go type name for a table, e.g. user_events -> UserEvent.
func TypeName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// initialisms are upper-cased whole when they form one word of a column name.
var initialisms = map[string]bool{"id": true, "uuid": true, "url": true, "ip": true, "api": true, "json": true, "http": true}

// FieldName returns the exported Go field for a column, e.g. user_id -> UserID.
func FieldName(column string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(column, func(r rune) bool { return r == '_' || r == '.' }) {
		if initialisms[strings.ToLower(part)] {
			b.WriteString(strings.ToUpper(part))
			continue
		}
		b.WriteString(inflect.Capitalize(part))
	}
	return b.String()
}

// GenerateModel renders a struct with ch tags, a TableName method and a
// constructor returning a model.Model bound to an executor.
func GenerateModel(spec ModelSpec) (*jen.File, error) {
	if spec.Table == "" {
		return nil, fmt.Errorf("model needs a table name")
	}
	if len(spec.Columns) == 0 {
		return nil, fmt.Errorf("model %s has no columns", spec.Table)
	}
	name := spec.Name
	if name == "" {
		name = TypeName(spec.Table)
	}
	pkg := spec.Package
	if pkg == "" {
		pkg = "models"
	}

	fields := make([]jen.Code, 0, len(spec.Columns))
	seen := map[string]bool{}
	for _, col := range spec.Columns {
		typ, err := chtype.Parse(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: invalid type %q: %w", col.Name, col.Type, err)
		}
		field := FieldName(col.Name)
		if seen[field] {
			return nil, fmt.Errorf("columns of %s map to the same field %s", spec.Table, field)
		}
		seen[field] = true

		tag := col.Name
		if col.Primary {
			tag += ",primary"
		}
		stmt := jen.Id(field).Add(goTypeCode(typ.GoType())).Tag(map[string]string{"ch": tag, "json": col.Name})
		if col.Comment != "" {
			stmt.Comment(col.Comment)
		}
		fields = append(fields, stmt)
	}

	f := jen.NewFile(pkg)
	f.HeaderComment(generatedMsg)

	f.Commentf("%s maps a row of the %s table.", name, spec.Table)
	f.Type().Id(name).Struct(fields...)

	f.Comment("TableName returns the table the model is stored in.")
	f.Func().Params(jen.Id(name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(spec.Table)),
	)

	ctor := "New" + name + "Model"
	f.Commentf("%s binds %s to exec.", ctor, name)
	f.Func().Id(ctor).Params(
		jen.Id("exec").Qual(connPkg, "Executor"),
	).Params(
		jen.Op("*").Qual(modelPkg, "Model").Types(jen.Id(name)),
		jen.Error(),
	).Block(
		jen.Return(jen.Qual(modelPkg, "New").Types(jen.Id(name)).Call(jen.Id("exec"))),
	)
	return f, nil
}

// goTypeCode converts a mapped Go type to jennifer code.
func goTypeCode(g chtype.GoType) jen.Code {
	switch g.Kind {
	case chtype.Pointer:
		return jen.Op("*").Add(goTypeCode(*g.Elem))
	case chtype.Slice:
		return jen.Index().Add(goTypeCode(*g.Elem))
	case chtype.Map:
		return jen.Map(goTypeCode(*g.Key)).Add(goTypeCode(*g.Elem))
	}
	if g.Package != "" {
		return jen.Qual(g.Package, g.Name)
	}
	return jen.Id(g.Name)
}
