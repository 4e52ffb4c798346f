package generator

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
)

// TimestampLayout prefixes migration ids so that sorting by name sorts by
// creation time.
const TimestampLayout = "20060102150405"

var (
	createTablePattern = regexp.MustCompile(`^create_(\w+?)_table$`)
	alterTablePattern  = regexp.MustCompile(`^\w+_(?:to|from|in)_(\w+?)_table$`)
)

// MigrationSpec describes a migration stub.
type MigrationSpec struct {
	// Name is the descriptive part, e.g. create_users_table.
	Name      string
	CreatedAt time.Time
	// Table overrides the table inferred from Name.
	Table   string
	Package string
}

// ID returns the timestamped migration name, e.g.
// 20240501100000_create_users_table.
func (m MigrationSpec) ID() string {
	return m.CreatedAt.UTC().Format(TimestampLayout) + "_" + inflect.Underscore(m.Name)
}

// kind infers what the stub should do from the name: "create" for
// create_X_table, "alter" for add_y_to_X_table and similar, "" otherwise.
func (m MigrationSpec) kind() (kind, table string) {
	name := inflect.Underscore(m.Name)
	if match := createTablePattern.FindStringSubmatch(name); match != nil {
		kind, table = "create", match[1]
	} else if match := alterTablePattern.FindStringSubmatch(name); match != nil {
		kind, table = "alter", match[1]
	}
	if m.Table != "" {
		table = m.Table
		if kind == "" {
			kind = "alter"
		}
	}
	return kind, table
}

// SQL returns up and down script stubs.
func (m MigrationSpec) SQL() (up, down string) {
	header := fmt.Sprintf("-- %s\n", m.ID())
	switch kind, table := m.kind(); kind {
	case "create":
		up = header + "CREATE TABLE IF NOT EXISTS " + table + " (\n    id UInt64,\n    created_at DateTime DEFAULT now()\n) ENGINE = MergeTree\nORDER BY (id);\n"
		down = header + "DROP TABLE IF EXISTS " + table + ";\n"
	case "alter":
		up = header + "ALTER TABLE " + table + " ADD COLUMN IF NOT EXISTS new_column String;\n"
		down = header + "ALTER TABLE " + table + " DROP COLUMN IF EXISTS new_column;\n"
	default:
		up, down = header, header
	}
	return up, down
}

// GenerateMigration renders a Go file with a constructor returning a
// migrate.Migration.
func GenerateMigration(m MigrationSpec) (*jen.File, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("migration needs a name")
	}
	pkg := m.Package
	if pkg == "" {
		pkg = "migrations"
	}
	fn := inflect.Camelize(inflect.Underscore(m.Name)) + m.CreatedAt.UTC().Format(TimestampLayout)

	var up, down []jen.Code
	switch kind, table := m.kind(); kind {
	case "create":
		up = []jen.Code{
			jen.Return(jen.Id("s").Dot("Create").Call(jen.Id("ctx"), jen.Lit(table),
				jen.Func().Params(jen.Id("t").Op("*").Qual(schemaPkg, "Blueprint")).Block(
					jen.Id("t").Dot("UInt64").Call(jen.Lit("id")),
					jen.Id("t").Dot("DateTime").Call(jen.Lit("created_at")).Dot("Default").Call(jen.Lit("now()")),
					jen.Id("t").Dot("OrderBy").Call(jen.Lit("id")),
				))),
		}
		down = []jen.Code{
			jen.Return(jen.Id("s").Dot("Drop").Call(jen.Id("ctx"), jen.Lit(table), jen.True())),
		}
	case "alter":
		up = []jen.Code{
			jen.Return(jen.Id("s").Dot("Alter").Call(jen.Id("ctx"), jen.Lit(table),
				jen.Func().Params(jen.Id("t").Op("*").Qual(schemaPkg, "Blueprint")).Block(
					jen.Id("t").Dot("String").Call(jen.Lit("new_column")),
				))),
		}
		down = []jen.Code{
			jen.Return(jen.Id("s").Dot("Alter").Call(jen.Id("ctx"), jen.Lit(table),
				jen.Func().Params(jen.Id("t").Op("*").Qual(schemaPkg, "Blueprint")).Block(
					jen.Id("t").Dot("DropColumn").Call(jen.Lit("new_column")),
				))),
		}
	default:
		up = []jen.Code{jen.Return(jen.Nil())}
		down = []jen.Code{jen.Return(jen.Nil())}
	}

	step := func(body []jen.Code) *jen.Statement {
		return jen.Func().Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("s").Op("*").Qual(schemaPkg, "Schema"),
		).Error().Block(body...)
	}

	f := jen.NewFile(pkg)
	f.HeaderComment(generatedMsg)
	f.Commentf("%s returns migration %s.", fn, m.ID())
	f.Func().Id(fn).Params().Qual(migratePkg, "Migration").Block(
		jen.Return(jen.Qual(migratePkg, "Func").Call(
			jen.Line().Lit(m.ID()),
			jen.Line().Add(step(up)),
			jen.Line().Add(step(down)),
			jen.Line(),
		)),
	)
	return f, nil
}
