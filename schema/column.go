package schema

import (
	"strings"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// ColumnDefinition describes one column of a table.
type ColumnDefinition struct {
	Name     string
	Type     string
	Nullable bool
	Default  string // expression, rendered verbatim
	Comment  string
	Codec    string
	TTL      string
}

// SQLType returns the column type, wrapped in Nullable(...) when the column
// is nullable and the type is not already nullable.
func (c ColumnDefinition) SQLType() string {
	if c.Nullable && !strings.HasPrefix(c.Type, TypeNullable+"(") {
		return TypeNullable + "(" + c.Type + ")"
	}
	return c.Type
}

// render formats name, type and the optional clauses in the order
// DEFAULT, COMMENT, CODEC, TTL.
func (c ColumnDefinition) render() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteString(" ")
	sb.WriteString(c.SQLType())
	if c.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	if c.Comment != "" {
		sb.WriteString(" COMMENT ")
		sb.WriteString(sqlgen.EscapeString(c.Comment))
	}
	if c.Codec != "" {
		sb.WriteString(" CODEC(")
		sb.WriteString(c.Codec)
		sb.WriteString(")")
	}
	if c.TTL != "" {
		sb.WriteString(" TTL ")
		sb.WriteString(c.TTL)
	}
	return sb.String()
}

type columnList int

const (
	createList columnList = iota
	addList
	modifyList
)

// columnRef addresses one slot of a blueprint's column arena.
type columnRef struct {
	list  columnList
	index int
}

// ColumnHandle is returned by every column declaration. Its modifiers edit
// the column already registered in the blueprint, so there is nothing to
// commit at the end of a chain. Table-level methods are promoted from the
// embedded *Blueprint, which lets one chain move from a column to the table:
//
//	bp.UUID("id").Comment("primary").OrderBy("id")
//
// Comment and TTL act on the column; use TableComment and TableTTL for the
// table from a handle.
type ColumnHandle struct {
	*Blueprint
	ref columnRef
}

func (h ColumnHandle) def() *ColumnDefinition {
	return h.Blueprint.slot(h.ref)
}

// Definition returns a copy of the column as currently declared.
func (h ColumnHandle) Definition() ColumnDefinition {
	return *h.def()
}

// Name renames the column.
func (h ColumnHandle) Name(name string) ColumnHandle {
	h.def().Name = name
	return h
}

// AsNullable marks the column nullable. Nullable(name, inner) stays the
// promoted Blueprint declaration.
func (h ColumnHandle) AsNullable() ColumnHandle {
	h.def().Nullable = true
	return h
}

// NotNull clears the nullable flag.
func (h ColumnHandle) NotNull() ColumnHandle {
	h.def().Nullable = false
	return h
}

// Default sets a DEFAULT expression, rendered verbatim.
func (h ColumnHandle) Default(expr string) ColumnHandle {
	h.def().Default = expr
	return h
}

// DefaultValue sets DEFAULT to v formatted as a literal.
func (h ColumnHandle) DefaultValue(v any) ColumnHandle {
	return h.Default(sqlgen.FormatValue(v))
}

// Comment sets the column comment.
func (h ColumnHandle) Comment(text string) ColumnHandle {
	h.def().Comment = text
	return h
}

// Codec sets the compression codec, e.g. "ZSTD(3)".
func (h ColumnHandle) Codec(expr string) ColumnHandle {
	h.def().Codec = expr
	return h
}

// TTL sets the column TTL expression.
func (h ColumnHandle) TTL(expr string) ColumnHandle {
	h.def().TTL = expr
	return h
}

// Table returns the owning blueprint.
func (h ColumnHandle) Table() *Blueprint {
	return h.Blueprint
}
