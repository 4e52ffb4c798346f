// Package schema builds and runs ClickHouse DDL.
package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// IndexDefinition is a data-skipping index.
type IndexDefinition struct {
	Name        string
	Expression  string
	Type        string
	Granularity int
}

// IndexOption configures an index declared with Blueprint.Index.
type IndexOption func(*IndexDefinition)

// IndexType sets the index type, e.g. "bloom_filter(0.01)". Defaults to minmax.
func IndexType(t string) IndexOption {
	return func(idx *IndexDefinition) {
		idx.Type = t
	}
}

// Granularity sets the index granularity. Defaults to 1.
func Granularity(g int) IndexOption {
	return func(idx *IndexDefinition) {
		idx.Granularity = g
	}
}

// Blueprint describes the structure of one table. In CREATE mode column
// declarations add to the table's column list; once SetAltering(true) is
// called they are tracked as ADD COLUMN changes for ToAlterSQL instead.
//
// Columns live in arenas owned by the blueprint and are addressed by the
// ColumnHandle a declaration returns.
type Blueprint struct {
	table       string
	columns     []ColumnDefinition
	indexes     []IndexDefinition
	engine      Engine
	params      []string
	orderBy     []string
	partitionBy string
	sampleBy    string
	ttl         string
	settings    map[string]any
	comment     string
	temporary   bool
	ifNotExists bool

	altering bool
	add      []ColumnDefinition
	modify   []ColumnDefinition
	drop     []string
}

// NewBlueprint creates a MergeTree blueprint for table with IF NOT EXISTS
// enabled.
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{
		table:       table,
		engine:      MergeTree,
		settings:    map[string]any{},
		ifNotExists: true,
	}
}

// SetAltering switches column declarations between CREATE and ALTER
// tracking.
func (b *Blueprint) SetAltering(altering bool) *Blueprint {
	b.altering = altering
	return b
}

// Altering reports whether the blueprint tracks ALTER changes.
func (b *Blueprint) Altering() bool {
	return b.altering
}

// Temporary makes the table TEMPORARY.
func (b *Blueprint) Temporary() *Blueprint {
	b.temporary = true
	return b
}

// SetIfNotExists toggles IF NOT EXISTS.
func (b *Blueprint) SetIfNotExists(v bool) *Blueprint {
	b.ifNotExists = v
	return b
}

func (b *Blueprint) slot(ref columnRef) *ColumnDefinition {
	switch ref.list {
	case addList:
		return &b.add[ref.index]
	case modifyList:
		return &b.modify[ref.index]
	default:
		return &b.columns[ref.index]
	}
}

// register stores def in the arena for the current mode and returns its
// handle.
func (b *Blueprint) register(def ColumnDefinition) ColumnHandle {
	if b.altering {
		b.add = append(b.add, def)
		return ColumnHandle{Blueprint: b, ref: columnRef{list: addList, index: len(b.add) - 1}}
	}
	b.columns = append(b.columns, def)
	return ColumnHandle{Blueprint: b, ref: columnRef{list: createList, index: len(b.columns) - 1}}
}

// Column declares a column with an arbitrary type expression.
func (b *Blueprint) Column(name, typ string) ColumnHandle {
	return b.register(ColumnDefinition{Name: name, Type: typ})
}

func (b *Blueprint) String(name string) ColumnHandle  { return b.Column(name, TypeString) }
func (b *Blueprint) Int8(name string) ColumnHandle    { return b.Column(name, TypeInt8) }
func (b *Blueprint) Int16(name string) ColumnHandle   { return b.Column(name, TypeInt16) }
func (b *Blueprint) Int32(name string) ColumnHandle   { return b.Column(name, TypeInt32) }
func (b *Blueprint) Int64(name string) ColumnHandle   { return b.Column(name, TypeInt64) }
func (b *Blueprint) Int128(name string) ColumnHandle  { return b.Column(name, TypeInt128) }
func (b *Blueprint) Int256(name string) ColumnHandle  { return b.Column(name, TypeInt256) }
func (b *Blueprint) UInt8(name string) ColumnHandle   { return b.Column(name, TypeUInt8) }
func (b *Blueprint) UInt16(name string) ColumnHandle  { return b.Column(name, TypeUInt16) }
func (b *Blueprint) UInt32(name string) ColumnHandle  { return b.Column(name, TypeUInt32) }
func (b *Blueprint) UInt64(name string) ColumnHandle  { return b.Column(name, TypeUInt64) }
func (b *Blueprint) UInt128(name string) ColumnHandle { return b.Column(name, TypeUInt128) }
func (b *Blueprint) UInt256(name string) ColumnHandle { return b.Column(name, TypeUInt256) }
func (b *Blueprint) Float32(name string) ColumnHandle { return b.Column(name, TypeFloat32) }
func (b *Blueprint) Float64(name string) ColumnHandle { return b.Column(name, TypeFloat64) }
func (b *Blueprint) UUID(name string) ColumnHandle    { return b.Column(name, TypeUUID) }
func (b *Blueprint) Date(name string) ColumnHandle    { return b.Column(name, TypeDate) }
func (b *Blueprint) Date32(name string) ColumnHandle  { return b.Column(name, TypeDate32) }
func (b *Blueprint) Boolean(name string) ColumnHandle { return b.Column(name, TypeBool) }
func (b *Blueprint) IPv4(name string) ColumnHandle    { return b.Column(name, TypeIPv4) }
func (b *Blueprint) IPv6(name string) ColumnHandle    { return b.Column(name, TypeIPv6) }
func (b *Blueprint) JSON(name string) ColumnHandle    { return b.Column(name, TypeJSON) }

// DateTime declares a DateTime column. An optional time zone renders as
// DateTime('tz').
func (b *Blueprint) DateTime(name string, timezone ...string) ColumnHandle {
	if len(timezone) > 0 && timezone[0] != "" {
		return b.Column(name, TypeDateTime+"("+sqlgen.EscapeString(timezone[0])+")")
	}
	return b.Column(name, TypeDateTime)
}

// DateTime64 declares DateTime64(precision[, 'tz']).
func (b *Blueprint) DateTime64(name string, precision int, timezone string) ColumnHandle {
	typ := TypeDateTime64 + "(" + strconv.Itoa(precision)
	if timezone != "" {
		typ += ", " + sqlgen.EscapeString(timezone)
	}
	return b.Column(name, typ+")")
}

// Decimal declares Decimal(precision, scale).
func (b *Blueprint) Decimal(name string, precision, scale int) ColumnHandle {
	return b.Column(name, fmt.Sprintf("%s(%d, %d)", TypeDecimal, precision, scale))
}

// DecimalDefault declares Decimal(10, 0).
func (b *Blueprint) DecimalDefault(name string) ColumnHandle {
	return b.Decimal(name, 10, 0)
}

// FixedString declares FixedString(length).
func (b *Blueprint) FixedString(name string, length int) ColumnHandle {
	return b.Column(name, TypeFixedString+"("+strconv.Itoa(length)+")")
}

// Array declares Array(elem).
func (b *Blueprint) Array(name, elem string) ColumnHandle {
	return b.Column(name, TypeArray+"("+elem+")")
}

// Nullable declares Nullable(inner) and marks the column nullable.
func (b *Blueprint) Nullable(name, inner string) ColumnHandle {
	h := b.Column(name, TypeNullable+"("+inner+")")
	h.def().Nullable = true
	return h
}

// LowCardinality declares LowCardinality(inner).
func (b *Blueprint) LowCardinality(name, inner string) ColumnHandle {
	return b.Column(name, TypeLowCardinality+"("+inner+")")
}

// Map declares Map(key, value).
func (b *Blueprint) Map(name, key, value string) ColumnHandle {
	return b.Column(name, TypeMap+"("+key+", "+value+")")
}

// Tuple declares Tuple(elems...).
func (b *Blueprint) Tuple(name string, elems ...string) ColumnHandle {
	return b.Column(name, TypeTuple+"("+strings.Join(elems, ", ")+")")
}

// Enum8 declares Enum8 with values ordered by their number.
func (b *Blueprint) Enum8(name string, values map[string]int) ColumnHandle {
	return b.Column(name, enumType(TypeEnum8, values))
}

// Enum16 declares Enum16 with values ordered by their number.
func (b *Blueprint) Enum16(name string, values map[string]int) ColumnHandle {
	return b.Column(name, enumType(TypeEnum16, values))
}

func enumType(kind string, values map[string]int) string {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if values[names[i]] != values[names[j]] {
			return values[names[i]] < values[names[j]]
		}
		return names[i] < names[j]
	})
	items := make([]string, len(names))
	for i, n := range names {
		items[i] = sqlgen.EscapeString(n) + " = " + strconv.Itoa(values[n])
	}
	return kind + "(" + strings.Join(items, ", ") + ")"
}

// ModifyColumn records a MODIFY COLUMN change rendered by ToAlterSQL.
func (b *Blueprint) ModifyColumn(name, typ string) ColumnHandle {
	b.modify = append(b.modify, ColumnDefinition{Name: name, Type: typ})
	return ColumnHandle{Blueprint: b, ref: columnRef{list: modifyList, index: len(b.modify) - 1}}
}

// DropColumn records a DROP COLUMN change rendered by ToAlterSQL.
func (b *Blueprint) DropColumn(name string) *Blueprint {
	b.drop = append(b.drop, name)
	return b
}

// Index adds a data-skipping index. Names are not checked for uniqueness.
func (b *Blueprint) Index(name, expr string, opts ...IndexOption) *Blueprint {
	idx := IndexDefinition{Name: name, Expression: expr, Type: "minmax", Granularity: 1}
	for _, opt := range opts {
		opt(&idx)
	}
	b.indexes = append(b.indexes, idx)
	return b
}

// SetEngine sets the engine and its parameters.
func (b *Blueprint) SetEngine(engine Engine, params ...string) *Blueprint {
	b.engine = engine
	b.params = params
	return b
}

func (b *Blueprint) MergeTree() *Blueprint {
	return b.SetEngine(MergeTree)
}

// ReplacingMergeTree takes an optional version column.
func (b *Blueprint) ReplacingMergeTree(version ...string) *Blueprint {
	if len(version) > 0 && version[0] != "" {
		return b.SetEngine(ReplacingMergeTree, version[0])
	}
	return b.SetEngine(ReplacingMergeTree)
}

// SummingMergeTree sums columns, or every numeric column when none are given.
// Several columns are passed as one tuple parameter.
func (b *Blueprint) SummingMergeTree(columns ...string) *Blueprint {
	switch len(columns) {
	case 0:
		return b.SetEngine(SummingMergeTree)
	case 1:
		return b.SetEngine(SummingMergeTree, columns[0])
	default:
		return b.SetEngine(SummingMergeTree, "("+strings.Join(columns, ", ")+")")
	}
}

func (b *Blueprint) AggregatingMergeTree() *Blueprint {
	return b.SetEngine(AggregatingMergeTree)
}

func (b *Blueprint) CollapsingMergeTree(sign string) *Blueprint {
	return b.SetEngine(CollapsingMergeTree, sign)
}

func (b *Blueprint) VersionedCollapsingMergeTree(sign, version string) *Blueprint {
	return b.SetEngine(VersionedCollapsingMergeTree, sign, version)
}

// OrderBy replaces the sorting key.
func (b *Blueprint) OrderBy(columns ...string) *Blueprint {
	b.orderBy = columns
	return b
}

// PartitionBy sets the partition key; several expressions are joined with
// ", ".
func (b *Blueprint) PartitionBy(exprs ...string) *Blueprint {
	b.partitionBy = strings.Join(exprs, ", ")
	return b
}

func (b *Blueprint) SampleBy(expr string) *Blueprint {
	b.sampleBy = expr
	return b
}

// TTL sets the table TTL expression.
func (b *Blueprint) TTL(expr string) *Blueprint {
	b.ttl = expr
	return b
}

// TableTTL is TTL under a name that is not shadowed on ColumnHandle.
func (b *Blueprint) TableTTL(expr string) *Blueprint {
	return b.TTL(expr)
}

// TableSettings merges settings into the SETTINGS clause. Values are
// formatted as literals; use sqlgen.Raw for expressions.
func (b *Blueprint) TableSettings(settings map[string]any) *Blueprint {
	for k, v := range settings {
		b.settings[k] = v
	}
	return b
}

// Comment sets the table comment.
func (b *Blueprint) Comment(text string) *Blueprint {
	b.comment = text
	return b
}

// TableComment is Comment under a name that is not shadowed on ColumnHandle.
func (b *Blueprint) TableComment(text string) *Blueprint {
	return b.Comment(text)
}

// TableName returns the table the blueprint describes.
func (b *Blueprint) TableName() string {
	return b.table
}

// Engine returns the configured engine.
func (b *Blueprint) Engine() Engine {
	return b.engine
}

// Columns returns a copy of the CREATE columns.
func (b *Blueprint) Columns() []ColumnDefinition {
	out := make([]ColumnDefinition, len(b.columns))
	copy(out, b.columns)
	return out
}

// Indexes returns a copy of the declared indexes.
func (b *Blueprint) Indexes() []IndexDefinition {
	out := make([]IndexDefinition, len(b.indexes))
	copy(out, b.indexes)
	return out
}

// HasChanges reports whether ToAlterSQL would render anything.
func (b *Blueprint) HasChanges() bool {
	return len(b.add)+len(b.modify)+len(b.drop) > 0
}

// Validate reports blueprint mistakes that ToSQL renders anyway: a missing
// table name and column names declared more than once.
func (b *Blueprint) Validate() error {
	if b.table == "" {
		return ErrNoTableName
	}
	seen := make(map[string]bool, len(b.columns))
	var dups []string
	for _, c := range b.columns {
		if seen[c.Name] {
			dups = append(dups, c.Name)
		}
		seen[c.Name] = true
	}
	if len(dups) > 0 {
		return &DuplicateColumnError{Table: b.table, Columns: dups}
	}
	return nil
}

// ToSQL renders the CREATE TABLE statement.
func (b *Blueprint) ToSQL() string {
	var sb strings.Builder

	sb.WriteString("CREATE")
	if b.temporary {
		sb.WriteString(" TEMPORARY")
	}
	sb.WriteString(" TABLE")
	if b.ifNotExists {
		sb.WriteString(" IF NOT EXISTS")
	}
	sb.WriteString(" " + b.table + " (\n")

	lines := make([]string, 0, len(b.columns)+len(b.indexes))
	for _, c := range b.columns {
		lines = append(lines, "    "+c.render())
	}
	for _, idx := range b.indexes {
		lines = append(lines, fmt.Sprintf("    INDEX %s %s TYPE %s GRANULARITY %d", idx.Name, idx.Expression, idx.Type, idx.Granularity))
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n) ENGINE = " + string(b.engine))
	if len(b.params) > 0 {
		sb.WriteString("(" + strings.Join(b.params, ", ") + ")")
	}

	if len(b.orderBy) > 0 {
		sb.WriteString("\nORDER BY (" + strings.Join(b.orderBy, ", ") + ")")
	}
	if b.partitionBy != "" {
		sb.WriteString("\nPARTITION BY " + b.partitionBy)
	}
	if b.sampleBy != "" {
		sb.WriteString("\nSAMPLE BY " + b.sampleBy)
	}
	if b.ttl != "" {
		sb.WriteString("\nTTL " + b.ttl)
	}
	if len(b.settings) > 0 {
		keys := make([]string, 0, len(b.settings))
		for k := range b.settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + " = " + sqlgen.FormatValue(b.settings[k])
		}
		sb.WriteString("\nSETTINGS " + strings.Join(pairs, ", "))
	}
	if b.comment != "" {
		sb.WriteString("\nCOMMENT " + sqlgen.EscapeString(b.comment))
	}
	sb.WriteString(";")

	return sb.String()
}

// ToAlterSQL renders the tracked ADD, MODIFY and DROP changes as one ALTER
// TABLE statement, or "" when nothing changed. An empty result must not be
// sent to the server.
func (b *Blueprint) ToAlterSQL() string {
	parts := make([]string, 0, len(b.add)+len(b.modify)+len(b.drop))
	for _, c := range b.add {
		parts = append(parts, "ADD COLUMN "+c.render())
	}
	for _, c := range b.modify {
		parts = append(parts, "MODIFY COLUMN "+c.render())
	}
	for _, name := range b.drop {
		parts = append(parts, "DROP COLUMN "+name)
	}
	if len(parts) == 0 {
		return ""
	}
	return "ALTER TABLE " + b.table + " " + strings.Join(parts, ", ")
}

// ToDropSQL renders DROP TABLE.
func (b *Blueprint) ToDropSQL(ifExists bool) string {
	if ifExists {
		return "DROP TABLE IF EXISTS " + b.table + ";"
	}
	return "DROP TABLE " + b.table + ";"
}
