package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

func TestBlueprintBasicCreate(t *testing.T) {
	bp := NewBlueprint("users")
	bp.UUID("id")
	bp.String("name")
	bp.MergeTree()
	bp.OrderBy("id")

	sql := bp.ToSQL()
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS users (\n    id UUID,\n    name String\n) ENGINE = MergeTree\nORDER BY (id);", sql)
	assert.Contains(t, sql, "id UUID")
	assert.Contains(t, sql, "name String")
	assert.Contains(t, sql, "ENGINE = MergeTree")
	assert.Contains(t, sql, "ORDER BY (id)")
}

func TestBlueprintFullCreate(t *testing.T) {
	bp := NewBlueprint("events")
	bp.UInt64("id").Comment("it's the id").
		DateTime("created_at").Default("now()").Codec("Delta, ZSTD").
		String("payload").AsNullable().TTL("created_at + INTERVAL 1 DAY").
		ReplacingMergeTree("version").
		OrderBy("id", "created_at").
		PartitionBy("toYYYYMM(created_at)").
		SampleBy("id").
		TTL("created_at + INTERVAL 30 DAY").
		TableSettings(map[string]any{"storage_policy": "hot", "index_granularity": 8192}).
		Comment("Event log").
		Index("idx_payload", "payload", IndexType("bloom_filter"), Granularity(4))

	want := "CREATE TABLE IF NOT EXISTS events (\n" +
		"    id UInt64 COMMENT 'it''s the id',\n" +
		"    created_at DateTime DEFAULT now() CODEC(Delta, ZSTD),\n" +
		"    payload Nullable(String) TTL created_at + INTERVAL 1 DAY,\n" +
		"    INDEX idx_payload payload TYPE bloom_filter GRANULARITY 4\n" +
		") ENGINE = ReplacingMergeTree(version)\n" +
		"ORDER BY (id, created_at)\n" +
		"PARTITION BY toYYYYMM(created_at)\n" +
		"SAMPLE BY id\n" +
		"TTL created_at + INTERVAL 30 DAY\n" +
		"SETTINGS index_granularity = 8192, storage_policy = 'hot'\n" +
		"COMMENT 'Event log';"
	assert.Equal(t, want, bp.ToSQL())
	assert.Equal(t, want, bp.ToSQL())
}

func TestColumnHandleMutatesSingleEntry(t *testing.T) {
	bp := NewBlueprint("t")
	h := bp.String("x").AsNullable().Comment("c")

	cols := bp.Columns()
	require.Len(t, cols, 1)
	assert.Equal(t, "x", cols[0].Name)
	assert.True(t, cols[0].Nullable)
	assert.Equal(t, "c", cols[0].Comment)
	assert.Equal(t, cols[0], h.Definition())

	// later declarations do not invalidate earlier handles
	for i := 0; i < 64; i++ {
		bp.Int32("c" + strings.Repeat("x", i))
	}
	h.Default("'a'")
	assert.Equal(t, "'a'", bp.Columns()[0].Default)
}

func TestHandleChainDeclaresNullableColumn(t *testing.T) {
	bp := NewBlueprint("t")
	bp.String("a").Comment("first").
		Nullable("b", "String").
		UInt8("c").AsNullable().
		OrderBy("tuple()")

	cols := bp.Columns()
	require.Len(t, cols, 3)
	assert.False(t, cols[0].Nullable)
	assert.True(t, cols[1].Nullable)
	assert.True(t, cols[2].Nullable)

	sql := bp.ToSQL()
	assert.Contains(t, sql, "    a String COMMENT 'first',\n")
	assert.Contains(t, sql, "    b Nullable(String),\n")
	assert.Contains(t, sql, "    c Nullable(UInt8)\n")
}

func TestColumnHandleTableFacet(t *testing.T) {
	bp := NewBlueprint("t")
	got := bp.UUID("id").Comment("key").TableComment("table").TableTTL("ts + INTERVAL 1 DAY").OrderBy("id")
	assert.Same(t, bp, got)

	sql := bp.ToSQL()
	assert.Contains(t, sql, "id UUID COMMENT 'key'")
	assert.Contains(t, sql, "\nTTL ts + INTERVAL 1 DAY")
	assert.Contains(t, sql, "\nCOMMENT 'table';")
	assert.Same(t, bp, bp.String("s").Table())
}

func TestColumnTypes(t *testing.T) {
	bp := NewBlueprint("t")
	tests := []struct {
		handle ColumnHandle
		want   string
	}{
		{bp.Decimal("price", 18, 4), "Decimal(18, 4)"},
		{bp.DecimalDefault("amount"), "Decimal(10, 0)"},
		{bp.FixedString("code", 16), "FixedString(16)"},
		{bp.DateTime("d", "Europe/Berlin"), "DateTime('Europe/Berlin')"},
		{bp.DateTime64("ts", 3, "UTC"), "DateTime64(3, 'UTC')"},
		{bp.DateTime64("ts2", 6, ""), "DateTime64(6)"},
		{bp.Array("tags", TypeString), "Array(String)"},
		{bp.Nullable("n", TypeInt32), "Nullable(Int32)"},
		{bp.LowCardinality("country", TypeString), "LowCardinality(String)"},
		{bp.Map("attrs", TypeString, TypeUInt64), "Map(String, UInt64)"},
		{bp.Tuple("pt", TypeFloat64, TypeFloat64), "Tuple(Float64, Float64)"},
		{bp.Enum8("status", map[string]int{"b": 2, "a": 1}), "Enum8('a' = 1, 'b' = 2)"},
		{bp.Enum16("kind", map[string]int{"x": 1000}), "Enum16('x' = 1000)"},
		{bp.Boolean("ok"), "Bool"},
		{bp.IPv6("ip"), "IPv6"},
		{bp.Column("geo", TypePoint), "Point"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.handle.Definition().SQLType())
	}

	assert.True(t, bp.Columns()[7].Nullable)
	assert.Equal(t, "x String DEFAULT 'it''s'", NewBlueprint("t").String("x").DefaultValue("it's").Definition().render())
}

func TestEngines(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Blueprint) *Blueprint
		want  string
	}{
		{"replacing", func(b *Blueprint) *Blueprint { return b.ReplacingMergeTree() }, "ENGINE = ReplacingMergeTree\n"},
		{"summing single", func(b *Blueprint) *Blueprint { return b.SummingMergeTree("amount") }, "ENGINE = SummingMergeTree(amount)\n"},
		{"summing tuple", func(b *Blueprint) *Blueprint { return b.SummingMergeTree("a", "b") }, "ENGINE = SummingMergeTree((a, b))\n"},
		{"aggregating", func(b *Blueprint) *Blueprint { return b.AggregatingMergeTree() }, "ENGINE = AggregatingMergeTree\n"},
		{"collapsing", func(b *Blueprint) *Blueprint { return b.CollapsingMergeTree("sign") }, "ENGINE = CollapsingMergeTree(sign)\n"},
		{"versioned", func(b *Blueprint) *Blueprint { return b.VersionedCollapsingMergeTree("sign", "ver") }, "ENGINE = VersionedCollapsingMergeTree(sign, ver)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := NewBlueprint("t")
			bp.UInt64("id")
			assert.Contains(t, tt.build(bp).OrderBy("id").ToSQL(), tt.want)
		})
	}

	assert.True(t, ReplacingMergeTree.IsMergeTree())
	assert.False(t, Memory.IsMergeTree())
}

func TestTableSettingsMergeAndRaw(t *testing.T) {
	bp := NewBlueprint("t").
		TableSettings(map[string]any{"a": 1}).
		TableSettings(map[string]any{"b": sqlgen.NewRaw("toIntervalDay(1)"), "a": 2})
	assert.Contains(t, bp.ToSQL(), "\nSETTINGS a = 2, b = toIntervalDay(1);")
}

func TestTemporaryWithoutIfNotExists(t *testing.T) {
	bp := NewBlueprint("tmp").Temporary().SetIfNotExists(false).SetEngine(Memory)
	bp.Int32("x")
	assert.Equal(t, "CREATE TEMPORARY TABLE tmp (\n    x Int32\n) ENGINE = Memory;", bp.ToSQL())
}

func TestAlterDropOnly(t *testing.T) {
	bp := NewBlueprint("t").SetAltering(true)
	bp.DropColumn("x")

	sql := bp.ToAlterSQL()
	assert.Equal(t, "ALTER TABLE t DROP COLUMN x", sql)
	assert.NotContains(t, sql, "ADD")
	assert.NotContains(t, sql, "MODIFY")
}

func TestAlterAddModifyDrop(t *testing.T) {
	bp := NewBlueprint("t").SetAltering(true)
	bp.String("email").AsNullable().Comment("o'k")
	bp.ModifyColumn("age", TypeUInt16).Default("0")
	bp.DropColumn("legacy")

	assert.Empty(t, bp.Columns(), "altering declarations do not touch CREATE columns")
	assert.True(t, bp.HasChanges())
	assert.Equal(t,
		"ALTER TABLE t ADD COLUMN email Nullable(String) COMMENT 'o''k', MODIFY COLUMN age UInt16 DEFAULT 0, DROP COLUMN legacy",
		bp.ToAlterSQL())
}

func TestAlterWithoutChangesIsEmpty(t *testing.T) {
	bp := NewBlueprint("t").SetAltering(true)
	assert.False(t, bp.HasChanges())
	assert.Equal(t, "", bp.ToAlterSQL())
}

func TestToDropSQL(t *testing.T) {
	bp := NewBlueprint("t")
	assert.Equal(t, "DROP TABLE IF EXISTS t;", bp.ToDropSQL(true))
	assert.Equal(t, "DROP TABLE t;", bp.ToDropSQL(false))
}

func TestValidateDuplicates(t *testing.T) {
	bp := NewBlueprint("t")
	bp.UUID("id")
	bp.UUID("id")

	err := bp.Validate()
	assert.ErrorIs(t, err, ErrDuplicateColumn)
	var dup *DuplicateColumnError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"id"}, dup.Columns)

	// rendering stays permissive
	assert.Equal(t, 2, strings.Count(bp.ToSQL(), "    id UUID"))

	assert.ErrorIs(t, NewBlueprint("").Validate(), ErrNoTableName)
	assert.NoError(t, NewBlueprint("ok").Validate())
}
