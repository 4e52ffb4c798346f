package schema

// ClickHouse data type names.
const (
	TypeInt8    = "Int8"
	TypeUInt8   = "UInt8"
	TypeInt16   = "Int16"
	TypeUInt16  = "UInt16"
	TypeInt32   = "Int32"
	TypeUInt32  = "UInt32"
	TypeInt64   = "Int64"
	TypeUInt64  = "UInt64"
	TypeInt128  = "Int128"
	TypeUInt128 = "UInt128"
	TypeInt256  = "Int256"
	TypeUInt256 = "UInt256"

	TypeFloat32 = "Float32"
	TypeFloat64 = "Float64"

	TypeDecimal    = "Decimal"
	TypeDecimal32  = "Decimal32"
	TypeDecimal64  = "Decimal64"
	TypeDecimal128 = "Decimal128"
	TypeDecimal256 = "Decimal256"

	TypeString      = "String"
	TypeFixedString = "FixedString"

	TypeDate       = "Date"
	TypeDate32     = "Date32"
	TypeDateTime   = "DateTime"
	TypeDateTime64 = "DateTime64"

	TypeBool = "Bool"
	TypeUUID = "UUID"

	TypeArray          = "Array"
	TypeTuple          = "Tuple"
	TypeMap            = "Map"
	TypeNullable       = "Nullable"
	TypeLowCardinality = "LowCardinality"
	TypeNested         = "Nested"
	TypeEnum8          = "Enum8"
	TypeEnum16         = "Enum16"

	TypeIPv4 = "IPv4"
	TypeIPv6 = "IPv6"

	TypePoint        = "Point"
	TypeRing         = "Ring"
	TypePolygon      = "Polygon"
	TypeMultiPolygon = "MultiPolygon"

	TypeNothing  = "Nothing"
	TypeInterval = "Interval"
	TypeJSON     = "JSON"
)

// Engine is a ClickHouse table engine name.
type Engine string

// MergeTree family
const (
	MergeTree                    Engine = "MergeTree"
	ReplacingMergeTree           Engine = "ReplacingMergeTree"
	SummingMergeTree             Engine = "SummingMergeTree"
	AggregatingMergeTree         Engine = "AggregatingMergeTree"
	CollapsingMergeTree          Engine = "CollapsingMergeTree"
	VersionedCollapsingMergeTree Engine = "VersionedCollapsingMergeTree"
	GraphiteMergeTree            Engine = "GraphiteMergeTree"
)

// Log family
const (
	Log       Engine = "Log"
	TinyLog   Engine = "TinyLog"
	StripeLog Engine = "StripeLog"
)

// Integration engines
const (
	Kafka      Engine = "Kafka"
	MySQL      Engine = "MySQL"
	PostgreSQL Engine = "PostgreSQL"
	JDBC       Engine = "JDBC"
	HDFS       Engine = "HDFS"
	S3         Engine = "S3"
)

// Special engines
const (
	Distributed      Engine = "Distributed"
	MaterializedView Engine = "MaterializedView"
	Dictionary       Engine = "Dictionary"
	Merge            Engine = "Merge"
	File             Engine = "File"
	Null             Engine = "Null"
	Buffer           Engine = "Buffer"
	Memory           Engine = "Memory"
	Set              Engine = "Set"
	Join             Engine = "Join"
	URL              Engine = "URL"
	View             Engine = "View"
)

// IsMergeTree reports whether e belongs to the MergeTree family, the only
// engines that accept ORDER BY, PARTITION BY, SAMPLE BY and TTL.
func (e Engine) IsMergeTree() bool {
	switch e {
	case MergeTree, ReplacingMergeTree, SummingMergeTree, AggregatingMergeTree,
		CollapsingMergeTree, VersionedCollapsingMergeTree, GraphiteMergeTree:
		return true
	}
	return false
}
