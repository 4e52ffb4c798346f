package chtype

// GoKind classifies a GoType.
type GoKind int

const (
	Named GoKind = iota
	Pointer
	Slice
	Map
)

// GoType describes the Go type a column decodes into.
type GoType struct {
	Kind GoKind
	// Package is the import path of a Named type, empty for builtins.
	Package string
	Name    string
	Elem    *GoType
	Key     *GoType
}

func named(name string) GoType {
	return GoType{Kind: Named, Name: name}
}

var (
	timeGo = GoType{Kind: Named, Package: "time", Name: "Time"}
	anyGo  = named("any")
)

// String renders the type as Go source, e.g. "[]*time.Time".
func (g GoType) String() string {
	switch g.Kind {
	case Pointer:
		return "*" + g.Elem.String()
	case Slice:
		return "[]" + g.Elem.String()
	case Map:
		return "map[" + g.Key.String() + "]" + g.Elem.String()
	}
	if g.Package != "" {
		return pkgName(g.Package) + "." + g.Name
	}
	return g.Name
}

func pkgName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// Imports returns the import paths the type needs.
func (g GoType) Imports() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(GoType)
	walk = func(t GoType) {
		if t.Package != "" && !seen[t.Package] {
			seen[t.Package] = true
			out = append(out, t.Package)
		}
		if t.Key != nil {
			walk(*t.Key)
		}
		if t.Elem != nil {
			walk(*t.Elem)
		}
	}
	walk(g)
	return out
}

// GoType maps t to the type the JSON result of the column decodes into.
// 128 and 256 bit integers arrive as strings and stay strings. Unknown
// types map to any.
func (t *Type) GoType() GoType {
	switch t.Name {
	case "Int8", "Int16", "Int32", "Int64",
		"UInt8", "UInt16", "UInt32", "UInt64",
		"Float32", "Float64":
		return named(goIntName(t.Name))
	case "Int128", "Int256", "UInt128", "UInt256",
		"String", "FixedString", "UUID", "IPv4", "IPv6",
		"Enum", "Enum8", "Enum16", "JSON", "Object":
		return named("string")
	case "Decimal", "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		return named("float64")
	case "Bool", "Boolean":
		return named("bool")
	case "Date", "Date32", "DateTime", "DateTime64":
		return timeGo
	case "Nullable":
		if inner := t.Inner(); inner != nil {
			elem := inner.GoType()
			return GoType{Kind: Pointer, Elem: &elem}
		}
	case "LowCardinality", "SimpleAggregateFunction":
		args := t.TypeArgs()
		if len(args) > 0 {
			return args[len(args)-1].GoType()
		}
	case "Array":
		if inner := t.Inner(); inner != nil {
			elem := inner.GoType()
			return GoType{Kind: Slice, Elem: &elem}
		}
	case "Map":
		if args := t.TypeArgs(); len(args) == 2 {
			key, elem := args[0].GoType(), args[1].GoType()
			return GoType{Kind: Map, Key: &key, Elem: &elem}
		}
	case "Tuple":
		if len(t.Fields()) > 0 {
			return mapOfAny()
		}
		return GoType{Kind: Slice, Elem: &anyGo}
	case "Nested":
		elem := mapOfAny()
		return GoType{Kind: Slice, Elem: &elem}
	}
	return anyGo
}

func mapOfAny() GoType {
	key := named("string")
	return GoType{Kind: Map, Key: &key, Elem: &anyGo}
}

func goIntName(ch string) string {
	switch ch {
	case "Float32":
		return "float32"
	case "Float64":
		return "float64"
	}
	if len(ch) > 4 && ch[:4] == "UInt" {
		return "uint" + ch[4:]
	}
	return "int" + ch[3:]
}
