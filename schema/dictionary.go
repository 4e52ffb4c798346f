package schema

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// DictionaryAttribute is one column of a dictionary.
type DictionaryAttribute struct {
	Name    string
	Type    string
	Default string // expression, rendered verbatim
}

// DictionaryDefinition describes CREATE DICTIONARY.
type DictionaryDefinition struct {
	Name       string
	Attributes []DictionaryAttribute
	PrimaryKey []string // defaults to id
	Source     DictionarySource
	Layout     string // defaults to HASHED()
	// LifetimeMin and LifetimeMax bound the refresh interval in seconds. A zero
	// LifetimeMin renders LIFETIME(max).
	LifetimeMin int
	LifetimeMax int
}

type sourceParam struct {
	key   string
	value any
}

// DictionarySource is a SOURCE(...) clause.
type DictionarySource struct {
	kind   string
	params []sourceParam
}

// NewDictionarySource builds a source of any kind from alternating key, value
// arguments. String values are quoted.
func NewDictionarySource(kind string, pairs ...any) DictionarySource {
	src := DictionarySource{kind: strings.ToUpper(kind)}
	for i := 0; i+1 < len(pairs); i += 2 {
		src.params = append(src.params, sourceParam{key: fmt.Sprint(pairs[i]), value: pairs[i+1]})
	}
	return src
}

// SQL renders the contents of SOURCE(...).
func (s DictionarySource) SQL() string {
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		parts[i] = p.key + " " + sqlgen.FormatValue(p.value)
	}
	return s.kind + "(" + strings.Join(parts, " ") + ")"
}

// IsZero reports whether the source was never set.
func (s DictionarySource) IsZero() bool {
	return s.kind == ""
}

// MySQLSource builds a MYSQL source from a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/db.
func MySQLSource(dsn, table string) (DictionarySource, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return DictionarySource{}, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	host, port, err := splitHostPort(cfg.Addr, 3306)
	if err != nil {
		return DictionarySource{}, err
	}
	return NewDictionarySource("MYSQL",
		"host", host,
		"port", port,
		"user", cfg.User,
		"password", cfg.Passwd,
		"db", cfg.DBName,
		"table", table,
	), nil
}

// PostgreSQLSource builds a POSTGRESQL source from a postgres:// URL.
func PostgreSQLSource(url, table string) (DictionarySource, error) {
	conninfo, err := pq.ParseURL(url)
	if err != nil {
		return DictionarySource{}, fmt.Errorf("failed to parse postgres url: %w", err)
	}
	kv := parseConninfo(conninfo)

	port := 5432
	if p, ok := kv["port"]; ok {
		if port, err = strconv.Atoi(p); err != nil {
			return DictionarySource{}, fmt.Errorf("invalid postgres port %q: %w", p, err)
		}
	}
	host := kv["host"]
	if host == "" {
		host = "localhost"
	}
	return NewDictionarySource("POSTGRESQL",
		"host", host,
		"port", port,
		"user", kv["user"],
		"password", kv["password"],
		"db", kv["dbname"],
		"table", table,
	), nil
}

// ClickHouseSourceConfig addresses a table on a ClickHouse server over the
// native protocol.
type ClickHouseSourceConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DB       string
	Table    string
}

// ClickHouseSource builds a CLICKHOUSE source.
func ClickHouseSource(cfg ClickHouseSourceConfig) DictionarySource {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.User == "" {
		cfg.User = "default"
	}
	if cfg.DB == "" {
		cfg.DB = "default"
	}
	return NewDictionarySource("CLICKHOUSE",
		"host", cfg.Host,
		"port", cfg.Port,
		"user", cfg.User,
		"password", cfg.Password,
		"db", cfg.DB,
		"table", cfg.Table,
	)
}

// ToSQL renders CREATE DICTIONARY IF NOT EXISTS.
func (d DictionaryDefinition) ToSQL() (string, error) {
	if d.Name == "" || len(d.Attributes) == 0 || d.Source.IsZero() {
		return "", fmt.Errorf("%w: name, attributes and source are required", ErrInvalidDictionary)
	}

	attrs := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		attrs[i] = "    " + a.Name + " " + a.Type
		if a.Default != "" {
			attrs[i] += " DEFAULT " + a.Default
		}
	}

	key := d.PrimaryKey
	if len(key) == 0 {
		key = []string{"id"}
	}
	layout := d.Layout
	if layout == "" {
		layout = "HASHED()"
	}
	lifetime := strconv.Itoa(d.LifetimeMax)
	if d.LifetimeMin > 0 {
		lifetime = fmt.Sprintf("MIN %d MAX %d", d.LifetimeMin, d.LifetimeMax)
	}

	var sb strings.Builder
	sb.WriteString("CREATE DICTIONARY IF NOT EXISTS " + d.Name + " (\n")
	sb.WriteString(strings.Join(attrs, ",\n"))
	sb.WriteString("\n)\nPRIMARY KEY " + strings.Join(key, ", "))
	sb.WriteString("\nSOURCE(" + d.Source.SQL() + ")")
	sb.WriteString("\nLAYOUT(" + layout + ")")
	sb.WriteString("\nLIFETIME(" + lifetime + ")")
	return sb.String(), nil
}

func splitHostPort(addr string, defaultPort int) (string, int, error) {
	if addr == "" {
		return "localhost", defaultPort, nil
	}
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defaultPort, nil
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", p, err)
	}
	return host, port, nil
}

// parseConninfo splits the "k=v k=v" string produced by pq.ParseURL, where
// spaces, quotes and backslashes inside values are backslash-escaped.
func parseConninfo(s string) map[string]string {
	out := map[string]string{}
	var key, cur strings.Builder
	inValue, escaped := false, false
	flush := func() {
		if key.Len() > 0 {
			out[key.String()] = cur.String()
		}
		key.Reset()
		cur.Reset()
		inValue = false
	}
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && inValue:
			escaped = true
		case r == '=' && !inValue:
			inValue = true
		case r == ' ':
			flush()
		case inValue:
			cur.WriteRune(r)
		default:
			key.WriteRune(r)
		}
	}
	flush()
	return out
}
