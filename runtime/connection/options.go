package connection

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Format is the ClickHouse output format requested via default_format.
type Format string

const (
	FormatJSON         Format = "JSON"
	FormatJSONCompact  Format = "JSONCompact"
	FormatJSONEachRow  Format = "JSONEachRow"
	FormatTSV          Format = "TSV"
	FormatTSVWithNames Format = "TSVWithNames"
	FormatCSV          Format = "CSV"
	FormatCSVWithNames Format = "CSVWithNames"
)

// QueryOptions are per-request URL parameters.
type QueryOptions struct {
	Format         Format
	SessionID      string
	TimeoutSeconds int
	MaxRowsToRead  int
	Settings       map[string]string
}

// QueryOption configures a single query.
type QueryOption func(*QueryOptions)

// WithFormat overrides the JSON default. Only JSON bodies are decoded into
// Result.Data; other formats are available through Result.Raw.
func WithFormat(f Format) QueryOption {
	return func(o *QueryOptions) { o.Format = f }
}

// WithSessionID runs the query inside a server-side session.
func WithSessionID(id string) QueryOption {
	return func(o *QueryOptions) { o.SessionID = id }
}

// WithNewSession runs the query in a freshly generated session.
func WithNewSession() QueryOption {
	return WithSessionID(uuid.NewString())
}

// WithTimeoutSeconds sets the server-side timeout_seconds parameter.
func WithTimeoutSeconds(n int) QueryOption {
	return func(o *QueryOptions) { o.TimeoutSeconds = n }
}

// WithMaxRowsToRead sets max_rows_to_read.
func WithMaxRowsToRead(n int) QueryOption {
	return func(o *QueryOptions) { o.MaxRowsToRead = n }
}

// WithSetting passes an arbitrary ClickHouse setting as a URL parameter.
func WithSetting(key string, value any) QueryOption {
	return func(o *QueryOptions) {
		if o.Settings == nil {
			o.Settings = make(map[string]string)
		}
		o.Settings[key] = fmt.Sprint(value)
	}
}

func buildQueryOptions(opts []QueryOption) QueryOptions {
	o := QueryOptions{Format: FormatJSON}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Format == "" {
		o.Format = FormatJSON
	}
	return o
}

// Option configures a Connection.
type Option func(*Connection)

// WithHTTPClient replaces the default client built from Config.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(conn *Connection) { conn.client = c }
}

// WithLogger sets the logger queries are traced to.
func WithLogger(l *slog.Logger) Option {
	return func(conn *Connection) { conn.logger = l }
}
