// Package connection talks to ClickHouse over its HTTP interface.
package connection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/satishbabariya/chorm/internal/debug"
)

// Executor sends SQL text to the database. Everything above the transport
// (query builder, schema, migrations, models) depends only on this.
type Executor interface {
	Query(ctx context.Context, sql string, opts ...QueryOption) (*Result, error)
}

// Config holds connection settings.
type Config struct {
	Protocol string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Timeout  time.Duration
	// Debug traces every query and its statistics at info level.
	Debug bool
}

// DefaultConfig returns the settings of a stock local server.
func DefaultConfig() Config {
	return Config{
		Protocol: "http",
		Host:     "localhost",
		Port:     8123,
		Database: "default",
		Username: "default",
		Password: "",
		Timeout:  30 * time.Second,
	}
}

// ConfigFromURL parses http[s]://user:pass@host:port/database into a Config,
// filling unset parts from DefaultConfig.
func ConfigFromURL(raw string) (Config, error) {
	cfg := DefaultConfig()

	u, err := url.Parse(raw)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse connection url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		cfg.Protocol = u.Scheme
	case "":
		return cfg, fmt.Errorf("connection url %q has no scheme", raw)
	default:
		return cfg, fmt.Errorf("unsupported protocol %q", u.Scheme)
	}

	if host := u.Hostname(); host != "" {
		cfg.Host = host
	}
	if port := u.Port(); port != "" {
		cfg.Port, err = strconv.Atoi(port)
		if err != nil {
			return cfg, fmt.Errorf("invalid port %q: %w", port, err)
		}
	} else if u.Scheme == "https" {
		cfg.Port = 8443
	}
	if u.User != nil {
		cfg.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Password = pw
		}
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		cfg.Database = db
	}
	return cfg, nil
}

// Endpoint returns protocol://host:port.
func (c Config) Endpoint() string {
	return c.Protocol + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Connection is a stateless HTTP client for one ClickHouse endpoint. It is
// safe for concurrent use; pooling exists to bound concurrency, not to share
// sockets.
type Connection struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a connection. Zero-valued fields of cfg take their defaults.
func New(cfg Config, opts ...Option) *Connection {
	def := DefaultConfig()
	if cfg.Protocol == "" {
		cfg.Protocol = def.Protocol
	}
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.Database == "" {
		cfg.Database = def.Database
	}
	if cfg.Username == "" {
		cfg.Username = def.Username
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	c := &Connection{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.Timeout}
	}
	if c.logger == nil {
		c.logger = debug.With("component", "connection", "host", cfg.Host)
	}
	return c
}

// Config returns a copy of the connection settings.
func (c *Connection) Config() Config {
	return c.config
}

var ddlStatement = regexp.MustCompile(`(?i)^(CREATE|ALTER|DROP|TRUNCATE|RENAME)`)

// IsDDL reports whether sql is a statement whose response carries no rows.
func IsDDL(sql string) bool {
	return ddlStatement.MatchString(strings.TrimSpace(sql))
}

func (c *Connection) requestURL(o QueryOptions) string {
	params := url.Values{}
	params.Set("database", c.config.Database)
	params.Set("default_format", string(o.Format))
	if o.SessionID != "" {
		params.Set("session_id", o.SessionID)
	}
	if o.TimeoutSeconds > 0 {
		params.Set("timeout_seconds", strconv.Itoa(o.TimeoutSeconds))
	}
	if o.MaxRowsToRead > 0 {
		params.Set("max_rows_to_read", strconv.Itoa(o.MaxRowsToRead))
	}
	for k, v := range o.Settings {
		params.Set(k, v)
	}
	return c.config.Endpoint() + "/?" + params.Encode()
}

// Query posts sql to the server and decodes the response. DDL statements and
// empty bodies yield an empty Result regardless of body content.
func (c *Connection) Query(ctx context.Context, sql string, opts ...QueryOption) (*Result, error) {
	o := buildQueryOptions(opts)
	endpoint := c.requestURL(o)

	level := slog.LevelDebug
	if c.config.Debug {
		level = slog.LevelInfo
	}
	c.logger.Log(ctx, level, "clickhouse query", "sql", sql, "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(sql))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("clickhouse request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		qe := newQueryError(resp.StatusCode, strings.TrimSpace(string(body)), sql)
		c.logger.Log(ctx, level, "clickhouse error", "status", resp.StatusCode, "code", qe.Code)
		return nil, qe
	}

	if IsDDL(sql) || len(strings.TrimSpace(string(body))) == 0 {
		return emptyResult(), nil
	}

	if o.Format != FormatJSON {
		res := emptyResult()
		res.Raw = body
		return res, nil
	}

	res, err := decodeResult(body)
	if err != nil {
		return nil, err
	}
	c.logger.Log(ctx, level, "clickhouse result",
		"rows", len(res.Data),
		"elapsed", res.Statistics.Elapsed,
		"rows_read", res.Statistics.RowsRead,
	)
	return res, nil
}

// Ping runs SELECT 1.
func (c *Connection) Ping(ctx context.Context) error {
	if _, err := c.Query(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close is a no-op; HTTP connections hold no server-side state.
func (c *Connection) Close() error {
	return nil
}
