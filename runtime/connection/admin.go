package connection

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// Execute binds each ? in sql to the matching param and runs the query.
func (c *Connection) Execute(ctx context.Context, sql string, params []any, opts ...QueryOption) (*Result, error) {
	return c.Query(ctx, sqlgen.Bind(sql, params...), opts...)
}

// Insert writes rows into table. Column order follows the first row.
func (c *Connection) Insert(ctx context.Context, table string, rows []sqlgen.Row, opts ...QueryOption) (*Result, error) {
	sql, err := sqlgen.NewGenerator().GenerateInsert(&sqlgen.Statement{
		Type:  sqlgen.InsertStatement,
		Table: table,
		Rows:  rows,
	})
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, sql, opts...)
}

// ServerInfo returns the rows of system.build_options.
func (c *Connection) ServerInfo(ctx context.Context) ([]Row, error) {
	res, err := c.Query(ctx, "SELECT * FROM system.build_options")
	if err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	return res.Data, nil
}

// ServerVersion returns the parsed server release.
func (c *Connection) ServerVersion(ctx context.Context) (*version.Version, error) {
	res, err := c.Query(ctx, "SELECT version() AS version")
	if err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}
	row := res.First()
	if row == nil {
		return nil, fmt.Errorf("%w: empty version response", ErrInvalidResponse)
	}
	v, err := version.NewVersion(fmt.Sprint(row["version"]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server version: %w", err)
	}
	return v, nil
}

// ListDatabases returns every database name.
func (c *Connection) ListDatabases(ctx context.Context) ([]string, error) {
	res, err := c.Query(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return res.Strings("name"), nil
}

// ListTables returns the tables of the configured database.
func (c *Connection) ListTables(ctx context.Context) ([]string, error) {
	res, err := c.Query(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return res.Strings("name"), nil
}

// DescribeTable returns DESCRIBE TABLE rows (name, type, default_type, ...).
func (c *Connection) DescribeTable(ctx context.Context, table string) ([]Row, error) {
	res, err := c.Query(ctx, "DESCRIBE TABLE "+sqlgen.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	return res.Data, nil
}

// CreateDatabase creates database if it does not exist.
func (c *Connection) CreateDatabase(ctx context.Context, database string) error {
	if _, err := c.Query(ctx, "CREATE DATABASE IF NOT EXISTS "+sqlgen.QuoteIdentifier(database)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", database, err)
	}
	return nil
}

// DropDatabase drops database if it exists.
func (c *Connection) DropDatabase(ctx context.Context, database string) error {
	if _, err := c.Query(ctx, "DROP DATABASE IF EXISTS "+sqlgen.QuoteIdentifier(database)); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", database, err)
	}
	return nil
}
