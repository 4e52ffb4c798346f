package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satishbabariya/chorm/internal/debug"
	"github.com/satishbabariya/chorm/query/sqlgen"
	"github.com/satishbabariya/chorm/runtime/connection"
)

// Schema runs DDL built with blueprints against an executor.
type Schema struct {
	exec   connection.Executor
	logger *slog.Logger
}

// New creates a Schema bound to exec.
func New(exec connection.Executor) *Schema {
	return &Schema{
		exec:   exec,
		logger: debug.With("component", "schema"),
	}
}

// Executor returns the executor the schema runs on.
func (s *Schema) Executor() connection.Executor {
	return s.exec
}

func (s *Schema) run(ctx context.Context, sql string) (*connection.Result, error) {
	s.logger.Debug("executing ddl", "sql", sql)
	return s.exec.Query(ctx, sql)
}

// Create builds a table with fn and runs CREATE TABLE. Blueprints that fail
// Validate are rejected before anything is sent.
func (s *Schema) Create(ctx context.Context, table string, fn func(*Blueprint)) error {
	bp := NewBlueprint(table)
	fn(bp)
	if err := bp.Validate(); err != nil {
		return err
	}
	if _, err := s.run(ctx, bp.ToSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// Drop drops a table.
func (s *Schema) Drop(ctx context.Context, table string, ifExists bool) error {
	if _, err := s.run(ctx, NewBlueprint(table).ToDropSQL(ifExists)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// CreateOrReplace drops the table if it exists and creates it again.
func (s *Schema) CreateOrReplace(ctx context.Context, table string, fn func(*Blueprint)) error {
	if err := s.Drop(ctx, table, true); err != nil {
		return err
	}
	return s.Create(ctx, table, fn)
}

// Alter collects changes with fn and runs ALTER TABLE. Nothing is sent when
// fn records no changes.
func (s *Schema) Alter(ctx context.Context, table string, fn func(*Blueprint)) error {
	bp := NewBlueprint(table).SetAltering(true)
	fn(bp)
	sql := bp.ToAlterSQL()
	if sql == "" {
		s.logger.Debug("alter has no changes", "table", table)
		return nil
	}
	if _, err := s.run(ctx, sql); err != nil {
		return fmt.Errorf("failed to alter table %s: %w", table, err)
	}
	return nil
}

// HasTable reports whether table exists in the current database.
func (s *Schema) HasTable(ctx context.Context, table string) (bool, error) {
	res, err := s.run(ctx, "SELECT 1 FROM system.tables WHERE database = currentDatabase() AND name = "+sqlgen.EscapeString(table))
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return len(res.Data) > 0, nil
}

// GetTable returns the system.tables row for table, or nil.
func (s *Schema) GetTable(ctx context.Context, table string) (connection.Row, error) {
	res, err := s.run(ctx, "SELECT * FROM system.tables WHERE database = currentDatabase() AND name = "+sqlgen.EscapeString(table))
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", table, err)
	}
	return res.First(), nil
}

// GetColumns returns the system.columns rows for table.
func (s *Schema) GetColumns(ctx context.Context, table string) ([]connection.Row, error) {
	res, err := s.run(ctx, "SELECT * FROM system.columns WHERE database = currentDatabase() AND table = "+sqlgen.EscapeString(table))
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of %s: %w", table, err)
	}
	return res.Data, nil
}

// HasColumn reports whether table has column.
func (s *Schema) HasColumn(ctx context.Context, table, column string) (bool, error) {
	res, err := s.run(ctx, "SELECT 1 FROM system.columns WHERE database = currentDatabase() AND table = "+
		sqlgen.EscapeString(table)+" AND name = "+sqlgen.EscapeString(column))
	if err != nil {
		return false, fmt.Errorf("failed to check column %s.%s: %w", table, column, err)
	}
	return len(res.Data) > 0, nil
}

// MaterializedViewOptions selects where a materialized view stores rows.
// To takes precedence over Engine.
type MaterializedViewOptions struct {
	To       string
	Engine   string
	Populate bool
}

// CreateMaterializedView runs CREATE MATERIALIZED VIEW IF NOT EXISTS.
func (s *Schema) CreateMaterializedView(ctx context.Context, name, selectSQL string, opts MaterializedViewOptions) error {
	sql := "CREATE MATERIALIZED VIEW IF NOT EXISTS " + name
	switch {
	case opts.To != "":
		sql += " TO " + opts.To
	case opts.Engine != "":
		sql += " ENGINE = " + opts.Engine
		if opts.Populate {
			sql += " POPULATE"
		}
	default:
		return ErrViewTarget
	}
	sql += " AS " + selectSQL

	if _, err := s.run(ctx, sql); err != nil {
		return fmt.Errorf("failed to create materialized view %s: %w", name, err)
	}
	return nil
}

// DropMaterializedView drops a materialized view.
func (s *Schema) DropMaterializedView(ctx context.Context, name string, ifExists bool) error {
	return s.dropObject(ctx, "MATERIALIZED VIEW", name, ifExists)
}

// CreateView runs CREATE VIEW IF NOT EXISTS name AS selectSQL.
func (s *Schema) CreateView(ctx context.Context, name, selectSQL string) error {
	if _, err := s.run(ctx, "CREATE VIEW IF NOT EXISTS "+name+" AS "+selectSQL); err != nil {
		return fmt.Errorf("failed to create view %s: %w", name, err)
	}
	return nil
}

// DropView drops a view.
func (s *Schema) DropView(ctx context.Context, name string, ifExists bool) error {
	return s.dropObject(ctx, "VIEW", name, ifExists)
}

// CreateDictionary runs CREATE DICTIONARY IF NOT EXISTS.
func (s *Schema) CreateDictionary(ctx context.Context, def DictionaryDefinition) error {
	sql, err := def.ToSQL()
	if err != nil {
		return err
	}
	if _, err := s.run(ctx, sql); err != nil {
		return fmt.Errorf("failed to create dictionary %s: %w", def.Name, err)
	}
	return nil
}

// DropDictionary drops a dictionary.
func (s *Schema) DropDictionary(ctx context.Context, name string, ifExists bool) error {
	return s.dropObject(ctx, "DICTIONARY", name, ifExists)
}

// CreateDatabase creates a database.
func (s *Schema) CreateDatabase(ctx context.Context, name string, ifNotExists bool) error {
	sql := "CREATE DATABASE "
	if ifNotExists {
		sql += "IF NOT EXISTS "
	}
	if _, err := s.run(ctx, sql+name); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// DropDatabase drops a database.
func (s *Schema) DropDatabase(ctx context.Context, name string, ifExists bool) error {
	return s.dropObject(ctx, "DATABASE", name, ifExists)
}

// Raw runs sql unchanged.
func (s *Schema) Raw(ctx context.Context, sql string) (*connection.Result, error) {
	return s.run(ctx, sql)
}

func (s *Schema) dropObject(ctx context.Context, kind, name string, ifExists bool) error {
	sql := "DROP " + kind + " "
	if ifExists {
		sql += "IF EXISTS "
	}
	if _, err := s.run(ctx, sql+name); err != nil {
		return fmt.Errorf("failed to drop %s %s: %w", kind, name, err)
	}
	return nil
}
