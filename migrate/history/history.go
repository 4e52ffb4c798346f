// Package history manages migration history tracking.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/satishbabariya/chorm/query/builder"
	"github.com/satishbabariya/chorm/runtime/connection"
	"github.com/satishbabariya/chorm/schema"
)

// DefaultTable is the default ledger table name.
const DefaultTable = "migrations"

// MigrationRecord represents a migration in the history
type MigrationRecord struct {
	Name  string
	Batch uint32
	// ExecutionTime is in seconds; nil when unknown.
	ExecutionTime *float64
	CreatedAt     time.Time
}

// Manager manages migration history
type Manager struct {
	exec  connection.Executor
	table string
}

// NewManager creates a new migration history manager
func NewManager(exec connection.Executor, table string) *Manager {
	if table == "" {
		table = DefaultTable
	}
	return &Manager{
		exec:  exec,
		table: table,
	}
}

// Table returns the ledger table name.
func (m *Manager) Table() string {
	return m.table
}

// Blueprint describes the ledger table. Rows are keyed by name, so a
// re-recorded migration replaces its previous row on merge.
func (m *Manager) Blueprint() *schema.Blueprint {
	bp := schema.NewBlueprint(m.table)
	bp.String("name").Comment("Name of the migration")
	bp.UInt32("batch").Comment("Batch number of the migration")
	bp.Float64("execution_time").AsNullable().Comment("Execution time of the migration in seconds")
	bp.DateTime("created_at").Comment("Timestamp when the migration was applied")
	return bp.ReplacingMergeTree().OrderBy("name")
}

// EnsureTable creates the ledger table if it does not exist.
func (m *Manager) EnsureTable(ctx context.Context) error {
	if _, err := m.exec.Query(ctx, m.Blueprint().ToSQL()); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

func (m *Manager) query() *builder.QueryBuilder {
	return builder.New(m.exec, m.table).Final()
}

// Records returns all migration records, oldest first.
func (m *Manager) Records(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := m.query().OrderBy("created_at", "ASC").OrderBy("name", "ASC").Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	return decodeRecords(rows)
}

// ByBatch returns the records of one batch, newest first.
func (m *Manager) ByBatch(ctx context.Context, batch uint32) ([]MigrationRecord, error) {
	rows, err := m.query().Where("batch", batch).OrderByDesc("created_at").OrderByDesc("name").Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations of batch %d: %w", batch, err)
	}
	return decodeRecords(rows)
}

// LastBatch returns the highest batch number, or 0 for an empty ledger.
func (m *Manager) LastBatch(ctx context.Context) (uint32, error) {
	v, err := m.query().Max(ctx, "batch")
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	batch, err := cast.ToUint32E(v)
	if err != nil {
		return 0, fmt.Errorf("failed to read last batch: %w", err)
	}
	return batch, nil
}

// AppliedNames returns names of all applied migrations
func (m *Manager) AppliedNames(ctx context.Context) ([]string, error) {
	records, err := m.Records(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return names, nil
}

// Pending returns the names in available that have no record, keeping their
// order.
func (m *Manager) Pending(ctx context.Context, available []string) ([]string, error) {
	applied, err := m.AppliedNames(ctx)
	if err != nil {
		return nil, err
	}

	appliedMap := make(map[string]bool, len(applied))
	for _, name := range applied {
		appliedMap[name] = true
	}

	var pending []string
	for _, name := range available {
		if !appliedMap[name] {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

// Record records a migration execution
func (m *Manager) Record(ctx context.Context, record MigrationRecord) error {
	var execTime any
	if record.ExecutionTime != nil {
		execTime = *record.ExecutionTime
	}
	row := builder.NewRow(
		"name", record.Name,
		"batch", record.Batch,
		"execution_time", execTime,
		"created_at", record.CreatedAt,
	)
	if _, err := builder.New(m.exec, m.table).Insert(ctx, row); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", record.Name, err)
	}
	return nil
}

// Delete removes the record of a migration. The mutation runs synchronously
// so the next read no longer sees it.
func (m *Manager) Delete(ctx context.Context, name string) error {
	_, err := builder.New(m.exec, m.table).
		Where("name", name).
		SetDelete().
		Exec(ctx, connection.WithSetting("mutations_sync", 1))
	if err != nil {
		return fmt.Errorf("failed to delete migration record %s: %w", name, err)
	}
	return nil
}

func decodeRecords(rows []connection.Row) ([]MigrationRecord, error) {
	records := make([]MigrationRecord, 0, len(rows))
	for _, row := range rows {
		record, err := decodeRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(row connection.Row) (MigrationRecord, error) {
	var (
		record MigrationRecord
		err    error
	)
	record.Name = cast.ToString(row["name"])
	if record.Batch, err = cast.ToUint32E(row["batch"]); err != nil {
		return record, fmt.Errorf("failed to scan batch of %s: %w", record.Name, err)
	}
	if v := row["execution_time"]; v != nil {
		t, err := cast.ToFloat64E(v)
		if err != nil {
			return record, fmt.Errorf("failed to scan execution_time of %s: %w", record.Name, err)
		}
		record.ExecutionTime = &t
	}
	if v := row["created_at"]; v != nil {
		if record.CreatedAt, err = cast.ToTimeInDefaultLocationE(v, time.UTC); err != nil {
			return record, fmt.Errorf("failed to scan created_at of %s: %w", record.Name, err)
		}
	}
	return record, nil
}
