package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/chorm/runtime/connection"
)

type fakeExecutor struct {
	queries []string
	rows    []connection.Row
}

func (f *fakeExecutor) Query(ctx context.Context, sql string, opts ...connection.QueryOption) (*connection.Result, error) {
	f.queries = append(f.queries, sql)
	return &connection.Result{Data: f.rows}, nil
}

func ledgerRows() []connection.Row {
	return []connection.Row{
		{"name": "001_create_users", "batch": json.Number("1"), "execution_time": json.Number("0.25"), "created_at": "2024-05-01 10:00:00"},
		{"name": "002_add_email", "batch": "2", "execution_time": nil, "created_at": "2024-05-02 10:00:00"},
	}
}

func TestEnsureTable(t *testing.T) {
	exec := &fakeExecutor{}
	m := NewManager(exec, "")
	assert.Equal(t, DefaultTable, m.Table())

	require.NoError(t, m.EnsureTable(context.Background()))
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS migrations (\n"+
		"    name String COMMENT 'Name of the migration',\n"+
		"    batch UInt32 COMMENT 'Batch number of the migration',\n"+
		"    execution_time Nullable(Float64) COMMENT 'Execution time of the migration in seconds',\n"+
		"    created_at DateTime COMMENT 'Timestamp when the migration was applied'\n"+
		") ENGINE = ReplacingMergeTree\n"+
		"ORDER BY (name);", exec.queries[0])
}

func TestRecords(t *testing.T) {
	exec := &fakeExecutor{rows: ledgerRows()}
	m := NewManager(exec, "schema_migrations")

	records, err := m.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM schema_migrations FINAL ORDER BY created_at ASC, name ASC", exec.queries[0])

	require.Len(t, records, 2)
	assert.Equal(t, "001_create_users", records[0].Name)
	assert.Equal(t, uint32(1), records[0].Batch)
	require.NotNil(t, records[0].ExecutionTime)
	assert.InDelta(t, 0.25, *records[0].ExecutionTime, 1e-9)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), records[0].CreatedAt)
	assert.Equal(t, uint32(2), records[1].Batch)
	assert.Nil(t, records[1].ExecutionTime)

	names, err := m.AppliedNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_users", "002_add_email"}, names)

	pending, err := m.Pending(context.Background(), []string{"001_create_users", "003_new", "002_add_email", "004_newer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"003_new", "004_newer"}, pending)
}

func TestByBatch(t *testing.T) {
	exec := &fakeExecutor{rows: ledgerRows()[1:]}
	records, err := NewManager(exec, "").ByBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM migrations FINAL WHERE batch = 2 ORDER BY created_at DESC, name DESC", exec.queries[0])
	require.Len(t, records, 1)
	assert.Equal(t, "002_add_email", records[0].Name)
}

func TestLastBatch(t *testing.T) {
	exec := &fakeExecutor{rows: []connection.Row{{"max_value": json.Number("3")}}}
	m := NewManager(exec, "")

	batch, err := m.LastBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(3), batch)
	assert.Equal(t, "SELECT max(batch) as max_value FROM migrations FINAL LIMIT 1", exec.queries[0])

	exec.rows = nil
	batch, err = m.LastBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, batch)
}

func TestRecordAndDelete(t *testing.T) {
	exec := &fakeExecutor{}
	m := NewManager(exec, "")
	ctx := context.Background()

	elapsed := 0.5
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, m.Record(ctx, MigrationRecord{Name: "001_a", Batch: 1, ExecutionTime: &elapsed, CreatedAt: created}))
	require.NoError(t, m.Record(ctx, MigrationRecord{Name: "002_b", Batch: 1, CreatedAt: created}))
	require.NoError(t, m.Delete(ctx, "001_a"))

	assert.Equal(t, []string{
		"INSERT INTO migrations (name, batch, execution_time, created_at) VALUES ('001_a', 1, 0.5, toDateTime('2024-05-01 10:00:00'))",
		"INSERT INTO migrations (name, batch, execution_time, created_at) VALUES ('002_b', 1, NULL, toDateTime('2024-05-01 10:00:00'))",
		"ALTER TABLE migrations DELETE WHERE name = '001_a'",
	}, exec.queries)
}

func TestDecodeRejectsBadBatch(t *testing.T) {
	exec := &fakeExecutor{rows: []connection.Row{{"name": "x", "batch": "abc"}}}
	_, err := NewManager(exec, "").Records(context.Background())
	assert.Error(t, err)
}
