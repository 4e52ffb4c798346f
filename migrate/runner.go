package migrate

import (
	"context"
	"log/slog"
	"time"

	"github.com/satishbabariya/chorm/internal/debug"
	"github.com/satishbabariya/chorm/migrate/history"
	"github.com/satishbabariya/chorm/runtime/connection"
	"github.com/satishbabariya/chorm/schema"
)

// Ledger persists which migrations ran in which batch.
type Ledger interface {
	EnsureTable(ctx context.Context) error
	Records(ctx context.Context) ([]history.MigrationRecord, error)
	ByBatch(ctx context.Context, batch uint32) ([]history.MigrationRecord, error)
	LastBatch(ctx context.Context) (uint32, error)
	Pending(ctx context.Context, available []string) ([]string, error)
	Record(ctx context.Context, record history.MigrationRecord) error
	Delete(ctx context.Context, name string) error
}

// Status describes one migration for reporting.
type Status struct {
	Name          string     `json:"name" yaml:"name"`
	Batch         uint32     `json:"batch,omitempty" yaml:"batch,omitempty"`
	AppliedAt     *time.Time `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
	ExecutionTime *float64   `json:"execution_time,omitempty" yaml:"execution_time,omitempty"`
	Pending       bool       `json:"pending" yaml:"pending"`
	// Missing is set for ledger records without a registered migration.
	Missing bool `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithLedger replaces the ledger table manager.
func WithLedger(l Ledger) Option {
	return func(r *Runner) {
		r.ledger = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// Runner applies registered migrations in batches. A batch is every
// migration applied by one Run call; Rollback reverts the last batch.
type Runner struct {
	exec         connection.Executor
	schema       *schema.Schema
	ledger       Ledger
	customLedger bool
	tracker      *Tracker
	migrations   []Migration
	logger       *slog.Logger
	now          func() time.Time
}

// NewRunner creates a runner whose ledger lives in the "migrations" table.
func NewRunner(exec connection.Executor, opts ...Option) *Runner {
	r := &Runner{
		exec:    exec,
		schema:  schema.New(exec),
		tracker: NewTracker(),
		logger:  debug.With("component", "migrate"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ledger == nil {
		r.ledger = history.NewManager(exec, history.DefaultTable)
	} else {
		r.customLedger = true
	}
	return r
}

// SetMigrationsTable moves the ledger to table. It has no effect when a
// custom ledger was given with WithLedger.
func (r *Runner) SetMigrationsTable(table string) *Runner {
	if !r.customLedger {
		r.ledger = history.NewManager(r.exec, table)
	}
	return r
}

// Add registers a migration.
func (r *Runner) Add(m Migration) *Runner {
	r.migrations = append(r.migrations, m)
	return r
}

// AddMultiple registers several migrations in order.
func (r *Runner) AddMultiple(ms ...Migration) *Runner {
	r.migrations = append(r.migrations, ms...)
	return r
}

// SetMigrations replaces the registered migrations.
func (r *Runner) SetMigrations(ms []Migration) *Runner {
	r.migrations = append([]Migration(nil), ms...)
	return r
}

// MigrationNames returns the registered names in order.
func (r *Runner) MigrationNames() []string {
	names := make([]string, len(r.migrations))
	for i, m := range r.migrations {
		names[i] = m.Name()
	}
	return names
}

// Executor returns the executor migrations run on.
func (r *Runner) Executor() connection.Executor {
	return r.exec
}

// Schema returns the schema handed to migrations.
func (r *Runner) Schema() *schema.Schema {
	return r.schema
}

// EnsureMigrationsTable creates the ledger table if needed.
func (r *Runner) EnsureMigrationsTable(ctx context.Context) error {
	return r.ledger.EnsureTable(ctx)
}

// MigrationRecords returns the ledger, oldest first.
func (r *Runner) MigrationRecords(ctx context.Context) ([]history.MigrationRecord, error) {
	if err := r.EnsureMigrationsTable(ctx); err != nil {
		return nil, err
	}
	return r.ledger.Records(ctx)
}

// LastBatchNumber returns the highest recorded batch, 0 when none.
func (r *Runner) LastBatchNumber(ctx context.Context) (uint32, error) {
	return r.ledger.LastBatch(ctx)
}

// PendingMigrations returns the names of registered migrations without a
// ledger record, in registration order.
func (r *Runner) PendingMigrations(ctx context.Context) ([]string, error) {
	pending, err := r.pending(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pending))
	for i, m := range pending {
		names[i] = m.Name()
	}
	return names, nil
}

func (r *Runner) pending(ctx context.Context) ([]Migration, error) {
	if err := r.EnsureMigrationsTable(ctx); err != nil {
		return nil, err
	}
	names, err := r.ledger.Pending(ctx, r.MigrationNames())
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byName[m.Name()] = m
	}
	pending := make([]Migration, 0, len(names))
	for _, name := range names {
		pending = append(pending, byName[name])
	}
	return pending, nil
}

// Run applies every pending migration as one new batch and returns how many
// were applied. It stops at the first failure; migrations applied before it
// stay recorded.
func (r *Runner) Run(ctx context.Context) (int, error) {
	pending, err := r.pending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		r.logger.Info("nothing to migrate")
		return 0, nil
	}

	last, err := r.ledger.LastBatch(ctx)
	if err != nil {
		return 0, err
	}
	batch := last + 1

	applied := 0
	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		r.logger.Info("applying migration", "name", m.Name(), "batch", batch)
		start := time.Now()
		if err := r.tracker.Apply(ctx, m, r.schema); err != nil {
			return applied, err
		}
		elapsed := time.Since(start).Seconds()

		if err := r.ledger.Record(ctx, history.MigrationRecord{
			Name:          m.Name(),
			Batch:         batch,
			ExecutionTime: &elapsed,
			CreatedAt:     r.now().UTC().Truncate(time.Second),
		}); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Rollback reverts the last batch, newest migration first, and returns how
// many were reverted.
func (r *Runner) Rollback(ctx context.Context) (int, error) {
	if err := r.EnsureMigrationsTable(ctx); err != nil {
		return 0, err
	}
	last, err := r.ledger.LastBatch(ctx)
	if err != nil || last == 0 {
		return 0, err
	}
	records, err := r.ledger.ByBatch(ctx, last)
	if err != nil {
		return 0, err
	}
	return r.revert(ctx, records)
}

// Reset reverts every recorded migration, newest first.
func (r *Runner) Reset(ctx context.Context) (int, error) {
	records, err := r.MigrationRecords(ctx)
	if err != nil {
		return 0, err
	}
	reversed := make([]history.MigrationRecord, len(records))
	for i, rec := range records {
		reversed[len(records)-1-i] = rec
	}
	return r.revert(ctx, reversed)
}

// Refresh resets and runs all migrations again. It returns the number
// applied by the new run.
func (r *Runner) Refresh(ctx context.Context) (int, error) {
	if _, err := r.Reset(ctx); err != nil {
		return 0, err
	}
	return r.Run(ctx)
}

// revert undoes records in the given order. Records with no registered
// migration are skipped and keep their ledger row.
func (r *Runner) revert(ctx context.Context, records []history.MigrationRecord) (int, error) {
	byName := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byName[m.Name()] = m
	}

	var targets []Migration
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			r.logger.Warn("no registered migration for ledger record", "name", rec.Name)
			continue
		}
		r.tracker.SetApplied(m.Name(), true)
		targets = append(targets, m)
	}

	reverted := 0
	for _, m := range targets {
		if err := ctx.Err(); err != nil {
			return reverted, err
		}

		r.logger.Info("reverting migration", "name", m.Name())
		if err := r.tracker.Revert(ctx, m, r.schema); err != nil {
			return reverted, err
		}
		if err := r.ledger.Delete(ctx, m.Name()); err != nil {
			return reverted, err
		}
		reverted++
	}
	return reverted, nil
}

// Status reports every registered migration with its ledger record, then
// any recorded migration that is no longer registered.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	records, err := r.MigrationRecords(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]history.MigrationRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	out := make([]Status, 0, len(r.migrations))
	seen := make(map[string]bool, len(r.migrations))
	for _, m := range r.migrations {
		seen[m.Name()] = true
		rec, ok := byName[m.Name()]
		if !ok {
			out = append(out, Status{Name: m.Name(), Pending: true})
			continue
		}
		out = append(out, statusOf(rec, false))
	}
	for _, rec := range records {
		if !seen[rec.Name] {
			out = append(out, statusOf(rec, true))
		}
	}
	return out, nil
}

func statusOf(rec history.MigrationRecord, missing bool) Status {
	appliedAt := rec.CreatedAt
	return Status{
		Name:          rec.Name,
		Batch:         rec.Batch,
		AppliedAt:     &appliedAt,
		ExecutionTime: rec.ExecutionTime,
		Missing:       missing,
	}
}
