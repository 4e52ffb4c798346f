// Package migrate provides database migration capabilities for chorm.
// It tracks applied migrations in a ledger table and runs them in batches.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/satishbabariya/chorm/schema"
)

var (
	// ErrAlreadyApplied is returned when applying a migration twice.
	ErrAlreadyApplied = errors.New("migration has already been applied")
	// ErrNotApplied is returned when reverting a migration that was never
	// applied.
	ErrNotApplied = errors.New("migration has not been applied yet")
	// ErrNoDown is returned by migrations that cannot be reverted.
	ErrNoDown = errors.New("migration has no down step")
)

// Migration is one reversible schema change.
type Migration interface {
	Name() string
	Up(ctx context.Context, s *schema.Schema) error
	Down(ctx context.Context, s *schema.Schema) error
}

// MigrationError wraps a failed up or down step with the migration name.
type MigrationError struct {
	Name string
	Op   string // "apply" or "revert"
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("failed to %s migration %s: %v", e.Op, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// Tracker remembers which migrations are applied in this process and
// guards against applying or reverting one twice.
type Tracker struct {
	mu      sync.Mutex
	applied map[string]bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{applied: map[string]bool{}}
}

// IsApplied reports whether name is marked applied.
func (t *Tracker) IsApplied(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applied[name]
}

// SetApplied marks name as applied or not, e.g. from ledger records.
func (t *Tracker) SetApplied(name string, applied bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if applied {
		t.applied[name] = true
	} else {
		delete(t.applied, name)
	}
}

// Apply runs m.Up and marks it applied on success.
func (t *Tracker) Apply(ctx context.Context, m Migration, s *schema.Schema) error {
	if t.IsApplied(m.Name()) {
		return &MigrationError{Name: m.Name(), Op: "apply", Err: ErrAlreadyApplied}
	}
	if err := m.Up(ctx, s); err != nil {
		return &MigrationError{Name: m.Name(), Op: "apply", Err: err}
	}
	t.SetApplied(m.Name(), true)
	return nil
}

// Revert runs m.Down and clears the applied mark on success.
func (t *Tracker) Revert(ctx context.Context, m Migration, s *schema.Schema) error {
	if !t.IsApplied(m.Name()) {
		return &MigrationError{Name: m.Name(), Op: "revert", Err: ErrNotApplied}
	}
	if err := m.Down(ctx, s); err != nil {
		return &MigrationError{Name: m.Name(), Op: "revert", Err: err}
	}
	t.SetApplied(m.Name(), false)
	return nil
}

// StepFunc is the body of an up or down step.
type StepFunc func(ctx context.Context, s *schema.Schema) error

type funcMigration struct {
	name     string
	up, down StepFunc
}

// Func builds a migration from two functions. A nil down makes Down return
// ErrNoDown.
func Func(name string, up, down StepFunc) Migration {
	return &funcMigration{name: name, up: up, down: down}
}

func (m *funcMigration) Name() string { return m.name }

func (m *funcMigration) Up(ctx context.Context, s *schema.Schema) error {
	if m.up == nil {
		return nil
	}
	return m.up(ctx, s)
}

func (m *funcMigration) Down(ctx context.Context, s *schema.Schema) error {
	if m.down == nil {
		return ErrNoDown
	}
	return m.down(ctx, s)
}
