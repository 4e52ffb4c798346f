package migrate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/chorm/internal/debug"
	"github.com/satishbabariya/chorm/schema"
)

const seedSuffix = ".sql"

// Seeder fills tables from a SQL script. Seeders have no ledger: every Seed
// call runs them again.
type Seeder struct {
	name  string
	stmts []string
}

// NewSQLSeeder builds a seeder from a script of semicolon separated
// statements.
func NewSQLSeeder(name, script string) *Seeder {
	return &Seeder{name: name, stmts: SplitStatements(script)}
}

func (s *Seeder) Name() string { return s.name }

// Run executes the seeder's statements in order.
func (s *Seeder) Run(ctx context.Context, sc *schema.Schema) error {
	return runStatements(ctx, sc, s.stmts)
}

// LoadSeedDir loads every NAME.sql in dir, sorted by name. A missing dir
// holds no seeders.
func LoadSeedDir(fs afero.Fs, dir string) ([]*Seeder, error) {
	if ok, _ := afero.DirExists(fs, dir); !ok {
		return nil, nil
	}
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeders directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), seedSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), seedSuffix))
	}
	sort.Strings(names)

	seeders := make([]*Seeder, 0, len(names))
	for _, name := range names {
		script, err := afero.ReadFile(fs, filepath.Join(dir, name+seedSuffix))
		if err != nil {
			return nil, fmt.Errorf("failed to read seeder %s: %w", name, err)
		}
		seeders = append(seeders, NewSQLSeeder(name, string(script)))
	}
	return seeders, nil
}

// Seed runs seeders in order and returns how many completed. Names, when
// given, restrict the run to those seeders; an unknown name is an error and
// nothing runs.
func Seed(ctx context.Context, sc *schema.Schema, seeders []*Seeder, names ...string) (int, error) {
	selected := seeders
	if len(names) > 0 {
		byName := make(map[string]*Seeder, len(seeders))
		for _, s := range seeders {
			byName[s.name] = s
		}
		selected = make([]*Seeder, 0, len(names))
		for _, name := range names {
			s, ok := byName[name]
			if !ok {
				return 0, fmt.Errorf("seeder %s not found", name)
			}
			selected = append(selected, s)
		}
	}

	logger := debug.With("component", "seed")
	for i, s := range selected {
		logger.Info("running seeder", "name", s.name)
		if err := s.Run(ctx, sc); err != nil {
			logger.Error("seeder failed", "name", s.name, "error", err)
			return i, fmt.Errorf("seeder %s: %w", s.name, err)
		}
	}
	return len(selected), nil
}
