package migrate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/chorm/schema"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// SQLMigration runs the statements of a NAME.up.sql / NAME.down.sql pair.
type SQLMigration struct {
	name string
	up   []string
	down []string
}

// NewSQLMigration builds a migration from SQL scripts. Each script may hold
// several statements separated by semicolons.
func NewSQLMigration(name, up, down string) *SQLMigration {
	return &SQLMigration{name: name, up: SplitStatements(up), down: SplitStatements(down)}
}

func (m *SQLMigration) Name() string { return m.name }

func (m *SQLMigration) Up(ctx context.Context, s *schema.Schema) error {
	return runStatements(ctx, s, m.up)
}

func (m *SQLMigration) Down(ctx context.Context, s *schema.Schema) error {
	if len(m.down) == 0 {
		return ErrNoDown
	}
	return runStatements(ctx, s, m.down)
}

func runStatements(ctx context.Context, s *schema.Schema, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := s.Raw(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// LoadSQLDir loads every NAME.up.sql in dir with its optional NAME.down.sql,
// sorted by name. Timestamp or sequence prefixes keep the order stable.
func LoadSQLDir(fs afero.Fs, dir string) ([]Migration, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), upSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), upSuffix))
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		up, err := afero.ReadFile(fs, filepath.Join(dir, name+upSuffix))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		var down []byte
		downPath := filepath.Join(dir, name+downSuffix)
		if ok, _ := afero.Exists(fs, downPath); ok {
			if down, err = afero.ReadFile(fs, downPath); err != nil {
				return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
			}
		}
		migrations = append(migrations, NewSQLMigration(name, string(up), string(down)))
	}
	return migrations, nil
}

// SplitStatements splits a script on semicolons outside string literals,
// quoted identifiers and comments. Empty statements are dropped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == '\\' && i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
			} else if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			cur.WriteRune('\n')
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return stmts
}
