// Package generator writes Go sources for chorm projects: model structs
// bound to tables plus migration and seeder stubs.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"github.com/spf13/afero"

	"github.com/satishbabariya/chorm/internal/debug"
)

const (
	modelPkg     = "github.com/satishbabariya/chorm/model"
	migratePkg   = "github.com/satishbabariya/chorm/migrate"
	schemaPkg    = "github.com/satishbabariya/chorm/schema"
	connPkg      = "github.com/satishbabariya/chorm/runtime/connection"
	generatedMsg = "Code generated by chorm. You may edit this file."
)

// ErrFileExists is returned instead of overwriting an existing file.
var ErrFileExists = errors.New("file already exists")

// Generator renders sources and writes them to a filesystem.
type Generator struct {
	fs afero.Fs
}

// New creates a generator writing to fs. A nil fs writes to the OS.
func New(fs afero.Fs) *Generator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Generator{fs: fs}
}

// WriteModel renders spec into dir/<table>.go and returns the path.
func (g *Generator) WriteModel(dir string, spec ModelSpec) (string, error) {
	f, err := GenerateModel(spec)
	if err != nil {
		return "", err
	}
	return g.write(filepath.Join(dir, spec.Table+".go"), f)
}

// WriteMigration renders a Go migration into dir and returns the path.
func (g *Generator) WriteMigration(dir string, m MigrationSpec) (string, error) {
	f, err := GenerateMigration(m)
	if err != nil {
		return "", err
	}
	return g.write(filepath.Join(dir, m.ID()+".go"), f)
}

// WriteSQLMigration writes an empty NAME.up.sql / NAME.down.sql pair into dir
// and returns both paths.
func (g *Generator) WriteSQLMigration(dir string, m MigrationSpec) ([]string, error) {
	up, down := m.SQL()
	paths := []string{
		filepath.Join(dir, m.ID()+".up.sql"),
		filepath.Join(dir, m.ID()+".down.sql"),
	}
	for i, body := range []string{up, down} {
		if err := g.writeBytes(paths[i], []byte(body)); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// WriteSQLSeeder writes a seeder script into dir and returns its path.
func (g *Generator) WriteSQLSeeder(dir string, s SeederSpec) (string, error) {
	if s.Name == "" {
		return "", fmt.Errorf("seeder needs a name")
	}
	path := filepath.Join(dir, s.FileName())
	if err := g.writeBytes(path, []byte(s.SQL())); err != nil {
		return "", err
	}
	return path, nil
}

func (g *Generator) write(path string, f *jen.File) (string, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		debug.Error("failed to render source", "path", path, "error", err)
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := g.writeBytes(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func (g *Generator) writeBytes(path string, data []byte) error {
	if ok, _ := afero.Exists(g.fs, path); ok {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	}
	if err := g.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(g.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	debug.Debug("generated file", "path", path)
	return nil
}
