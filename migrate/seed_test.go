package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/chorm/runtime/connection"
	"github.com/satishbabariya/chorm/schema"
)

func seedFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "seeders/02_events.sql", []byte("INSERT INTO events VALUES (1);"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "seeders/01_users.sql", []byte("-- users\nINSERT INTO users VALUES (1);\nINSERT INTO users VALUES (2);"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "seeders/notes.txt", []byte("skip me"), 0o644))
	return fs
}

func TestLoadSeedDir(t *testing.T) {
	seeders, err := LoadSeedDir(seedFs(t), "seeders")
	require.NoError(t, err)
	require.Len(t, seeders, 2)
	assert.Equal(t, "01_users", seeders[0].Name())
	assert.Equal(t, "02_events", seeders[1].Name())

	seeders, err = LoadSeedDir(afero.NewMemMapFs(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, seeders)
}

func TestSeedRunsInOrder(t *testing.T) {
	seeders, err := LoadSeedDir(seedFs(t), "seeders")
	require.NoError(t, err)

	exec := &recordingExecutor{}
	n, err := Seed(context.Background(), schema.New(exec), seeders)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"INSERT INTO users VALUES (1)",
		"INSERT INTO users VALUES (2)",
		"INSERT INTO events VALUES (1)",
	}, exec.queries)
}

func TestSeedSelectsByName(t *testing.T) {
	seeders, err := LoadSeedDir(seedFs(t), "seeders")
	require.NoError(t, err)

	exec := &recordingExecutor{}
	n, err := Seed(context.Background(), schema.New(exec), seeders, "02_events")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"INSERT INTO events VALUES (1)"}, exec.queries)

	exec.queries = nil
	_, err = Seed(context.Background(), schema.New(exec), seeders, "02_events", "99_missing")
	assert.ErrorContains(t, err, "seeder 99_missing not found")
	assert.Empty(t, exec.queries)
}

type failingExecutor struct{}

func (failingExecutor) Query(ctx context.Context, sql string, opts ...connection.QueryOption) (*connection.Result, error) {
	return nil, errors.New("table is read-only")
}

func TestSeedStopsAtFailure(t *testing.T) {
	seeders := []*Seeder{NewSQLSeeder("01_a", "INSERT INTO a VALUES (1)"), NewSQLSeeder("02_b", "INSERT INTO b VALUES (1)")}
	n, err := Seed(context.Background(), schema.New(failingExecutor{}), seeders)
	assert.Equal(t, 0, n)
	assert.ErrorContains(t, err, "seeder 01_a: statement 1: table is read-only")
}
