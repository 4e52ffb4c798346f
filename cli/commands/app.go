package commands

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/satishbabariya/chorm/cli/internal/config"
	"github.com/satishbabariya/chorm/internal/debug"
	"github.com/satishbabariya/chorm/migrate"
	"github.com/satishbabariya/chorm/runtime/connection"
	"github.com/satishbabariya/chorm/schema"
)

// App holds the loaded configuration and lazily opened clients shared by
// every command.
type App struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config

	conn *connection.Connection
	pool *connection.PoolExecutor[*connection.Connection]
}

// NewApp returns an App bound to a fresh viper instance.
func NewApp() (*App, error) {
	v, err := config.New()
	if err != nil {
		return nil, err
	}
	return &App{v: v}, nil
}

// Load reads .env files and the config file. It is safe to call more than
// once; only the first call does any work.
func (a *App) Load() error {
	if a.cfg != nil {
		return nil
	}
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	debug.Init(cfg.Debug)
	debug.Debug("Loaded config", "file", a.v.ConfigFileUsed())
	return nil
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Connection returns a single connection for admin commands.
func (a *App) Connection() (*connection.Connection, error) {
	if a.conn != nil {
		return a.conn, nil
	}
	settings, err := a.cfg.ConnectionSettings()
	if err != nil {
		return nil, err
	}
	a.conn = connection.New(settings, connection.WithLogger(debug.Logger()))
	return a.conn, nil
}

// Executor returns a pooled executor for migration runs.
func (a *App) Executor(ctx context.Context) (connection.Executor, error) {
	if a.pool != nil {
		return a.pool, nil
	}
	settings, err := a.cfg.ConnectionSettings()
	if err != nil {
		return nil, err
	}
	p, err := connection.OpenPool(ctx, settings, a.cfg.PoolSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}
	a.pool = p
	return p, nil
}

// Schema returns a schema facade on the admin connection.
func (a *App) Schema() (*schema.Schema, error) {
	conn, err := a.Connection()
	if err != nil {
		return nil, err
	}
	return schema.New(conn), nil
}

// Runner loads the SQL migrations directory into a runner.
func (a *App) Runner(ctx context.Context) (*migrate.Runner, error) {
	migrations, err := migrate.LoadSQLDir(config.AppFs, a.cfg.Migrations.Dir)
	if err != nil {
		return nil, err
	}
	exec, err := a.Executor(ctx)
	if err != nil {
		return nil, err
	}
	r := migrate.NewRunner(exec, migrate.WithLogger(debug.Logger())).
		SetMigrationsTable(a.cfg.Migrations.Table).
		SetMigrations(migrations)
	return r, nil
}

// Close releases the pool and the admin connection.
func (a *App) Close() error {
	var err error
	if a.pool != nil {
		err = a.pool.Close()
		a.pool = nil
	}
	if a.conn != nil {
		if cerr := a.conn.Close(); err == nil {
			err = cerr
		}
		a.conn = nil
	}
	return err
}
