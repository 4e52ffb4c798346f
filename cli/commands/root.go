// Package commands implements the chorm CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/chorm/cli/internal/ui"
	"github.com/satishbabariya/chorm/cli/internal/version"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chorm",
		Short:         "ClickHouse migrations, schema and model tooling",
		Long:          "chorm manages ClickHouse migrations, inspects databases and scaffolds models.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindConnectionFlags(app, cmd); err != nil {
				return err
			}
			return app.Load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&app.configFile, "config", "c", "", "Path to config file (default .chorm.yaml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("url", "", "Connection URL, e.g. http://default@localhost:8123/default")
	flags.String("host", "", "ClickHouse host")
	flags.Int("port", 0, "ClickHouse HTTP port")
	flags.StringP("database", "d", "", "Database name")
	flags.StringP("username", "u", "", "Username")
	flags.String("password", "", "Password")

	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewMigrateCommand(app))
	cmd.AddCommand(NewMakeMigrationCommand(app))
	cmd.AddCommand(NewMakeModelCommand(app))
	cmd.AddCommand(NewMakeSeederCommand(app))
	cmd.AddCommand(NewDBCommand(app))

	seed := newDBSeedCommand(app)
	seed.Use = "db:seed [SEEDER...]"
	cmd.AddCommand(seed)

	cmd.AddCommand(NewVersionCommand(app))

	return cmd
}

// bindConnectionFlags lets explicitly set flags override the config file
// and environment.
func bindConnectionFlags(app *App, cmd *cobra.Command) error {
	keys := map[string]string{
		"debug":    "debug",
		"url":      "url",
		"host":     "connection.host",
		"port":     "connection.port",
		"database": "connection.database",
		"username": "connection.username",
		"password": "connection.password",
	}
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := app.v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the CLI.
func Execute() error {
	app, err := NewApp()
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	if err := NewRootCommand(app).Execute(); err != nil {
		ui.PrintError("%v", err)
		_ = app.Close()
		return err
	}
	return nil
}
