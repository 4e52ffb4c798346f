package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/chorm/cli/internal/config"
	"github.com/satishbabariya/chorm/cli/internal/ui"
	"github.com/satishbabariya/chorm/generator"
)

// NewMakeMigrationCommand scaffolds a timestamped migration.
func NewMakeMigrationCommand(app *App) *cobra.Command {
	var (
		goStub  bool
		table   string
		dir     string
		pkgName string
	)

	cmd := &cobra.Command{
		Use:   "make:migration NAME",
		Short: "Create a new migration",
		Long: `Create a timestamped migration in the migrations directory.

SQL migrations (the default) are run by "chorm migrate". Go migrations are
registered with migrate.Runner in your own program.

Names like create_events_table or add_region_to_events_table pre-fill the
stub for that table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = app.Config().Migrations.Dir
			}
			spec := generator.MigrationSpec{
				Name:      args[0],
				CreatedAt: time.Now(),
				Table:     table,
				Package:   pkgName,
			}

			g := generator.New(config.AppFs)
			if goStub {
				path, err := g.WriteMigration(dir, spec)
				if err != nil {
					return err
				}
				ui.PrintSuccess("Created %s", path)
				return nil
			}
			paths, err := g.WriteSQLMigration(dir, spec)
			if err != nil {
				return err
			}
			for _, p := range paths {
				ui.PrintSuccess("Created %s", p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&goStub, "go", false, "Write a Go migration instead of SQL files")
	cmd.Flags().Bool("sql", true, "Write NAME.up.sql and NAME.down.sql (default)")
	cmd.Flags().StringVarP(&table, "table", "t", "", "Table the migration alters")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&pkgName, "package", "migrations", "Package name for Go migrations")
	cmd.MarkFlagsMutuallyExclusive("go", "sql")

	return cmd
}

// NewMakeModelCommand scaffolds a model struct for a table.
func NewMakeModelCommand(app *App) *cobra.Command {
	var (
		columns []string
		name    string
		dir     string
		pkgName string
	)

	cmd := &cobra.Command{
		Use:   "make:model TABLE",
		Short: "Create a model struct for a table",
		Long: `Create a model struct for TABLE.

Columns come from --column flags (name:Type[:primary]) or, when none are
given, from the table's definition on the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			cfg := app.Config()
			if dir == "" {
				dir = cfg.Models.Dir
			}
			if pkgName == "" {
				pkgName = cfg.Models.Package
			}

			var cols []generator.Column
			if len(columns) > 0 {
				parsed, err := generator.ParseColumns(columns)
				if err != nil {
					return err
				}
				cols = parsed
			} else {
				s, err := app.Schema()
				if err != nil {
					return err
				}
				rows, err := s.GetColumns(cmd.Context(), table)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					return fmt.Errorf("table %s not found or has no columns", table)
				}
				cols = generator.ColumnsFromRows(rows)
			}

			path, err := generator.New(config.AppFs).WriteModel(dir, generator.ModelSpec{
				Name:    name,
				Table:   table,
				Package: pkgName,
				Columns: cols,
			})
			if err != nil {
				return err
			}
			ui.PrintSuccess("Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&columns, "column", nil, "Column as name:Type[:primary], repeatable")
	cmd.Flags().StringVar(&name, "name", "", "Struct name (default from table)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&pkgName, "package", "", "Package name (default from config)")

	return cmd
}

// NewMakeSeederCommand scaffolds a SQL seeder.
func NewMakeSeederCommand(app *App) *cobra.Command {
	var (
		table string
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "make:seeder NAME",
		Short: "Create a new seeder",
		Long: `Create NAME.sql in the seeders directory. "chorm db:seed" runs seeders in
name order, so a numeric prefix such as 01_ fixes their order.

Names like users_seeder pre-fill an INSERT for that table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = app.Config().Seeders.Dir
			}
			path, err := generator.New(config.AppFs).WriteSQLSeeder(dir, generator.SeederSpec{
				Name:  args[0],
				Table: table,
			})
			if err != nil {
				return err
			}
			ui.PrintSuccess("Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "Table the seeder fills")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")

	return cmd
}
