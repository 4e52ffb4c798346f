package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/chorm/cli/internal/config"
	"github.com/satishbabariya/chorm/cli/internal/ui"
	"github.com/satishbabariya/chorm/cli/internal/update"
	"github.com/satishbabariya/chorm/migrate"
	"github.com/satishbabariya/chorm/runtime/connection"
	"github.com/satishbabariya/chorm/schema"
)

// NewDBCommand creates the db command with subcommands.
func NewDBCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and manage the database",
		Long: `Inspect and manage the ClickHouse server directly.

This command provides subcommands for:
- Checking connectivity and server details
- Listing databases and tables
- Describing tables
- Executing raw SQL commands or files
- Running seeders`,
	}

	cmd.AddCommand(newDBPingCommand(app))
	cmd.AddCommand(newDBInfoCommand(app))
	cmd.AddCommand(newDBDatabasesCommand(app))
	cmd.AddCommand(newDBTablesCommand(app))
	cmd.AddCommand(newDBDescribeCommand(app))
	cmd.AddCommand(newDBExecuteCommand(app))
	cmd.AddCommand(newDBCreateCommand(app))
	cmd.AddCommand(newDBDropCommand(app))
	cmd.AddCommand(newDBSeedCommand(app))

	return cmd
}

func newDBPingCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			if err := conn.Ping(cmd.Context()); err != nil {
				return err
			}
			ui.PrintSuccess("Connected to %s", conn.Config().Endpoint())
			return nil
		},
	}
}

func newDBInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server version and build options",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			v, err := conn.ServerVersion(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintHeader("ClickHouse "+v.Original(), conn.Config().Endpoint())
			if err := update.CheckServerVersion(v); err != nil {
				ui.PrintWarning("%v", err)
			}

			rows, err := conn.ServerInfo(cmd.Context())
			if err != nil {
				return err
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{cast.ToString(row["name"]), cast.ToString(row["value"])})
			}
			return ui.PrintTable([]string{"Option", "Value"}, table)
		},
	}
}

func newDBDatabasesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			names, err := conn.ListDatabases(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintList(names)
			return nil
		},
	}
}

func newDBTablesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			names, err := conn.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				ui.PrintInfo("No tables in %s", conn.Config().Database)
				return nil
			}
			ui.PrintList(names)
			return nil
		},
	}
}

func newDBDescribeCommand(app *App) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "describe TABLE",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			rows, err := conn.DescribeTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if markdown {
				return ui.PrintMarkdown(describeMarkdown(args[0], rows))
			}
			return ui.PrintTable(describeColumns, describeRows(rows))
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render as markdown")

	return cmd
}

func newDBExecuteCommand(app *App) *cobra.Command {
	var file bool

	cmd := &cobra.Command{
		Use:   "execute SQL|FILE",
		Short: "Execute raw SQL commands",
		Long: `Execute a SQL command, or with --file every statement of a SQL file.
The result of the last statement is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := args[0]
			if file {
				data, err := afero.ReadFile(config.AppFs, args[0])
				if err != nil {
					return fmt.Errorf("failed to read SQL file: %w", err)
				}
				script = string(data)
			}

			conn, err := app.Connection()
			if err != nil {
				return err
			}
			stmts := migrate.SplitStatements(script)
			if len(stmts) == 0 {
				return fmt.Errorf("no SQL statements to execute")
			}
			var res *connection.Result
			for _, stmt := range stmts {
				if res, err = conn.Query(cmd.Context(), stmt); err != nil {
					return err
				}
			}
			return printResult(res)
		},
	}

	cmd.Flags().BoolVarP(&file, "file", "f", false, "Treat the argument as a SQL file")

	return cmd
}

func newDBCreateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create [DATABASE]",
		Short: "Create the configured (or named) database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			name := databaseArg(conn, args)
			if err := conn.CreateDatabase(cmd.Context(), name); err != nil {
				return err
			}
			ui.PrintSuccess("Database %s is ready", name)
			return nil
		},
	}
}

func newDBDropCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "drop [DATABASE]",
		Short: "Drop the configured (or named) database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := app.Connection()
			if err != nil {
				return err
			}
			name := databaseArg(conn, args)
			ok, err := ui.Confirm(fmt.Sprintf("Drop database %s and every table in it?", name), force)
			if err != nil || !ok {
				return err
			}
			if err := conn.DropDatabase(cmd.Context(), name); err != nil {
				return err
			}
			ui.PrintSuccess("Dropped database %s", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newDBSeedCommand(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed [SEEDER...]",
		Short: "Run seeders",
		Long: `Run every NAME.sql in the seeders directory in name order, or only the
named seeders. Seeders are not recorded and run again on every call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = app.Config().Seeders.Dir
			}
			seeders, err := migrate.LoadSeedDir(config.AppFs, dir)
			if err != nil {
				return err
			}
			if len(seeders) == 0 {
				ui.PrintInfo("No seeders in %s", dir)
				return nil
			}
			exec, err := app.Executor(cmd.Context())
			if err != nil {
				return err
			}
			n, err := migrate.Seed(cmd.Context(), schema.New(exec), seeders, args...)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Ran %d seeder(s)", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Seeders directory (default from config)")

	return cmd
}

func databaseArg(conn *connection.Connection, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return conn.Config().Database
}

var describeColumns = []string{"Name", "Type", "Default", "Comment"}

func describeRows(rows []connection.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		def := cast.ToString(row["default_expression"])
		if kind := cast.ToString(row["default_type"]); kind != "" && def != "" {
			def = kind + " " + def
		}
		out = append(out, []string{
			cast.ToString(row["name"]),
			cast.ToString(row["type"]),
			def,
			cast.ToString(row["comment"]),
		})
	}
	return out
}

func describeMarkdown(table string, rows []connection.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", table)
	b.WriteString("| " + strings.Join(describeColumns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(describeColumns)) + "\n")
	for _, r := range describeRows(rows) {
		for i := range r {
			r[i] = strings.ReplaceAll(r[i], "|", `\|`)
		}
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
	return b.String()
}

func printResult(res *connection.Result) error {
	if res == nil || len(res.Meta) == 0 {
		ui.PrintSuccess("OK")
		return nil
	}
	headers := make([]string, len(res.Meta))
	for i, m := range res.Meta {
		headers[i] = m.Name
	}
	rows := make([][]string, 0, len(res.Data))
	for _, row := range res.Data {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cast.ToString(row[h])
		}
		rows = append(rows, cells)
	}
	if err := ui.PrintTable(headers, rows); err != nil {
		return err
	}
	ui.PrintInfo("%d row(s) in %.3fs", len(res.Data), res.Statistics.Elapsed)
	return nil
}
