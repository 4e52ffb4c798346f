package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/chorm/cli/internal/ui"
	"github.com/satishbabariya/chorm/cli/internal/watch"
	"github.com/satishbabariya/chorm/internal/debug"
	"github.com/satishbabariya/chorm/migrate"
)

// NewMigrateCommand creates the migrate command with subcommands.
func NewMigrateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  "Apply, roll back and inspect the SQL migrations in the migrations directory",
	}

	cmd.AddCommand(newMigrateRunCommand(app))
	cmd.AddCommand(newMigrateRollbackCommand(app))
	cmd.AddCommand(newMigrateResetCommand(app))
	cmd.AddCommand(newMigrateRefreshCommand(app))
	cmd.AddCommand(newMigrateStatusCommand(app))

	mk := NewMakeMigrationCommand(app)
	mk.Use = "make NAME"
	cmd.AddCommand(mk)

	return cmd
}

func newMigrateRunCommand(app *App) *cobra.Command {
	var watchDir bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchDir {
				return runMigrateWatch(cmd.Context(), app)
			}
			return runMigrate(cmd.Context(), app)
		},
	}

	cmd.Flags().BoolVarP(&watchDir, "watch", "w", false, "Re-run pending migrations when the migrations directory changes")

	return cmd
}

func newMigrateRollbackCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the last batch of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Runner(cmd.Context())
			if err != nil {
				return err
			}
			n, err := r.Rollback(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				ui.PrintInfo("Nothing to roll back")
				return nil
			}
			ui.PrintSuccess("Rolled back %d migration(s)", n)
			return nil
		},
	}
}

func newMigrateResetCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Revert every applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := ui.Confirm("Revert every migration? Data in migrated tables will be lost.", force)
			if err != nil || !ok {
				return err
			}
			r, err := app.Runner(cmd.Context())
			if err != nil {
				return err
			}
			n, err := r.Reset(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintSuccess("Reverted %d migration(s)", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newMigrateRefreshCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "refresh",
		Aliases: []string{"fresh"},
		Short:   "Revert every migration and apply them again",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := ui.Confirm("Revert and re-apply every migration? Data in migrated tables will be lost.", force)
			if err != nil || !ok {
				return err
			}
			r, err := app.Runner(cmd.Context())
			if err != nil {
				return err
			}
			n, err := r.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintSuccess("Re-applied %d migration(s)", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newMigrateStatusCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Runner(cmd.Context())
			if err != nil {
				return err
			}
			statuses, err := r.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), statuses, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")

	return cmd
}

func runMigrate(ctx context.Context, app *App) error {
	r, err := app.Runner(ctx)
	if err != nil {
		return err
	}
	spinner := ui.Spinner("Applying migrations...")
	n, err := r.Run(ctx)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return err
	}
	if n == 0 {
		ui.PrintInfo("Nothing to migrate")
		return nil
	}
	ui.PrintSuccess("Applied %d migration(s)", n)
	return nil
}

func runMigrateWatch(ctx context.Context, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(app.Config().Migrations.Dir, func() error {
		return runMigrate(ctx, app)
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return err
	}
	ui.PrintInfo("Watching %s for changes. Press Ctrl+C to stop.", app.Config().Migrations.Dir)
	<-ctx.Done()
	debug.Debug("Stopping migration watcher")
	return w.Stop()
}

func printStatus(out io.Writer, statuses []migrate.Status, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	case "yaml":
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(statuses); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(statuses) == 0 {
		ui.PrintInfo("No migrations found")
		return nil
	}
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, statusRow(s))
	}
	return ui.PrintTable([]string{"Migration", "Status", "Batch", "Applied At", "Time"}, rows)
}

func statusRow(s migrate.Status) []string {
	state := ui.Applied.Sprint("applied")
	switch {
	case s.Pending:
		state = ui.Pending.Sprint("pending")
	case s.Missing:
		state = ui.Missing.Sprint("missing")
	}

	batch, appliedAt, took := "", "", ""
	if !s.Pending {
		batch = strconv.FormatUint(uint64(s.Batch), 10)
	}
	if s.AppliedAt != nil {
		appliedAt = s.AppliedAt.Format(time.DateTime)
	}
	if s.ExecutionTime != nil {
		took = fmt.Sprintf("%.3fs", *s.ExecutionTime)
	}
	return []string{s.Name, state, batch, appliedAt, took}
}
