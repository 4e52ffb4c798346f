package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/chorm/cli/internal/ui"
	"github.com/satishbabariya/chorm/cli/internal/update"
	"github.com/satishbabariya/chorm/cli/internal/version"
)

// NewVersionCommand prints build information and, with --server, the
// connected server release.
func NewVersionCommand(app *App) *cobra.Command {
	var server bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().FullString())
			if !server {
				return nil
			}

			conn, err := app.Connection()
			if err != nil {
				return err
			}
			v, err := conn.ServerVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server: ClickHouse %s\n", v.Original())
			if err := update.CheckServerVersion(v); err != nil {
				ui.PrintWarning("%v", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "Also print the server version")

	return cmd
}
