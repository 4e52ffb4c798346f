package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/chorm/cli/internal/config"
	"github.com/satishbabariya/chorm/cli/internal/ui"
)

const envExample = `# Connection URL; overrides the connection section of .chorm.yaml
CHORM_URL="http://default:@localhost:8123/default"
`

const gitignoreEntries = `
# chorm
.env
.env.local
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a chorm project",
		Long:  "Create .chorm.yaml, a migrations directory and an .env.example",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir)
		},
	}

	return cmd
}

func runInit(dir string) error {
	fs := config.AppFs

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	configPath := filepath.Join(dir, config.FileName+".yaml")
	if err := config.WriteDefault(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	ui.PrintSuccess("Created %s", configPath)

	migrationsDir := filepath.Join(dir, "migrations")
	if err := fs.MkdirAll(migrationsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create migrations directory: %w", err)
	}
	ui.PrintSuccess("Created %s/", migrationsDir)

	envPath := filepath.Join(dir, ".env.example")
	if ok, _ := afero.Exists(fs, envPath); !ok {
		if err := afero.WriteFile(fs, envPath, []byte(envExample), 0o644); err != nil {
			ui.PrintWarning("Failed to create .env.example: %v", err)
		} else {
			ui.PrintSuccess("Created %s", envPath)
		}
	}

	if err := appendGitignore(fs, filepath.Join(dir, ".gitignore")); err != nil {
		ui.PrintWarning("Failed to update .gitignore: %v", err)
	}

	ui.PrintInfo("Next: chorm make:migration create_events_table --sql")
	return nil
}

func appendGitignore(fs afero.Fs, path string) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(gitignoreEntries)
	return err
}
