package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/books/internal/config"
)

// InitConfigOptions holds flags for the init-config command.
type InitConfigOptions struct {
	*RootOptions
	Force bool
}

// NewInitConfigCommand creates the init-config command.
func NewInitConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write a config file with the defaults",
		Long: `Write a config file holding the default configuration with BOOKS_*
environment overrides applied. An existing file is kept unless --force is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitConfig(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing file")

	return cmd
}

func runInitConfig(opts *InitConfigOptions, path string, cmd *cobra.Command) error {
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("config file already exists: %s (use --force)", path))
		} else if !errors.Is(err, os.ErrNotExist) {
			return WrapExitError(ExitCommandError, "failed to check config file", err)
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}

	if err := cfg.Save(path); err != nil {
		return WrapExitError(ExitCommandError, "failed to write config", err)
	}

	return newFormatter(opts.RootOptions, cmd).Success(
		map[string]any{"path": path},
		fmt.Sprintf("Wrote %s", path),
	)
}
