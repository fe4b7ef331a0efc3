package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/books/internal/config"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string // config file path; empty uses defaults
	Database string // overrides database.path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the books CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Books record store",
		Long: `Manage the books record store.

Records are addressed by URI: content://com.example.android.books/books
names the collection and .../books/<id> a single book.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewTypeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewDeleteAllCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewServeMCPCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewInitConfigCommand(opts))

	return cmd
}

// Execute runs the root command with args and returns the process exit
// code. Errors not already written by a command go to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.reported {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if exitErr == nil {
		// cobra flag and argument errors
		return ExitCommandError
	}
	return exitErr.Code
}

// env is what a command needs to reach the store.
type env struct {
	config    *config.Config
	logger    *slog.Logger
	provider  *provider.Provider
	formatter *OutputFormatter
}

// Close releases the database handle.
func (e *env) Close() {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// loadConfig resolves configuration: file (or defaults), then BOOKS_*
// environment variables, then the --db flag.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	return cfg, nil
}

// newFormatter builds the formatter for cmd's output streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openEnv loads configuration and builds a provider over the configured
// database. The database itself opens on first use.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr(), opts.Verbose)
	logger.Debug("using database", "path", cfg.Database.Path, "authority", cfg.Provider.Authority)

	p := provider.New(
		store.NewHelper(cfg.Database.Path),
		provider.NewRoutes(cfg.Provider.Authority),
		provider.WithLogger(logger),
	)

	return &env{
		config:    cfg,
		logger:    logger,
		provider:  p,
		formatter: newFormatter(opts, cmd),
	}, nil
}

// commandContext returns the command's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
