package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/books/internal/mcpserver"
)

// NewServeMCPCommand creates the serve-mcp command.
func NewServeMCPCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the record store as MCP tools over stdio",
		Long: `Serve list_books, insert_book, update_books, delete_books and
resolve_type as Model Context Protocol tools on stdin/stdout.

Logs go to stderr; stdout carries the protocol.

Example:
  books serve-mcp --db ./books.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			e.logger.Info("serving", "db", e.config.Database.Path, "authority", e.config.Provider.Authority)
			if err := mcpserver.New(e.provider, e.logger).Serve(); err != nil {
				return WrapExitError(ExitFailure, "mcp server error", err)
			}
			return nil
		},
	}
}
