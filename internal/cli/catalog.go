package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/books/internal/catalog"
	"github.com/roach88/books/internal/importer"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample book",
		Long:  `Insert the sample book ("Algorithm", MIT) and print its address.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			addr, err := catalog.New(e.provider, e.logger).Seed(commandContext(cmd))
			if err != nil {
				return e.formatter.Fail(err)
			}
			return e.formatter.Success(map[string]any{"address": addr.String()}, addr.String())
		},
	}
}

// NewDeleteAllCommand creates the delete-all command.
func NewDeleteAllCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := catalog.New(e.provider, e.logger).DeleteAll(commandContext(cmd))
			if err != nil {
				return e.formatter.Fail(err)
			}
			return e.formatter.Success(map[string]any{"count": n}, fmt.Sprintf("%d rows deleted", n))
		},
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import books from a CUE or YAML file",
		Long: `Validate a file of books against the book schema and insert them in order.
Nothing is inserted if any entry fails validation; an insert failure stops
the import after the books already inserted.

The file holds a top-level list:

  books: [
    {product_name: "Algorithms", price: 10, quanity: 5},
  ]

Example:
  books import ./books.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := importer.NewLoader()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load schema", err)
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			records, err := loader.LoadFile(args[0])
			if err != nil {
				if ferr := e.formatter.Error(CodeValidation, err.Error(), map[string]any{"file": args[0]}); ferr != nil {
					return ferr
				}
				exitErr := WrapExitError(ExitFailure, "import failed", err)
				exitErr.reported = true
				return exitErr
			}
			e.formatter.VerboseLog("loaded %d books from %s", len(records), args[0])

			created, err := importer.Import(commandContext(cmd), e.provider, records)
			if err != nil {
				e.logger.Warn("import stopped", "inserted", len(created), "error", err)
				return e.formatter.Fail(err)
			}

			addrs := make([]string, len(created))
			for i, a := range created {
				addrs[i] = a.String()
			}
			return e.formatter.Success(
				map[string]any{"count": len(addrs), "addresses": addrs},
				fmt.Sprintf("%d books imported", len(addrs)),
			)
		},
	}
}
