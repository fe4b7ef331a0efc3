package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

// FilterOptions holds the --where and --arg flags.
type FilterOptions struct {
	Where string
	Args  []string
}

func (o *FilterOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Where, "where", "", `filter expression, e.g. "quanity < ?"`)
	cmd.Flags().StringArrayVar(&o.Args, "arg", nil, "positional filter argument (repeatable)")
}

// filter converts the flags to a querysql.Filter. Each --arg is read as a
// JSON scalar when it parses as one and as a plain string otherwise.
func (o *FilterOptions) filter() (querysql.Filter, error) {
	if o.Where == "" {
		if len(o.Args) > 0 {
			return querysql.Filter{}, NewExitError(ExitCommandError, "--arg requires --where")
		}
		return querysql.Filter{}, nil
	}
	args := make([]any, len(o.Args))
	for i, raw := range o.Args {
		args[i] = parseArg(raw)
	}
	return querysql.Filter{Where: o.Where, Args: args}, nil
}

func parseArg(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	scalar, err := values.FromAny(v)
	if err != nil {
		return raw
	}
	return values.ToSQL(scalar)
}

// parseAddress parses args[0] when present; otherwise it returns the
// collection address under the configured authority.
func parseAddress(e *env, args []string) (contract.Address, error) {
	if len(args) == 0 {
		return e.provider.CollectionAddress(), nil
	}
	addr, err := contract.ParseAddress(args[0])
	if err != nil {
		return contract.Address{}, WrapExitError(ExitCommandError, "invalid address", err)
	}
	return addr, nil
}

func parseValues(raw string) (values.Values, error) {
	vals, err := values.ParseJSON([]byte(raw))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --values JSON", err)
	}
	return vals, nil
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	FilterOptions
	Fields []string
	Sort   string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [address]",
		Short: "List records",
		Long: `List the records at an address. The default address is the collection.

Examples:
  books list
  books list content://com.example.android.books/books/3
  books list --fields _id,product_name --where "quanity < ?" --arg 5 --sort "product_name ASC"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "columns to return (default all)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", `sort order, e.g. "_id DESC"`)
	opts.FilterOptions.bind(cmd)

	return cmd
}

func runList(opts *ListOptions, args []string, cmd *cobra.Command) error {
	e, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	addr, err := parseAddress(e, args)
	if err != nil {
		return err
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	rs, err := e.provider.List(commandContext(cmd), addr, provider.ListOptions{
		Fields:    opts.Fields,
		Filter:    filter,
		SortOrder: opts.Sort,
	})
	if err != nil {
		return e.formatter.Fail(err)
	}
	defer rs.Close()

	data := map[string]any{
		"address": addr.String(),
		"columns": rs.Columns,
		"count":   rs.Len(),
		"rows":    rs.Rows,
	}
	return e.formatter.Success(data, formatTable(rs.Columns, rs.Rows))
}

// formatTable renders rows as aligned columns with a header line.
func formatTable(columns []string, rows []values.Values) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if s, ok := row.AsString(col); ok {
				cells[i] = s
			} else {
				cells[i] = "NULL"
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Fprintf(&buf, "(%d rows)", len(rows))
	return buf.String()
}

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Values string
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert [address]",
		Short: "Insert a record",
		Long: `Insert a record under the collection address and print its address.

Example:
  books insert --values '{"product_name":"Algorithms","price":10,"quanity":5}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Values, "values", "", "record fields as a JSON object (required)")
	_ = cmd.MarkFlagRequired("values")

	return cmd
}

func runInsert(opts *InsertOptions, args []string, cmd *cobra.Command) error {
	vals, err := parseValues(opts.Values)
	if err != nil {
		return err
	}

	e, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	addr, err := parseAddress(e, args)
	if err != nil {
		return err
	}

	created, err := e.provider.Insert(commandContext(cmd), addr, vals)
	if err != nil {
		return e.formatter.Fail(err)
	}
	return e.formatter.Success(map[string]any{"address": created.String()}, created.String())
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	FilterOptions
	Values string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <address>",
		Short: "Update records",
		Long: `Apply a partial update to the records at an address and print how many
changed. On the collection address --where selects the records.

Examples:
  books update content://com.example.android.books/books/3 --values '{"quanity":4}'
  books update content://com.example.android.books/books --values '{"price":0}' --where "quanity = ?" --arg 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Values, "values", "", "fields to change as a JSON object (required)")
	_ = cmd.MarkFlagRequired("values")
	opts.FilterOptions.bind(cmd)

	return cmd
}

func runUpdate(opts *UpdateOptions, args []string, cmd *cobra.Command) error {
	vals, err := parseValues(opts.Values)
	if err != nil {
		return err
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	e, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	addr, err := parseAddress(e, args)
	if err != nil {
		return err
	}

	n, err := e.provider.Update(commandContext(cmd), addr, vals, filter)
	if err != nil {
		return e.formatter.Fail(err)
	}
	return e.formatter.Success(map[string]any{"count": n}, fmt.Sprintf("%d rows updated", n))
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	FilterOptions
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <address>",
		Short: "Delete records",
		Long: `Delete the records at an address and print how many were removed.
On the collection address without --where every record is removed.

Examples:
  books delete content://com.example.android.books/books/3
  books delete content://com.example.android.books/books --where "quanity = ?" --arg 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args, cmd)
		},
	}

	opts.FilterOptions.bind(cmd)

	return cmd
}

func runDelete(opts *DeleteOptions, args []string, cmd *cobra.Command) error {
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	e, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	addr, err := parseAddress(e, args)
	if err != nil {
		return err
	}

	n, err := e.provider.Delete(commandContext(cmd), addr, filter)
	if err != nil {
		return e.formatter.Fail(err)
	}
	return e.formatter.Success(map[string]any{"count": n}, fmt.Sprintf("%d rows deleted", n))
}

// NewTypeCommand creates the type command.
func NewTypeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "type <address>",
		Short: "Print the result kind of an address",
		Long: `Print the result kind of an address: the collection type for the
collection address and the item type for a record address.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			addr, err := parseAddress(e, args)
			if err != nil {
				return err
			}

			kind, err := e.provider.ResolveType(addr)
			if err != nil {
				return e.formatter.Fail(err)
			}
			return e.formatter.Success(map[string]any{"address": addr.String(), "type": kind}, kind)
		},
	}
}
