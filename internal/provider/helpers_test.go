package provider

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/store"
	"github.com/roach88/books/internal/values"
)

// newTestProvider returns a provider over an empty temp-dir database with
// logging suppressed.
func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	helper := store.NewHelper(filepath.Join(t.TempDir(), "books.db"))
	p := New(helper, NewRoutes(contract.Authority),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(func() { p.Close() })
	return p
}

func algorithms() values.Values {
	return values.Values{
		contract.ColumnProductName:   values.String("Algorithms"),
		contract.ColumnPrice:         values.Int(10),
		contract.ColumnQuantity:      values.Int(5),
		contract.ColumnSupplierName:  values.String("MIT"),
		contract.ColumnSupplierPhone: values.String("408-498-8675"),
	}
}

func mustInsert(t *testing.T, p *Provider, vals values.Values) contract.Address {
	t.Helper()
	addr, err := p.Insert(context.Background(), contract.BooksAddress, vals)
	require.NoError(t, err)
	return addr
}

func listAll(t *testing.T, p *Provider) []values.Values {
	t.Helper()
	rs, err := p.List(context.Background(), contract.BooksAddress, ListOptions{SortOrder: "_id"})
	require.NoError(t, err)
	return rs.Rows
}

func countRows(t *testing.T, p *Provider) int {
	t.Helper()
	n, err := p.Count(context.Background(), contract.BooksAddress, querysql.Filter{})
	require.NoError(t, err)
	return int(n)
}
