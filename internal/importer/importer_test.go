package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/store"
	"github.com/roach88/books/internal/values"
)

func newLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func expectedBooks() []values.Values {
	return []values.Values{
		{
			"product_name":          values.String("Algorithms"),
			"price":                 values.Int(10),
			"quanity":               values.Int(5),
			"supplier_name":         values.String("MIT"),
			"supplier_phone_number": values.String("408-498-8675"),
		},
		{
			"product_name": values.String("Compilers"),
			"quanity":      values.Null{},
		},
	}
}

func TestLoadFile_CUE(t *testing.T) {
	got, err := newLoader(t).LoadFile(filepath.Join("testdata", "books.cue"))
	require.NoError(t, err)
	assert.Equal(t, expectedBooks(), got)
}

func TestLoadFile_YAML(t *testing.T) {
	got, err := newLoader(t).LoadFile(filepath.Join("testdata", "books.yaml"))
	require.NoError(t, err)
	assert.Equal(t, expectedBooks(), got)
}

func TestLoadFile_NegativeQuantity(t *testing.T) {
	_, err := newLoader(t).LoadFile(filepath.Join("testdata", "negative.yaml"))
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le), "expected LoadError, got %T", err)
	assert.Contains(t, le.Message, "book 1")
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := newLoader(t).LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := newLoader(t).LoadFile(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
}

func TestLoadString_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing name", `books: [{price: 1}]`},
		{"unknown field", `books: [{product_name: "x", isbn: "1"}]`},
		{"wrong type", `books: [{product_name: 3}]`},
		{"fractional quantity", `books: [{product_name: "x", quanity: 1.5}]`},
		{"no books list", `shelf: []`},
		{"books not a list", `books: {a: 1}`},
		{"syntax", `books: [`},
	}

	l := newLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.LoadString("inline.cue", tt.src)
			assert.Error(t, err)
		})
	}
}

func TestLoadString_Empty(t *testing.T) {
	got, err := newLoader(t).LoadString("inline.cue", `books: []`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func newTestProvider(t *testing.T) *provider.Provider {
	t.Helper()
	p := provider.New(
		store.NewHelper(filepath.Join(t.TempDir(), "books.db")),
		provider.NewRoutes(contract.Authority),
		provider.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestImport(t *testing.T) {
	p := newTestProvider(t)

	created, err := Import(context.Background(), p, expectedBooks())
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "content://com.example.android.books/books/1", created[0].String())
	assert.Equal(t, "content://com.example.android.books/books/2", created[1].String())
}

func TestImport_StopsAtFirstError(t *testing.T) {
	p := newTestProvider(t)
	records := []values.Values{
		{"product_name": values.String("ok")},
		{"price": values.Int(1)},
		{"product_name": values.String("never")},
	}

	created, err := Import(context.Background(), p, records)
	require.ErrorIs(t, err, provider.ErrValidation)
	assert.Contains(t, err.Error(), "book 1")
	assert.Len(t, created, 1)

	rs, err := p.List(context.Background(), contract.BooksAddress, provider.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
}
