package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/books/internal/values"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBook builds a complete books row without an id.
func createTestBook(name string, price, quantity int64) values.Values {
	return values.Values{
		"product_name":          values.String(name),
		"price":                 values.Int(price),
		"quanity":               values.Int(quantity),
		"supplier_name":         values.String("MIT"),
		"supplier_phone_number": values.String("408-498-8675"),
	}
}

// mustInsert inserts a row and fails the test on error.
func mustInsert(t *testing.T, s *Store, vals values.Values) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), "books", vals)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	return id
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(ctx context.Context, name, expected string) error {
	var value string
	if err := s.db.GetContext(ctx, &value, "PRAGMA "+name); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
