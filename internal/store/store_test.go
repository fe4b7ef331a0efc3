package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	mustInsert(t, s1, createTestBook("Algorithms", 10, 5))
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.Get(&count, "SELECT COUNT(*) FROM books"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (rows must survive reopen)", count)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "books")
	if err != nil {
		t.Errorf("table books not found after idempotent opens: %v", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma(context.Background(), "journal_mode", "memory"); err != nil {
		t.Error(err)
	}
	id := mustInsert(t, s, createTestBook("Algorithms", 10, 5))
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	s.Close()

	if _, err := Open(path); err == nil {
		t.Error("expected error opening database with newer schema version")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(ctx, tt.name, tt.want); err != nil {
				t.Error(err)
			}
		})
	}
}

// Schema tests

func TestSchema_BooksColumns(t *testing.T) {
	s := createTestStore(t)

	var got []string
	if err := s.db.Select(&got, "SELECT name FROM pragma_table_info('books') ORDER BY cid"); err != nil {
		t.Fatalf("table_info failed: %v", err)
	}

	want := []string{"_id", "product_name", "price", "quanity", "supplier_name", "supplier_phone_number"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("books columns mismatch (-want +got):\n%s", diff)
	}
}

func TestIsConstraint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// product_name is NOT NULL.
	_, err := s.db.ExecContext(ctx, "INSERT INTO books (price) VALUES (1)")
	if err == nil {
		t.Fatal("expected NOT NULL violation")
	}
	if !IsConstraint(err) {
		t.Errorf("IsConstraint(%v) = false, want true", err)
	}

	if IsConstraint(errors.New("plain")) {
		t.Error("IsConstraint(plain error) = true, want false")
	}
	if IsConstraint(nil) {
		t.Error("IsConstraint(nil) = true, want false")
	}
}
