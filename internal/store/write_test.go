package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

func TestInsert_AssignsIncreasingIDs(t *testing.T) {
	s := createTestStore(t)

	first := mustInsert(t, s, createTestBook("Algorithms", 10, 5))
	second := mustInsert(t, s, createTestBook("Compilers", 20, 1))

	if first != 1 || second != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", first, second)
	}
}

func TestInsert_IDsNotReused(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := mustInsert(t, s, createTestBook("Algorithms", 10, 5))
	if _, err := s.Delete(ctx, "books", querysql.Equals("_id", id)); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	next := mustInsert(t, s, createTestBook("Compilers", 20, 1))
	if next == id {
		t.Errorf("id %d reused after delete", id)
	}
}

func TestInsert_NotNullViolation(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Insert(context.Background(), "books", values.Values{"price": values.Int(1)})
	if err == nil {
		t.Fatal("expected constraint error")
	}
	if !IsConstraint(err) {
		t.Errorf("IsConstraint() = false for %v", err)
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	s := createTestStore(t)

	vals := createTestBook("Algorithms", 10, 5)
	vals.PutInt("_id", 7)
	mustInsert(t, s, vals)

	_, err := s.Insert(context.Background(), "books", vals)
	if !IsConstraint(err) {
		t.Errorf("duplicate id: IsConstraint() = false for %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := mustInsert(t, s, createTestBook("Algorithms", 10, 5))
	mustInsert(t, s, createTestBook("Compilers", 20, 1))

	n, err := s.Update(ctx, "books", values.Values{"quanity": values.Int(3)}, querysql.Equals("_id", id))
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Update() = %d, want 1", n)
	}

	rows, err := s.Query(ctx, querysql.Select{Table: "books", Columns: []string{"quanity"}, OrderBy: "_id"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	want := []values.Values{{"quanity": values.Int(3)}, {"quanity": values.Int(1)}}
	if diff := cmp.Diff(want, rows.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_AllRows(t *testing.T) {
	s := createTestStore(t)
	mustInsert(t, s, createTestBook("Algorithms", 10, 5))
	mustInsert(t, s, createTestBook("Compilers", 20, 1))

	n, err := s.Update(context.Background(), "books", values.Values{"supplier_name": values.Null{}}, querysql.Filter{})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Update() = %d, want 2", n)
	}
}

func TestUpdate_NoMatch(t *testing.T) {
	s := createTestStore(t)

	n, err := s.Update(context.Background(), "books", values.Values{"price": values.Int(1)}, querysql.Equals("_id", int64(99)))
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Update() = %d, want 0", n)
	}
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := mustInsert(t, s, createTestBook("Algorithms", 10, 5))
	mustInsert(t, s, createTestBook("Compilers", 20, 1))

	n, err := s.Delete(ctx, "books", querysql.Equals("_id", id))
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Delete() = %d, want 1", n)
	}

	// Deleting again affects nothing.
	n, err = s.Delete(ctx, "books", querysql.Equals("_id", id))
	if err != nil {
		t.Fatalf("second Delete() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second Delete() = %d, want 0", n)
	}

	n, err = s.Delete(ctx, "books", querysql.Filter{})
	if err != nil {
		t.Fatalf("Delete(all) failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Delete(all) = %d, want 1", n)
	}
}
