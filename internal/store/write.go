package store

import (
	"context"
	"fmt"

	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

// Insert adds one row to table and returns its row id.
// Constraint violations are returned unchanged; check them with IsConstraint.
func (s *Store) Insert(ctx context.Context, table string, vals values.Values) (int64, error) {
	query, params, err := querysql.Compile(querysql.Insert{Table: table, Values: vals})
	if err != nil {
		return 0, fmt.Errorf("compile insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert into %s: read row id: %w", table, err)
	}
	return id, nil
}

// Update sets vals on every row of table matching filter and returns the
// number of rows changed. An empty filter updates every row.
func (s *Store) Update(ctx context.Context, table string, vals values.Values, filter querysql.Filter) (int64, error) {
	query, params, err := querysql.Compile(querysql.Update{Table: table, Values: vals, Filter: filter})
	if err != nil {
		return 0, fmt.Errorf("compile update: %w", err)
	}
	return s.exec(ctx, "update "+table, query, params)
}

// Delete removes every row of table matching filter and returns the number
// of rows removed. An empty filter removes every row.
func (s *Store) Delete(ctx context.Context, table string, filter querysql.Filter) (int64, error) {
	query, params, err := querysql.Compile(querysql.Delete{Table: table, Filter: filter})
	if err != nil {
		return 0, fmt.Errorf("compile delete: %w", err)
	}
	return s.exec(ctx, "delete from "+table, query, params)
}

func (s *Store) exec(ctx context.Context, op, query string, params []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}
