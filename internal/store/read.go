package store

import (
	"context"
	"fmt"

	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

// Rows is a fully materialized query result.
// Columns lists the result columns in select order.
type Rows struct {
	Columns []string
	Rows    []values.Values
}

// Len returns the number of rows.
func (r *Rows) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Query runs a select and reads every row.
//
// Returns an empty (non-nil) Rows when nothing matches. A malformed filter
// or sort fragment surfaces here as the driver's error.
func (s *Store) Query(ctx context.Context, q querysql.Select) (*Rows, error) {
	query, params, err := querysql.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile select: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := &Rows{Columns: cols, Rows: []values.Values{}}
	for rows.Next() {
		raw := make(map[string]any, len(cols))
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", q.Table, err)
		}
		row, err := rowValues(raw)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", q.Table, err)
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", q.Table, err)
	}

	return out, nil
}

// Count returns the number of rows in table matching filter.
func (s *Store) Count(ctx context.Context, table string, filter querysql.Filter) (int64, error) {
	query, params, err := querysql.Compile(querysql.Count{Table: table, Filter: filter})
	if err != nil {
		return 0, fmt.Errorf("compile count: %w", err)
	}

	var n int64
	if err := s.db.GetContext(ctx, &n, query, params...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func rowValues(raw map[string]any) (values.Values, error) {
	row := make(values.Values, len(raw))
	for col, v := range raw {
		val, err := values.FromSQL(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		row[col] = val
	}
	return row, nil
}
