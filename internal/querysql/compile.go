package querysql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/books/internal/values"
)

// ErrInvalidIdentifier is returned for table or column names that are not
// plain SQL identifiers.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// validIdentifier matches plain SQL identifiers: a letter or underscore
// followed by letters, digits or underscores.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Statement is a compilable statement. Sealed to this package.
type Statement interface {
	statement()
}

// Filter restricts which rows a statement applies to.
// An empty Where applies the statement to every row.
type Filter struct {
	Where string
	Args  []any
}

// IsZero reports whether f selects every row.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Where) == ""
}

// Equals returns a filter matching rows whose column equals v.
func Equals(column string, v any) Filter {
	return Filter{Where: quote(column) + " = ?", Args: []any{v}}
}

// Select reads rows.
type Select struct {
	Table   string
	Columns []string // nil or empty selects every column
	Filter  Filter
	OrderBy string // SQL fragment, e.g. "product_name ASC"
}

func (Select) statement() {}

// Count counts rows matching Filter.
type Count struct {
	Table  string
	Filter Filter
}

func (Count) statement() {}

// Insert adds one row. Columns are written in sorted key order.
type Insert struct {
	Table  string
	Values values.Values
}

func (Insert) statement() {}

// Update changes the columns named in Values on every row matching Filter.
type Update struct {
	Table  string
	Values values.Values
	Filter Filter
}

func (Update) statement() {}

// Delete removes every row matching Filter.
type Delete struct {
	Table  string
	Filter Filter
}

func (Delete) statement() {}

// Compile converts a statement to SQL text and its bound parameters.
func Compile(s Statement) (string, []any, error) {
	if s == nil {
		return "", nil, fmt.Errorf("cannot compile nil statement")
	}

	switch st := s.(type) {
	case Select:
		return compileSelect(st)
	case *Select:
		return compileSelect(*st)
	case Count:
		return compileCount(st)
	case *Count:
		return compileCount(*st)
	case Insert:
		return compileInsert(st)
	case *Insert:
		return compileInsert(*st)
	case Update:
		return compileUpdate(st)
	case *Update:
		return compileUpdate(*st)
	case Delete:
		return compileDelete(st)
	case *Delete:
		return compileDelete(*st)
	default:
		return "", nil, fmt.Errorf("unsupported statement type: %T", s)
	}
}

func compileSelect(s Select) (string, []any, error) {
	table, err := identifier(s.Table)
	if err != nil {
		return "", nil, err
	}

	cols := "*"
	if len(s.Columns) > 0 {
		quoted := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			if quoted[i], err = identifier(c); err != nil {
				return "", nil, err
			}
		}
		cols = strings.Join(quoted, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, table)
	params := writeWhere(&b, s.Filter)
	if order := strings.TrimSpace(s.OrderBy); order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}
	return b.String(), params, nil
}

func compileCount(s Count) (string, []any, error) {
	table, err := identifier(s.Table)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s", table)
	params := writeWhere(&b, s.Filter)
	return b.String(), params, nil
}

func compileInsert(s Insert) (string, []any, error) {
	table, err := identifier(s.Table)
	if err != nil {
		return "", nil, err
	}
	if len(s.Values) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table), nil, nil
	}

	keys := s.Values.SortedKeys()
	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	params := make([]any, len(keys))
	for i, k := range keys {
		if cols[i], err = identifier(k); err != nil {
			return "", nil, err
		}
		marks[i] = "?"
		params[i] = values.ToSQL(s.Values[k])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(marks, ", "))
	return sql, params, nil
}

func compileUpdate(s Update) (string, []any, error) {
	table, err := identifier(s.Table)
	if err != nil {
		return "", nil, err
	}
	if len(s.Values) == 0 {
		return "", nil, fmt.Errorf("update %s: no columns to set", s.Table)
	}

	keys := s.Values.SortedKeys()
	sets := make([]string, len(keys))
	params := make([]any, 0, len(keys)+len(s.Filter.Args))
	for i, k := range keys {
		col, err := identifier(k)
		if err != nil {
			return "", nil, err
		}
		sets[i] = col + " = ?"
		params = append(params, values.ToSQL(s.Values[k]))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", table, strings.Join(sets, ", "))
	params = append(params, writeWhere(&b, s.Filter)...)
	return b.String(), params, nil
}

func compileDelete(s Delete) (string, []any, error) {
	table, err := identifier(s.Table)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", table)
	params := writeWhere(&b, s.Filter)
	return b.String(), params, nil
}

// writeWhere appends the WHERE clause for f, if any, and returns its
// parameters. A filter without a Where expression contributes nothing,
// including its Args.
func writeWhere(b *strings.Builder, f Filter) []any {
	if f.IsZero() {
		return nil
	}
	b.WriteString(" WHERE (")
	b.WriteString(f.Where)
	b.WriteString(")")
	return append([]any(nil), f.Args...)
}

// identifier validates and quotes a table or column name.
func identifier(name string) (string, error) {
	if !validIdentifier.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return quote(name), nil
}

func quote(name string) string {
	return `"` + name + `"`
}
