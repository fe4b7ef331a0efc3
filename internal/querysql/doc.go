// Package querysql compiles single-table CRUD statements into
// parameterized SQL for SQLite.
//
// Values are always bound as parameters and never interpolated into the
// SQL text. Identifiers (table and column names, value keys) are checked
// against a strict pattern and double-quoted. Filter expressions and sort
// orders are caller-supplied SQL fragments and are passed through as-is;
// a malformed fragment is reported by the database when the statement
// runs, not here.
//
// Statement is sealed: only Select, Count, Insert, Update and Delete implement
// it, so Compile can switch over the complete set.
package querysql
