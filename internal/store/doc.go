// Package store provides the SQLite-backed table storage for the book
// inventory.
//
// A Store wraps a single database connection. Every operation is exactly one
// SQL statement, so the engine's statement-level atomicity is the only
// guarantee; there are no multi-statement transactions.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes (file databases only)
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The schema is embedded (schema.sql) and applied on every Open. Its version
// is tracked in PRAGMA user_version.
//
// Helper defers opening the database until it is first needed and owns the
// handle until Close.
package store
