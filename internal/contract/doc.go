// Package contract defines the static schema of the books resource: the
// content authority, the addresses used to reach the collection and single
// records, the result-kind tags, and the persisted table and column names.
//
// This package contains definitions only. It performs no I/O and imports
// nothing internal, so every other package may depend on it.
//
// # Addresses
//
// Two address shapes are meaningful:
//
//	content://com.example.android.books/books      all books (collection)
//	content://com.example.android.books/books/<id> one book (record)
//
// Record addresses are built with Address.WithID and decoded with
// Address.ID. Routing of addresses to operations lives in the provider
// package; this package only knows how to build and take them apart.
//
// # Column names
//
// The quantity column is persisted as "quanity". The spelling is part of
// the on-disk format and is kept so existing databases stay readable.
package contract
