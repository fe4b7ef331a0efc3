// Package provider is the record store service for the book inventory.
//
// Callers address data with content addresses: the collection address
// (content://<authority>/books) names every record and a record address
// (collection plus an integer identifier) names one. A Provider resolves the
// address through an immutable routing table, validates input, runs exactly
// one SQL statement against the store, and publishes a change on the
// notification bus after a successful mutation.
//
// Errors fall into three groups:
//
//   - Address errors: ErrUnroutableAddress, ErrUnsupportedAddress and
//     ErrUnsupportedType, each wrapped with the offending address.
//   - Input errors: *ValidationError (matches ErrValidation) and
//     ErrNoRecordCreated for inserts the store rejected.
//   - Store faults: returned wrapped, so errors.Is and errors.As still
//     reach the driver error.
//
// A Provider does no locking of its own. Calls run synchronously on the
// caller's goroutine and the single database connection serializes them.
package provider
