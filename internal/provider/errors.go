package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUnroutableAddress is returned by List, Update and Delete for an
	// address that is neither the collection nor a record address.
	ErrUnroutableAddress = errors.New("unknown address")

	// ErrUnsupportedAddress is returned by Insert for any address other
	// than the collection address.
	ErrUnsupportedAddress = errors.New("insertion is not supported")

	// ErrUnsupportedType is returned by ResolveType for an unrecognized
	// address.
	ErrUnsupportedType = errors.New("unknown address type")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrNoRecordCreated is returned when the insert statement failed, for
	// example on a constraint violation or an unknown column.
	ErrNoRecordCreated = errors.New("no record created")

	// ErrResultSetClosed is returned when observing a closed result set.
	ErrResultSetClosed = errors.New("result set is closed")
)

// ValidationError reports input the caller must correct before retrying.
type ValidationError struct {
	// Field is the column that failed validation.
	Field string
	// Reason is a short description, e.g. "name required".
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAddressError returns true for any of the address errors.
func IsAddressError(err error) bool {
	return errors.Is(err, ErrUnroutableAddress) ||
		errors.Is(err, ErrUnsupportedAddress) ||
		errors.Is(err, ErrUnsupportedType)
}

// Error kinds returned by Kind.
const (
	KindValidation = "validation"
	KindAddress    = "address"
	KindNoRecord   = "no_record"
	KindStore      = "store"
)

// Kind classifies err into one of the error kinds. Anything that is not a
// validation, address or no-record error is a store fault.
func Kind(err error) string {
	switch {
	case IsValidationError(err):
		return KindValidation
	case IsAddressError(err):
		return KindAddress
	case errors.Is(err, ErrNoRecordCreated):
		return KindNoRecord
	default:
		return KindStore
	}
}
