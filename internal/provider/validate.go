package provider

import (
	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/values"
)

const (
	reasonNameRequired    = "name required"
	reasonInvalidQuantity = "invalid quantity"
	reasonIDImmutable     = "id is immutable"
)

// validateInsert checks a complete new record, in order: the product name
// must be present and non-null, then a non-null quantity must be an integer
// of at least zero. Price is not validated.
func validateInsert(vals values.Values) error {
	if !vals.Has(contract.ColumnProductName) || vals.IsNull(contract.ColumnProductName) {
		return &ValidationError{Field: contract.ColumnProductName, Reason: reasonNameRequired}
	}
	return validateQuantity(vals)
}

// validateUpdate checks only the keys present in a partial update.
func validateUpdate(vals values.Values) error {
	if vals.Has(contract.ColumnProductName) && vals.IsNull(contract.ColumnProductName) {
		return &ValidationError{Field: contract.ColumnProductName, Reason: reasonNameRequired}
	}
	if err := validateQuantity(vals); err != nil {
		return err
	}
	if vals.Has(contract.ColumnID) {
		return &ValidationError{Field: contract.ColumnID, Reason: reasonIDImmutable}
	}
	return nil
}

func validateQuantity(vals values.Values) error {
	if !vals.Has(contract.ColumnQuantity) || vals.IsNull(contract.ColumnQuantity) {
		return nil
	}
	q, ok := vals.AsInt(contract.ColumnQuantity)
	if !ok || q < 0 {
		return &ValidationError{Field: contract.ColumnQuantity, Reason: reasonInvalidQuantity}
	}
	return nil
}
