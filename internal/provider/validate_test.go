package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/values"
)

func TestValidateInsert(t *testing.T) {
	tests := []struct {
		name   string
		vals   values.Values
		reason string // empty means valid
	}{
		{"complete", algorithms(), ""},
		{"name only", values.Values{"product_name": values.String("x")}, ""},
		{"empty name allowed", values.Values{"product_name": values.String("")}, ""},
		{"missing name", values.Values{"price": values.Int(1)}, "name required"},
		{"null name", values.Values{"product_name": values.Null{}}, "name required"},
		{"null quantity", values.Values{"product_name": values.String("x"), "quanity": values.Null{}}, ""},
		{"zero quantity", values.Values{"product_name": values.String("x"), "quanity": values.Int(0)}, ""},
		{"negative quantity", values.Values{"product_name": values.String("x"), "quanity": values.Int(-1)}, "invalid quantity"},
		{"numeric string quantity", values.Values{"product_name": values.String("x"), "quanity": values.String("5")}, ""},
		{"text quantity", values.Values{"product_name": values.String("x"), "quanity": values.String("five")}, "invalid quantity"},
		{"fractional quantity", values.Values{"product_name": values.String("x"), "quanity": values.Float(1.5)}, "invalid quantity"},
		{"negative price allowed", values.Values{"product_name": values.String("x"), "price": values.Int(-10)}, ""},
		{"name checked before quantity", values.Values{"quanity": values.Int(-1)}, "name required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInsert(tt.vals)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.reason, ve.Reason)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name   string
		vals   values.Values
		reason string
	}{
		{"empty", values.Values{}, ""},
		{"quantity only", values.Values{"quanity": values.Int(3)}, ""},
		{"price only", values.Values{"price": values.Null{}}, ""},
		{"null name", values.Values{"product_name": values.Null{}}, "name required"},
		{"negative quantity", values.Values{"quanity": values.Int(-5)}, "invalid quantity"},
		{"null quantity", values.Values{"quanity": values.Null{}}, ""},
		{"id", values.Values{"_id": values.Int(9)}, "id is immutable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUpdate(tt.vals)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: contract.ColumnProductName, Reason: "name required"}
	assert.Equal(t, "validation error: name required", err.Error())
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(ErrNoRecordCreated))
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ValidationError{Field: contract.ColumnQuantity, Reason: "invalid quantity"}, KindValidation},
		{fmt.Errorf("%w: content://x/y", ErrUnroutableAddress), KindAddress},
		{ErrUnsupportedAddress, KindAddress},
		{ErrUnsupportedType, KindAddress},
		{fmt.Errorf("%w for books: boom", ErrNoRecordCreated), KindNoRecord},
		{errors.New("disk I/O error"), KindStore},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), tt.err.Error())
	}
}
