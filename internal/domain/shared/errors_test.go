package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *DomainError
	}{
		{"validation", NewValidationError("amount", "must be positive"), ErrValidation},
		{"tenant mismatch", &TenantMismatchError{Entity: "vendor"}, ErrTenantMismatch},
		{"insufficient stock", &InsufficientStockError{Dimension: "weight"}, ErrInsufficientStock},
		{"not found", NewNotFoundError("invoice", uuid.New()), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("apply payment: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.sentinel.Code, ErrorCode(wrapped))

			var detailed DetailedError
			assert.True(t, errors.As(wrapped, &detailed))
			assert.NotEmpty(t, detailed.Details())
		})
	}
}

func TestValidationError_Details(t *testing.T) {
	err := NewValidationError("bank_account_id", "required for mode BANK").WithExpected("uuid", "")

	assert.Equal(t, "bank_account_id", err.Details()["field"])
	assert.Equal(t, "uuid", err.Details()["expected"])
	assert.NotContains(t, err.Details(), "actual")
	assert.Contains(t, err.Error(), "required for mode BANK")
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	copyOfSentinel := NewDomainError(ErrConcurrencyConflict.Code, "version mismatch on invoice")

	assert.True(t, errors.Is(copyOfSentinel, ErrConcurrencyConflict))
	assert.False(t, errors.Is(copyOfSentinel, ErrNotFound))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
}
