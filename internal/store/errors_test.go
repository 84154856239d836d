package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, expected: true},
		{name: "ErrSlotNotFound", err: ErrSlotNotFound, expected: true},
		{name: "wrapped ErrSwapRequestNotFound", err: fmt.Errorf("load: %w", ErrSwapRequestNotFound), expected: true},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
		{
			name:     "store error wrapping not found",
			err:      NewStoreError("slot", "get", "lookup failed", ErrSlotNotFound),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrPendingRequestExists)))
	assert.False(t, IsDuplicateError(ErrSlotNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrStaleState))
	assert.True(t, IsRetryable(fmt.Errorf("commit: %w", ErrTransactionFailed)))
	assert.False(t, IsRetryable(ErrSlotNotFound))
	assert.False(t, IsRetryable(errors.New("other")))
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("slot", "update", "guard failed", ErrStaleState)
	assert.Equal(t, "update operation on slot failed: guard failed: stale state", err.Error())
	assert.ErrorIs(t, err, ErrStaleState)

	bare := NewStoreError("user", "create", "bad input", nil)
	assert.Equal(t, "create operation on user failed: bad input", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
