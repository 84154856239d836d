package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Sentinels are wrapped in *SwapServiceError to name the failed operation
// 3. Callers use errors.Is/errors.As (or KindOf) to check for specific conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotFound indicates a referenced slot or swap request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner indicates the caller does not own the slot they acted on.
	ErrNotOwner = errors.New("slot is owned by another user")

	// ErrSelfSwap indicates the caller tried to swap with a slot they own.
	ErrSelfSwap = errors.New("cannot swap with your own slot")

	// ErrInvalidState indicates a slot is not in the status the operation requires.
	ErrInvalidState = errors.New("slot is not in a valid state for this operation")

	// ErrNotAuthorized indicates the caller is not the receiver of the request.
	ErrNotAuthorized = errors.New("not authorized to respond to this request")

	// ErrAlreadyResolved indicates the swap request has already been answered.
	ErrAlreadyResolved = errors.New("swap request has already been resolved")

	// ErrTransactionFailure indicates the unit of work could not commit because
	// of a concurrent conflicting change. Nothing was written; the caller may retry.
	ErrTransactionFailure = errors.New("transaction failed due to a concurrent update")

	// ErrEmailExists indicates registration used an email already taken.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Kind is the caller-visible classification of an error.
type Kind string

// Error kinds
const (
	KindNotFound           Kind = "NOT_FOUND"
	KindNotOwner           Kind = "NOT_OWNER"
	KindNotAuthorized      Kind = "NOT_AUTHORIZED"
	KindSelfSwap           Kind = "SELF_SWAP"
	KindInvalidState       Kind = "INVALID_STATE"
	KindAlreadyResolved    Kind = "ALREADY_RESOLVED"
	KindTransactionFailure Kind = "TRANSACTION_FAILURE"
	KindValidation         Kind = "VALIDATION"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindConflict           Kind = "CONFLICT"
	KindInternal           Kind = "INTERNAL"
)

// KindOf classifies err. Unrecognized errors are KindInternal.
func KindOf(err error) Kind {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrSelfSwap):
		return KindSelfSwap
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrAlreadyResolved):
		return KindAlreadyResolved
	case errors.Is(err, ErrTransactionFailure):
		return KindTransactionFailure
	case errors.Is(err, ErrInvalidCredentials):
		return KindUnauthenticated
	case errors.Is(err, ErrEmailExists):
		return KindConflict
	case errors.As(err, &verr), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidID):
		return KindValidation
	default:
		return KindInternal
	}
}

// SwapServiceError is a custom error type for service errors.
type SwapServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SwapServiceError.
func (e *SwapServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SwapServiceError) Unwrap() error {
	return e.Err
}

// NewSwapServiceError creates a new SwapServiceError.
func NewSwapServiceError(operation, message string, err error) *SwapServiceError {
	return &SwapServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// translateError maps whatever came back from a unit of work or a store call
// to a service error. Errors that already carry a service sentinel pass through.
func translateError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var svcErr *SwapServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return NewSwapServiceError(operation, "invalid input", err)
	case store.IsRetryable(err), errors.Is(err, store.ErrPendingRequestExists):
		return NewSwapServiceError(operation, "concurrent update", fmt.Errorf("%w: %w", ErrTransactionFailure, err))
	case store.IsDuplicateError(err):
		return NewSwapServiceError(operation, "duplicate email", fmt.Errorf("%w: %w", ErrEmailExists, err))
	case store.IsNotFoundError(err):
		return NewSwapServiceError(operation, "missing entity", fmt.Errorf("%w: %w", ErrNotFound, err))
	default:
		return NewSwapServiceError(operation, "unexpected error", err)
	}
}
