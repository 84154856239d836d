package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/slotswap-api/internal/api/shared"
	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/service"
	"github.com/phrazzld/slotswap-api/internal/service/auth"
)

// RetryAfterSeconds is advertised on TRANSACTION_FAILURE responses.
const RetryAfterSeconds = "1"

// kindStatus maps each error kind to its HTTP status.
var kindStatus = map[service.Kind]int{
	service.KindNotFound:           http.StatusNotFound,
	service.KindNotOwner:           http.StatusForbidden,
	service.KindNotAuthorized:      http.StatusForbidden,
	service.KindSelfSwap:           http.StatusUnprocessableEntity,
	service.KindInvalidState:       http.StatusConflict,
	service.KindAlreadyResolved:    http.StatusConflict,
	service.KindTransactionFailure: http.StatusServiceUnavailable,
	service.KindValidation:         http.StatusBadRequest,
	service.KindUnauthenticated:    http.StatusUnauthorized,
	service.KindConflict:           http.StatusConflict,
	service.KindInternal:           http.StatusInternalServerError,
}

// ErrorKind classifies err for the response body. Token errors from the auth
// package are UNAUTHENTICATED; request decoding failures are VALIDATION.
func ErrorKind(err error) service.Kind {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return service.KindUnauthenticated
	case errors.As(err, &verrs), errors.Is(err, errBadRequestBody):
		return service.KindValidation
	}
	return service.KindOf(err)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error kind. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	if status, ok := kindStatus[ErrorKind(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)
	case errors.Is(err, errBadRequestBody):
		return "Invalid request format"
	}

	switch ErrorKind(err) {
	case service.KindNotFound:
		return "Resource not found"
	case service.KindNotOwner:
		return "You do not own this slot"
	case service.KindNotAuthorized:
		return "Only the receiver can respond to this request"
	case service.KindSelfSwap:
		return "Cannot swap with your own slot"
	case service.KindInvalidState:
		return "Slot is not in a valid state for this operation"
	case service.KindAlreadyResolved:
		return "Swap request has already been resolved"
	case service.KindTransactionFailure:
		return "The request conflicted with a concurrent change; please retry"
	case service.KindUnauthenticated:
		if errors.Is(err, service.ErrInvalidCredentials) {
			return "Invalid email or password"
		}
		return "Invalid token"
	case service.KindConflict:
		return "Email already exists"
	case service.KindValidation:
		return "Validation error"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns the first struct validation failure into a
// client message naming the JSON field and the failed rule.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	case "gtfield":
		return "must be after start_time"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err: status from its kind, a
// safe message (or fallback for internal errors) and Retry-After on
// transaction failures.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	kind := ErrorKind(err)
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if kind == service.KindInternal && fallback != "" {
		message = fallback
	}
	if kind == service.KindTransactionFailure {
		w.Header().Set("Retry-After", RetryAfterSeconds)
	}

	shared.RespondWithErrorAndLog(w, r, status, string(kind), message, err)
}
