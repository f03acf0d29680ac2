package apperror

import (
	"fmt"
	"net/http"
)

var (
	// ErrAuthenticate is returned for every bearer token failure so that
	// missing, forged and revoked tokens are indistinguishable.
	ErrAuthenticate = New(
		CodeUnauthorized,
		"please, authenticate.",
		http.StatusUnauthorized,
	)

	// ErrLoginFailed covers both an unknown email and a wrong password.
	ErrLoginFailed = New(
		CodeUnauthorized,
		"Unable to login",
		http.StatusBadRequest,
	)

	ErrNoRights = New(
		CodeForbidden,
		"you have no rights for this operation.",
		http.StatusBadRequest,
	)

	ErrUpdateOthers = New(
		CodeForbidden,
		"can't update others information.",
		http.StatusBadRequest,
	)

	ErrInvalidUpdates = New(
		CodeInvalidInput,
		"Invalid updates!",
		http.StatusBadRequest,
	)

	ErrInvalidBody = New(
		CodeInvalidInput,
		"Invalid request body",
		http.StatusBadRequest,
	)

	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)

	ErrStorageUnavailable = New(
		CodeServiceUnavailable,
		"attachment storage unavailable",
		http.StatusServiceUnavailable,
	)
)

// Validation builds a ValidationError with a client-facing message.
func Validation(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func RequiredField(field string) *AppError {
	return Validation(fmt.Sprintf("%s is required", field))
}

func InvalidField(field string) *AppError {
	return Validation(fmt.Sprintf("%s is invalid", field))
}

// Internal wraps an unclassified failure (usually from the store) as a 500.
func Internal(err error) *AppError {
	return Wrap(err, CodeInternalError, ErrInternal.Message, http.StatusInternalServerError)
}
