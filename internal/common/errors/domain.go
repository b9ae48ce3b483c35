package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryForbidden    ErrorCategory = "FORBIDDEN"
	CategoryInternal     ErrorCategory = "INTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

// Is makes all instances derived from the same template (via WithCause)
// match each other under errors.Is.
func (e *domainError) Is(target error) bool {
	other, ok := target.(*domainError)
	if !ok {
		return false
	}
	return e.code == other.code
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrInvalidBcryptCost = NewDomainError(
		"INVALID_BCRYPT_COST",
		CategoryValidation,
		http.StatusInternalServerError,
		"BCRYPT_COST is out of the allowed range",
	)

	ErrUsernameAlreadyExists = NewDomainError(
		"USERNAME_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrMessageNotFound = NewDomainError(
		"MESSAGE_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"message not found",
	)

	ErrUnknownRecipient = NewDomainError(
		"UNKNOWN_RECIPIENT",
		CategoryValidation,
		http.StatusBadRequest,
		"recipient does not exist",
	)

	ErrForbidden = NewDomainError(
		"FORBIDDEN",
		CategoryForbidden,
		http.StatusForbidden,
		"operation not allowed for this user",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrInvalidTokenSigningMethod = NewDomainError(
		"INVALID_TOKEN_SIGNING_METHOD",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid token signing method",
	)

	ErrMissingTokenClaims = NewDomainError(
		"MISSING_TOKEN_CLAIMS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"missing required token claims",
	)

	ErrDatabaseError = NewDomainError(
		"DATABASE_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"database operation failed",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)
