package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Store errors.
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidFields     = errors.New("fields must be an array")
	ErrPackageNotFound   = errors.New("package not found")
	ErrShareKeyExhausted = errors.New("unable to generate unique share key")

	// Form errors.
	ErrPrivateForm = errors.New("private forms cannot generate share links")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
