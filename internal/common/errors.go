// Package common defines shared constants and sentinel errors used across
// the account service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Failure kinds. Every *Error unwraps to exactly one of these.
	ErrorValidation   = errors.New("validation failure")
	ErrorConflict     = errors.New("conflict")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorPrecondition = errors.New("precondition failed")

	// Auth errors (invalid, expired or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
)
