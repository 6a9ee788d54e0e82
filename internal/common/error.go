package common

import "errors"

// Error is a domain failure carrying a caller-facing message and a kind.
// The kind is reachable through errors.Is, so transports can branch on
// ErrorValidation, ErrorConflict, ErrorUnauthorized, ErrorPrecondition or
// ErrorNotFound without knowing every concrete failure.
type Error struct {
	kind    error
	message string
}

// NewError returns a domain failure of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

// Message is the text surfaced to the caller.
func (e *Error) Message() string { return e.message }

// Kind returns the failure kind sentinel.
func (e *Error) Kind() error { return e.kind }

var kinds = []error{ErrorValidation, ErrorConflict, ErrorUnauthorized, ErrorPrecondition, ErrorNotFound}

// KindOf reports the failure kind of err. Anything that is not a domain
// failure is classified as ErrorInternal.
func KindOf(err error) error {
	var de *Error
	if !errors.As(err, &de) {
		return ErrorInternal
	}
	for _, k := range kinds {
		if errors.Is(de.kind, k) {
			return k
		}
	}
	return ErrorInternal
}
