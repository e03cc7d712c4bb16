package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FetchError means a table load failed; the whole batch is discarded.
type FetchError struct {
	Err error
}

func NewFetchError(err error) error {
	return &FetchError{Err: err}
}

func (err FetchError) Error() string { return err.Err.Error() }

func (err FetchError) Unwrap() error { return err.Err }

// MutationError means an insert, update or delete was rejected.
// Prefix is the user facing context, e.g. "Update error".
type MutationError struct {
	Prefix string
	Err    error
}

func NewMutationError(prefix string, err error) error {
	return &MutationError{Prefix: prefix, Err: err}
}

func (err MutationError) Error() string {
	if err.Prefix == "" {
		return err.Err.Error()
	}
	return err.Prefix + ": " + err.Err.Error()
}

func (err MutationError) Unwrap() error { return err.Err }

// AuthError is returned when a login lookup or password check fails.
type AuthError struct {
	Message string
}

func NewAuthError(msg string) error {
	return &AuthError{Message: msg}
}

func (err AuthError) Error() string { return err.Message }

// ErrForbidden is returned when the session's role may not perform an action.
var ErrForbidden = errors.New("permission denied")

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
