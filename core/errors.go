package core

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrRemoteUnavailable is returned when the store cannot be reached or is
	// misconfigured. It is only surfaced at startup; callers should treat it
	// as a blocking configuration problem, not something to retry forever.
	ErrRemoteUnavailable = stderrors.New("remote store unavailable")

	// ErrWriteFailed is returned when an insert/update/delete is rejected by
	// the store after the write path exhausted its retry budget. Local view
	// state is never changed optimistically, so nothing needs rolling back.
	ErrWriteFailed = stderrors.New("write rejected by remote store")
)

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
