package domain

import (
	"errors"
	"fmt"

	errprocess "focushub/pkg/err"
)

var (
	// ErrValidation malformed event payload, reported in the ack, connection stays open
	ErrValidation = errprocess.ErrValidation
	// ErrNotFound referenced post or comment does not exist
	ErrNotFound = errprocess.ErrNotFound
	// ErrForbidden actor does not own the resource
	ErrForbidden = errprocess.ErrForbidden
	// ErrUnauthenticated handshake without a valid token
	ErrUnauthenticated = errprocess.ErrUnauthenticated
	// ErrUnknownEvent frame named an event the server does not handle
	ErrUnknownEvent = fmt.Errorf("%w: unknown event", ErrValidation)
)

// Validationf builds an ErrValidation with detail
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// PersistenceError storage call failed, nothing was fanned out
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err unless it already is a domain error
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrForbidden) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is a PersistenceError
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
