// Package errs defines the failure taxonomy shared by the store, the
// cross-table query engine and the bridge.
//
// Engine-specific error types never escape internal/store: every failure is
// either one of the sentinels below or wraps one of them.
package errs

import (
	"github.com/pkg/errors"
)

var (
	// ErrConnectionFailure means the store could not be opened.
	ErrConnectionFailure = errors.New("connection failure")
	// ErrInvalidIdentifier means a table name failed validation.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrDuplicateName means the registry already holds the name.
	ErrDuplicateName = errors.New("duplicate table name")
	// ErrInsufficientSelection means combine got fewer than two tables.
	ErrInsufficientSelection = errors.New("insufficient selection")
	// ErrStorageFailure wraps any SQL engine error.
	ErrStorageFailure = errors.New("storage failure")
	// ErrInvalidField means search got a field other than name or relationship.
	ErrInvalidField = errors.New("invalid search field")
)

// storageError keeps the engine error text for diagnostics while matching
// ErrStorageFailure under errors.Is.
type storageError struct {
	op    string
	cause error
}

func (e *storageError) Error() string {
	return e.op + ": " + ErrStorageFailure.Error() + ": " + e.cause.Error()
}

func (e *storageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func (e *storageError) Cause() error { return e.cause }

// Storage wraps an engine error raised during op. Returns nil for nil.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return &storageError{op: op, cause: err}
}

// Classify maps any error onto its taxonomy sentinel.
// Unknown errors are reported as ErrStorageFailure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrConnectionFailure,
		ErrInvalidIdentifier,
		ErrDuplicateName,
		ErrInsufficientSelection,
		ErrInvalidField,
		ErrStorageFailure,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return ErrStorageFailure
}
