package entities

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError reports input that was rejected before anything was stored.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a database or file-system failure. Its message names only
// the operation; the cause is reachable through errors.Unwrap for logging.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Op
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// AsStorageError wraps err in a StorageError unless it is already a
// validation or storage error.
func AsStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var storageErr *StorageError
	if errors.Is(err, ErrValidation) || errors.As(err, &storageErr) {
		return err
	}
	return NewStorageError(op, err)
}
