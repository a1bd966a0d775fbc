package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the store layer. Handlers map these onto
// HTTP statuses; everything else is wrapped in a StorageError.
var (
	ErrRecordNotFound     = errors.New("diagnostic record not found")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrAlreadyReviewed    = errors.New("record has already been reviewed")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// StorageError wraps an underlying database failure. The operation that
// produced it was aborted with no partial state.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
