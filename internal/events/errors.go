package events

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord matches every MalformedRecordError via errors.Is.
	ErrMalformedRecord = errors.New("malformed log record")
	// ErrEmptyUsername is returned when a submission carries no username.
	ErrEmptyUsername = errors.New("username is required")
	// ErrInvalidUsername is returned when a username does not fit the users table.
	ErrInvalidUsername = errors.New("invalid username")
)

// MalformedRecordError reports a log record field that is missing or has the wrong type.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed log record: %s: %s", e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// StorageError wraps a gateway failure with the step that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err came from the storage gateway.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
