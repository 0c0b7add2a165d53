package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence is matched by every error returned from this package.
	ErrPersistence = errors.New("persistence failure")
	// ErrFileExists is returned by save operations when overwrite is not allowed.
	ErrFileExists = errors.New("file already exists")
	// ErrLocked is returned when another process holds the file lock.
	ErrLocked = errors.New("file is locked by another process")
)

// Error describes a failed load or save.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

func newError(op, path string, err error) error {
	return &Error{Op: op, Path: path, Err: err}
}
