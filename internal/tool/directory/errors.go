package directory

import (
	"errors"
	"fmt"
)

// -- Error Types --

type NegativeValueError struct {
	Field string
	Value int
}

func (e *NegativeValueError) Error() string {
	return fmt.Sprintf("%s must be >= 0, got %d", e.Field, e.Value)
}
func (e *NegativeValueError) InvalidInput() bool { return true }

type LimitExceededError struct {
	Value int
	Max   int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit %d exceeds maximum %d", e.Value, e.Max)
}
func (e *LimitExceededError) InvalidInput() bool { return true }

type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("%s is not a directory", e.Path)
}
func (e *NotADirectoryError) Is(target error) bool { return target == ErrNotADirectory }

type ListDirError struct {
	Path  string
	Cause error
}

func (e *ListDirError) Error() string {
	return fmt.Sprintf("failed to list %s: %v", e.Path, e.Cause)
}
func (e *ListDirError) Unwrap() error { return e.Cause }
func (e *ListDirError) IOError() bool { return true }

// -- Sentinels --

var (
	ErrNotADirectory = errors.New("not a directory")
)
