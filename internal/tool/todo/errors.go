package todo

import (
	"errors"
	"fmt"
)

// -- Error Types --

type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo %d not found", e.ID)
}
func (e *NotFoundError) NotFound() bool { return true }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type InvalidStatusError struct {
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q, must be one of not-started, in-progress, blocked, done", e.Status)
}
func (e *InvalidStatusError) InvalidInput() bool { return true }
func (e *InvalidStatusError) Is(target error) bool { return target == ErrInvalidStatus }

type InvalidIDError struct {
	ID int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("id must be >= 1, got %d", e.ID)
}
func (e *InvalidIDError) InvalidInput() bool { return true }

type InvalidActionError struct {
	Action Action
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("unknown action %q, must be one of add, done, set_status, remove, list", e.Action)
}
func (e *InvalidActionError) InvalidInput() bool { return true }

type StoreReadError struct {
	Path  string
	Cause error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("failed to read todos from %s: %v", e.Path, e.Cause)
}
func (e *StoreReadError) Unwrap() error { return e.Cause }
func (e *StoreReadError) IOError() bool { return true }

type StoreWriteError struct {
	Path  string
	Cause error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to write todos to %s: %v", e.Path, e.Cause)
}
func (e *StoreWriteError) Unwrap() error { return e.Cause }
func (e *StoreWriteError) IOError() bool { return true }

// -- Sentinels --

var (
	ErrNotFound      = errors.New("todo not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrTitleRequired = errors.New("title cannot be empty")
)
