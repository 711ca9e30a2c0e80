package adapter

import (
	"errors"
	"fmt"
)

// -- Error Types --

// UnknownToolError is returned when no tool is registered under Name.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}
func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// InvalidArgumentError is returned when tool arguments cannot be decoded
// into the tool's request.
type InvalidArgumentError struct {
	Tool  string
	Cause error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Cause)
}
func (e *InvalidArgumentError) Unwrap() error { return e.Cause }
func (e *InvalidArgumentError) InvalidInput() bool { return true }

// DuplicateToolError is returned when two tools share a name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// -- Sentinels --

var (
	ErrUnknownTool = errors.New("unknown tool")
)
