package path

import (
	"errors"
	"fmt"
)

// -- Error Types --

// WorkspaceRootError is returned when the workspace root is invalid.
type WorkspaceRootError struct {
	Root  string
	Cause error
}

func (e *WorkspaceRootError) Error() string {
	return fmt.Sprintf("invalid workspace root %s: %v", e.Root, e.Cause)
}
func (e *WorkspaceRootError) Unwrap() error { return e.Cause }

// OutsideWorkspaceError is returned when a path resolves, after symlink
// resolution, to a location outside the workspace root.
type OutsideWorkspaceError struct {
	Path     string
	Resolved string
}

func (e *OutsideWorkspaceError) Error() string {
	if e.Resolved != "" && e.Resolved != e.Path {
		return fmt.Sprintf("path %s resolves to %s, outside the workspace", e.Path, e.Resolved)
	}
	return fmt.Sprintf("path %s is outside the workspace", e.Path)
}
func (e *OutsideWorkspaceError) OutsideWorkspace() bool { return true }
func (e *OutsideWorkspaceError) Is(target error) bool { return target == ErrOutsideWorkspace }

// NotFoundError is returned when a path is required to exist but does not.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path %s does not exist", e.Path)
}
func (e *NotFoundError) NotFound() bool { return true }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ResolveError wraps an unexpected filesystem failure during resolution.
type ResolveError struct {
	Path  string
	Cause error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Path, e.Cause)
}
func (e *ResolveError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrOutsideWorkspace    = errors.New("path is outside workspace root")
	ErrNotFound            = errors.New("path does not exist")
	ErrWorkspaceRootNotSet = errors.New("workspace root not set")
	ErrNotADirectory       = errors.New("not a directory")
	ErrTooManyLinks        = errors.New("too many levels of symbolic links")
)
