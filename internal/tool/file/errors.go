package file

import (
	"errors"
	"fmt"
)

// -- Error Types --

type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat %s: %v", e.Path, e.Cause)
}
func (e *StatError) Unwrap() error { return e.Cause }
func (e *StatError) IOError() bool { return true }

type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
}
func (e *ReadError) Unwrap() error { return e.Cause }
func (e *ReadError) IOError() bool { return true }

type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause)
}
func (e *WriteError) Unwrap() error { return e.Cause }
func (e *WriteError) IOError() bool { return true }

type EnsureDirsError struct {
	Path  string
	Cause error
}

func (e *EnsureDirsError) Error() string {
	return fmt.Sprintf("failed to create directories %s: %v", e.Path, e.Cause)
}
func (e *EnsureDirsError) Unwrap() error { return e.Cause }
func (e *EnsureDirsError) IOError() bool { return true }

type IsDirectoryError struct {
	Path string
}

func (e *IsDirectoryError) Error() string {
	return fmt.Sprintf("%s is a directory", e.Path)
}
func (e *IsDirectoryError) Is(target error) bool { return target == ErrIsDirectory }

type TooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, exceeds limit of %d", e.Path, e.Size, e.Limit)
}
func (e *TooLargeError) Is(target error) bool { return target == ErrFileTooLarge }

type BinaryFileError struct {
	Path string
}

func (e *BinaryFileError) Error() string {
	return fmt.Sprintf("%s contains binary content", e.Path)
}
func (e *BinaryFileError) Is(target error) bool { return target == ErrBinaryFile }

type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("file %s already exists, set overwrite to replace it", e.Path)
}
func (e *AlreadyExistsError) Is(target error) bool { return target == ErrFileExists }

type InvalidRangeError struct {
	Field string
	Value int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s must be >= 0, got %d", e.Field, e.Value)
}
func (e *InvalidRangeError) InvalidInput() bool { return true }

type PatchRequiredError struct {
	Path string
}

func (e *PatchRequiredError) Error() string {
	return fmt.Sprintf("patch for %s is empty", e.Path)
}
func (e *PatchRequiredError) InvalidInput() bool { return true }

// InvalidPatchError is returned when the patch text cannot be parsed.
type InvalidPatchError struct {
	Path  string
	Cause error
}

func (e *InvalidPatchError) Error() string {
	return fmt.Sprintf("invalid patch for %s: %v", e.Path, e.Cause)
}
func (e *InvalidPatchError) Unwrap() error { return e.Cause }
func (e *InvalidPatchError) InvalidInput() bool { return true }

// PatchConflictError is returned when a patch does not apply to the
// current content of a file.
type PatchConflictError struct {
	Path  string
	Cause error
}

func (e *PatchConflictError) Error() string {
	return fmt.Sprintf("patch does not apply to %s: %v", e.Path, e.Cause)
}
func (e *PatchConflictError) Unwrap() error { return e.Cause }
func (e *PatchConflictError) Is(target error) bool { return target == ErrPatchConflict }

// EditConflictError is returned when a file changed on disk since a tool
// last read or wrote it.
type EditConflictError struct {
	Path string
}

func (e *EditConflictError) Error() string {
	return fmt.Sprintf("file %s changed since it was last read", e.Path)
}
func (e *EditConflictError) Is(target error) bool { return target == ErrEditConflict }

// -- Sentinels --

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPatchesRequired = errors.New("patches cannot be empty")
	ErrFileExists      = errors.New("file already exists")
	ErrBinaryFile      = errors.New("file is binary")
	ErrFileTooLarge    = errors.New("file too large")
	ErrIsDirectory     = errors.New("path is a directory")
	ErrPatchConflict   = errors.New("patch conflict")
	ErrEditConflict    = errors.New("edit conflict")
)
