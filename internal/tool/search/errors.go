package search

import "fmt"

// PatternRequiredError is returned when the pattern is empty.
type PatternRequiredError struct{}

func (e *PatternRequiredError) Error() string      { return "pattern is required" }
func (e *PatternRequiredError) InvalidInput() bool { return true }

// InvalidPatternError is returned when a pattern does not compile.
type InvalidPatternError struct {
	Field   string
	Pattern string
	Cause   error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Pattern, e.Cause)
}
func (e *InvalidPatternError) Unwrap() error      { return e.Cause }
func (e *InvalidPatternError) InvalidInput() bool { return true }

// NegativeContextError is returned when a context width is negative.
type NegativeContextError struct {
	Before  int
	After   int
	Context int
}

func (e *NegativeContextError) Error() string {
	return fmt.Sprintf("context cannot be negative: before=%d after=%d context=%d", e.Before, e.After, e.Context)
}

func (e *NegativeContextError) InvalidInput() bool { return true }

// NegativeLimitError is returned when a limit is negative.
type NegativeLimitError struct {
	Field string
	Value int64
}

func (e *NegativeLimitError) Error() string {
	return fmt.Sprintf("%s cannot be negative: %d", e.Field, e.Value)
}

func (e *NegativeLimitError) InvalidInput() bool { return true }

// StatError is returned when stat fails.
type StatError struct {
	Path  string
	Cause error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("failed to stat search path %s: %v", e.Path, e.Cause)
}
func (e *StatError) Unwrap() error { return e.Cause }
func (e *StatError) IOError() bool { return true }

// WalkError is returned when the directory walk fails.
type WalkError struct {
	Path  string
	Cause error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("failed to walk %s: %v", e.Path, e.Cause)
}
func (e *WalkError) Unwrap() error { return e.Cause }
func (e *WalkError) IOError() bool { return true }
