package shell

import (
	"errors"
	"fmt"
)

// ErrDisabled is matched by DisabledError.
var ErrDisabled = errors.New("process execution is disabled")

// ErrPolicyDenied is matched by PolicyDeniedError.
var ErrPolicyDenied = errors.New("command denied by policy")

// DisabledError is returned when execution is switched off in config.
type DisabledError struct {
	Command string
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("process execution is disabled (set exec.enabled or IAV_EXEC_ENABLED to run %q)", e.Command)
}

func (e *DisabledError) Disabled() bool {
	return true
}

func (e *DisabledError) Is(target error) bool {
	return target == ErrDisabled
}

// PolicyDeniedError is returned when the allow/deny lists reject a command.
type PolicyDeniedError struct {
	Command string
	Reason  string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("command %q denied: %s", e.Command, e.Reason)
}

func (e *PolicyDeniedError) PolicyDenied() bool {
	return true
}

func (e *PolicyDeniedError) Is(target error) bool {
	return target == ErrPolicyDenied
}

// EnvFileReadError is returned when reading an env file fails.
type EnvFileReadError struct {
	Path  string
	Cause error
}

func (e *EnvFileReadError) Error() string {
	return fmt.Sprintf("failed to read env file %s: %v", e.Path, e.Cause)
}

func (e *EnvFileReadError) Unwrap() error {
	return e.Cause
}

func (e *EnvFileReadError) IOError() bool {
	return true
}

// EnvFileParseError is returned when an env file has an invalid format.
type EnvFileParseError struct {
	Path  string
	Cause error
}

func (e *EnvFileParseError) Error() string {
	return fmt.Sprintf("invalid env file %s: %v", e.Path, e.Cause)
}

func (e *EnvFileParseError) Unwrap() error {
	return e.Cause
}

func (e *EnvFileParseError) InvalidInput() bool {
	return true
}

// CommandRequiredError is returned when a command is missing.
type CommandRequiredError struct{}

func (e *CommandRequiredError) Error() string {
	return "command cannot be empty"
}

func (e *CommandRequiredError) InvalidInput() bool {
	return true
}

// NegativeTimeoutError is returned when a timeout is negative.
type NegativeTimeoutError struct {
	Value int
}

func (e *NegativeTimeoutError) Error() string {
	return fmt.Sprintf("timeout_ms cannot be negative: %d", e.Value)
}

func (e *NegativeTimeoutError) InvalidInput() bool {
	return true
}

// NegativeOutputCapError is returned when an output cap is negative.
type NegativeOutputCapError struct {
	Value int
}

func (e *NegativeOutputCapError) Error() string {
	return fmt.Sprintf("output_cap cannot be negative: %d", e.Value)
}

func (e *NegativeOutputCapError) InvalidInput() bool {
	return true
}

// InvalidModeError is returned for an unknown execution mode.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("unknown mode %q (want buffered, streamed or background)", e.Mode)
}

func (e *InvalidModeError) InvalidInput() bool {
	return true
}
