package script

import (
	"errors"
	"fmt"
)

var (
	errPromisePending = errors.New("promise did not settle")
	errNetworkScheme  = errors.New("fetch only supports http and https")
)

// CodeRequiredError is returned when no script body is given.
type CodeRequiredError struct{}

func (e *CodeRequiredError) Error() string {
	return "code cannot be empty"
}

func (e *CodeRequiredError) InvalidInput() bool {
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
