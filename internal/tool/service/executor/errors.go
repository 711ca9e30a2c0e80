package executor

import (
	"errors"
	"fmt"
)

// SpawnError is returned when the OS refuses to start a command.
type SpawnError struct {
	Cmd   string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Cmd, e.Cause)
}
func (e *SpawnError) Unwrap() error { return e.Cause }
func (e *SpawnError) SpawnFailed() bool { return true }

// ErrCommandRequired is returned when no command name is given.
var ErrCommandRequired = errors.New("command is required")
