package executor

import "time"

// Command describes one process to spawn. Dir must already be confined.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	// Timeout bounds buffered and streamed runs. Zero means no timeout.
	Timeout time.Duration

	// OutputCap is one byte budget shared by stdout and stderr for buffered
	// runs and applied to the combined output for streamed runs. Zero or
	// negative disables the cap.
	OutputCap int
}

// Result represents the outcome of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	Combined string

	ExitCode  int
	Truncated bool
	Binary    bool
	TimedOut  bool

	PID      int
	Duration time.Duration
}
