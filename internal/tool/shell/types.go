package shell

import "strings"

// Mode selects how a command's output is collected.
type Mode string

const (
	ModeBuffered   Mode = "buffered"
	ModeStreamed   Mode = "streamed"
	ModeBackground Mode = "background"
)

// ExecRequest is the wire format for process execution.
type ExecRequest struct {
	Command    string            `json:"command"`
	Args       []string          `json:"args,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	EnvFiles   []string          `json:"env_files,omitempty"` // workspace-relative .env files, applied before Env
	TimeoutMs  int               `json:"timeout_ms,omitempty"`
	OutputCap  int               `json:"output_cap,omitempty"`
	Mode       Mode              `json:"mode,omitempty"`
}

// Validate checks the request shape. It performs no I/O.
func (r *ExecRequest) Validate() error {
	if strings.TrimSpace(r.Command) == "" {
		return &CommandRequiredError{}
	}
	if r.TimeoutMs < 0 {
		return &NegativeTimeoutError{Value: r.TimeoutMs}
	}
	if r.OutputCap < 0 {
		return &NegativeOutputCapError{Value: r.OutputCap}
	}
	switch r.mode() {
	case ModeBuffered, ModeStreamed, ModeBackground:
	default:
		return &InvalidModeError{Mode: string(r.Mode)}
	}
	return nil
}

func (r *ExecRequest) mode() Mode {
	if r.Mode == "" {
		return ModeBuffered
	}
	return Mode(strings.ToLower(string(r.Mode)))
}

// ExecResponse contains the outcome of one execution. ExitCode is nil for
// background runs.
type ExecResponse struct {
	ExitCode   *int   `json:"exitCode"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	Output     string `json:"output,omitempty"`
	Truncated  bool   `json:"truncated"`
	Binary     bool   `json:"binary,omitempty"`
	TimedOut   bool   `json:"timedOut,omitempty"`
	PID        int    `json:"pid,omitempty"`
	DurationMs int64  `json:"durationMs"`
	WorkingDir string `json:"workingDir"`
	Mode       Mode   `json:"mode"`
}

// Failed reports whether the run should be surfaced to the caller as an error.
func (r *ExecResponse) Failed() bool {
	if r.TimedOut {
		return true
	}
	return r.ExitCode != nil && *r.ExitCode != 0
}
