package script

import "strings"

// Status is the terminal state of a script run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// ScriptRequest is the wire format for running a script.
type ScriptRequest struct {
	Code         string `json:"code"`
	TimeoutMs    int    `json:"timeout_ms,omitempty"`
	OutputCap    int    `json:"output_cap,omitempty"`
	AllowNetwork bool   `json:"allow_network,omitempty"`
}

// Validate checks the request shape. It performs no I/O.
func (r *ScriptRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return &CodeRequiredError{}
	}
	if r.TimeoutMs < 0 {
		return &NegativeTimeoutError{Value: r.TimeoutMs}
	}
	if r.OutputCap < 0 {
		return &NegativeOutputCapError{Value: r.OutputCap}
	}
	return nil
}

// ScriptResponse is the outcome of one sandboxed run.
type ScriptResponse struct {
	SessionID  string   `json:"sessionId"`
	Status     Status   `json:"status"`
	Result     string   `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
	Console    []string `json:"console"`
	Output     string   `json:"output"`
	Truncated  bool     `json:"truncated"`
	DurationMs int64    `json:"durationMs"`
}

// render joins console output, the result and any error into one block.
func (r *ScriptResponse) render() string {
	var sb strings.Builder
	for _, line := range r.Console {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if r.Result != "" {
		sb.WriteString("=> ")
		sb.WriteString(r.Result)
		sb.WriteByte('\n')
	}
	if r.Error != "" {
		sb.WriteString(string(r.Status))
		sb.WriteString(": ")
		sb.WriteString(r.Error)
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
