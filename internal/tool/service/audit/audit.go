// Package audit appends one JSON line per process execution attempt to a
// workspace-local log. Writing is best effort: failures are logged and
// never reach the caller.
package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
)

// Entry is one audit record.
type Entry struct {
	Timestamp  time.Time `json:"ts"`
	Cmd        string    `json:"cmd"`
	Args       []string  `json:"args"`
	Cwd        string    `json:"cwd"`
	ExitCode   *int      `json:"exitCode"`
	Mode       string    `json:"mode"`
	Truncated  bool      `json:"truncated"`
	TimedOut   bool      `json:"timedOut,omitempty"`
	PID        int       `json:"pid,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
	Error      string    `json:"error"`
}

// appender is the filesystem surface the logger needs.
type appender interface {
	EnsureDirs(path string) error
	AppendFile(path string, data []byte, perm os.FileMode) error
}

// Logger writes audit entries as append-only JSONL.
// A nil or disabled Logger records nothing.
type Logger struct {
	mu      sync.Mutex
	path    string
	fs      appender
	logger  *slog.Logger
	enabled bool
	now     func() time.Time
}

// Path returns the audit log location for a workspace.
func Path(workspaceRoot string, cfg *config.Config) string {
	return filepath.Join(workspaceRoot, cfg.Tools.StateDir, cfg.Audit.File)
}

// NewLogger creates an audit logger for the workspace.
func NewLogger(workspaceRoot string, cfg *config.Config, fs appender, logger *slog.Logger) *Logger {
	if cfg == nil {
		panic("cfg is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	return &Logger{
		path:    Path(workspaceRoot, cfg),
		fs:      fs,
		logger:  logging.OrDiscard(logger),
		enabled: cfg.Audit.Enabled,
		now:     time.Now,
	}
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Record appends e to the log. Errors are logged at warn and swallowed.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if !l.Enabled() {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}
	if e.Args == nil {
		e.Args = []string{}
	}

	if err := l.write(e); err != nil {
		l.logger.WarnContext(ctx, "audit write failed",
			slog.String("path", l.path),
			slog.String("cmd", e.Cmd),
			slog.Any("error", err),
		)
	}
}

func (l *Logger) write(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling audit entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fs.EnsureDirs(filepath.Dir(l.path)); err != nil {
		return err
	}
	return l.fs.AppendFile(l.path, data, 0o600)
}

// ReadEntries parses an audit log. Lines that fail to parse are skipped.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}
