// Package script runs agent-supplied JavaScript in a throwaway goja runtime
// with a capability allow-list and a wall-clock deadline.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/metrics"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

const (
	// abandonGrace is how long Run waits for an interrupted session to
	// unwind before it reports the timeout without it.
	abandonGrace = 100 * time.Millisecond

	// regexpMatchLimit bounds one backtracking regexp match. goja hands
	// lookaround and backreference patterns to regexp2, which never sees
	// the runtime interrupt.
	regexpMatchLimit = 10 * time.Second
)

func init() {
	regexp2.DefaultMatchTimeout = regexpMatchLimit
}

// ScriptTool runs scripts in the sandbox.
type ScriptTool struct {
	httpClient httpDoer
	sandboxDir string
	config     *config.Config
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewScriptTool creates a ScriptTool. sandboxDir is exposed to scripts as
// SANDBOX_DIR for information only. A nil httpClient uses a plain
// http.Client; metrics and logger may be nil.
func NewScriptTool(httpClient httpDoer, sandboxDir string, cfg *config.Config, m *metrics.Collector, logger *slog.Logger) *ScriptTool {
	if cfg == nil {
		panic("cfg is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ScriptTool{
		httpClient: httpClient,
		sandboxDir: sandboxDir,
		config:     cfg,
		metrics:    m,
		logger:     logging.OrDiscard(logger),
	}
}

// Run executes req.Code in a fresh session. Script failures and timeouts are
// reported through the response status; the error return is reserved for
// invalid requests and sessions that could not be built.
func (t *ScriptTool) Run(ctx context.Context, req *ScriptRequest) (*ScriptResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := time.Duration(t.config.Script.DefaultTimeoutMs) * time.Millisecond
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	outputCap := t.config.Script.DefaultOutputCap
	if req.OutputCap > 0 {
		outputCap = req.OutputCap
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := sessionOptions{sandboxDir: t.sandboxDir}
	if req.AllowNetwork {
		opts.fetcher = &fetcher{client: t.httpClient, maxBytes: t.config.Script.MaxFetchBytes}
	}

	id := uuid.NewString()
	s, err := newSession(runCtx, id, opts)
	if err != nil {
		return nil, fmt.Errorf("creating script session: %w", err)
	}

	done := make(chan runOutcome, 1)
	start := time.Now()
	go func() {
		defer s.close()
		result, err := s.run(req.Code)
		done <- runOutcome{result: result, console: append([]string{}, s.console...), err: err}
	}()
	out := t.wait(runCtx, id, done)
	elapsed := time.Since(start)

	resp := &ScriptResponse{
		SessionID:  id,
		Status:     StatusOK,
		Result:     out.result,
		Console:    out.console,
		DurationMs: elapsed.Milliseconds(),
	}
	if resp.Console == nil {
		resp.Console = []string{}
	}
	if out.err != nil {
		resp.Result = ""
		resp.Status, resp.Error = classify(runCtx, out.err, timeout)
	}
	resp.Output, resp.Truncated = content.Truncate(resp.render(), outputCap)

	t.metrics.RecordScript(string(resp.Status), elapsed)
	t.logger.DebugContext(ctx, "script finished",
		slog.String("session", id),
		slog.String("status", string(resp.Status)),
		slog.Int64("duration_ms", resp.DurationMs),
	)
	return resp, nil
}

type runOutcome struct {
	result  string
	console []string
	err     error
}

// wait returns the session outcome. Once ctx is done the session gets
// abandonGrace to stop; a session still running after that is left to
// finish on its own goroutine and never touched again.
func (t *ScriptTool) wait(ctx context.Context, id string, done <-chan runOutcome) runOutcome {
	select {
	case out := <-done:
		return out
	case <-ctx.Done():
	}

	timer := time.NewTimer(abandonGrace)
	defer timer.Stop()
	select {
	case out := <-done:
		return out
	case <-timer.C:
		t.logger.Warn("script session ignored its deadline, abandoning it", slog.String("session", id))
		return runOutcome{err: ctx.Err()}
	}
}

// classify maps a run error to a status and message. Any error once the
// deadline has passed counts as a timeout.
func classify(runCtx context.Context, err error, timeout time.Duration) (Status, string) {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return StatusTimeout, fmt.Sprintf("script exceeded %s", timeout)
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if runCtx.Err() != nil {
			return StatusError, runCtx.Err().Error()
		}
		return StatusError, interrupted.Error()
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		if v := ex.Value(); v != nil {
			return StatusError, v.String()
		}
		return StatusError, ex.Error()
	}
	return StatusError, err.Error()
}
