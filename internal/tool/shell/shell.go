package shell

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/metrics"
	"github.com/Cyclone1070/iavtools/internal/tool/service/audit"
	"github.com/Cyclone1070/iavtools/internal/tool/service/executor"
)

// ExecTool runs commands inside the workspace under the configured policy.
type ExecTool struct {
	envFileOps      envFileReader
	commandExecutor commandExecutor
	pathResolver    pathResolver
	audit           auditRecorder
	config          *config.Config
	metrics         *metrics.Collector
	logger          *slog.Logger
}

// NewExecTool creates a new ExecTool with injected dependencies.
// audit, metrics and logger may be nil.
func NewExecTool(
	envFileOps envFileReader,
	commandExecutor commandExecutor,
	pathResolver pathResolver,
	auditRecorder auditRecorder,
	cfg *config.Config,
	m *metrics.Collector,
	logger *slog.Logger,
) *ExecTool {
	if envFileOps == nil {
		panic("envFileOps is required")
	}
	if commandExecutor == nil {
		panic("commandExecutor is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &ExecTool{
		envFileOps:      envFileOps,
		commandExecutor: commandExecutor,
		pathResolver:    pathResolver,
		audit:           auditRecorder,
		config:          cfg,
		metrics:         m,
		logger:          logging.OrDiscard(logger),
	}
}

// Run executes one command.
//
// Rejections happen in a fixed order: disabled, invalid request, policy,
// working directory, env files. Every attempt past the enable check is
// audited. A non-zero exit or a timeout is a result, not an error.
func (t *ExecTool) Run(ctx context.Context, req *ExecRequest) (*ExecResponse, error) {
	if !t.config.Exec.Enabled {
		t.metrics.RecordExecDenied("disabled")
		return nil, &DisabledError{Command: req.Command}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mode := req.mode()
	entry := audit.Entry{
		Cmd:  req.Command,
		Args: req.Args,
		Cwd:  displayRel(req.WorkingDir),
		Mode: string(mode),
	}

	resp, err := t.run(ctx, req, mode, &entry)
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.ExitCode = resp.ExitCode
		entry.Truncated = resp.Truncated
		entry.TimedOut = resp.TimedOut
		entry.PID = resp.PID
		entry.DurationMs = resp.DurationMs
	}
	if t.audit != nil {
		t.audit.Record(ctx, entry)
	}
	return resp, err
}

func (t *ExecTool) run(ctx context.Context, req *ExecRequest, mode Mode, entry *audit.Entry) (*ExecResponse, error) {
	policy := Policy{Allow: t.config.Exec.Allow, Deny: t.config.Exec.Deny}
	if err := policy.Check(req.Command); err != nil {
		t.metrics.RecordExecDenied("policy")
		t.logger.WarnContext(ctx, "exec denied", slog.String("cmd", req.Command), slog.Any("error", err))
		return nil, err
	}

	workingDir := req.WorkingDir
	if workingDir == "" {
		workingDir = "."
	}
	wd, err := t.pathResolver.Confine(workingDir, true)
	if err != nil {
		t.metrics.RecordExecDenied("cwd")
		return nil, err
	}
	entry.Cwd = displayRel(wd.Rel)

	layers := make([]map[string]string, 0, len(req.EnvFiles)+1)
	for _, envFile := range req.EnvFiles {
		resolved, err := t.pathResolver.Confine(envFile, true)
		if err != nil {
			return nil, err
		}
		vars, err := ParseEnvFile(t.envFileOps, resolved.Abs)
		if err != nil {
			return nil, err
		}
		layers = append(layers, vars)
	}
	layers = append(layers, req.Env)

	cmd := executor.Command{
		Name:      req.Command,
		Args:      req.Args,
		Dir:       wd.Abs,
		Env:       buildEnv(layers...),
		Timeout:   t.timeout(req),
		OutputCap: t.outputCap(req),
	}

	var res *executor.Result
	switch mode {
	case ModeStreamed:
		res, err = t.commandExecutor.Stream(ctx, cmd)
	case ModeBackground:
		res, err = t.commandExecutor.Start(cmd)
	default:
		res, err = t.commandExecutor.Run(ctx, cmd)
	}
	if err != nil {
		outcome := "error"
		var spawnErr *executor.SpawnError
		if errors.As(err, &spawnErr) {
			outcome = "spawn_error"
		}
		t.metrics.RecordExec(string(mode), outcome, 0)
		t.logger.ErrorContext(ctx, "exec failed", slog.String("cmd", req.Command), slog.Any("error", err))
		return nil, err
	}

	resp := &ExecResponse{
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		Output:     res.Combined,
		Truncated:  res.Truncated,
		Binary:     res.Binary,
		TimedOut:   res.TimedOut,
		PID:        res.PID,
		DurationMs: res.Duration.Milliseconds(),
		WorkingDir: displayRel(wd.Rel),
		Mode:       mode,
	}
	if mode != ModeBackground {
		code := res.ExitCode
		resp.ExitCode = &code
	}

	t.metrics.RecordExec(string(mode), outcome(resp), res.Duration)
	t.logger.InfoContext(ctx, "exec finished",
		slog.String("cmd", req.Command),
		slog.String("mode", string(mode)),
		slog.String("cwd", resp.WorkingDir),
		slog.Int("pid", resp.PID),
		slog.Bool("timed_out", resp.TimedOut),
		slog.Int64("duration_ms", resp.DurationMs),
	)
	return resp, nil
}

func (t *ExecTool) timeout(req *ExecRequest) time.Duration {
	ms := req.TimeoutMs
	if ms == 0 {
		ms = t.config.Exec.DefaultTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

func (t *ExecTool) outputCap(req *ExecRequest) int {
	if req.OutputCap > 0 {
		return req.OutputCap
	}
	return t.config.Exec.DefaultOutputCap
}

func outcome(resp *ExecResponse) string {
	switch {
	case resp.ExitCode == nil:
		return "started"
	case resp.TimedOut:
		return "timeout"
	case *resp.ExitCode != 0:
		return "nonzero"
	default:
		return "ok"
	}
}

func displayRel(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
