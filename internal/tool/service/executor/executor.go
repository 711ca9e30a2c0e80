package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

// OSCommandExecutor implements command execution using os/exec for real system commands.
// Every spawned command runs in its own process group so a timeout kills
// the whole tree, not just the direct child.
type OSCommandExecutor struct {
	waitDelay time.Duration
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{
		waitDelay: time.Duration(cfg.Exec.WaitDelayMs) * time.Millisecond,
	}
}

// Run executes a command, capturing stdout and stderr separately.
// A non-zero exit and a timeout are reported in the Result; the error is
// reserved for spawn failures and cancellation of ctx.
func (f *OSCommandExecutor) Run(ctx context.Context, c Command) (*Result, error) {
	if c.Name == "" {
		return nil, ErrCommandRequired
	}

	runCtx, cancel := withOptionalTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := f.command(runCtx, c)
	stdout, stderr := newCollectorPair(c.OutputCap, content.BinarySampleSize)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: c.Name, Cause: err}
	}
	res := &Result{PID: cmd.Process.Pid}
	waitErr := cmd.Wait()
	res.Duration = time.Since(start)

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Truncated = stdout.Truncated() || stderr.Truncated()
	res.Binary = stdout.Binary() || stderr.Binary()
	return f.finish(ctx, runCtx, cmd, res, waitErr)
}

// Stream executes a command draining stdout and stderr concurrently into a
// single combined, capped buffer. Timeout handling matches Run.
func (f *OSCommandExecutor) Stream(ctx context.Context, c Command) (*Result, error) {
	if c.Name == "" {
		return nil, ErrCommandRequired
	}

	runCtx, cancel := withOptionalTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := f.command(runCtx, c)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: c.Name, Cause: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Cmd: c.Name, Cause: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: c.Name, Cause: err}
	}
	res := &Result{PID: cmd.Process.Pid}

	combined := newCollector(c.OutputCap, content.BinarySampleSize)
	sink := &syncWriter{w: combined}

	var g errgroup.Group
	g.Go(func() error { return drain(sink, stdoutPipe) })
	g.Go(func() error { return drain(sink, stderrPipe) })

	drained := make(chan error, 1)
	go func() { drained <- g.Wait() }()

	select {
	case <-drained:
	case <-runCtx.Done():
		// The process group is being killed. A descendant that escaped the
		// group may still hold the pipes open, so bound the wait.
		select {
		case <-drained:
		case <-time.After(f.waitDelay):
			_ = stdoutPipe.Close()
			_ = stderrPipe.Close()
			<-drained
		}
	}

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)

	res.Combined = combined.String()
	res.Truncated = combined.Truncated()
	res.Binary = combined.Binary()
	return f.finish(ctx, runCtx, cmd, res, waitErr)
}

// Start spawns a command in the background with its output discarded and
// returns as soon as the process exists. The child is not tracked; it is
// only waited on so it does not linger as a zombie.
func (f *OSCommandExecutor) Start(c Command) (*Result, error) {
	if c.Name == "" {
		return nil, ErrCommandRequired
	}

	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: c.Name, Cause: err}
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()

	return &Result{PID: pid}, nil
}

func (f *OSCommandExecutor) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = nil
	cmd.WaitDelay = f.waitDelay
	killProcessGroupOnCancel(cmd)
	return cmd
}

func (f *OSCommandExecutor) finish(parent, runCtx context.Context, cmd *exec.Cmd, res *Result, waitErr error) (*Result, error) {
	if parent.Err() != nil {
		res.ExitCode = -1
		return res, parent.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}
	res.ExitCode = exitCode(cmd, waitErr)
	return res, nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
		return -1
	}
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func drain(w io.Writer, r io.Reader) error {
	_, err := io.Copy(w, r)
	if errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
