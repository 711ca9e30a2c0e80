//go:build unix

package executor

import (
	"context"
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

func newTestExecutor() *OSCommandExecutor {
	cfg := config.DefaultConfig()
	cfg.Exec.WaitDelayMs = 200
	return NewOSCommandExecutor(cfg)
}

func TestRun(t *testing.T) {
	exec := newTestExecutor()

	t.Run("SimpleCommand", func(t *testing.T) {
		res, err := exec.Run(context.Background(), Command{Name: "echo", Args: []string{"hello"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "hello" {
			t.Errorf("expected stdout 'hello', got %q", res.Stdout)
		}
		if res.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", res.ExitCode)
		}
		if res.PID == 0 {
			t.Error("expected a pid")
		}
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		_, err := exec.Run(context.Background(), Command{})
		if !errors.Is(err, ErrCommandRequired) {
			t.Errorf("expected ErrCommandRequired, got %v", err)
		}
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		res, err := exec.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
		if err != nil {
			t.Fatalf("non-zero exit must not be an error: %v", err)
		}
		if res.ExitCode != 3 {
			t.Errorf("expected exit code 3, got %d", res.ExitCode)
		}
	})

	t.Run("Stderr", func(t *testing.T) {
		res, err := exec.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo error >&2"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "out" {
			t.Errorf("expected stdout 'out', got %q", res.Stdout)
		}
		if strings.TrimSpace(res.Stderr) != "error" {
			t.Errorf("expected stderr 'error', got %q", res.Stderr)
		}
	})

	t.Run("LargeOutput", func(t *testing.T) {
		res, err := exec.Run(context.Background(), Command{Name: "echo", Args: []string{"123456789012345"}, OutputCap: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Truncated {
			t.Error("expected output to be truncated")
		}
		if res.Stdout != "1234567890"+content.TruncationMarker {
			t.Errorf("unexpected stdout %q", res.Stdout)
		}
	})

	t.Run("TruncationKeepsRunes", func(t *testing.T) {
		// Each é is two bytes; a cap of 5 lands inside the third one.
		res, err := exec.Run(context.Background(), Command{Name: "printf", Args: []string{"ééééé"}, OutputCap: 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		body := strings.TrimSuffix(res.Stdout, content.TruncationMarker)
		if body != "éé" {
			t.Errorf("expected two whole runes, got %q", body)
		}
		if !utf8.ValidString(res.Stdout) {
			t.Error("output is not valid UTF-8")
		}
	})

	t.Run("SpawnFailure", func(t *testing.T) {
		_, err := exec.Run(context.Background(), Command{Name: "definitely-not-a-command-xyz"})
		var spawnErr *SpawnError
		if !errors.As(err, &spawnErr) {
			t.Fatalf("expected SpawnError, got %v", err)
		}
		if spawnErr.Cmd != "definitely-not-a-command-xyz" {
			t.Errorf("expected error to name the command, got %q", spawnErr.Cmd)
		}
	})

	t.Run("WorkingDirAndEnv", func(t *testing.T) {
		dir := t.TempDir()
		res, err := exec.Run(context.Background(), Command{
			Name: "sh",
			Args: []string{"-c", "pwd; echo $IAV_TEST_VAR"},
			Dir:  dir,
			Env:  []string{"IAV_TEST_VAR=present"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(res.Stdout, "present") {
			t.Errorf("expected env var in output, got %q", res.Stdout)
		}
	})
}

func TestRun_Timeout(t *testing.T) {
	exec := newTestExecutor()

	t.Run("TimeoutKillsProcess", func(t *testing.T) {
		start := time.Now()
		res, err := exec.Run(context.Background(), Command{Name: "sleep", Args: []string{"2"}, Timeout: 100 * time.Millisecond})
		elapsed := time.Since(start)
		if err != nil {
			t.Fatalf("timeout must not be an error: %v", err)
		}
		if !res.TimedOut {
			t.Error("expected TimedOut")
		}
		if res.ExitCode == 0 {
			t.Error("expected a non-zero exit code")
		}
		if elapsed > time.Second {
			t.Errorf("run took %v, expected it to stop near the timeout", elapsed)
		}
	})

	t.Run("TimeoutKillsDescendants", func(t *testing.T) {
		// The grandchild sleep inherits stdout; only a group kill releases it.
		start := time.Now()
		res, err := exec.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "sleep 5; echo done"}, Timeout: 100 * time.Millisecond})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.TimedOut {
			t.Error("expected TimedOut")
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("run took %v, descendants were not killed", elapsed)
		}
	})

	t.Run("OutputCollectedOnTimeout", func(t *testing.T) {
		res, err := exec.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo starting; sleep 10"}, Timeout: 500 * time.Millisecond})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "starting" {
			t.Errorf("expected stdout 'starting', got %q", res.Stdout)
		}
	})

	t.Run("ParentCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(50*time.Millisecond, cancel)
		res, err := exec.Run(ctx, Command{Name: "sleep", Args: []string{"2"}})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if res.ExitCode != -1 {
			t.Errorf("expected exit code -1, got %d", res.ExitCode)
		}
	})
}

func TestStream(t *testing.T) {
	exec := newTestExecutor()

	t.Run("CombinesBothStreams", func(t *testing.T) {
		res, err := exec.Stream(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo one; echo two >&2; echo three"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"one", "two", "three"} {
			if !strings.Contains(res.Combined, want) {
				t.Errorf("expected %q in combined output %q", want, res.Combined)
			}
		}
		if res.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", res.ExitCode)
		}
	})

	t.Run("DrainsLargeOutput", func(t *testing.T) {
		// Larger than a pipe buffer on both streams.
		script := "head -c 200000 /dev/zero | tr '\\0' a; head -c 200000 /dev/zero | tr '\\0' b >&2"
		res, err := exec.Stream(context.Background(), Command{Name: "sh", Args: []string{"-c", script}, OutputCap: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Truncated {
			t.Error("expected truncation")
		}
		if len(res.Combined) > 1000+len(content.TruncationMarker) {
			t.Errorf("combined output exceeds cap: %d bytes", len(res.Combined))
		}
	})

	t.Run("HonoursTimeout", func(t *testing.T) {
		start := time.Now()
		res, err := exec.Stream(context.Background(), Command{Name: "sleep", Args: []string{"2"}, Timeout: 100 * time.Millisecond})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.TimedOut {
			t.Error("expected TimedOut")
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("stream took %v", elapsed)
		}
	})
}

func TestStart(t *testing.T) {
	exec := newTestExecutor()

	start := time.Now()
	res, err := exec.Start(Command{Name: "sleep", Args: []string{"1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("background start must return immediately")
	}
	if res.PID <= 0 {
		t.Fatalf("expected a pid, got %d", res.PID)
	}
	// The process should still be alive right after start.
	if err := syscall.Kill(res.PID, 0); err != nil {
		t.Errorf("expected process %d to be running: %v", res.PID, err)
	}

	if _, err := exec.Start(Command{Name: "definitely-not-a-command-xyz"}); err == nil {
		t.Error("expected spawn error")
	}
}
