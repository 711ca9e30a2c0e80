package shell

import (
	"context"

	"github.com/Cyclone1070/iavtools/internal/tool/service/audit"
	"github.com/Cyclone1070/iavtools/internal/tool/service/executor"
	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
)

// envFileReader defines the minimal filesystem interface needed for reading environment files.
type envFileReader interface {
	ReadFile(path string, maxSize int64) ([]byte, error)
}

// pathResolver confines paths to the workspace.
type pathResolver interface {
	Confine(path string, mustExist bool) (*path.Resolved, error)
}

// commandExecutor spawns processes in one of the three collection modes.
type commandExecutor interface {
	Run(ctx context.Context, cmd executor.Command) (*executor.Result, error)
	Stream(ctx context.Context, cmd executor.Command) (*executor.Result, error)
	Start(cmd executor.Command) (*executor.Result, error)
}

// auditRecorder receives one entry per execution attempt.
type auditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}
