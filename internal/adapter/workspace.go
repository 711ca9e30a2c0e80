package adapter

import (
	"log/slog"
	"net/http"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/metrics"
	"github.com/Cyclone1070/iavtools/internal/tool/directory"
	"github.com/Cyclone1070/iavtools/internal/tool/file"
	"github.com/Cyclone1070/iavtools/internal/tool/script"
	"github.com/Cyclone1070/iavtools/internal/tool/search"
	"github.com/Cyclone1070/iavtools/internal/tool/service/audit"
	"github.com/Cyclone1070/iavtools/internal/tool/service/executor"
	"github.com/Cyclone1070/iavtools/internal/tool/service/fs"
	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
	"github.com/Cyclone1070/iavtools/internal/tool/shell"
	"github.com/Cyclone1070/iavtools/internal/tool/todo"
)

// Options configures NewWorkspaceRegistry.
type Options struct {
	Config     *config.Config
	Metrics    *metrics.Collector // optional
	Logger     *slog.Logger       // optional
	HTTPClient *http.Client       // optional, used by run_script fetch
}

// NewWorkspaceRegistry wires every tool against the workspace at root.
// The root is canonicalised first so all tools share one boundary.
func NewWorkspaceRegistry(root string, opts Options) (*Registry, error) {
	if opts.Config == nil {
		panic("config is required")
	}
	canonical, err := path.CanonicaliseRoot(root)
	if err != nil {
		return nil, err
	}

	cfg := opts.Config
	osFS := fs.NewOSFileSystem()
	resolver := path.NewResolver(canonical)
	checksums := fs.NewChecksumStore()

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	registry := NewRegistry(opts.Metrics, opts.Logger)
	err = registry.Register(
		NewReadFileAdapter(file.NewReadFileTool(osFS, resolver, checksums, cfg)),
		NewWriteFileAdapter(file.NewWriteFileTool(osFS, resolver, checksums, cfg)),
		NewListDirectoryAdapter(directory.NewListDirectoryTool(osFS, resolver, cfg, opts.Logger)),
		NewApplyPatchAdapter(file.NewPatchTool(osFS, resolver, checksums, file.NewGitDiffPatcher(), cfg, opts.Logger)),
		NewApplyPatchesAdapter(file.NewPatchTool(osFS, resolver, checksums, file.NewGitDiffPatcher(), cfg, opts.Logger)),
		NewExecAdapter(shell.NewExecTool(
			osFS,
			executor.NewOSCommandExecutor(cfg),
			resolver,
			audit.NewLogger(canonical, cfg, osFS, opts.Logger),
			cfg,
			opts.Metrics,
			opts.Logger,
		)),
		NewRunScriptAdapter(script.NewScriptTool(httpClient, canonical, cfg, opts.Metrics, opts.Logger)),
		NewSearchAdapter(search.NewSearchTool(osFS, resolver, cfg, opts.Metrics, opts.Logger)),
		NewTodoAdapter(todo.NewTodoTool(todo.NewFileStore(canonical, cfg, osFS), cfg, opts.Logger)),
	)
	if err != nil {
		return nil, err
	}
	return registry, nil
}
