package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cyclone1070/iavtools/internal/adapter"
	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/metrics"
	"github.com/Cyclone1070/iavtools/internal/tool/service/audit"
	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
	"github.com/Cyclone1070/iavtools/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const wordWrap = 100

// app holds the root command and the shared flags.
type app struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	workspace string
	jsonOut   bool
	plain     bool

	loadConfig func(workDir string) (*config.Config, error)
}

// workspace is everything a subcommand needs to talk to the tools.
type workspace struct {
	root     string
	config   *config.Config
	metrics  *metrics.Collector
	logger   *slog.Logger
	registry *adapter.Registry
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		loadConfig: func(workDir string) (*config.Config, error) {
			return config.NewLoader(workDir).Load()
		},
	}

	a.root = &cobra.Command{
		Use:           "iavtools",
		Short:         "Workspace tools for a coding agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)

	flags := a.root.PersistentFlags()
	flags.StringVarP(&a.workspace, "workspace", "w", "", "Workspace root (default: current directory)")
	flags.BoolVar(&a.jsonOut, "json", false, "Print machine-readable JSON")
	flags.BoolVar(&a.plain, "plain", false, "Disable colours and markdown rendering")

	a.root.AddCommand(
		a.newRunCmd(),
		a.newToolsCmd(),
		a.newSchemaCmd(),
		a.newAuditCmd(),
	)
	return a
}

// Execute runs the CLI until completion or an interrupt.
func (a *app) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with explicit arguments.
func (a *app) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *app) open() (*workspace, error) {
	root := a.workspace
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := path.CanonicaliseRoot(root)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize workspace root: %w", err)
	}

	cfg, err := a.loadConfig(root)
	if err != nil {
		fmt.Fprintf(a.stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(a.stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	logger := logging.New(a.stderr, cfg.Log)
	m := metrics.New()
	registry, err := adapter.NewWorkspaceRegistry(root, adapter.Options{
		Config:  cfg,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tools: %w", err)
	}
	return &workspace{root: root, config: cfg, metrics: m, logger: logger, registry: registry}, nil
}

func (a *app) renderer() *ui.Renderer {
	styled := false
	if f, ok := a.stdout.(*os.File); ok && !a.plain && !a.jsonOut {
		styled = isatty.IsTerminal(f.Fd())
	}
	return ui.NewRenderer(styled, wordWrap)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runOptions struct {
	argsFile    string
	dumpMetrics bool
}

func (a *app) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <tool> [json-args]",
		Short: "Invoke one tool with JSON arguments",
		Long: `Invoke one tool with a JSON object of arguments.

Examples:
  iavtools run read_file '{"path": "go.mod"}'
  iavtools run exec '{"command": "go", "args": ["test", "./..."]}'
  echo '{"pattern": "TODO"}' | iavtools run search --args-file -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.argsFile, "args-file", "", "Read arguments from a file, or - for stdin")
	cmd.Flags().BoolVar(&opts.dumpMetrics, "metrics", false, "Print collected metrics to stderr afterwards")

	return cmd
}

func (a *app) run(ctx context.Context, args []string, opts *runOptions) error {
	name := args[0]
	toolArgs, err := a.readArgs(args[1:], opts.argsFile)
	if err != nil {
		return err
	}

	ws, err := a.open()
	if err != nil {
		return err
	}
	if opts.dumpMetrics {
		defer func() {
			if err := writeMetrics(a.stderr, ws.metrics); err != nil {
				ws.logger.Warn("failed to write metrics", slog.Any("error", err))
			}
		}()
	}

	res, err := ws.registry.Invoke(ctx, name, toolArgs)
	if err != nil {
		if !a.jsonOut {
			fmt.Fprintln(a.stderr, a.renderer().Error(name, err))
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	if a.jsonOut {
		return a.printJSON(res)
	}
	fmt.Fprintln(a.stdout, a.renderer().Result(name, res))
	if res.Error {
		return errToolFailed
	}
	return nil
}

var errToolFailed = errors.New("tool reported an error")

func (a *app) readArgs(positional []string, argsFile string) (map[string]any, error) {
	var raw []byte
	switch {
	case argsFile != "" && len(positional) > 0:
		return nil, errors.New("pass arguments inline or with --args-file, not both")
	case argsFile == "-":
		data, err := io.ReadAll(a.root.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments: %w", err)
		}
		raw = data
	case argsFile != "":
		data, err := os.ReadFile(argsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read arguments: %w", err)
		}
		raw = data
	case len(positional) > 0:
		raw = []byte(positional[0])
	default:
		return map[string]any{}, nil
	}

	args := map[string]any{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

func (a *app) newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open()
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(ws.registry.Declarations())
			}
			fmt.Fprint(a.stdout, a.renderer().Tools(ws.registry.Declarations()))
			return nil
		},
	}
}

func (a *app) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tool declarations as Gemini function declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open()
			if err != nil {
				return err
			}
			return a.printJSON(ws.registry.GenaiTools())
		},
	}
}

func (a *app) newAuditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the process execution audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open()
			if err != nil {
				return err
			}
			entries, err := audit.ReadEntries(audit.Path(ws.root, ws.config))
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to read audit log: %w", err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if a.jsonOut {
				if entries == nil {
					entries = []audit.Entry{}
				}
				return a.printJSON(entries)
			}
			fmt.Fprintln(a.stdout, a.renderer().Audit(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show only the most recent entries (0 for all)")

	return cmd
}

// writeMetrics dumps every collected metric family in the Prometheus text
// exposition format.
func writeMetrics(w io.Writer, m *metrics.Collector) error {
	families, err := m.Gatherer().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
