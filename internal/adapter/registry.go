package adapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/metrics"
	"github.com/Cyclone1070/iavtools/internal/tool"
)

// Registry maps tool names to tools and dispatches invocations.
type Registry struct {
	tools   map[string]Tool
	order   []string
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(m *metrics.Collector, logger *slog.Logger) *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		metrics: m,
		logger:  logging.OrDiscard(logger),
	}
}

// Register adds tools in order. Names must be unique.
func (r *Registry) Register(tools ...Tool) error {
	for _, t := range tools {
		name := t.Name()
		if _, ok := r.tools[name]; ok {
			return &DuplicateToolError{Name: name}
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Declarations returns every tool declaration in registration order.
func (r *Registry) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}

// Invoke runs the named tool with args.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (*Result, error) {
	t, ok := r.tools[name]
	if !ok {
		r.metrics.RecordToolCall(name, "unknown")
		return nil, &UnknownToolError{Name: name}
	}

	start := time.Now()
	res, err := t.Execute(ctx, args)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		r.metrics.RecordToolCall(name, "failed")
		r.logger.InfoContext(ctx, "tool failed",
			slog.String("tool", name),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return nil, err
	case res.Error:
		r.metrics.RecordToolCall(name, "error_result")
	default:
		r.metrics.RecordToolCall(name, "ok")
	}
	r.logger.DebugContext(ctx, "tool finished",
		slog.String("tool", name),
		slog.Duration("elapsed", elapsed),
		slog.Bool("error_result", res.Error),
		slog.Int("output_bytes", len(res.Output)),
	)
	return res, nil
}
