package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
)

// Empty is the output of listing an empty todo list.
const Empty = "No todos"

// todoStore defines the interface for todo storage.
type todoStore interface {
	Read() (*Document, error)
	Update(fn func(doc *Document) error) (*Document, error)
}

// TodoTool manages the workspace todo list.
type TodoTool struct {
	store  todoStore
	config *config.Config
	logger *slog.Logger
}

// NewTodoTool creates a new TodoTool with injected dependencies.
func NewTodoTool(store todoStore, cfg *config.Config, logger *slog.Logger) *TodoTool {
	if store == nil {
		panic("store is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &TodoTool{
		store:  store,
		config: cfg,
		logger: logging.OrDiscard(logger),
	}
}

// Run applies the requested action and returns the resulting list.
func (t *TodoTool) Run(ctx context.Context, req *TodoRequest) (*TodoResponse, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}

	var (
		doc *Document
		err error
	)
	switch req.Action {
	case ActionList:
		doc, err = t.store.Read()
	case ActionAdd:
		doc, err = t.store.Update(func(d *Document) error {
			d.Items = append(d.Items, Item{ID: d.NextID, Title: strings.TrimSpace(req.Title), Status: StatusNotStarted})
			d.NextID++
			return nil
		})
	case ActionDone:
		doc, err = t.setStatus(req.ID, StatusDone)
	case ActionSetStatus:
		doc, err = t.setStatus(req.ID, req.Status)
	case ActionRemove:
		doc, err = t.store.Update(func(d *Document) error {
			i, ok := d.find(req.ID)
			if !ok {
				return &NotFoundError{ID: req.ID}
			}
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	if req.Action != ActionList {
		t.logger.DebugContext(ctx, "todo updated", slog.String("action", string(req.Action)), slog.Int("items", len(doc.Items)))
	}
	return &TodoResponse{Output: Render(doc.Items), Items: doc.Items}, nil
}

func (t *TodoTool) setStatus(id int, status Status) (*Document, error) {
	return t.store.Update(func(d *Document) error {
		i, ok := d.find(id)
		if !ok {
			return &NotFoundError{ID: id}
		}
		d.Items[i].Status = status
		return nil
	})
}

// Render formats items one per line as "{id}. [{status}] {title}".
func Render(items []Item) string {
	if len(items) == 0 {
		return Empty
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. [%s] %s", item.ID, item.Status, item.Title)
	}
	return strings.Join(lines, "\n")
}
