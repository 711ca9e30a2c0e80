package todo

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/service/fs"
)

func newTool(t *testing.T) (*TodoTool, *FileStore) {
	t.Helper()
	cfg := config.DefaultConfig()
	store := NewFileStore(t.TempDir(), cfg, fs.NewOSFileSystem())
	return NewTodoTool(store, cfg, nil), store
}

func run(t *testing.T, tool *TodoTool, req *TodoRequest) string {
	t.Helper()
	resp, err := tool.Run(context.Background(), req)
	require.NoError(t, err)
	return resp.Output
}

func TestTodoRoundTrip(t *testing.T) {
	tool, store := newTool(t)

	assert.Equal(t, Empty, run(t, tool, &TodoRequest{Action: ActionList}))

	assert.Equal(t, "1. [not-started] task", run(t, tool, &TodoRequest{Action: ActionAdd, Title: "task"}))
	assert.Equal(t, "1. [not-started] task", run(t, tool, &TodoRequest{Action: ActionList}))

	assert.Equal(t, "1. [done] task", run(t, tool, &TodoRequest{Action: ActionDone, ID: 1}))

	run(t, tool, &TodoRequest{Action: ActionAdd, Title: "  second  "})
	out := run(t, tool, &TodoRequest{Action: ActionSetStatus, ID: 2, Status: StatusBlocked})
	assert.Equal(t, "1. [done] task\n2. [blocked] second", out)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.NextID)
	assert.Equal(t, []Item{
		{ID: 1, Title: "task", Status: StatusDone},
		{ID: 2, Title: "second", Status: StatusBlocked},
	}, doc.Items)
}

func TestTodoRemoveKeepsIDsIncreasing(t *testing.T) {
	tool, _ := newTool(t)
	run(t, tool, &TodoRequest{Action: ActionAdd, Title: "a"})
	run(t, tool, &TodoRequest{Action: ActionAdd, Title: "b"})

	assert.Equal(t, "1. [not-started] a", run(t, tool, &TodoRequest{Action: ActionRemove, ID: 2}))
	assert.Equal(t, "1. [not-started] a\n3. [not-started] c", run(t, tool, &TodoRequest{Action: ActionAdd, Title: "c"}))
	assert.Equal(t, "3. [not-started] c", run(t, tool, &TodoRequest{Action: ActionRemove, ID: 1}))
}

func TestTodoErrors(t *testing.T) {
	tool, store := newTool(t)
	ctx := context.Background()
	run(t, tool, &TodoRequest{Action: ActionAdd, Title: "a"})

	_, err := tool.Run(ctx, &TodoRequest{Action: ActionDone, ID: 7})
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 7, notFound.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = tool.Run(ctx, &TodoRequest{Action: ActionRemove, ID: 7})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = tool.Run(ctx, &TodoRequest{Action: ActionSetStatus, ID: 1, Status: "finished"})
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Contains(t, err.Error(), `"finished"`)

	_, err = tool.Run(ctx, &TodoRequest{Action: ActionAdd, Title: " "})
	assert.True(t, errors.Is(err, ErrTitleRequired))

	_, err = tool.Run(ctx, &TodoRequest{Action: ActionDone})
	var badID *InvalidIDError
	assert.True(t, errors.As(err, &badID))

	_, err = tool.Run(ctx, &TodoRequest{Action: "archive"})
	var badAction *InvalidActionError
	assert.True(t, errors.As(err, &badAction))

	doc, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: 1, Title: "a", Status: StatusNotStarted}}, doc.Items)
}

func TestFileStore(t *testing.T) {
	t.Run("location", func(t *testing.T) {
		root := t.TempDir()
		store := NewFileStore(root, config.DefaultConfig(), fs.NewOSFileSystem())
		assert.Equal(t, filepath.Join(root, ".iav", "todos.json"), store.Path())
	})

	t.Run("hand edited ids", func(t *testing.T) {
		tool, store := newTool(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
		require.NoError(t, os.WriteFile(store.Path(), []byte(`{"nextId":1,"items":[{"id":5,"title":"x","status":"done"}]}`), 0o644))

		assert.Equal(t, "5. [done] x\n6. [not-started] y", run(t, tool, &TodoRequest{Action: ActionAdd, Title: "y"}))
	})

	t.Run("corrupt file", func(t *testing.T) {
		tool, store := newTool(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
		require.NoError(t, os.WriteFile(store.Path(), []byte("{"), 0o644))

		_, err := tool.Run(context.Background(), &TodoRequest{Action: ActionList})
		var readErr *StoreReadError
		assert.True(t, errors.As(err, &readErr))
	})
}
