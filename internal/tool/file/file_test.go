package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/service/fs"
	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
)

type harness struct {
	root  string
	cfg   *config.Config
	read  *ReadFileTool
	write *WriteFileTool
	patch *PatchTool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	osFS := fs.NewOSFileSystem()
	resolver := path.NewResolver(root)
	checksums := fs.NewChecksumStore()
	return &harness{
		root:  root,
		cfg:   cfg,
		read:  NewReadFileTool(osFS, resolver, checksums, cfg),
		write: NewWriteFileTool(osFS, resolver, checksums, cfg),
		patch: NewPatchTool(osFS, resolver, checksums, NewGitDiffPatcher(), cfg, nil),
	}
}

func (h *harness) put(t *testing.T, rel, data string) {
	t.Helper()
	p := filepath.Join(h.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
}

func (h *harness) get(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func ptr(v int64) *int64 { return &v }

func TestReadFile(t *testing.T) {
	h := newHarness(t)
	h.put(t, "dir/a.txt", "hello world")
	ctx := context.Background()

	t.Run("full read", func(t *testing.T) {
		resp, err := h.read.Run(ctx, &ReadFileRequest{Path: "dir/a.txt"})
		require.NoError(t, err)
		assert.Equal(t, "hello world", resp.Content)
		assert.Equal(t, "dir/a.txt", resp.RelativePath)
		assert.Equal(t, filepath.Join(h.root, "dir", "a.txt"), resp.AbsolutePath)
		assert.Equal(t, int64(11), resp.Size)
	})

	t.Run("range", func(t *testing.T) {
		resp, err := h.read.Run(ctx, &ReadFileRequest{Path: "dir/a.txt", Offset: ptr(6), Limit: ptr(3)})
		require.NoError(t, err)
		assert.Equal(t, "wor", resp.Content)
	})

	t.Run("binary rejected", func(t *testing.T) {
		h.put(t, "bin.dat", "a\x00b")
		_, err := h.read.Run(ctx, &ReadFileRequest{Path: "bin.dat"})
		assert.True(t, errors.Is(err, ErrBinaryFile))
	})

	t.Run("too large", func(t *testing.T) {
		h.cfg.Tools.MaxFileSize = 5
		defer func() { h.cfg.Tools.MaxFileSize = config.DefaultConfig().Tools.MaxFileSize }()
		_, err := h.read.Run(ctx, &ReadFileRequest{Path: "dir/a.txt"})
		assert.True(t, errors.Is(err, ErrFileTooLarge))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := h.read.Run(ctx, &ReadFileRequest{Path: "dir"})
		assert.True(t, errors.Is(err, ErrIsDirectory))

		_, err = h.read.Run(ctx, &ReadFileRequest{Path: "missing.txt"})
		assert.True(t, errors.Is(err, path.ErrNotFound))

		_, err = h.read.Run(ctx, &ReadFileRequest{Path: "../etc/passwd"})
		assert.True(t, errors.Is(err, path.ErrOutsideWorkspace))

		_, err = h.read.Run(ctx, &ReadFileRequest{Path: " "})
		assert.True(t, errors.Is(err, ErrPathRequired))

		_, err = h.read.Run(ctx, &ReadFileRequest{Path: "dir/a.txt", Offset: ptr(-1)})
		var rangeErr *InvalidRangeError
		require.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, "offset", rangeErr.Field)
	})
}

func TestWriteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates file and parents", func(t *testing.T) {
		h := newHarness(t)
		resp, err := h.write.Run(ctx, &WriteFileRequest{Path: "new/deep/f.txt", Content: "data"})
		require.NoError(t, err)
		assert.True(t, resp.Created)
		assert.Equal(t, 4, resp.BytesWritten)
		assert.Equal(t, "new/deep/f.txt", resp.RelativePath)
		assert.Equal(t, "data", h.get(t, "new/deep/f.txt"))
	})

	t.Run("empty content allowed", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.write.Run(ctx, &WriteFileRequest{Path: "__init__.py"})
		require.NoError(t, err)
		assert.Equal(t, "", h.get(t, "__init__.py"))
	})

	t.Run("existing file needs overwrite", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", "old")

		_, err := h.write.Run(ctx, &WriteFileRequest{Path: "f.txt", Content: "new"})
		var exists *AlreadyExistsError
		require.True(t, errors.As(err, &exists))
		assert.True(t, errors.Is(err, ErrFileExists))
		assert.Equal(t, "old", h.get(t, "f.txt"))

		resp, err := h.write.Run(ctx, &WriteFileRequest{Path: "f.txt", Content: "new", Overwrite: true})
		require.NoError(t, err)
		assert.False(t, resp.Created)
		assert.Equal(t, "new", h.get(t, "f.txt"))
	})

	t.Run("overwrite keeps permissions", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "run.sh", "echo")
		require.NoError(t, os.Chmod(filepath.Join(h.root, "run.sh"), 0o755))

		_, err := h.write.Run(ctx, &WriteFileRequest{Path: "run.sh", Content: "echo hi", Overwrite: true})
		require.NoError(t, err)
		info, err := os.Stat(filepath.Join(h.root, "run.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("overwrite detects external change", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", "v1")
		_, err := h.read.Run(ctx, &ReadFileRequest{Path: "f.txt"})
		require.NoError(t, err)

		h.put(t, "f.txt", "changed elsewhere")
		_, err = h.write.Run(ctx, &WriteFileRequest{Path: "f.txt", Content: "v2", Overwrite: true})
		assert.True(t, errors.Is(err, ErrEditConflict))
		assert.Equal(t, "changed elsewhere", h.get(t, "f.txt"))
	})

	t.Run("rejections", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "dir/x", "")

		_, err := h.write.Run(ctx, &WriteFileRequest{Path: "dir", Content: "x", Overwrite: true})
		assert.True(t, errors.Is(err, ErrIsDirectory))

		_, err = h.write.Run(ctx, &WriteFileRequest{Path: "b.bin", Content: "a\x00b"})
		assert.True(t, errors.Is(err, ErrBinaryFile))

		_, err = h.write.Run(ctx, &WriteFileRequest{Path: "../escape.txt", Content: "x"})
		assert.True(t, errors.Is(err, path.ErrOutsideWorkspace))

		h.cfg.Tools.MaxFileSize = 3
		_, err = h.write.Run(ctx, &WriteFileRequest{Path: "big.txt", Content: "four"})
		assert.True(t, errors.Is(err, ErrFileTooLarge))

		_, err = os.Stat(filepath.Join(h.root, "big.txt"))
		assert.True(t, os.IsNotExist(err))
	})
}
