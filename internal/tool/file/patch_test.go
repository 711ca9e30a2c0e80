package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
)

const original = "one\ntwo\nthree\n"

const bareHunk = `@@ -1,3 +1,3 @@
 one
-two
+TWO
 three
`

func TestGitDiffPatcher(t *testing.T) {
	p := NewGitDiffPatcher()

	tests := []struct {
		name string
		old  string
		diff string
		want string
	}{
		{"bare hunk", original, bareHunk, "one\nTWO\nthree\n"},
		{"bare hunk without final newline", original, "@@ -1,3 +1,3 @@\n one\n-two\n+TWO\n three", "one\nTWO\nthree\n"},
		{"traditional header", original, "--- a/f.txt\n+++ b/f.txt\n" + bareHunk, "one\nTWO\nthree\n"},
		{"git header", original, "diff --git a/f.txt b/f.txt\n--- a/f.txt\n+++ b/f.txt\n" + bareHunk, "one\nTWO\nthree\n"},
		{"insert", original, "@@ -3,1 +3,2 @@\n three\n+four\n", "one\ntwo\nthree\nfour\n"},
		{"new file", "", "--- /dev/null\n+++ b/f.txt\n@@ -0,0 +1,2 @@\n+a\n+b\n", "a\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Apply(tt.old, tt.diff)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("context mismatch", func(t *testing.T) {
		_, err := p.Apply("one\nzwei\nthree\n", bareHunk)
		require.Error(t, err)
		var invalid *InvalidPatchError
		assert.False(t, errors.As(err, &invalid))
	})

	t.Run("not a diff", func(t *testing.T) {
		_, err := p.Apply(original, "replace two with TWO")
		var invalid *InvalidPatchError
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("several files", func(t *testing.T) {
		diff := "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-a\n+b\n--- a/y\n+++ b/y\n@@ -1 +1 @@\n-a\n+b\n"
		_, err := p.Apply("a\n", diff)
		var invalid *InvalidPatchError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestApplyPatch(t *testing.T) {
	ctx := context.Background()

	t.Run("applies and previews", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "src/f.txt", original)

		resp, err := h.patch.Run(ctx, &ApplyPatchRequest{Path: "src/f.txt", Patch: bareHunk})
		require.NoError(t, err)
		assert.Equal(t, "one\nTWO\nthree\n", h.get(t, "src/f.txt"))
		assert.Equal(t, "src/f.txt", resp.RelativePath)
		assert.Contains(t, resp.Diff, "--- a/src/f.txt")
		assert.Contains(t, resp.Diff, "+++ b/src/f.txt")
		assert.Contains(t, resp.Diff, "-two")
		assert.Contains(t, resp.Diff, "+TWO")
		assert.Equal(t, 1, resp.AddedLines)
		assert.Equal(t, 1, resp.RemovedLines)
		assert.False(t, resp.Created)
	})

	t.Run("dry run leaves file untouched", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", original)

		resp, err := h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: bareHunk, DryRun: true})
		require.NoError(t, err)
		assert.Contains(t, resp.Diff, "+TWO")
		assert.Equal(t, original, h.get(t, "f.txt"))
	})

	t.Run("creates missing file", func(t *testing.T) {
		h := newHarness(t)
		resp, err := h.patch.Run(ctx, &ApplyPatchRequest{
			Path:  "pkg/new.txt",
			Patch: "--- /dev/null\n+++ b/pkg/new.txt\n@@ -0,0 +1,2 @@\n+a\n+b\n",
		})
		require.NoError(t, err)
		assert.True(t, resp.Created)
		assert.Equal(t, "a\nb\n", h.get(t, "pkg/new.txt"))
	})

	t.Run("conflict leaves file untouched", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", "one\nzwei\nthree\n")

		_, err := h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: bareHunk})
		var conflict *PatchConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, filepath.Join(h.root, "f.txt"), conflict.Path)
		assert.True(t, errors.Is(err, ErrPatchConflict))
		assert.Equal(t, "one\nzwei\nthree\n", h.get(t, "f.txt"))
	})

	t.Run("invalid patch names the file", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", original)

		_, err := h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: "nonsense"})
		var invalid *InvalidPatchError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, filepath.Join(h.root, "f.txt"), invalid.Path)
	})

	t.Run("external change is a conflict", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", original)
		_, err := h.read.Run(ctx, &ReadFileRequest{Path: "f.txt"})
		require.NoError(t, err)
		h.put(t, "f.txt", original+"four\n")

		_, err = h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: bareHunk})
		assert.True(t, errors.Is(err, ErrEditConflict))
	})

	t.Run("successive patches after own write", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "f.txt", original)
		_, err := h.read.Run(ctx, &ReadFileRequest{Path: "f.txt"})
		require.NoError(t, err)

		_, err = h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: bareHunk})
		require.NoError(t, err)
		_, err = h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: "@@ -3,1 +3,2 @@\n three\n+four\n"})
		require.NoError(t, err)
		assert.Equal(t, "one\nTWO\nthree\nfour\n", h.get(t, "f.txt"))
	})

	t.Run("validation", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.patch.Run(ctx, &ApplyPatchRequest{Patch: bareHunk})
		assert.True(t, errors.Is(err, ErrPathRequired))

		_, err = h.patch.Run(ctx, &ApplyPatchRequest{Path: "f.txt", Patch: "  "})
		var required *PatchRequiredError
		assert.True(t, errors.As(err, &required))

		_, err = h.patch.Run(ctx, &ApplyPatchRequest{Path: "../f.txt", Patch: bareHunk})
		assert.True(t, errors.Is(err, path.ErrOutsideWorkspace))
	})
}

func TestApplyPatches(t *testing.T) {
	ctx := context.Background()

	t.Run("all applied", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "a.txt", original)
		h.put(t, "b.txt", original)

		resp, err := h.patch.RunBatch(ctx, &ApplyPatchesRequest{Patches: []FilePatch{
			{Path: "a.txt", Patch: bareHunk},
			{Path: "b.txt", Patch: "@@ -3,1 +3,2 @@\n three\n+four\n"},
		}})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "a.txt", resp.Results[0].RelativePath)
		assert.Equal(t, "b.txt", resp.Results[1].RelativePath)
		assert.Equal(t, "one\nTWO\nthree\n", h.get(t, "a.txt"))
		assert.Equal(t, "one\ntwo\nthree\nfour\n", h.get(t, "b.txt"))
	})

	t.Run("one failure writes nothing", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "a.txt", original)
		h.put(t, "b.txt", "unrelated\n")

		_, err := h.patch.RunBatch(ctx, &ApplyPatchesRequest{Patches: []FilePatch{
			{Path: "a.txt", Patch: bareHunk},
			{Path: "b.txt", Patch: bareHunk},
		}})
		var conflict *PatchConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, filepath.Join(h.root, "b.txt"), conflict.Path)
		assert.Equal(t, original, h.get(t, "a.txt"))
		assert.Equal(t, "unrelated\n", h.get(t, "b.txt"))
	})

	t.Run("same file patched in order", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "a.txt", original)

		resp, err := h.patch.RunBatch(ctx, &ApplyPatchesRequest{Patches: []FilePatch{
			{Path: "a.txt", Patch: bareHunk},
			{Path: "./a.txt", Patch: "@@ -2,2 +2,2 @@\n TWO\n-three\n+THREE\n"},
		}})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, 2, resp.Results[0].AddedLines)
		assert.Equal(t, "one\nTWO\nTHREE\n", h.get(t, "a.txt"))
	})

	t.Run("dry run", func(t *testing.T) {
		h := newHarness(t)
		h.put(t, "a.txt", original)

		resp, err := h.patch.RunBatch(ctx, &ApplyPatchesRequest{DryRun: true, Patches: []FilePatch{
			{Path: "a.txt", Patch: bareHunk},
			{Path: "new.txt", Patch: "--- /dev/null\n+++ b/new.txt\n@@ -0,0 +1 @@\n+x\n"},
		}})
		require.NoError(t, err)
		assert.True(t, resp.DryRun)
		require.Len(t, resp.Results, 2)
		assert.True(t, resp.Results[1].Created)
		assert.Equal(t, original, h.get(t, "a.txt"))
		_, err = os.Stat(filepath.Join(h.root, "new.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("validation", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.patch.RunBatch(ctx, &ApplyPatchesRequest{})
		assert.True(t, errors.Is(err, ErrPatchesRequired))

		_, err = h.patch.RunBatch(ctx, &ApplyPatchesRequest{Patches: []FilePatch{{Path: "a.txt"}}})
		var required *PatchRequiredError
		assert.True(t, errors.As(err, &required))
	})
}
