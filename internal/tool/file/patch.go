package file

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
	"github.com/pmezard/go-difflib/difflib"
)

// PatchTool applies unified diffs to workspace files.
type PatchTool struct {
	fileOps      fileWriter
	pathResolver pathResolver
	checksums    checksumStore
	patcher      Patcher
	config       *config.Config
	logger       *slog.Logger
}

// NewPatchTool creates a new PatchTool with injected dependencies.
func NewPatchTool(fileOps fileWriter, pathResolver pathResolver, checksums checksumStore, patcher Patcher, cfg *config.Config, logger *slog.Logger) *PatchTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if checksums == nil {
		panic("checksums is required")
	}
	if patcher == nil {
		panic("patcher is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &PatchTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
		checksums:    checksums,
		patcher:      patcher,
		config:       cfg,
		logger:       logging.OrDiscard(logger),
	}
}

// pendingFile is the in-memory state of one file during a patch run.
type pendingFile struct {
	resolved *path.Resolved
	original string
	current  string
	perm     os.FileMode
	exists   bool
}

// Run applies one patch and writes the result unless DryRun is set.
func (t *PatchTool) Run(ctx context.Context, req *ApplyPatchRequest) (*PatchResult, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}
	resp, err := t.apply(ctx, []FilePatch{{Path: req.Path, Patch: req.Patch}}, req.DryRun)
	if err != nil {
		return nil, err
	}
	return &resp.Results[0], nil
}

// RunBatch applies every patch in memory first. If any patch fails nothing
// is written. Several patches to the same file apply in order.
func (t *PatchTool) RunBatch(ctx context.Context, req *ApplyPatchesRequest) (*ApplyPatchesResponse, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}
	return t.apply(ctx, req.Patches, req.DryRun)
}

func (t *PatchTool) apply(ctx context.Context, patches []FilePatch, dryRun bool) (*ApplyPatchesResponse, error) {
	var order []*pendingFile
	byPath := make(map[string]*pendingFile)

	for _, p := range patches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resolved, err := t.pathResolver.Confine(p.Path, false)
		if err != nil {
			return nil, err
		}
		pf, ok := byPath[resolved.Abs]
		if !ok {
			if pf, err = t.load(resolved); err != nil {
				return nil, err
			}
			byPath[resolved.Abs] = pf
			order = append(order, pf)
		}

		updated, err := t.patcher.Apply(pf.current, p.Patch)
		if err != nil {
			var invalid *InvalidPatchError
			if errors.As(err, &invalid) {
				return nil, &InvalidPatchError{Path: resolved.Abs, Cause: invalid.Cause}
			}
			return nil, &PatchConflictError{Path: resolved.Abs, Cause: err}
		}
		if int64(len(updated)) > t.config.Tools.MaxFileSize {
			return nil, &TooLargeError{Path: resolved.Abs, Size: int64(len(updated)), Limit: t.config.Tools.MaxFileSize}
		}
		pf.current = updated
	}

	resp := &ApplyPatchesResponse{DryRun: dryRun}
	for _, pf := range order {
		diff, added, removed := computeUnifiedDiff(displayName(pf.resolved), pf.original, pf.current)
		resp.Results = append(resp.Results, PatchResult{
			AbsolutePath: pf.resolved.Abs,
			RelativePath: pf.resolved.Rel,
			Diff:         diff,
			AddedLines:   added,
			RemovedLines: removed,
			Created:      !pf.exists,
		})
	}
	if dryRun {
		return resp, nil
	}

	for _, pf := range order {
		if err := t.write(pf); err != nil {
			return nil, err
		}
		t.logger.DebugContext(ctx, "patch applied", slog.String("path", pf.resolved.Rel))
	}
	return resp, nil
}

// load reads the current content of a patch target. A missing file starts
// empty so creation patches can apply.
func (t *PatchTool) load(resolved *path.Resolved) (*pendingFile, error) {
	abs := resolved.Abs
	pf := &pendingFile{resolved: resolved, perm: defaultPerm}

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return pf, nil
		}
		return nil, &StatError{Path: abs, Cause: err}
	}
	if info.IsDir() {
		return nil, &IsDirectoryError{Path: abs}
	}

	data, err := t.fileOps.ReadFile(abs, t.config.Tools.MaxFileSize)
	if err != nil {
		var tooLarge interface{ TooLarge() bool }
		if errors.As(err, &tooLarge) {
			return nil, &TooLargeError{Path: abs, Size: info.Size(), Limit: t.config.Tools.MaxFileSize}
		}
		return nil, &ReadError{Path: abs, Cause: err}
	}
	if content.IsBinaryContent(data) {
		return nil, &BinaryFileError{Path: abs}
	}
	if prior, ok := t.checksums.Get(abs); ok && prior != t.checksums.Compute(data) {
		return nil, &EditConflictError{Path: abs}
	}

	pf.original = string(data)
	pf.current = pf.original
	pf.perm = info.Mode().Perm()
	pf.exists = true
	return pf, nil
}

func (t *PatchTool) write(pf *pendingFile) error {
	abs := pf.resolved.Abs
	if !pf.exists {
		parent := filepath.Dir(abs)
		if err := t.fileOps.EnsureDirs(parent); err != nil {
			return &EnsureDirsError{Path: parent, Cause: err}
		}
	}
	data := []byte(pf.current)
	if err := t.fileOps.WriteFileAtomic(abs, data, pf.perm); err != nil {
		return &WriteError{Path: abs, Cause: err}
	}
	t.checksums.Update(abs, t.checksums.Compute(data))
	return nil
}

func displayName(r *path.Resolved) string {
	if r.Rel == "" {
		return filepath.Base(r.Abs)
	}
	return r.Rel
}

func computeUnifiedDiff(filename, oldContent, newContent string) (diff string, added, removed int) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  3,
	}
	diff, _ = difflib.GetUnifiedDiffString(ud)

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return diff, added, removed
}
