package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

const defaultPerm os.FileMode = 0o644

// WriteFileTool handles file writing operations.
type WriteFileTool struct {
	fileOps      fileWriter
	pathResolver pathResolver
	checksums    checksumStore
	config       *config.Config
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(fileOps fileWriter, pathResolver pathResolver, checksums checksumStore, cfg *config.Config) *WriteFileTool {
	if fileOps == nil {
		panic("fileOps is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if checksums == nil {
		panic("checksums is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &WriteFileTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
		checksums:    checksums,
		config:       cfg,
	}
}

// Run writes a file inside the workspace, creating parent directories as
// needed. An existing file is only replaced when Overwrite is set, and then
// only if it has not changed since a tool last saw it. The write is atomic.
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *WriteFileTool) Run(ctx context.Context, req *WriteFileRequest) (*WriteFileResponse, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}

	resolved, err := t.pathResolver.Confine(req.Path, false)
	if err != nil {
		return nil, err
	}
	abs := resolved.Abs

	data := []byte(req.Content)
	if content.IsBinaryContent(data) {
		return nil, &BinaryFileError{Path: abs}
	}

	perm := defaultPerm
	created := false
	info, err := t.fileOps.Stat(abs)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, &IsDirectoryError{Path: abs}
		}
		if !req.Overwrite {
			return nil, &AlreadyExistsError{Path: abs}
		}
		if err := checkUnchanged(t.fileOps, t.checksums, abs, t.config.Tools.MaxFileSize); err != nil {
			return nil, err
		}
		perm = info.Mode().Perm()
	case os.IsNotExist(err):
		created = true
		parent := filepath.Dir(abs)
		if err := t.fileOps.EnsureDirs(parent); err != nil {
			return nil, &EnsureDirsError{Path: parent, Cause: err}
		}
	default:
		return nil, &StatError{Path: abs, Cause: err}
	}

	if err := t.fileOps.WriteFileAtomic(abs, data, perm); err != nil {
		return nil, &WriteError{Path: abs, Cause: err}
	}
	t.checksums.Update(abs, t.checksums.Compute(data))

	return &WriteFileResponse{
		AbsolutePath: abs,
		RelativePath: resolved.Rel,
		BytesWritten: len(data),
		Created:      created,
	}, nil
}

// checkUnchanged fails with EditConflictError when a checksum is recorded
// for abs and the file on disk no longer matches it.
func checkUnchanged(fileOps fileWriter, checksums checksumStore, abs string, maxSize int64) error {
	prior, ok := checksums.Get(abs)
	if !ok {
		return nil
	}
	current, err := fileOps.ReadFile(abs, maxSize)
	if err != nil {
		return &ReadError{Path: abs, Cause: err}
	}
	if checksums.Compute(current) != prior {
		return &EditConflictError{Path: abs}
	}
	return nil
}
