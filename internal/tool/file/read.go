package file

import (
	"context"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

// ReadFileTool handles file reading operations.
type ReadFileTool struct {
	fileOps      fileReader
	pathResolver pathResolver
	checksums    checksumStore
	config       *config.Config
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(fileOps fileReader, pathResolver pathResolver, checksums checksumStore, cfg *config.Config) *ReadFileTool {
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
	return &ReadFileTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
		checksums:    checksums,
		config:       cfg,
	}
}

// Run reads a file from the workspace with optional offset and limit for partial reads.
// Binary files and files over the size limit are refused. A full read records
// the file's checksum so later edits can detect concurrent changes.
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *ReadFileTool) Run(ctx context.Context, req *ReadFileRequest) (*ReadFileResponse, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}

	resolved, err := t.pathResolver.Confine(req.Path, true)
	if err != nil {
		return nil, err
	}
	abs := resolved.Abs

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		return nil, &StatError{Path: abs, Cause: err}
	}
	if info.IsDir() {
		return nil, &IsDirectoryError{Path: abs}
	}
	if info.Size() > t.config.Tools.MaxFileSize {
		return nil, &TooLargeError{Path: abs, Size: info.Size(), Limit: t.config.Tools.MaxFileSize}
	}

	offset, limit := req.offset(), req.limit()
	data, err := t.fileOps.ReadFileRange(abs, offset, limit)
	if err != nil {
		return nil, &ReadError{Path: abs, Cause: err}
	}
	if content.IsBinaryContent(data) {
		return nil, &BinaryFileError{Path: abs}
	}

	if offset == 0 && int64(len(data)) == info.Size() {
		t.checksums.Update(abs, t.checksums.Compute(data))
	}

	return &ReadFileResponse{
		Content:      string(data),
		AbsolutePath: abs,
		RelativePath: resolved.Rel,
		Size:         info.Size(),
	}, nil
}
