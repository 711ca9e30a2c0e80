package file

import (
	"strings"

	"github.com/Cyclone1070/iavtools/internal/config"
)

// -- Read File --

type ReadFileRequest struct {
	Path   string `json:"path"`
	Offset *int64 `json:"offset,omitempty"`
	Limit  *int64 `json:"limit,omitempty"`
}

func (r *ReadFileRequest) Validate(cfg *config.Config) error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	if r.Offset != nil && *r.Offset < 0 {
		return &InvalidRangeError{Field: "offset", Value: *r.Offset}
	}
	if r.Limit != nil && *r.Limit < 0 {
		return &InvalidRangeError{Field: "limit", Value: *r.Limit}
	}
	return nil
}

func (r *ReadFileRequest) offset() int64 {
	if r.Offset == nil {
		return 0
	}
	return *r.Offset
}

func (r *ReadFileRequest) limit() int64 {
	if r.Limit == nil {
		return 0
	}
	return *r.Limit
}

type ReadFileResponse struct {
	Content      string
	AbsolutePath string
	RelativePath string
	Size         int64
}

// -- Write File --

type WriteFileRequest struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Overwrite bool   `json:"overwrite,omitempty"`
}

func (r *WriteFileRequest) Validate(cfg *config.Config) error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	if int64(len(r.Content)) > cfg.Tools.MaxFileSize {
		return &TooLargeError{Path: r.Path, Size: int64(len(r.Content)), Limit: cfg.Tools.MaxFileSize}
	}
	return nil
}

type WriteFileResponse struct {
	AbsolutePath string
	RelativePath string
	BytesWritten int
	Created      bool
}

// -- Apply Patch --

type ApplyPatchRequest struct {
	Path   string `json:"path"`
	Patch  string `json:"patch"`
	DryRun bool   `json:"dry_run,omitempty"`
}

func (r *ApplyPatchRequest) Validate(cfg *config.Config) error {
	if strings.TrimSpace(r.Path) == "" {
		return ErrPathRequired
	}
	if strings.TrimSpace(r.Patch) == "" {
		return &PatchRequiredError{Path: r.Path}
	}
	return nil
}

// FilePatch is one entry of a batch.
type FilePatch struct {
	Path  string `json:"path"`
	Patch string `json:"patch"`
}

type ApplyPatchesRequest struct {
	Patches []FilePatch `json:"patches"`
	DryRun  bool        `json:"dry_run,omitempty"`
}

func (r *ApplyPatchesRequest) Validate(cfg *config.Config) error {
	if len(r.Patches) == 0 {
		return ErrPatchesRequired
	}
	for _, p := range r.Patches {
		single := ApplyPatchRequest{Path: p.Path, Patch: p.Patch}
		if err := single.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

// PatchResult describes the outcome for one file.
type PatchResult struct {
	AbsolutePath string
	RelativePath string
	Diff         string
	AddedLines   int
	RemovedLines int
	Created      bool
}

type ApplyPatchesResponse struct {
	Results []PatchResult
	DryRun  bool
}
