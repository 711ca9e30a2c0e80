package directory

import (
	"github.com/Cyclone1070/iavtools/internal/config"
)

// DirectoryEntry represents a single entry in a directory listing.
type DirectoryEntry struct {
	RelativePath string
	IsDir        bool
}

// String renders the entry for display, directories with a trailing slash.
func (e DirectoryEntry) String() string {
	if e.IsDir {
		return e.RelativePath + "/"
	}
	return e.RelativePath
}

type ListDirectoryRequest struct {
	Path           string `json:"path,omitempty"`
	MaxDepth       int    `json:"max_depth,omitempty"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// Validate checks bounds and fills the default path and limit.
func (r *ListDirectoryRequest) Validate(cfg *config.Config) error {
	if r.Offset < 0 {
		return &NegativeValueError{Field: "offset", Value: r.Offset}
	}
	if r.Limit < 0 {
		return &NegativeValueError{Field: "limit", Value: r.Limit}
	}
	if r.Limit > cfg.Tools.MaxListDirectoryResults {
		return &LimitExceededError{Value: r.Limit, Max: cfg.Tools.MaxListDirectoryResults}
	}
	if r.Path == "" {
		r.Path = "."
	}
	if r.Limit == 0 {
		r.Limit = cfg.Tools.DefaultListDirectoryLimit
	}
	return nil
}

// ListDirectoryResponse contains the result of a ListDirectory operation.
type ListDirectoryResponse struct {
	DirectoryPath    string
	Entries          []DirectoryEntry
	Offset           int
	Limit            int
	TotalCount       int    `json:"total_count"`
	Truncated        bool   `json:"truncated"`
	TruncationReason string `json:"truncation_reason,omitempty"`
}
