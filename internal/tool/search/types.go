package search

import (
	"strings"
	"unicode"

	"github.com/Cyclone1070/iavtools/internal/config"
)

// defaultSeparator is emitted between non-adjacent context windows.
const defaultSeparator = "--"

// SearchRequest is the wire format for a content search.
type SearchRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"` // file or directory, defaults to the workspace root

	FixedString   bool  `json:"fixed_string,omitempty"`
	CaseSensitive *bool `json:"case_sensitive,omitempty"`
	SmartCase     bool  `json:"smart_case,omitempty"`
	Word          bool  `json:"word,omitempty"`

	Include      []string `json:"include,omitempty"` // gitignore-style globs
	Exclude      []string `json:"exclude,omitempty"`
	IncludeRegex string   `json:"include_regex,omitempty"`
	ExcludeRegex string   `json:"exclude_regex,omitempty"`

	IncludeHidden  bool `json:"include_hidden,omitempty"`
	IncludeBinary  bool `json:"include_binary,omitempty"`
	IncludeIgnored bool `json:"include_ignored,omitempty"`

	BeforeContext int    `json:"before_context,omitempty"`
	AfterContext  int    `json:"after_context,omitempty"`
	Context       int    `json:"context,omitempty"` // sets both sides when they are unset
	Separator     bool   `json:"separator,omitempty"`
	SeparatorText string `json:"separator_text,omitempty"`
	Labels        bool   `json:"labels,omitempty"`

	Heading bool `json:"heading,omitempty"`
	Count   bool `json:"count,omitempty"`

	MaxResults  int   `json:"max_results,omitempty"`
	MaxFileSize int64 `json:"max_file_size,omitempty"`
}

// Validate checks the request shape and fills defaults from cfg.
func (r *SearchRequest) Validate(cfg *config.Config) error {
	if r.Pattern == "" {
		return &PatternRequiredError{}
	}
	if r.BeforeContext < 0 || r.AfterContext < 0 || r.Context < 0 {
		return &NegativeContextError{Before: r.BeforeContext, After: r.AfterContext, Context: r.Context}
	}
	if r.MaxResults < 0 {
		return &NegativeLimitError{Field: "max_results", Value: int64(r.MaxResults)}
	}
	if r.MaxFileSize < 0 {
		return &NegativeLimitError{Field: "max_file_size", Value: r.MaxFileSize}
	}

	if r.Path == "" {
		r.Path = "."
	}
	if r.Context > 0 {
		if r.BeforeContext == 0 {
			r.BeforeContext = r.Context
		}
		if r.AfterContext == 0 {
			r.AfterContext = r.Context
		}
	}
	if r.SeparatorText == "" {
		r.SeparatorText = defaultSeparator
	}
	if r.MaxResults == 0 {
		r.MaxResults = cfg.Search.MaxResults
	}
	if r.MaxFileSize == 0 {
		r.MaxFileSize = cfg.Search.MaxFileSize
	}
	return nil
}

// caseSensitive resolves the effective case mode. An explicit choice wins;
// otherwise smart case turns sensitivity on for patterns with an uppercase
// letter.
func (r *SearchRequest) caseSensitive() bool {
	if r.CaseSensitive != nil {
		return *r.CaseSensitive
	}
	return r.SmartCase && strings.IndexFunc(r.Pattern, unicode.IsUpper) >= 0
}

// SearchResponse contains the rendered result of a search.
type SearchResponse struct {
	Output       string `json:"output"`
	Matches      int    `json:"matches"`
	FilesMatched int    `json:"files_matched"`
	FilesScanned int    `json:"files_scanned"`
	Capped       bool   `json:"capped"`
}

// matchRecord is one emitted line.
type matchRecord struct {
	line  int // 1-based
	text  string
	match bool
	sep   bool // separator marker, line and text unused
}

// fileGroup collects the records of one file.
type fileGroup struct {
	file        string
	matchCount  int
	records     []matchRecord
	lastEmitted int // 1-based, 0 when nothing was emitted
}
