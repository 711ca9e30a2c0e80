package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

// maxIgnoreFileSize bounds how much of a .gitignore is read.
const maxIgnoreFileSize = 1 << 20

// GitignoreReadError is returned when .gitignore cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// fileSystem defines the minimal filesystem interface needed for gitignore loading.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
}

// IgnoreMatcher implements gitignore pattern matching using go-git's gitignore matcher.
// Patterns from nested .gitignore files are scoped to their directory and
// take precedence over patterns loaded earlier.
type IgnoreMatcher struct {
	workspaceRoot string
	fs            fileSystem
	patterns      []gitignore.Pattern
	matcher       gitignore.Matcher
}

// NewIgnoreMatcher creates a new gitignore matcher by loading .gitignore from workspace root.
// Returns a matcher that never ignores if .gitignore doesn't exist (no error).
func NewIgnoreMatcher(workspaceRoot string, fs fileSystem) (*IgnoreMatcher, error) {
	if workspaceRoot == "" {
		panic("workspaceRoot is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	m := &IgnoreMatcher{workspaceRoot: workspaceRoot, fs: fs}
	if err := m.LoadDir(""); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadAncestors loads the .gitignore of every directory from the first
// segment of relDir down to relDir itself. The root file is loaded by
// NewIgnoreMatcher.
func (m *IgnoreMatcher) LoadAncestors(relDir string) error {
	if relDir == "" {
		return nil
	}
	parts := strings.Split(relDir, "/")
	for i := range parts {
		if err := m.LoadDir(strings.Join(parts[:i+1], "/")); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir adds the patterns of relDir/.gitignore, if present.
// relDir is slash-separated and relative to the workspace root.
func (m *IgnoreMatcher) LoadDir(relDir string) error {
	gitignorePath := filepath.Join(m.workspaceRoot, filepath.FromSlash(relDir), ".gitignore")
	if _, err := m.fs.Stat(gitignorePath); err != nil {
		return nil
	}

	data, err := m.fs.ReadFile(gitignorePath, maxIgnoreFileSize)
	if err != nil {
		return &GitignoreReadError{Path: gitignorePath, Cause: err}
	}

	domain := splitPath(relDir)
	added := false
	for _, line := range content.SplitLines(string(data)) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		m.patterns = append(m.patterns, gitignore.ParsePattern(line, domain))
		added = true
	}
	if added {
		m.matcher = gitignore.NewMatcher(m.patterns)
	}
	return nil
}

// ShouldIgnore checks if a relative path matches any gitignore patterns.
// Returns false if no patterns were loaded.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// GlobMatcher matches relative paths against gitignore-style glob patterns.
// A later "!pattern" re-includes what an earlier pattern matched.
type GlobMatcher struct {
	matcher gitignore.Matcher
}

// NewGlobMatcher compiles patterns. An empty list yields a matcher that
// never matches.
func NewGlobMatcher(patterns []string) *GlobMatcher {
	var parsed []gitignore.Pattern
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(p, nil))
	}
	if len(parsed) == 0 {
		return &GlobMatcher{}
	}
	return &GlobMatcher{matcher: gitignore.NewMatcher(parsed)}
}

// Empty reports whether the matcher has no patterns.
func (g *GlobMatcher) Empty() bool {
	return g == nil || g.matcher == nil
}

// Match reports whether relativePath is selected by the patterns.
func (g *GlobMatcher) Match(relativePath string, isDir bool) bool {
	if g.Empty() {
		return false
	}
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return g.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
