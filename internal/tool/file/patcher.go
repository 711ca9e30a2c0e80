package file

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// GitDiffPatcher applies unified diffs with go-gitdiff. A diff made of bare
// hunks, with no file header, is accepted as a change to the target file.
type GitDiffPatcher struct{}

// NewGitDiffPatcher creates a new GitDiffPatcher.
func NewGitDiffPatcher() *GitDiffPatcher {
	return &GitDiffPatcher{}
}

// Apply parses diff, which must change exactly one file, and applies it to old.
// Parse failures are reported as *InvalidPatchError; anything else means the
// diff does not fit old.
func (p *GitDiffPatcher) Apply(old, diff string) (string, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(withFileHeader(diff)))
	if err != nil {
		return "", &InvalidPatchError{Cause: err}
	}
	if len(files) != 1 {
		return "", &InvalidPatchError{Cause: fmt.Errorf("patch must change exactly one file, found %d", len(files))}
	}
	f := files[0]
	if f.IsBinary {
		return "", &InvalidPatchError{Cause: fmt.Errorf("binary patches are not supported")}
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(old), f); err != nil {
		return "", err
	}
	return out.String(), nil
}

// withFileHeader prepends a synthetic ---/+++ header when the diff starts
// with a hunk, and terminates the last line.
func withFileHeader(diff string) string {
	if !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			return "--- a/file\n+++ b/file\n" + diff
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "diff --git "):
			return diff
		}
	}
	return diff
}
