package search

import (
	"regexp"

	"github.com/Cyclone1070/iavtools/internal/tool/service/git"
)

// lineMatcher tests a single line. Patterns never span lines.
type lineMatcher func(line string) bool

// buildMatcher compiles the request pattern once. Fixed-string and word modes
// quote the pattern; word mode also anchors it on word boundaries.
func buildMatcher(req *SearchRequest) (lineMatcher, error) {
	pattern := req.Pattern
	if req.FixedString || req.Word {
		pattern = regexp.QuoteMeta(pattern)
	}
	if req.Word {
		pattern = `\b` + pattern + `\b`
	}
	if !req.caseSensitive() {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &InvalidPatternError{Field: "pattern", Pattern: req.Pattern, Cause: err}
	}
	return re.MatchString, nil
}

// pathFilter applies the glob and regex include/exclude rules to a
// workspace-relative path.
type pathFilter struct {
	include   *git.GlobMatcher
	exclude   *git.GlobMatcher
	includeRe *regexp.Regexp
	excludeRe *regexp.Regexp
}

func newPathFilter(req *SearchRequest) (*pathFilter, error) {
	f := &pathFilter{
		include: git.NewGlobMatcher(req.Include),
		exclude: git.NewGlobMatcher(req.Exclude),
	}
	var err error
	if req.IncludeRegex != "" {
		if f.includeRe, err = regexp.Compile(req.IncludeRegex); err != nil {
			return nil, &InvalidPatternError{Field: "include_regex", Pattern: req.IncludeRegex, Cause: err}
		}
	}
	if req.ExcludeRegex != "" {
		if f.excludeRe, err = regexp.Compile(req.ExcludeRegex); err != nil {
			return nil, &InvalidPatternError{Field: "exclude_regex", Pattern: req.ExcludeRegex, Cause: err}
		}
	}
	return f, nil
}

// allow reports whether a file passes the path filters, globs first.
func (f *pathFilter) allow(rel string) bool {
	if !f.include.Empty() && !f.include.Match(rel, false) {
		return false
	}
	if f.exclude.Match(rel, false) {
		return false
	}
	if f.includeRe != nil && !f.includeRe.MatchString(rel) {
		return false
	}
	if f.excludeRe != nil && f.excludeRe.MatchString(rel) {
		return false
	}
	return true
}
