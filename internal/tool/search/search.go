package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/metrics"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
	"github.com/Cyclone1070/iavtools/internal/tool/service/git"
)

// NoMatches is the output of a search that found nothing.
const NoMatches = "No matches"

// skipDirs are never descended into: version control metadata, dependency
// caches, build output and the tool state directory.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"__pycache__":  true,
	"dist":         true,
	"target":       true,
	".iav":         true,
}

var errResultCap = errors.New("result cap reached")

// SearchTool searches file contents inside the workspace.
type SearchTool struct {
	fs           fileSystem
	pathResolver pathResolver
	config       *config.Config
	metrics      *metrics.Collector
	logger       *slog.Logger
}

// NewSearchTool creates a new SearchTool with injected dependencies.
func NewSearchTool(fs fileSystem, pathResolver pathResolver, cfg *config.Config, m *metrics.Collector, logger *slog.Logger) *SearchTool {
	if fs == nil {
		panic("fs is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &SearchTool{
		fs:           fs,
		pathResolver: pathResolver,
		config:       cfg,
		metrics:      m,
		logger:       logging.OrDiscard(logger),
	}
}

// searcher holds the state of one search call.
type searcher struct {
	tool    *SearchTool
	req     *SearchRequest
	match   lineMatcher
	filter  *pathFilter
	ignore  *git.IgnoreMatcher
	groups  []*fileGroup
	matches int
	scanned int
	capped  bool
}

// Run walks the confined search root in lexical order and matches every
// eligible file line by line.
func (t *SearchTool) Run(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}
	match, err := buildMatcher(req)
	if err != nil {
		return nil, err
	}
	filter, err := newPathFilter(req)
	if err != nil {
		return nil, err
	}

	root, err := t.pathResolver.Confine(req.Path, true)
	if err != nil {
		return nil, err
	}
	info, err := t.fs.Stat(root.Abs)
	if err != nil {
		return nil, &StatError{Path: root.Abs, Cause: err}
	}

	s := &searcher{tool: t, req: req, match: match, filter: filter}
	if !req.IncludeIgnored {
		dirRel := root.Rel
		if !info.IsDir() {
			dirRel = parentRel(root.Rel)
		}
		if s.ignore, err = t.loadIgnore(dirRel); err != nil {
			return nil, err
		}
	}

	if info.IsDir() {
		err = s.walk(ctx, root.Abs, root.Rel)
	} else {
		err = s.searchFile(root.Abs, root.Rel, false)
	}
	if err != nil && !errors.Is(err, errResultCap) {
		return nil, err
	}

	t.metrics.RecordSearch(s.scanned, s.matches)
	t.logger.DebugContext(ctx, "search finished",
		slog.String("pattern", req.Pattern),
		slog.String("path", root.Rel),
		slog.Int("files_scanned", s.scanned),
		slog.Int("matches", s.matches),
		slog.Bool("capped", s.capped),
	)

	resp := &SearchResponse{
		Matches:      s.matches,
		FilesMatched: len(s.groups),
		FilesScanned: s.scanned,
		Capped:       s.capped,
	}
	if s.matches == 0 {
		resp.Output = NoMatches
		return resp, nil
	}
	lines := render(s.groups, req)
	if s.capped {
		lines = append(lines, fmt.Sprintf("[results capped at %d matches]", req.MaxResults))
	}
	resp.Output = strings.Join(lines, "\n")
	return resp, nil
}

// loadIgnore builds a matcher holding the .gitignore files from the
// workspace root down to dirRel.
func (t *SearchTool) loadIgnore(dirRel string) (*git.IgnoreMatcher, error) {
	m, err := git.NewIgnoreMatcher(t.pathResolver.Root(), t.fs)
	if err != nil {
		return nil, err
	}
	if err := m.LoadAncestors(dirRel); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *searcher) walk(ctx context.Context, rootAbs, rootRel string) error {
	err := filepath.WalkDir(rootAbs, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == rootAbs {
				return err
			}
			s.tool.logger.Debug("search skipped unreadable entry", slog.String("path", p), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == rootAbs {
			return nil
		}

		sub, err := filepath.Rel(rootAbs, p)
		if err != nil {
			return nil
		}
		rel := joinRel(rootRel, sub)

		switch {
		case d.IsDir():
			return s.enterDir(d.Name(), rel)
		case d.Type()&os.ModeSymlink != 0:
			return s.searchLink(p, rel)
		case d.Type().IsRegular():
			if s.ignore.ShouldIgnore(rel, false) {
				return nil
			}
			return s.searchFile(p, rel, true)
		default:
			return nil
		}
	})
	if errors.Is(err, errResultCap) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err != nil {
		return &WalkError{Path: rootAbs, Cause: err}
	}
	return nil
}

func (s *searcher) enterDir(name, rel string) error {
	if skipDirs[name] {
		return filepath.SkipDir
	}
	if isHidden(name) && !s.req.IncludeHidden {
		return filepath.SkipDir
	}
	if s.ignore.ShouldIgnore(rel, true) {
		return filepath.SkipDir
	}
	if s.ignore != nil {
		if err := s.ignore.LoadDir(rel); err != nil {
			s.tool.logger.Warn("search could not read .gitignore", slog.String("dir", rel), slog.Any("error", err))
		}
	}
	return nil
}

// searchLink searches a symlinked file when its target stays inside the
// workspace. Directory links are not followed.
func (s *searcher) searchLink(abs, rel string) error {
	if s.ignore.ShouldIgnore(rel, false) {
		return nil
	}
	target, err := s.tool.pathResolver.Confine(abs, true)
	if err != nil {
		return nil
	}
	info, err := s.tool.fs.Stat(target.Abs)
	if err != nil || info.IsDir() {
		return nil
	}
	return s.searchFile(target.Abs, rel, true)
}

// searchFile applies the per-file filters in order (globs, path regexes,
// hidden, size, binary) and collects matches.
func (s *searcher) searchFile(abs, rel string, checkHidden bool) error {
	if !s.filter.allow(rel) {
		return nil
	}
	if checkHidden && isHidden(filepath.Base(filepath.FromSlash(rel))) && !s.req.IncludeHidden {
		return nil
	}
	info, err := s.tool.fs.Stat(abs)
	if err != nil || info.Size() > s.req.MaxFileSize {
		return nil
	}
	data, err := s.tool.fs.ReadFile(abs, s.req.MaxFileSize)
	if err != nil {
		return nil
	}
	if !s.req.IncludeBinary && content.IsBinaryContent(data) {
		return nil
	}
	s.scanned++

	lines := content.SplitLines(string(data))
	isMatch := make([]bool, len(lines))
	found := false
	for i, line := range lines {
		if s.match(line) {
			isMatch[i] = true
			found = true
		}
	}
	if !found {
		return nil
	}

	g := &fileGroup{file: rel}
	budget := s.req.MaxResults - s.matches
	s.matches += addWindows(g, lines, isMatch, s.req, s.tool.config.Search.MaxLineLength, budget)
	if g.matchCount > 0 {
		s.groups = append(s.groups, g)
	}
	if s.matches >= s.req.MaxResults {
		s.capped = true
		return errResultCap
	}
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func joinRel(base, sub string) string {
	sub = filepath.ToSlash(sub)
	if sub == "." {
		return base
	}
	if base == "" {
		return sub
	}
	return base + "/" + sub
}

func parentRel(rel string) string {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return ""
	}
	return rel[:i]
}
