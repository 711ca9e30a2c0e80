package directory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/logging"
	"github.com/Cyclone1070/iavtools/internal/tool/helper/pagination"
	"github.com/Cyclone1070/iavtools/internal/tool/service/git"
)

// ListDirectoryTool handles directory listing operations.
type ListDirectoryTool struct {
	fs           fileSystem
	pathResolver pathResolver
	config       *config.Config
	logger       *slog.Logger
}

// NewListDirectoryTool creates a new ListDirectoryTool with injected dependencies.
func NewListDirectoryTool(fs fileSystem, pathResolver pathResolver, cfg *config.Config, logger *slog.Logger) *ListDirectoryTool {
	if fs == nil {
		panic("fs is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &ListDirectoryTool{
		fs:           fs,
		pathResolver: pathResolver,
		config:       cfg,
		logger:       logging.OrDiscard(logger),
	}
}

// lister holds the state of one listing.
type lister struct {
	tool     *ListDirectoryTool
	req      *ListDirectoryRequest
	ignore   *git.IgnoreMatcher
	entries  []DirectoryEntry
	maxCount int
	capHit   bool
}

// Run lists the contents of a directory within the workspace.
// MaxDepth 0 lists immediate children only and a negative MaxDepth is
// unlimited. Entries honour .gitignore unless IncludeIgnored is set and are
// sorted directories first, then by path.
func (t *ListDirectoryTool) Run(ctx context.Context, req *ListDirectoryRequest) (*ListDirectoryResponse, error) {
	if err := req.Validate(t.config); err != nil {
		return nil, err
	}

	root, err := t.pathResolver.Confine(req.Path, true)
	if err != nil {
		return nil, err
	}
	info, err := t.fs.Stat(root.Abs)
	if err != nil {
		return nil, &ListDirError{Path: root.Abs, Cause: err}
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: root.Abs}
	}

	l := &lister{tool: t, req: req, maxCount: t.config.Tools.MaxListDirectoryResults}
	if !req.IncludeIgnored {
		if l.ignore, err = git.NewIgnoreMatcher(t.pathResolver.Root(), t.fs); err != nil {
			return nil, err
		}
		if err := l.ignore.LoadAncestors(root.Rel); err != nil {
			return nil, err
		}
	}

	if err := l.list(ctx, root.Abs, root.Rel, 0); err != nil {
		return nil, err
	}

	entries := l.entries
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].RelativePath < entries[j].RelativePath
	})

	page, res := pagination.Apply(entries, req.Offset, req.Limit)

	var reason string
	if l.capHit {
		res.Truncated = true
		reason = fmt.Sprintf("Results capped at %d entries.", l.maxCount)
	} else if res.Truncated {
		reason = fmt.Sprintf("Page limit reached. More results at offset %d.", req.Offset+req.Limit)
	}

	t.logger.DebugContext(ctx, "directory listed",
		slog.String("path", root.Rel),
		slog.Int("entries", res.TotalCount),
		slog.Bool("capped", l.capHit),
	)

	return &ListDirectoryResponse{
		DirectoryPath:    displayPath(root.Rel),
		Entries:          page,
		Offset:           req.Offset,
		Limit:            req.Limit,
		TotalCount:       res.TotalCount,
		Truncated:        res.Truncated,
		TruncationReason: reason,
	}, nil
}

func (l *lister) list(ctx context.Context, abs, rel string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := l.tool.fs.ListDir(abs)
	if err != nil {
		return &ListDirError{Path: abs, Cause: err}
	}

	for _, child := range children {
		if len(l.entries) >= l.maxCount {
			l.capHit = true
			return nil
		}

		childAbs := filepath.Join(abs, child.Name())
		childRel := child.Name()
		if rel != "" {
			childRel = rel + "/" + child.Name()
		}

		isDir, recurse := child.IsDir(), child.IsDir()
		if child.Type()&os.ModeSymlink != 0 {
			target, err := l.tool.pathResolver.Confine(childAbs, true)
			if err != nil {
				continue
			}
			info, err := l.tool.fs.Stat(target.Abs)
			if err != nil {
				continue
			}
			isDir, recurse = info.IsDir(), false
		}

		if !l.req.IncludeIgnored {
			if child.Name() == ".git" || l.ignore.ShouldIgnore(childRel, isDir) {
				continue
			}
		}

		l.entries = append(l.entries, DirectoryEntry{RelativePath: childRel, IsDir: isDir})

		if !recurse || (l.req.MaxDepth >= 0 && depth >= l.req.MaxDepth) {
			continue
		}
		if l.ignore != nil {
			if err := l.ignore.LoadDir(childRel); err != nil {
				l.tool.logger.Warn("list could not read .gitignore", slog.String("dir", childRel), slog.Any("error", err))
			}
		}
		if err := l.list(ctx, childAbs, childRel, depth+1); err != nil {
			return err
		}
		if l.capHit {
			return nil
		}
	}
	return nil
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
