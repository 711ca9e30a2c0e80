package path

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxLinkHops bounds dangling symlink chains.
const maxLinkHops = 64

// FileSystem is the minimal filesystem surface needed for path resolution.
type FileSystem interface {
	Lstat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
	EvalSymlinks(path string) (string, error)
	UserHomeDir() (string, error)
}

// OSFileSystem resolves paths against the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }
func (OSFileSystem) Readlink(path string) (string, error) { return os.Readlink(path) }
func (OSFileSystem) EvalSymlinks(path string) (string, error) { return filepath.EvalSymlinks(path) }
func (OSFileSystem) UserHomeDir() (string, error) { return os.UserHomeDir() }

// Resolved is the outcome of resolving a caller-supplied path.
// It is computed per call and never cached.
type Resolved struct {
	Abs             string // real, symlink-free absolute path
	Rel             string // slash-separated, relative to the root, "" for the root itself
	Exists          bool
	InsideWorkspace bool
}

// Resolver provides path resolution within a workspace boundary.
type Resolver struct {
	workspaceRoot string
	fs            FileSystem
}

// NewResolver creates a new path resolver for the given workspace.
// The root should already be canonical, see CanonicaliseRoot.
func NewResolver(workspaceRoot string) *Resolver {
	return NewResolverWithFS(workspaceRoot, OSFileSystem{})
}

// NewResolverWithFS creates a resolver backed by a custom filesystem.
func NewResolverWithFS(workspaceRoot string, fs FileSystem) *Resolver {
	if fs == nil {
		panic("fs is required")
	}
	return &Resolver{
		workspaceRoot: filepath.Clean(workspaceRoot),
		fs:            fs,
	}
}

// CanonicaliseRoot canonicalises a workspace root path by making it absolute and resolving symlinks.
// Returns an error if the path doesn't exist or isn't a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &WorkspaceRootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &WorkspaceRootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Root returns the canonical workspace root.
func (r *Resolver) Root() string {
	return r.workspaceRoot
}

// Resolve computes the real location of path without enforcing the boundary.
// Relative paths are joined to the root, "~/" expands to the home directory.
// When path does not exist, the nearest existing ancestor is resolved and the
// missing components are re-appended.
func (r *Resolver) Resolve(path string) (*Resolved, error) {
	if r.workspaceRoot == "" || r.workspaceRoot == "." {
		return nil, ErrWorkspaceRootNotSet
	}

	expanded, err := r.expandHome(path)
	if err != nil {
		return nil, err
	}

	var abs string
	if filepath.IsAbs(expanded) {
		abs = filepath.Clean(expanded)
	} else {
		abs = filepath.Join(r.workspaceRoot, expanded)
	}

	resolved, exists, err := r.realPath(abs, 0)
	if err != nil {
		return nil, err
	}

	res := &Resolved{Abs: resolved, Exists: exists}
	rel, err := filepath.Rel(r.workspaceRoot, resolved)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		res.InsideWorkspace = true
		if rel == "." {
			rel = ""
		}
		res.Rel = filepath.ToSlash(rel)
	}
	return res, nil
}

// Confine resolves path and enforces the workspace boundary. It is the
// single chokepoint every caller-supplied path must pass before any read,
// write, stat or process working directory use.
func (r *Resolver) Confine(path string, mustExist bool) (*Resolved, error) {
	res, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !res.InsideWorkspace {
		return nil, &OutsideWorkspaceError{Path: path, Resolved: res.Abs}
	}
	if mustExist && !res.Exists {
		return nil, &NotFoundError{Path: path}
	}
	return res, nil
}

// Abs resolves any path to its real absolute form and validates it is within the workspace boundary.
func (r *Resolver) Abs(path string) (string, error) {
	res, err := r.Confine(path, false)
	if err != nil {
		return "", err
	}
	return res.Abs, nil
}

// Rel resolves any path relative to the workspace root and validates it is within the boundary.
// The root itself is returned as "".
func (r *Resolver) Rel(path string) (string, error) {
	res, err := r.Confine(path, false)
	if err != nil {
		return "", err
	}
	return res.Rel, nil
}

func (r *Resolver) expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := r.fs.UserHomeDir()
	if err != nil {
		return "", &ResolveError{Path: path, Cause: err}
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// realPath returns the symlink-free form of abs and whether it exists.
func (r *Resolver) realPath(abs string, hops int) (string, bool, error) {
	if hops > maxLinkHops {
		return "", false, &ResolveError{Path: abs, Cause: ErrTooManyLinks}
	}

	info, err := r.fs.Lstat(abs)
	switch {
	case err == nil:
	case isMissing(err):
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs, false, nil
		}
		realParent, _, err := r.realPath(parent, hops)
		if err != nil {
			return "", false, err
		}
		return filepath.Join(realParent, filepath.Base(abs)), false, nil
	default:
		return "", false, &ResolveError{Path: abs, Cause: err}
	}

	resolved, err := r.fs.EvalSymlinks(abs)
	if err == nil {
		return resolved, true, nil
	}
	if !isMissing(err) || info.Mode()&os.ModeSymlink == 0 {
		return "", false, &ResolveError{Path: abs, Cause: err}
	}

	// Dangling link: follow the target so a link to a missing file outside
	// the workspace is judged by where a write would land.
	target, err := r.fs.Readlink(abs)
	if err != nil {
		return "", false, &ResolveError{Path: abs, Cause: err}
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(abs), target)
	}
	resolved, _, err = r.realPath(filepath.Clean(target), hops+1)
	if err != nil {
		return "", false, err
	}
	return resolved, false, nil
}

func isMissing(err error) bool {
	return errors.Is(err, iofs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
