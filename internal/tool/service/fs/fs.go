package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// OSFileSystem implements the filesystem operations tools need on top of the
// local OS. Callers pass paths that were already confined to the workspace.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (fs *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads a whole file, refusing files larger than maxSize bytes.
// A maxSize of 0 disables the limit.
func (fs *OSFileSystem) ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &IsDirectoryError{Path: path}
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, &TooLargeError{Path: path, Size: info.Size(), Limit: maxSize}
	}

	r := io.Reader(f)
	if maxSize > 0 {
		// The file may grow between Stat and Read.
		r = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, &TooLargeError{Path: path, Size: int64(len(data)), Limit: maxSize}
	}
	return data, nil
}

// ReadFileRange reads up to limit bytes starting at offset.
// A limit of 0 reads to the end of the file.
func (fs *OSFileSystem) ReadFileRange(path string, offset, limit int64) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit)
	}
	return io.ReadAll(r)
}

// WriteFileAtomic writes content through a temp file in the target directory
// followed by a rename, so readers never observe a partial file.
func (fs *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &TempFileError{Dir: dir, Cause: err}
	}

	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &TempWriteError{Path: tmpPath, Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &TempSyncError{Path: tmpPath, Cause: err}
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return &ChmodError{Path: tmpPath, Mode: perm, Cause: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &TempCloseError{Path: tmpPath, Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &RenameError{Old: tmpPath, New: path, Cause: err}
	}
	committed = true
	return nil
}

// AppendFile appends data to path, creating it with perm if needed.
func (fs *OSFileSystem) AppendFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EnsureDirs creates a directory and its parents if they don't exist.
func (fs *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ListDir lists the entries of a directory sorted by name.
func (fs *OSFileSystem) ListDir(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}
