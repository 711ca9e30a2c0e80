package todo

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/Cyclone1070/iavtools/internal/config"
)

// FileName is the todo document inside the state directory.
const FileName = "todos.json"

// maxDocumentSize bounds how much of the todo file is read.
const maxDocumentSize = 4 << 20

// fileSystem defines the filesystem operations the store needs.
type fileSystem interface {
	ReadFile(path string, maxSize int64) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}

// FileStore keeps the todo document as JSON under the workspace state
// directory. A missing file reads as an empty list.
type FileStore struct {
	fs   fileSystem
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at <workspaceRoot>/<state dir>/todos.json.
func NewFileStore(workspaceRoot string, cfg *config.Config, fs fileSystem) *FileStore {
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &FileStore{
		fs:   fs,
		path: filepath.Join(workspaceRoot, cfg.Tools.StateDir, FileName),
	}
}

// Path returns the location of the todo document.
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the current document.
func (s *FileStore) Read() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Update loads the document, applies fn and writes the result back.
// Nothing is written when fn fails.
func (s *FileStore) Update(fn func(doc *Document) error) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &StoreWriteError{Path: s.path, Cause: err}
	}
	if err := s.fs.EnsureDirs(filepath.Dir(s.path)); err != nil {
		return nil, &StoreWriteError{Path: s.path, Cause: err}
	}
	if err := s.fs.WriteFileAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		return nil, &StoreWriteError{Path: s.path, Cause: err}
	}
	return doc, nil
}

func (s *FileStore) read() (*Document, error) {
	data, err := s.fs.ReadFile(s.path, maxDocumentSize)
	if errors.Is(err, os.ErrNotExist) {
		return newDocument(), nil
	}
	if err != nil {
		return nil, &StoreReadError{Path: s.path, Cause: err}
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &StoreReadError{Path: s.path, Cause: err}
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	// Keep ids unique even if the file was edited by hand.
	for _, item := range doc.Items {
		if item.ID >= doc.NextID {
			doc.NextID = item.ID + 1
		}
	}
	return doc, nil
}
