package file

import (
	"os"

	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
)

// pathResolver confines paths to the workspace.
type pathResolver interface {
	Confine(path string, mustExist bool) (*path.Resolved, error)
}

// fileReader defines the minimal filesystem operations needed for reading files.
type fileReader interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	ReadFileRange(path string, offset, limit int64) ([]byte, error)
}

// fileWriter defines the filesystem operations needed for writing files.
type fileWriter interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}

// checksumStore tracks the content a tool last saw for each file.
type checksumStore interface {
	Compute(data []byte) string
	Get(path string) (string, bool)
	Update(path string, checksum string)
}

// Patcher applies a unified diff to the old content of a file.
type Patcher interface {
	Apply(old, diff string) (string, error)
}
