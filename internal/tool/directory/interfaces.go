package directory

import (
	"os"

	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
)

// pathResolver confines paths to the workspace.
type pathResolver interface {
	Root() string
	Confine(path string, mustExist bool) (*path.Resolved, error)
}

// fileSystem defines the filesystem operations needed for listing.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	ListDir(path string) ([]os.DirEntry, error)
}
