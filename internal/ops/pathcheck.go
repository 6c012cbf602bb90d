package ops

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/degreeplan/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // for import (read file)
	PathCheckWrite                      // for export (write file)
)

var catalogExtensions = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// ValidatePath checks a catalog path before import or export.
// It rejects directory traversal, extensions other than .json/.yaml/.yml,
// and symlinks. Reads also require the file to exist.
func ValidatePath(path string, mode PathCheckMode) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !catalogExtensions[strings.ToLower(filepath.Ext(cleaned))] {
		return errors.NewInvalidRequest("path must have .json, .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}

	// O_NOFOLLOW would reject this at open time too; this gives a clearer error.
	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
	}

	return nil
}

// DefaultExportsDir returns the default exports directory (~/.degreeplan/exports).
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".degreeplan", "exports"), nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// User input may use forward slashes on any platform.
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// openCatalogFile opens path without following a symlink in its final
// component. Missing files are FILE_NOT_FOUND unless flag creates them.
func openCatalogFile(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag|noFollow, perm)
	switch {
	case err == nil:
		return f, nil
	case isSymlinkErr(err):
		return nil, errors.NewInvalidRequest(fmt.Sprintf("refusing to open symlink: %s", path))
	case flag&os.O_CREATE == 0 && stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.NewFileNotFound(path)
	}
	return nil, err
}
