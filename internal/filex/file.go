package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exists reports whether path exists. Any stat result other than
// "does not exist" counts as present, permission errors included:
// for an administrative sentinel file the safe reading of an
// unreadable flag is "set".
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// EnsureParentDir creates the parent directory of path if it is missing
// and returns the cleaned path.
func EnsureParentDir(path string) (string, error) {
	path = filepath.Clean(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return path, nil
}
