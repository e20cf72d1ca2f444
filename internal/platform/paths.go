package platform

import (
	"path/filepath"
	"strings"
)

// Resolve returns the absolute, cleaned form of path
func Resolve(path string) (string, error) {
	return filepath.Abs(path)
}

// Within reports whether path equals root or lies under it.
// Both paths must already be absolute and cleaned.
func Within(root, path string) bool {
	if root == "" {
		return false
	}
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// RelWithin returns path relative to root when path lies strictly under
// root. The second return is false when root is empty, the paths are
// equal, or path is outside root.
func RelWithin(root, path string) (string, bool) {
	if root == "" || path == root || !Within(root, path) {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == "" {
		return "", false
	}
	return rel, true
}
