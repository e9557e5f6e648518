package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize returns a canonical filesystem path string: trailing slashes
// removed, "." and ".." collapsed, relative paths preserved.
func Normalize(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}

// ChildUnder returns the immediate child of parent on the way to path, and
// whether path is strictly nested under parent. Both arguments must already
// be normalized.
func ChildUnder(parent, path string) (string, bool) {
	prefix := parent + string(filepath.Separator)
	if parent == string(filepath.Separator) {
		prefix = parent
	}
	if path == parent || !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := path[len(prefix):]
	if rest == "" {
		return "", false
	}
	if i := strings.IndexRune(rest, filepath.Separator); i >= 0 {
		rest = rest[:i]
	}
	return filepath.Join(parent, rest), true
}
