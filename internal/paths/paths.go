// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the user's home directory. The
// path is returned unchanged when there is no "~" or no home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Resolve expands "~" in path and anchors a relative result at base.
//
//   - "~/grammars", any base -> "$HOME/grammars"
//   - "grammars", "/etc/scopes" -> "/etc/scopes/grammars"
//   - "/abs", any base -> "/abs"
func Resolve(base, path string) string {
	path = ExpandHome(path)
	if path == "" || filepath.IsAbs(path) || base == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// ConfigDir returns ~/.config/scopes, or "" without a home directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "scopes")
}
