// Package paths resolves the filesystem locations vitality reads and writes.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ with the user's home directory. Other
// paths are returned cleaned but otherwise unchanged; "" stays "".
func ExpandHome(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ConfigDir returns ~/.config/vitality.
func ConfigDir() (string, error) {
	return ExpandHome(filepath.Join("~", ".config", "vitality"))
}

// DataDir returns ~/.vitality, the default home of the database.
func DataDir() (string, error) {
	return ExpandHome(filepath.Join("~", ".vitality"))
}
