package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.reelai joined with elem.
func AppDir(elem ...string) string {
	return filepath.Join(append([]string{UserHomeDir(), ".reelai"}, elem...)...)
}

// ExpandHome resolves a leading ~/ against the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return path
}
