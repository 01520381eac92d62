package utils

import (
	"path/filepath"

	"github.com/funvibe/classcore/internal/config"
)

// ResolveLibraryPath resolves a library path relative to a base directory if it starts with a dot.
// Otherwise returns the path as is.
func ResolveLibraryPath(baseDir, path string) string {
	if len(path) > 0 && path[0] == '.' {
		if baseDir != "." && baseDir != "" {
			return filepath.Join(baseDir, path)
		}
	}
	return path
}

// ExtractUnitName derives a unit name from a file path.
// It takes the base filename and removes any recognized unit extension.
func ExtractUnitName(path string) string {
	name := filepath.Base(path)
	return config.TrimUnitExt(name)
}

// IsLibraryIndex reports whether path names a SQLite library index.
func IsLibraryIndex(path string) bool {
	return filepath.Ext(path) == config.LibraryIndexExt
}
