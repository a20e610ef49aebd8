package feed

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FindLatest returns the newest file (by modification time) in dir that
// matches the glob pattern, or "" when the directory is missing or empty.
// Both feed drops are written with timestamped names, so newest-by-mtime
// is the active file.
func FindLatest(dir, pattern string) string {
	if dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); err != nil {
		return ""
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return ""
	}

	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	return matches[0]
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
