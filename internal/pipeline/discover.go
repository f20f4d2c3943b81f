package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported media file extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".ts":   true,
	".m2ts": true,
	".mpg":  true,
	".mpeg": true,
	".vob":  true,
}

// Discover lists inputDir non-recursively and returns the paths of media
// files sorted lexicographically for deterministic processing order.
// Subdirectories and dotfiles are skipped; rips land flat in the input
// directory, so there is nothing to walk.
func Discover(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("list input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if mediaExtensions[strings.ToLower(filepath.Ext(name))] {
			files = append(files, filepath.Join(inputDir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}
