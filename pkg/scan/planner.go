package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions are the supported image file suffixes, lower-case
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

// IsImage reports whether path has a supported image extension
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Plan computes the ordered list of directories to visit. Non-recursive
// mode yields just folder itself; recursive mode yields every reachable
// directory, sorted lexicographically by full path so the visiting
// order is reproducible across runs and platforms.
func Plan(folder string, recursive bool) ([]string, error) {
	if !recursive {
		info, err := os.Stat(folder)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", folder, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", folder)
		}
		return []string{folder}, nil
	}

	var dirs []string
	err := filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to traverse %s: %w", folder, err)
	}

	sort.Strings(dirs)
	return dirs, nil
}

// ListImages returns the image files directly inside dir (never
// recursing), sorted lexicographically for deterministic dispatch order.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)
	return files, nil
}
