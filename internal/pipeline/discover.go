package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrInvalidInputPath means the input path does not exist or cannot be
	// read. It is the only error that aborts a run.
	ErrInvalidInputPath = errors.New("invalid input path")

	// ErrUnsupportedExtension means a single input file does not have a
	// supported video extension. It is reported, not fatal.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// Supported video extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
	".3gp":  true,
}

// IsVideo reports whether path has a supported extension (case-insensitive).
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Resolve turns the user's input path into the list of files to process.
// A directory yields Discover's result. A regular file with a supported
// extension yields itself; any other file yields ErrUnsupportedExtension.
// A missing or unreadable path yields ErrInvalidInputPath.
func Resolve(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInputPath, err)
	}

	switch {
	case fi.IsDir():
		files, err := Discover(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInputPath, err)
		}
		return files, nil
	case fi.Mode().IsRegular():
		if !IsVideo(path) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, filepath.Base(path))
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a regular file or directory", ErrInvalidInputPath, path)
	}
}

// Discover lists the regular files directly inside dir that have a
// supported extension, sorted lexicographically for deterministic order.
// Subdirectories are not descended into.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !IsVideo(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !e.Type().IsRegular() {
			// Follow symlinks to regular files; skip dirs named like videos.
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
