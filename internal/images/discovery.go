package images

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the lowercased file extensions picked up from an input folder.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

// IsSupported reports whether the path has a supported image extension.
// The comparison is case-insensitive.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Enumerate lists the regular files directly inside dir whose extension is supported.
//
// Entries are returned in the order the directory yields them. No sorting is
// applied, so the order can differ between filesystems. An empty result is not
// an error.
func Enumerate(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &NotFoundError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Dir: dir, Err: errors.New("not a directory")}
	}

	f, err := os.Open(dir) //nolint:gosec // G304: user-selected input folder
	if err != nil {
		return nil, &NotFoundError{Dir: dir, Err: err}
	}
	defer func() { _ = f.Close() }()

	// (*os.File).ReadDir keeps directory order, unlike os.ReadDir which sorts by name.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, &NotFoundError{Dir: dir, Err: err}
	}

	var files []string
	for _, entry := range entries {
		if !IsSupported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if isRegularFile(path, entry) {
			files = append(files, path)
		}
	}
	return files, nil
}

// isRegularFile follows symlinks so that a link to an image counts as a file.
func isRegularFile(path string, entry fs.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
