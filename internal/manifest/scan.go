package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile is a single file discovered during a scan pass. It exists only
// for the duration of one generation pass.
type ScannedFile struct {
	// Name is the file's base name including extension
	Name string

	// Dir is the file's containing directory, slash-separated and cleaned
	Dir string
}

// recognizedExtensions are the only extensions that produce import entries.
// The match is on the final dot-separated segment of the name, lower-cased.
// Other script extensions (.jsx, .tsx, .mjs) are deliberately not accepted.
var recognizedExtensions = map[string]bool{
	"js": true,
	"ts": true,
}

// Scan recursively lists all regular files under dir. Directory entries are
// filtered out; no name-based exclusions are applied. Entries are returned
// in filepath.WalkDir's lexical order, which makes repeated scans of an
// unchanged tree produce identical listings.
func Scan(dir string) ([]ScannedFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", dir)
	}

	var files []ScannedFile
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, ScannedFile{
			Name: d.Name(),
			Dir:  normalizePath(filepath.Dir(path)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory: %w", err)
	}

	return files, nil
}

// SplitExtension splits a file name on its final dot. ok is false when the
// name contains no dot at all, in which case the file produces no entry.
// Interior dots stay part of the base name ("data.backup.ts" -> "data.backup").
func SplitExtension(name string) (base, ext string, ok bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], strings.ToLower(name[idx+1:]), true
}

// normalizePath converts a path to slash-separated form with any "./"
// segments collapsed.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
