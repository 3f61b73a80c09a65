package manifest

import (
	"fmt"
	"path"
	"path/filepath"
)

// ImportEntry is one import statement in a generated manifest.
type ImportEntry struct {
	// Specifier is the relative module path used in the import statement,
	// always prefixed with "./"
	Specifier string

	// Binding is the synthesized local identifier ("route1", "route2", ...)
	Binding string
}

// BuildEntries converts scanned files into import entries. Files whose
// extension is not recognized are dropped; binding names are assigned in
// filter-survival order with 1-based ordinals, so binding names are unique,
// gap-free, and positionally match the export array.
//
// destDir is the directory containing the destination file; every specifier
// is expressed relative to it.
func BuildEntries(files []ScannedFile, destDir string) ([]ImportEntry, error) {
	destDir = normalizePath(destDir)

	var entries []ImportEntry
	for _, f := range files {
		base, ext, ok := SplitExtension(f.Name)
		if !ok || !recognizedExtensions[ext] {
			continue
		}

		rel, err := filepath.Rel(filepath.FromSlash(destDir), filepath.FromSlash(f.Dir))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s relative to %s: %w", f.Dir, destDir, err)
		}

		entries = append(entries, ImportEntry{
			Specifier: "./" + path.Join(filepath.ToSlash(rel), base),
			Binding:   fmt.Sprintf("route%d", len(entries)+1),
		})
	}

	return entries, nil
}
