package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates the given files (with parent directories) under root.
func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("export default {};\n"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func TestScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"a/index.ts",
		"b/index.ts",
		"top.js",
		"deep/nested/handler.ts",
		"README",
	})

	files, err := Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// WalkDir yields lexical order; directories themselves are excluded.
	wantNames := []string{"README", "index.ts", "index.ts", "handler.ts", "top.js"}
	if len(files) != len(wantNames) {
		t.Fatalf("Expected %d files, got %d: %v", len(wantNames), len(files), files)
	}
	for i, want := range wantNames {
		if files[i].Name != want {
			t.Errorf("files[%d].Name = %q, want %q", i, files[i].Name, want)
		}
	}

	// Containing directories are normalized slash paths.
	if files[1].Dir != filepath.ToSlash(filepath.Join(tmpDir, "a")) {
		t.Errorf("files[1].Dir = %q, want %q", files[1].Dir, filepath.ToSlash(filepath.Join(tmpDir, "a")))
	}
}

func TestScanDeterministic(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"hi/get.ts", "hello/get.ts", "x.js"})

	first, err := Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	second, err := Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Repeated scans differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Repeated scans differ at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestScanMissingDirectory(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("Expected error for missing source directory")
	}
}

func TestScanFileAsSource(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "file.ts")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Scan(path); err == nil {
		t.Fatal("Expected error when source path is not a directory")
	}
}

func TestSplitExtension(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantExt  string
		wantOK   bool
	}{
		{"get.ts", "get", "ts", true},
		{"index.js", "index", "js", true},
		{"data.backup.ts", "data.backup", "ts", true},
		{"UPPER.TS", "UPPER", "ts", true},
		{"README", "", "", false},
		{"Makefile", "", "", false},
		{".env", "", "env", true},
		{"trailing.", "trailing", "", true},
	}

	for _, tt := range tests {
		base, ext, ok := SplitExtension(tt.name)
		if base != tt.wantBase || ext != tt.wantExt || ok != tt.wantOK {
			t.Errorf("SplitExtension(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.name, base, ext, ok, tt.wantBase, tt.wantExt, tt.wantOK)
		}
	}
}
