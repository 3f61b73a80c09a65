package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForTrigger(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Triggers():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherTriggersOnWrite(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New([]string{tmpDir}, nil, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(tmpDir, "get.ts"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitForTrigger(t, w, 2*time.Second) {
		t.Fatal("expected a trigger after file creation")
	}
}

func TestWatcherCoalescesBurst(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New([]string{tmpDir}, nil, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	for i := 0; i < 10; i++ {
		path := filepath.Join(tmpDir, "get.ts")
		if err := os.WriteFile(path, []byte("rev"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !waitForTrigger(t, w, 2*time.Second) {
		t.Fatal("expected one trigger for the burst")
	}

	// The burst settled before the first trigger fired, so no second
	// trigger should follow.
	select {
	case <-w.Triggers():
		t.Error("burst produced more than one trigger")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresDestinations(t *testing.T) {
	tmpDir := t.TempDir()
	dest := filepath.Join(tmpDir, "api.ts")

	w, err := New([]string{tmpDir}, []string{dest}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	// Writing the destination itself must not re-trigger regeneration.
	if err := os.WriteFile(dest, []byte("export default [];\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest+".lock", nil, 0644); err != nil {
		t.Fatal(err)
	}

	if waitForTrigger(t, w, 300*time.Millisecond) {
		t.Fatal("destination write must not produce a trigger")
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New([]string{tmpDir}, nil, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	sub := filepath.Join(tmpDir, "hello")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if !waitForTrigger(t, w, 2*time.Second) {
		t.Fatal("expected trigger for directory creation")
	}

	// Files inside the new directory must also trigger.
	if err := os.WriteFile(filepath.Join(sub, "get.ts"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitForTrigger(t, w, 2*time.Second) {
		t.Fatal("expected trigger for file in new directory")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New([]string{tmpDir}, nil, 0)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestWatcherMissingRootIsTolerated(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "not-yet")

	// A missing root is skipped rather than failing startup.
	w, err := New([]string{missing}, nil, 0)
	if err != nil {
		t.Fatalf("missing root should not fail: %v", err)
	}
	defer w.Close()
}
