package formatter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandLineDefault(t *testing.T) {
	f := New("")
	assert.Equal(t, "prettier --write routes/api.ts", f.commandLine("routes/api.ts"))
}

func TestCommandLineCustom(t *testing.T) {
	f := New("deno fmt")
	assert.Equal(t, "deno fmt routes/api.ts", f.commandLine("routes/api.ts"))
}

func TestFormatRunsCommand(t *testing.T) {
	tmpDir := t.TempDir()
	marker := filepath.Join(tmpDir, "marker")

	// Substitute a command that records its argument instead of a real
	// formatter.
	f := New("touch")
	result := f.Format(context.Background(), marker)

	require.NoError(t, result.Err)
	assert.Equal(t, marker, result.Destination)
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("command did not receive the destination path: %v", err)
	}
}

func TestFormatNonZeroExit(t *testing.T) {
	f := New("ls")
	result := f.Format(context.Background(), filepath.Join(t.TempDir(), "does-not-exist.ts"))

	require.Error(t, result.Err)
	assert.NotEqual(t, 0, result.ExitCode)
	assert.Contains(t, result.Err.Error(), "exited with status")
}

func TestFormatAsyncDeliversResult(t *testing.T) {
	f := New("true &&")

	select {
	case result := <-f.FormatAsync(context.Background(), "ignored"):
		// "true && ignored" fails because "ignored" is not a command; the
		// point is the failure arrives on the channel, not as a crash.
		assert.Error(t, result.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("formatter result never delivered")
	}
}

func TestFormatAsyncSuccess(t *testing.T) {
	tmpDir := t.TempDir()
	dest := filepath.Join(tmpDir, "api.ts")
	require.NoError(t, os.WriteFile(dest, []byte("export default [];\n"), 0644))

	f := New("cat")

	select {
	case result := <-f.FormatAsync(context.Background(), dest):
		require.NoError(t, result.Err)
		assert.True(t, strings.Contains(result.Output, "export default"))
	case <-time.After(5 * time.Second):
		t.Fatal("formatter result never delivered")
	}
}
