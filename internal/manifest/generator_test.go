package manifest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/routegen/internal/models"
)

// captureLogger records logger calls for assertions.
type captureLogger struct {
	mu        sync.Mutex
	runStarts int
	results   []models.MappingResult
	summaries []models.RunResult
}

func (c *captureLogger) LogRunStart(runID string, mappingCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runStarts++
}

func (c *captureLogger) LogMappingResult(result models.MappingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func (c *captureLogger) LogFormatResult(dest string, err error) {}

func (c *captureLogger) LogSummary(result models.RunResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = append(c.summaries, result)
}

func TestGenerateAllEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "routes")
	writeTree(t, routes, []string{"a/index.ts", "b/index.ts"})

	dest := filepath.Join(routes, "api.ts")
	gen := NewGenerator([]models.Mapping{{Source: routes, Destination: dest}}, SingleQuote)

	run := gen.GenerateAll(context.Background())
	require.Equal(t, 0, run.Failed())
	require.Len(t, run.Results, 1)
	assert.Equal(t, 2, run.Results[0].ImportCount)
	assert.NotEmpty(t, run.RunID)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)

	want := "import route1 from './a/index';\n" +
		"import route2 from './b/index';\n" +
		"\n" +
		"export default [route1, route2];\n"
	assert.Equal(t, want, string(got))
}

func TestGenerateAllNestedRoutes(t *testing.T) {
	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "routes")
	writeTree(t, routes, []string{"hi/get.ts", "hello/get.ts"})

	dest := filepath.Join(routes, "api.ts")
	gen := NewGenerator([]models.Mapping{{Source: routes, Destination: dest}}, SingleQuote)

	run := gen.GenerateAll(context.Background())
	require.Equal(t, 0, run.Failed())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)

	// Discovery order is lexical, so hello precedes hi.
	assert.Contains(t, string(got), "from './hello/get';")
	assert.Contains(t, string(got), "from './hi/get';")
	assert.Contains(t, string(got), "export default [route1, route2];")
}

func TestGenerateAllIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "routes")
	writeTree(t, routes, []string{"a/index.ts", "b/index.ts", "c.js"})

	dest := filepath.Join(tmpDir, "api.ts")
	gen := NewGenerator([]models.Mapping{{Source: routes, Destination: dest}}, SingleQuote)

	gen.GenerateAll(context.Background())
	first, err := os.ReadFile(dest)
	require.NoError(t, err)

	gen.GenerateAll(context.Background())
	second, err := os.ReadFile(dest)
	require.NoError(t, err)

	assert.Equal(t, first, second, "regenerating with no change must be byte-identical")
}

func TestGenerateAllSkipsUnrecognizedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "routes")
	writeTree(t, routes, []string{"get.ts", "README", "style.css", "data.backup.ts"})

	dest := filepath.Join(tmpDir, "api.ts")
	gen := NewGenerator([]models.Mapping{{Source: routes, Destination: dest}}, SingleQuote)

	run := gen.GenerateAll(context.Background())
	require.Equal(t, 0, run.Failed())
	assert.Equal(t, 2, run.Results[0].ImportCount)

	got, _ := os.ReadFile(dest)
	assert.Contains(t, string(got), "from './routes/data.backup';")
	assert.NotContains(t, string(got), "README")
	assert.NotContains(t, string(got), "style")
}

func TestGenerateAllEmptySource(t *testing.T) {
	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "routes")
	require.NoError(t, os.MkdirAll(routes, 0755))

	dest := filepath.Join(tmpDir, "api.ts")
	gen := NewGenerator([]models.Mapping{{Source: routes, Destination: dest}}, SingleQuote)

	run := gen.GenerateAll(context.Background())
	require.Equal(t, 0, run.Failed())
	assert.Equal(t, 0, run.Results[0].ImportCount)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "\nexport default [];\n", string(got))
}

func TestGenerateAllMappingFailuresAreIsolated(t *testing.T) {
	tmpDir := t.TempDir()
	goodRoutes := filepath.Join(tmpDir, "good")
	writeTree(t, goodRoutes, []string{"a.ts"})

	goodDest := filepath.Join(tmpDir, "good-api.ts")
	badSource := filepath.Join(tmpDir, "missing-source")
	badDest := filepath.Join(tmpDir, "missing-dir", "api.ts")

	log := &captureLogger{}
	gen := NewGenerator([]models.Mapping{
		{Source: badSource, Destination: filepath.Join(tmpDir, "bad1.ts")},
		{Source: goodRoutes, Destination: goodDest},
		{Source: goodRoutes, Destination: badDest},
	}, SingleQuote)
	gen.SetLogger(log)

	run := gen.GenerateAll(context.Background())

	// One result per mapping, failures tagged with their mapping.
	require.Len(t, run.Results, 3)
	assert.Equal(t, 2, run.Failed())

	assert.Error(t, run.Results[0].Err, "missing source directory must fail the mapping")
	assert.Equal(t, badSource, run.Results[0].Mapping.Source)

	assert.NoError(t, run.Results[1].Err, "healthy mapping must proceed despite sibling failures")
	if _, err := os.Stat(goodDest); err != nil {
		t.Errorf("healthy mapping's destination missing: %v", err)
	}

	assert.Error(t, run.Results[2].Err, "missing destination directory must fail the write")

	assert.Equal(t, 1, log.runStarts)
	assert.Len(t, log.results, 3)
	assert.Len(t, log.summaries, 1)
}

func TestGenerateAllDoubleQuotes(t *testing.T) {
	tmpDir := t.TempDir()
	routes := filepath.Join(tmpDir, "routes")
	writeTree(t, routes, []string{"a.ts"})

	dest := filepath.Join(tmpDir, "api.ts")
	gen := NewGenerator([]models.Mapping{{Source: routes, Destination: dest}}, DoubleQuote)

	run := gen.GenerateAll(context.Background())
	require.Equal(t, 0, run.Failed())

	got, _ := os.ReadFile(dest)
	assert.Contains(t, string(got), `import route1 from "./routes/a";`)
}
