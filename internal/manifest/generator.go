// Package manifest implements route manifest generation: scanning source
// directories for .js/.ts files and writing a generated module that imports
// each file and re-exports them as an ordered array.
package manifest

import (
	"context"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/routegen/internal/filelock"
	"github.com/harrison/routegen/internal/formatter"
	"github.com/harrison/routegen/internal/models"
)

// Logger defines the interface for reporting generation progress and results.
type Logger interface {
	LogRunStart(runID string, mappingCount int)
	LogMappingResult(result models.MappingResult)
	LogFormatResult(dest string, err error)
	LogSummary(result models.RunResult)
}

// Generator regenerates manifests for a fixed set of mappings. The mapping
// table and options are captured once at construction and read on every
// trigger; nothing persists between triggers and every trigger performs a
// full rescan of every mapping.
type Generator struct {
	mappings  []models.Mapping
	quote     string
	formatter *formatter.Formatter
	logger    Logger
}

// NewGenerator creates a Generator for the given mappings. quote is the
// quote style for import specifiers (SingleQuote or DoubleQuote).
func NewGenerator(mappings []models.Mapping, quote string) *Generator {
	return &Generator{
		mappings: mappings,
		quote:    quote,
	}
}

// SetFormatter enables post-write formatting of destination files.
// A nil formatter disables it.
func (g *Generator) SetFormatter(f *formatter.Formatter) {
	g.formatter = f
}

// SetLogger sets the progress logger. The logger is optional and may be nil.
func (g *Generator) SetLogger(l Logger) {
	g.logger = l
}

// Mappings returns the configured mapping table.
func (g *Generator) Mappings() []models.Mapping {
	return g.mappings
}

// GenerateAll regenerates every configured mapping once. Mappings run
// concurrently and independently: a failure in one never aborts the others,
// and every mapping contributes exactly one result tagged with its identity.
// Result order matches the configured mapping order.
func (g *Generator) GenerateAll(ctx context.Context) models.RunResult {
	startTime := time.Now()
	runID := uuid.NewString()

	if g.logger != nil {
		g.logger.LogRunStart(runID, len(g.mappings))
	}

	results := make([]models.MappingResult, len(g.mappings))

	var wg sync.WaitGroup
	for i, m := range g.mappings {
		wg.Add(1)
		go func(i int, m models.Mapping) {
			defer wg.Done()
			results[i] = g.generateMapping(ctx, m)
			if g.logger != nil {
				g.logger.LogMappingResult(results[i])
			}
		}(i, m)
	}
	wg.Wait()

	run := models.RunResult{
		RunID:    runID,
		Results:  results,
		Duration: time.Since(startTime),
	}

	if g.logger != nil {
		g.logger.LogSummary(run)
	}

	return run
}

// generateMapping performs the scan-build-write sequence for one mapping.
// The destination write happens only after the full scan and render
// complete; the optional formatter is issued after the write but the
// mapping does not wait for it.
func (g *Generator) generateMapping(ctx context.Context, m models.Mapping) models.MappingResult {
	startTime := time.Now()

	result := models.MappingResult{Mapping: m}
	fail := func(err error) models.MappingResult {
		result.Err = err
		result.Duration = time.Since(startTime)
		return result
	}

	dest := normalizePath(m.Destination)
	destDir := path.Dir(dest)

	files, err := Scan(m.Source)
	if err != nil {
		return fail(err)
	}

	entries, err := BuildEntries(files, destDir)
	if err != nil {
		return fail(err)
	}

	text := Render(entries, g.quote)
	if err := filelock.LockAndWrite(filepath.FromSlash(dest), []byte(text)); err != nil {
		return fail(err)
	}

	result.ImportCount = len(entries)
	result.Duration = time.Since(startTime)

	if g.formatter != nil {
		// Fire and account for: the formatter runs detached but its outcome
		// is drained and logged rather than dropped.
		resultCh := g.formatter.FormatAsync(ctx, filepath.FromSlash(dest))
		go func() {
			r := <-resultCh
			if g.logger != nil {
				g.logger.LogFormatResult(r.Destination, r.Err)
			}
		}()
	}

	return result
}
