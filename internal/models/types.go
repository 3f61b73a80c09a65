// Package models defines the shared data types used across routegen packages.
package models

import "time"

// Mapping is one configured (source directory, destination file) pair.
// The source directory is scanned recursively; the generated manifest is
// written to the destination file.
type Mapping struct {
	// Source is the directory scanned for route files
	Source string

	// Destination is the file the generated manifest is written to
	Destination string
}

// MappingResult captures the outcome of regenerating a single mapping.
// Every mapping produces exactly one result per trigger, successful or not,
// so failures are always attributable to a specific mapping.
type MappingResult struct {
	// Mapping identifies which configured pair this result belongs to
	Mapping Mapping

	// ImportCount is the number of import entries written to the manifest
	ImportCount int

	// Duration is how long the scan-build-write sequence took
	Duration time.Duration

	// Err is non-nil if scanning or writing failed for this mapping
	Err error
}

// OK reports whether the mapping regenerated without error.
func (r MappingResult) OK() bool {
	return r.Err == nil
}

// RunResult aggregates the results of one regeneration trigger across all
// configured mappings.
type RunResult struct {
	// RunID uniquely identifies this trigger for log and history correlation
	RunID string

	// Results holds one entry per configured mapping
	Results []MappingResult

	// Duration is the wall-clock time for the whole trigger
	Duration time.Duration
}

// Failed returns the number of mappings that ended in error.
func (r RunResult) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// TotalImports returns the sum of import entries across all mappings.
func (r RunResult) TotalImports() int {
	n := 0
	for _, res := range r.Results {
		n += res.ImportCount
	}
	return n
}
