// Package formatter runs an external code formatter against generated
// manifest files. Formatting is cosmetic: generation never waits on it for
// correctness, and a formatter failure is reported through the result
// channel instead of crashing the process.
package formatter

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommand is the formatter invocation used when no custom command is
// configured. The destination path is appended as the final argument.
const DefaultCommand = "prettier --write"

// Formatter executes a formatting command against destination files.
type Formatter struct {
	// Command is the shell command to run, without the destination path.
	// Empty means DefaultCommand.
	Command string
}

// Result captures the outcome of one formatter invocation.
type Result struct {
	// Destination is the file the formatter was pointed at
	Destination string

	// Output is the combined stdout/stderr of the command
	Output string

	// ExitCode is the command's exit status when it ran to completion
	ExitCode int

	// Duration is how long the invocation took
	Duration time.Duration

	// Err is non-nil if the command could not be launched or exited non-zero
	Err error
}

// New creates a Formatter. command may be empty to use DefaultCommand.
func New(command string) *Formatter {
	return &Formatter{Command: command}
}

// commandLine builds the full shell command for a destination file: the
// configured (or default) command with the destination path appended.
func (f *Formatter) commandLine(dest string) string {
	command := strings.TrimSpace(f.Command)
	if command == "" {
		command = DefaultCommand
	}
	return command + " " + dest
}

// Format runs the formatter synchronously against dest.
func (f *Formatter) Format(ctx context.Context, dest string) Result {
	startTime := time.Now()
	line := f.commandLine(dest)

	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	output, err := cmd.CombinedOutput()

	result := Result{
		Destination: dest,
		Output:      string(output),
		Duration:    time.Since(startTime),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			result.Err = fmt.Errorf("formatter %q exited with status %d: %s",
				line, result.ExitCode, strings.TrimSpace(result.Output))
		} else {
			result.Err = fmt.Errorf("failed to run formatter %q: %w", line, err)
		}
	}

	return result
}

// FormatAsync runs the formatter in the background and delivers the outcome
// on the returned channel. The channel is buffered, so the result is never
// lost if the caller reads it late.
func (f *Formatter) FormatAsync(ctx context.Context, dest string) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		results <- f.Format(ctx, dest)
		close(results)
	}()
	return results
}
