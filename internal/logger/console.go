// Package logger provides logging implementations for routegen runs.
//
// Loggers report regeneration progress at the run, mapping, and summary
// levels. Implementations are thread-safe and support console and file
// destinations with level filtering.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/routegen/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs regeneration progress to a writer with timestamps and
// thread safety. All output is prefixed with [HH:MM:SS] timestamps. It
// supports log level filtering, and color output is automatically enabled
// for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided
// io.Writer. If writer is nil, messages are silently discarded. logLevel
// determines the minimum level for messages to be output; empty or invalid
// levels default to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		mutex:       sync.Mutex{},
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	// color's detection also honors NO_COLOR
	return !color.NoColor
}

// normalizeLogLevel converts a log level string to lowercase and validates
// it. Returns "info" for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info"
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// timestamp returns the current wall-clock time formatted as HH:MM:SS.
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration rounds a duration to a display-friendly precision.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel logs a message at the specified level if filtering allows it.
// Format: "[HH:MM:SS] [LEVEL] <message>"
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorizeLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// colorizeLevel wraps a level tag in its ANSI color.
func colorizeLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogRunStart logs the start of a regeneration run at INFO level.
// Format: "[HH:MM:SS] Regenerating <n> mapping(s) [run <id>]"
func (cl *ConsoleLogger) LogRunStart(runID string, mappingCount int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var message string
	if cl.colorOutput {
		id := color.New(color.FgHiBlack).Sprint(shortRunID(runID))
		message = fmt.Sprintf("[%s] Regenerating %d mapping(s) [run %s]\n", ts, mappingCount, id)
	} else {
		message = fmt.Sprintf("[%s] Regenerating %d mapping(s) [run %s]\n", ts, mappingCount, shortRunID(runID))
	}

	cl.writer.Write([]byte(message))
}

// LogMappingResult logs the outcome of one mapping. Successful mappings log
// at INFO level, failures at ERROR level with the mapping identity.
func (cl *ConsoleLogger) LogMappingResult(result models.MappingResult) {
	if cl.writer == nil {
		return
	}

	m := result.Mapping

	if result.Err != nil {
		if !cl.shouldLog("error") {
			return
		}
		cl.mutex.Lock()
		defer cl.mutex.Unlock()

		ts := timestamp()
		var message string
		if cl.colorOutput {
			failed := color.New(color.FgRed).Sprint("failed")
			message = fmt.Sprintf("[%s] %s -> %s %s: %v\n", ts, m.Source, m.Destination, failed, result.Err)
		} else {
			message = fmt.Sprintf("[%s] %s -> %s failed: %v\n", ts, m.Source, m.Destination, result.Err)
		}
		cl.writer.Write([]byte(message))
		return
	}

	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(result.Duration)
	var message string
	if cl.colorOutput {
		dest := color.New(color.Bold).Sprint(m.Destination)
		message = fmt.Sprintf("[%s] %s -> %s: %d import(s) (%s)\n", ts, m.Source, dest, result.ImportCount, durationStr)
	} else {
		message = fmt.Sprintf("[%s] %s -> %s: %d import(s) (%s)\n", ts, m.Source, m.Destination, result.ImportCount, durationStr)
	}

	cl.writer.Write([]byte(message))
}

// LogFormatResult logs the outcome of a formatter invocation. Failures log
// at WARN level since formatting is cosmetic; successes log at DEBUG level.
func (cl *ConsoleLogger) LogFormatResult(dest string, err error) {
	if err != nil {
		cl.LogWarn(fmt.Sprintf("formatter failed for %s: %v", dest, err))
		return
	}
	cl.LogDebug(fmt.Sprintf("formatted %s", dest))
}

// LogSummary logs the run summary at INFO level.
func (cl *ConsoleLogger) LogSummary(result models.RunResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	failed := result.Failed()

	var message string
	if cl.colorOutput {
		var status string
		if failed == 0 {
			status = color.New(color.FgGreen).Sprint("ok")
		} else {
			status = color.New(color.FgRed).Sprintf("%d failed", failed)
		}
		message = fmt.Sprintf("[%s] Run %s: %d mapping(s), %d import(s), %s (%s)\n",
			ts, status, len(result.Results), result.TotalImports(), shortRunID(result.RunID), formatDuration(result.Duration))
	} else {
		status := "ok"
		if failed > 0 {
			status = fmt.Sprintf("%d failed", failed)
		}
		message = fmt.Sprintf("[%s] Run %s: %d mapping(s), %d import(s), %s (%s)\n",
			ts, status, len(result.Results), result.TotalImports(), shortRunID(result.RunID), formatDuration(result.Duration))
	}

	cl.writer.Write([]byte(message))
}

// shortRunID truncates a run UUID to its first segment for display.
func shortRunID(runID string) string {
	if idx := strings.Index(runID, "-"); idx > 0 {
		return runID[:idx]
	}
	return runID
}
