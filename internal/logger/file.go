package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrison/routegen/internal/models"
)

// FileLogger logs regeneration events to files in the configured log
// directory. It creates timestamped per-process log files and maintains a
// latest.log symlink pointing to the most recent one. It is thread-safe and
// implements the manifest.Logger interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing under logDir with the given
// log level. The directory is created if it doesn't exist.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Timestamped filename: run-YYYYMMDD-HHMMSS.log
	ts := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", ts))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
		mu:       sync.Mutex{},
	}

	fl.writeLine("=== routegen log ===")
	fl.writeLine(fmt.Sprintf("Started at: %s", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunFile returns the path of the current log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

// writeLine appends a single line to the run log.
func (fl *FileLogger) writeLine(line string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return
	}
	fmt.Fprintln(fl.runLog, line)
}

// shouldLog checks if a message at the given level should be logged.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// stamp prefixes a message with the current timestamp.
func stamp(message string) string {
	return fmt.Sprintf("[%s] %s", timestamp(), message)
}

// LogRunStart records the start of a regeneration run.
func (fl *FileLogger) LogRunStart(runID string, mappingCount int) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeLine(stamp(fmt.Sprintf("run %s: regenerating %d mapping(s)", runID, mappingCount)))
}

// LogMappingResult records the outcome of one mapping.
func (fl *FileLogger) LogMappingResult(result models.MappingResult) {
	m := result.Mapping
	if result.Err != nil {
		if !fl.shouldLog("error") {
			return
		}
		fl.writeLine(stamp(fmt.Sprintf("%s -> %s failed: %v", m.Source, m.Destination, result.Err)))
		return
	}
	if !fl.shouldLog("info") {
		return
	}
	fl.writeLine(stamp(fmt.Sprintf("%s -> %s: %d import(s) (%s)",
		m.Source, m.Destination, result.ImportCount, formatDuration(result.Duration))))
}

// LogFormatResult records the outcome of a formatter invocation.
func (fl *FileLogger) LogFormatResult(dest string, err error) {
	if err != nil {
		if !fl.shouldLog("warn") {
			return
		}
		fl.writeLine(stamp(fmt.Sprintf("formatter failed for %s: %v", dest, err)))
		return
	}
	if !fl.shouldLog("debug") {
		return
	}
	fl.writeLine(stamp(fmt.Sprintf("formatted %s", dest)))
}

// LogSummary records the run summary.
func (fl *FileLogger) LogSummary(result models.RunResult) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeLine(stamp(fmt.Sprintf("run %s complete: %d mapping(s), %d import(s), %d failed (%s)",
		result.RunID, len(result.Results), result.TotalImports(), result.Failed(), formatDuration(result.Duration))))
}

// Close flushes and closes the underlying log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}
