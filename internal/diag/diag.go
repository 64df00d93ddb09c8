package diag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a diagnostic line.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger appends timestamped diagnostic lines to a file. Warnings and errors
// are optionally echoed to a second writer (stderr for the CLI). A nil
// *Logger discards everything.
type Logger struct {
	path string
	echo io.Writer
	mu   sync.Mutex
}

// DefaultPath returns ~/.reporter/logs/reporter.log.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".reporter", "logs", "reporter.log"), nil
}

// New creates a logger writing to path. echo may be nil.
func New(path string, echo io.Writer) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("diag: ensure log dir: %w", err)
	}
	return &Logger{path: path, echo: echo}, nil
}

// Path returns the file backing this logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Logger) append(level Level, message string) {
	if l == nil {
		return
	}
	message = strings.TrimSpace(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.echo != nil && level != LevelInfo {
		prefix := "Warning"
		if level == LevelError {
			prefix = "Error"
		}
		fmt.Fprintf(l.echo, "%s: %s\n", prefix, message)
	}

	line := fmt.Sprintf("%s %-5s %s\n", time.Now().Format(time.RFC3339), string(level), message)
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line)
}

// Info records an informational line.
func (l *Logger) Info(format string, args ...any) {
	l.append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn records a recoverable problem.
func (l *Logger) Warn(format string, args ...any) {
	l.append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error records a failed operation.
func (l *Logger) Error(format string, args ...any) {
	l.append(LevelError, fmt.Sprintf(format, args...))
}

// Tail returns up to n of the most recent lines.
func (l *Logger) Tail(n int) []string {
	if l == nil || n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
