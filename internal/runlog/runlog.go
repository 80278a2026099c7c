// Package runlog appends one plain-text summary line per conversion run.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry summarizes one run.
type Entry struct {
	Time             time.Time
	RunID            string
	Strategy         string
	Converted        int
	Failed           int
	ValidationErrors int
	Dir              string
	Err              string // fatal precondition, if any
}

// String formats e as a single line without a trailing newline.
func (e Entry) String() string {
	strategy := e.Strategy
	if strategy == "" {
		strategy = "none"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s run=%s strategy=%s converted=%d failed=%d validation_errors=%d dir=%s",
		e.Time.Format(time.RFC3339), e.RunID, strategy,
		e.Converted, e.Failed, e.ValidationErrors, quoteIfNeeded(e.Dir))
	if e.Err != "" {
		fmt.Fprintf(&sb, " error=%q", e.Err)
	}
	return sb.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Writer appends entries to a file. Safe for concurrent use within one
// process; lines from concurrent processes may interleave but never split.
type Writer struct {
	mu   sync.Mutex
	path string
}

// New returns a Writer for path. The file and its parent directory are
// created on first write.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes e as one line.
func (w *Writer) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o750); err != nil {
		return fmt.Errorf("creating run log directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) // #nosec G304 -- configured log path
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}

	if _, err := f.WriteString(e.String() + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing run log: %w", err)
	}
	return f.Close()
}
