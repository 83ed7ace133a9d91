package faults

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// BadFileLog appends failure records to a tab-separated text file: one line
// per failure with an error-kind tag, the offending path, and free-text
// detail. Append-only, single writer within a process.
type BadFileLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenBadFileLog opens (creating if needed) the bad-file log for appending.
func OpenBadFileLog(path string) (*BadFileLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure bad-file log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open bad-file log: %w", err)
	}
	return &BadFileLog{file: f}, nil
}

// Record appends one failure line. Tabs and newlines inside fields are
// flattened so the file stays one-record-per-line.
func (l *BadFileLog) Record(kind, path, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := strings.Join([]string{flatten(kind), flatten(path), flatten(detail)}, "\t")
	if _, err := fmt.Fprintln(l.file, line); err != nil {
		return fmt.Errorf("append bad-file record: %w", err)
	}
	return nil
}

// RecordError tags and appends a failure derived from err.
func (l *BadFileLog) RecordError(path string, err error) error {
	if err == nil {
		return nil
	}
	return l.Record(Kind(err), path, err.Error())
}

func (l *BadFileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
