// Package timeline maintains the append-only JSONL activity log that records
// every step a workflow run takes.
package timeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Entry statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
	StatusInfo    = "INFO"
)

// Entry is one line of the activity log.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
}

// Logger appends entries to a JSONL file. Writes are serialized by a mutex so
// a Logger may be shared across goroutines.
type Logger struct {
	mu   sync.Mutex
	path string
}

// NewLogger creates a logger appending to the file at path. The file is
// created on first write.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Log appends one entry. Write failures are reported to the application log
// but never propagated: a broken timeline must not abort the workflow.
func (l *Logger) Log(eventType, status, message string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	entry := Entry{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		Message:   message,
		Metadata:  metadata,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		slog.Error("Failed to encode timeline entry", "error", err, "event_type", eventType)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("Failed to open timeline log", "error", err, "path", l.path)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Error("Failed to append timeline entry", "error", err, "path", l.path)
	}
}
