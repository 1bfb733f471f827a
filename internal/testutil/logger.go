package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// LogEntry is one call recorded by RecordingLogger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// String renders the entry the way a text sink would see its values.
func (e LogEntry) String() string {
	parts := []string{e.Level, e.Msg}
	for _, a := range e.Args {
		parts = append(parts, fmt.Sprint(a))
	}

	return strings.Join(parts, " ")
}

// RecordingLogger implements logger.LoggerInterface and keeps every entry.
type RecordingLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Trace(msg string, args ...any) { l.record("TRACE", msg, args) }
func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }
func (l *RecordingLogger) Close()                        {}
func (l *RecordingLogger) GetLogPath() string            { return "" }

// Output joins every entry, one per line.
func (l *RecordingLogger) Output() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		lines = append(lines, e.String())
	}

	return strings.Join(lines, "\n")
}

// Count returns how many entries have the given level and message.
func (l *RecordingLogger) Count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.Entries {
		if e.Level == level && e.Msg == msg {
			n++
		}
	}

	return n
}
