package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/odvcencio/textgrid/pkg/errors"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelOrder = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if _, ok := levelOrder[l]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidInput, "unknown log level %q", s)
	}
	return l, nil
}

// Category represents the subsystem generating the log
type Category string

const (
	CategoryRender Category = "render"
	CategoryConfig Category = "config"
	CategoryExport Category = "export"
	CategoryServer Category = "server"
	CategoryWatch  Category = "watch"
)

// Event represents a structured log event
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// recentCapacity bounds the in-memory event history.
const recentCapacity = 256

// Logger writes structured events as JSON lines. Errors are also copied to
// a separate sink when one is configured.
type Logger struct {
	runID    string
	out      io.Writer
	errOut   io.Writer
	closers  []io.Closer
	mu       sync.Mutex
	minLevel Level
	recent   []Event
	next     int
}

// New creates a logger writing to out. A nil out discards events but still
// keeps the recent history.
func New(out io.Writer, runID string) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{
		runID:    runID,
		out:      out,
		minLevel: LevelInfo,
	}
}

// NewFileLogger creates a logger appending to <dir>/<runID>.jsonl, with
// errors also appended to <dir>/errors.jsonl.
func NewFileLogger(dir, runID string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runFile, err := os.OpenFile(
		filepath.Join(dir, runID+".jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	errorFile, err := os.OpenFile(
		filepath.Join(dir, "errors.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		runFile.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	l := New(runFile, runID)
	l.errOut = errorFile
	l.closers = []io.Closer{runFile, errorFile}
	return l, nil
}

// RunID returns the id stamped on events.
func (l *Logger) RunID() string {
	return l.runID
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Log writes an event to the configured sinks
func (l *Logger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if levelOrder[event.Level] < levelOrder[l.minLevel] {
		return nil
	}
	l.remember(event)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.out.Write(data); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if event.Level == LevelError && l.errOut != nil {
		if _, err := l.errOut.Write(data); err != nil {
			return fmt.Errorf("failed to write to error log: %w", err)
		}
	}
	return nil
}

func (l *Logger) remember(event Event) {
	if len(l.recent) < recentCapacity {
		l.recent = append(l.recent, event)
		return
	}
	l.recent[l.next] = event
	l.next = (l.next + 1) % recentCapacity
}

// Recent returns up to count of the most recently logged events, oldest
// first.
func (l *Logger) Recent(count int) []Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ordered := make([]Event, 0, len(l.recent))
	ordered = append(ordered, l.recent[l.next:]...)
	ordered = append(ordered, l.recent[:l.next]...)
	if count >= 0 && len(ordered) > count {
		ordered = ordered[len(ordered)-count:]
	}
	return ordered
}

// Debug logs a debug event
func (l *Logger) Debug(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelDebug,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Info logs an info event
func (l *Logger) Info(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelInfo,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Warn logs a warning event
func (l *Logger) Warn(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{
		Level:     LevelWarn,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

// Error logs an error event. A structured error's code and context are
// added to details.
func (l *Logger) Error(category Category, eventType string, err error, details map[string]any) error {
	merged := make(map[string]any, len(details)+2)
	for k, v := range details {
		merged[k] = v
	}
	message := ""
	if err != nil {
		message = err.Error()
		if e, ok := errors.As(err); ok {
			merged["code"] = string(e.Code)
			for k, v := range e.Context {
				merged[k] = v
			}
		}
	}
	return l.Log(Event{
		Level:     LevelError,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   merged,
	})
}

// Close closes any files opened by the logger
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil

	if len(errs) > 0 {
		return fmt.Errorf("errors closing log files: %v", errs)
	}
	return nil
}

// ReadEvents decodes every event from a JSONL log, returning the last
// count of them.
func ReadEvents(r io.Reader, count int) ([]Event, error) {
	var events []Event
	decoder := json.NewDecoder(r)
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			if err == io.EOF {
				break
			}
			return events, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, event)
	}
	if count >= 0 && len(events) > count {
		events = events[len(events)-count:]
	}
	return events, nil
}
