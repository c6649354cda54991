// Package eventlogger writes container events to a console-style output.
//
// The logger is a componentkit.Observer: subscribe it to a container (or to
// every container a kernel boots with componentkit.WithObservers) to follow
// definition registration, extension loading, deprecations and compilation.
package eventlogger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/componentkit"
)

// ObserverID is the id the event logger registers under.
const ObserverID = "componentkit.eventlogger"

// Output formats.
const (
	FormatText       = "text"
	FormatJSON       = "json"
	FormatStructured = "structured"
)

// Log levels, lowest first.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown event log format")

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Config controls what is written and how.
type Config struct {
	Format     string `yaml:"format" json:"format" default:"text"`
	Level      string `yaml:"level" json:"level" default:"INFO"`
	Timestamps bool   `yaml:"timestamps" json:"timestamps"`
}

// LogEntry is one formatted event.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Data      any            `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EventLogger writes every event it observes to w.
type EventLogger struct {
	mu     sync.Mutex
	config Config
	writer io.Writer
}

// New creates an event logger. Zero config values get their defaults.
func New(w io.Writer, config Config) (*EventLogger, error) {
	if err := componentkit.ProcessConfigDefaults(&config); err != nil {
		return nil, err
	}
	switch config.Format {
	case FormatText, FormatJSON, FormatStructured:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, config.Format)
	}
	config.Level = strings.ToUpper(config.Level)
	return &EventLogger{config: config, writer: w}, nil
}

// ObserverID implements componentkit.Observer.
func (l *EventLogger) ObserverID() string {
	return ObserverID
}

// OnEvent implements componentkit.Observer.
func (l *EventLogger) OnEvent(_ context.Context, event cloudevents.Event) error {
	entry := newLogEntry(event)
	if !shouldLogLevel(entry.Level, l.config.Level) {
		return nil
	}

	var (
		output string
		err    error
	)
	switch l.config.Format {
	case FormatJSON:
		output, err = formatJSON(entry)
	case FormatStructured:
		output = l.formatStructured(entry)
	default:
		output = l.formatText(entry)
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintln(l.writer, output); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}
	return nil
}

// levelFor maps container event types to a log level.
func levelFor(eventType string) string {
	switch eventType {
	case componentkit.EventTypeConfigDeprecated:
		return LevelWarn
	case componentkit.EventTypeDefinitionRegistered, componentkit.EventTypeDefinitionRemoved:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func newLogEntry(event cloudevents.Event) *LogEntry {
	entry := &LogEntry{
		Timestamp: event.Time(),
		Level:     levelFor(event.Type()),
		Type:      event.Type(),
		Source:    event.Source(),
	}
	if len(event.Data()) > 0 {
		var data any
		if err := event.DataAs(&data); err == nil {
			entry.Data = data
		} else {
			entry.Data = string(event.Data())
		}
	}
	if ext := event.Extensions(); len(ext) > 0 {
		entry.Metadata = make(map[string]any, len(ext))
		for k, v := range ext {
			entry.Metadata[k] = v
		}
	}
	return entry
}

func formatJSON(entry *LogEntry) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal log entry to JSON: %w", err)
	}
	return string(data), nil
}

func (l *EventLogger) timestamp(entry *LogEntry) string {
	if !l.config.Timestamps || entry.Timestamp.IsZero() {
		return ""
	}
	return entry.Timestamp.Format("2006-01-02 15:04:05")
}

func (l *EventLogger) formatText(entry *LogEntry) string {
	prefix := ""
	if ts := l.timestamp(entry); ts != "" {
		prefix = ts + " "
	}
	dataStr := ""
	if entry.Data != nil {
		dataStr = fmt.Sprintf(" %v", entry.Data)
	}
	return fmt.Sprintf("%s%s [%s] %s%s", prefix, entry.Level, entry.Type, entry.Source, dataStr)
}

func (l *EventLogger) formatStructured(entry *LogEntry) string {
	var b strings.Builder
	if ts := l.timestamp(entry); ts != "" {
		fmt.Fprintf(&b, "[%s] %s %s\n", ts, entry.Level, entry.Type)
	} else {
		fmt.Fprintf(&b, "%s %s\n", entry.Level, entry.Type)
	}
	fmt.Fprintf(&b, "  Source: %s\n", entry.Source)
	if entry.Data != nil {
		fmt.Fprintf(&b, "  Data: %v\n", entry.Data)
	}
	if len(entry.Metadata) > 0 {
		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("  Metadata:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s: %v\n", k, entry.Metadata[k])
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func shouldLogLevel(eventLevel, minLevel string) bool {
	eventNum, ok1 := levelOrder[eventLevel]
	minNum, ok2 := levelOrder[minLevel]
	if !ok1 || !ok2 {
		return true
	}
	return eventNum >= minNum
}
