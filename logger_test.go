package componentkit

import (
	"sync"
)

type logEntry struct {
	Level   string
	Message string
	Args    []any
}

// testLogger records every entry so that tests can assert on them.
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *testLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{Level: level, Message: msg, Args: args})
}

func (l *testLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *testLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }

func (l *testLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
