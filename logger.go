package componentkit

// Logger defines the interface for container logging.
// The container uses structured logging with key-value pairs so that
// hosting applications can plug in slog, zap, logrus or similar:
//
//	logger.Info("Extension loaded", "extension", "template_component", "definitions", 4)
//
// Compile steps (extension loading, compiler passes, definition
// registration, deprecations) are all reported through this interface.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// Deprecation notices are reported at this level.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, args ...any)
}

// nopLogger discards everything. It is the container default so that
// library users do not have to provide a logger.
type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
