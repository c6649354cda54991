// Package feeders reads raw configuration from files and the environment.
//
// File feeders (YAML, JSON, TOML, HCL) decode a whole file with Feed or the
// section owned by one extension alias with FeedKey. The result of FeedKey
// into a *map[string]any keeps explicit null values, so that a key set to
// null is still reported as present.
package feeders

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Feeder fills a target from a configuration source.
type Feeder interface {
	Feed(target any) error
}

// KeyFeeder can extract a single top-level key.
type KeyFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

type debugLogger interface {
	Debug(msg string, args ...any)
}

// verboseDebug is embedded by the file feeders.
type verboseDebug struct {
	enabled bool
	logger  debugLogger
}

// SetVerboseDebug enables or disables verbose debug logging
func (v *verboseDebug) SetVerboseDebug(enabled bool, logger debugLogger) {
	v.enabled = enabled
	v.logger = logger
	if enabled && logger != nil {
		logger.Debug("Verbose feeder debugging enabled")
	}
}

func (v *verboseDebug) debug(msg string, args ...any) {
	if v.enabled && v.logger != nil {
		v.logger.Debug(msg, args...)
	}
}

// feedKey is the common FeedKey implementation: read the whole file into a
// map, pick key, then remarshal it into target to get type conversions.
// A missing key leaves target untouched.
func feedKey(
	feeder Feeder,
	key string,
	target any,
	marshalFunc func(any) ([]byte, error),
	unmarshalFunc func([]byte, any) error,
	fileType string,
) error {
	var allData map[string]any
	if err := feeder.Feed(&allData); err != nil {
		return fmt.Errorf("failed to read %s: %w", fileType, err)
	}

	value, exists := allData[key]
	if !exists {
		return nil
	}

	valueBytes, err := marshalFunc(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", fileType, err)
	}
	if err = unmarshalFunc(valueBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", fileType, err)
	}
	return nil
}

// ForFile returns the feeder matching the file extension of path.
func ForFile(path string) (KeyFeeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYamlFeeder(path), nil
	case ".json":
		return NewJSONFeeder(path), nil
	case ".toml":
		return NewTomlFeeder(path), nil
	case ".hcl":
		return NewHCLFeeder(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
	}
}
