package feeders

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONFeeder is a feeder that reads JSON files
type JSONFeeder struct {
	verboseDebug
	Path string
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON file
func NewJSONFeeder(filePath string) *JSONFeeder {
	return &JSONFeeder{Path: filePath}
}

// Feed reads the JSON file and decodes it into target
func (j *JSONFeeder) Feed(target any) error {
	j.debug("JSONFeeder: Starting feed process", "filePath", j.Path)
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileRead, j.Path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse JSON file %s: %w", j.Path, err)
	}
	j.debug("JSONFeeder: Feed completed successfully", "filePath", j.Path)
	return nil
}

// FeedKey reads a JSON file and extracts a specific key
func (j *JSONFeeder) FeedKey(key string, target any) error {
	j.debug("JSONFeeder: Starting FeedKey process", "filePath", j.Path, "key", key)
	return feedKey(j, key, target, json.Marshal, json.Unmarshal, "JSON file")
}
