package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder is a feeder that reads YAML files
type YamlFeeder struct {
	verboseDebug
	Path string
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) *YamlFeeder {
	return &YamlFeeder{Path: filePath}
}

// Feed reads the YAML file and decodes it into target
func (y *YamlFeeder) Feed(target any) error {
	y.debug("YamlFeeder: Starting feed process", "filePath", y.Path)
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileRead, y.Path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse YAML file %s: %w", y.Path, err)
	}
	y.debug("YamlFeeder: Feed completed successfully", "filePath", y.Path)
	return nil
}

// FeedKey reads a YAML file and extracts a specific key
func (y *YamlFeeder) FeedKey(key string, target any) error {
	y.debug("YamlFeeder: Starting FeedKey process", "filePath", y.Path, "key", key)
	return feedKey(y, key, target, yaml.Marshal, yaml.Unmarshal, "YAML file")
}
