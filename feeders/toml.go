package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder is a feeder that reads TOML files
type TomlFeeder struct {
	verboseDebug
	Path string
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML file
func NewTomlFeeder(filePath string) *TomlFeeder {
	return &TomlFeeder{Path: filePath}
}

// Feed reads the TOML file and decodes it into target
func (t *TomlFeeder) Feed(target any) error {
	t.debug("TomlFeeder: Starting feed process", "filePath", t.Path)
	if _, err := toml.DecodeFile(t.Path, target); err != nil {
		return fmt.Errorf("failed to parse TOML file %s: %w", t.Path, err)
	}
	t.debug("TomlFeeder: Feed completed successfully", "filePath", t.Path)
	return nil
}

// FeedKey reads a TOML file and extracts a specific key.
// TOML has no null, so deprecated keys can only be flagged with a value.
func (t *TomlFeeder) FeedKey(key string, target any) error {
	t.debug("TomlFeeder: Starting FeedKey process", "filePath", t.Path, "key", key)
	return feedKey(t, key, target, toml.Marshal, toml.Unmarshal, "TOML file")
}
