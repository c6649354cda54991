package feeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFeeder_FeedKey(t *testing.T) {
	path := writeTemp(t, "config.json", `{
  "template_component": {
    "profiler": true,
    "controllers_json": null,
    "defaults": {"app/ui/": {"template_directory": "ui", "name_prefix": "UI"}}
  }
}`)

	var raw map[string]any
	require.NoError(t, NewJSONFeeder(path).FeedKey("template_component", &raw))

	assert.Equal(t, true, raw["profiler"])
	assert.Contains(t, raw, "controllers_json")
	assert.Nil(t, raw["controllers_json"])
	assert.Equal(t, map[string]any{
		"app/ui/": map[string]any{"template_directory": "ui", "name_prefix": "UI"},
	}, raw["defaults"])
}

func TestJSONFeeder_Feed(t *testing.T) {
	path := writeTemp(t, "config.json", `{"name": "app", "port": 8080}`)
	var cfg struct {
		Name string `json:"name"`
		Port int    `json:"port"`
	}
	require.NoError(t, NewJSONFeeder(path).Feed(&cfg))
	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)

	broken := writeTemp(t, "broken.json", `{"name": `)
	require.Error(t, NewJSONFeeder(broken).Feed(&cfg))
	require.ErrorIs(t, NewJSONFeeder("/missing.json").Feed(&cfg), ErrFileRead)
}
