package feeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYamlFeeder_Feed(t *testing.T) {
	path := writeTemp(t, "config.yaml", `
kernel:
  environment: prod
  debug: true
`)
	type config struct {
		Kernel struct {
			Environment string `yaml:"environment"`
			Debug       bool   `yaml:"debug"`
		} `yaml:"kernel"`
	}

	var cfg config
	require.NoError(t, NewYamlFeeder(path).Feed(&cfg))
	assert.Equal(t, "prod", cfg.Kernel.Environment)
	assert.True(t, cfg.Kernel.Debug)
}

func TestYamlFeeder_FeedKey(t *testing.T) {
	path := writeTemp(t, "config.yaml", `
template_component:
  anonymous_template_directory: components/
  profiler: false
  controllers_json: ~
  defaults:
    app/components/: components
other:
  key: value
`)

	var raw map[string]any
	require.NoError(t, NewYamlFeeder(path).FeedKey("template_component", &raw))

	assert.Equal(t, "components/", raw["anonymous_template_directory"])
	assert.Equal(t, false, raw["profiler"])
	value, present := raw["controllers_json"]
	assert.True(t, present, "null keys are kept")
	assert.Nil(t, value)
	assert.Equal(t, map[string]any{"app/components/": "components"}, raw["defaults"])
	assert.NotContains(t, raw, "key")
}

func TestYamlFeeder_FeedKeyMissing(t *testing.T) {
	path := writeTemp(t, "config.yaml", "other: {}\n")

	var raw map[string]any
	require.NoError(t, NewYamlFeeder(path).FeedKey("template_component", &raw))
	assert.Nil(t, raw)
}

func TestYamlFeeder_Errors(t *testing.T) {
	var raw map[string]any
	err := NewYamlFeeder("/does/not/exist.yaml").Feed(&raw)
	require.ErrorIs(t, err, ErrFileRead)

	path := writeTemp(t, "broken.yaml", "a: [1, 2\n")
	err = NewYamlFeeder(path).FeedKey("a", &raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YAML")
}
