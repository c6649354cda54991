package feeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHCLFeeder_FeedKey(t *testing.T) {
	path := writeTemp(t, "config.hcl", `
template_component {
  anonymous_template_directory = "components/"
  profiler                     = false
  controllers_json             = null

  defaults = {
    "app/components/" = "components"
    "app/ui/"         = { template_directory = "ui", name_prefix = "UI" }
  }
}

limits = [1, 2.5, "three"]
`)

	var raw map[string]any
	require.NoError(t, NewHCLFeeder(path).FeedKey("template_component", &raw))

	assert.Equal(t, "components/", raw["anonymous_template_directory"])
	assert.Equal(t, false, raw["profiler"])
	assert.Contains(t, raw, "controllers_json")
	assert.Nil(t, raw["controllers_json"])
	assert.Equal(t, map[string]any{
		"app/components/": "components",
		"app/ui/":         map[string]any{"template_directory": "ui", "name_prefix": "UI"},
	}, raw["defaults"])

	var limits []any
	require.NoError(t, NewHCLFeeder(path).FeedKey("limits", &limits))
	assert.Equal(t, []any{float64(1), 2.5, "three"}, limits)
}

func TestHCLFeeder_Feed(t *testing.T) {
	path := writeTemp(t, "config.hcl", `
environment = "prod"
debug       = true
workers     = 4
`)
	var cfg struct {
		Environment string `json:"environment"`
		Debug       bool   `json:"debug"`
		Workers     int    `json:"workers"`
	}
	require.NoError(t, NewHCLFeeder(path).Feed(&cfg))
	assert.Equal(t, "prod", cfg.Environment)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 4, cfg.Workers)
}

func TestHCLFeeder_Errors(t *testing.T) {
	var raw map[string]any

	broken := writeTemp(t, "broken.hcl", "a = \n")
	require.ErrorIs(t, NewHCLFeeder(broken).Feed(&raw), ErrHCLParse)

	variables := writeTemp(t, "vars.hcl", "a = var.unknown\n")
	require.ErrorIs(t, NewHCLFeeder(variables).Feed(&raw), ErrHCLEvaluate)

	duplicate := writeTemp(t, "dup.hcl", "a {\n}\na {\n}\n")
	require.ErrorIs(t, NewHCLFeeder(duplicate).Feed(&raw), ErrHCLDuplicateKey)
}
