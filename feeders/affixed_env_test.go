package feeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestAffixedEnvFeeder_Feed(t *testing.T) {
	type nested struct {
		Charset string `env:"CHARSET"`
	}
	type config struct {
		Environment string `env:"ENV"`
		Debug       *bool  `env:"DEBUG"`
		Workers     int    `env:"WORKERS"`
		Untagged    string
		Nested      nested
	}

	tests := []struct {
		name   string
		prefix string
		suffix string
		env    map[string]string
		check  func(t *testing.T, cfg config)
	}{
		{
			name:   "prefix",
			prefix: "app",
			env:    map[string]string{"APP_ENV": "prod", "APP_DEBUG": "true", "APP_WORKERS": "4", "APP_CHARSET": "latin1"},
			check: func(t *testing.T, cfg config) {
				assert.Equal(t, "prod", cfg.Environment)
				require.NotNil(t, cfg.Debug)
				assert.True(t, *cfg.Debug)
				assert.Equal(t, 4, cfg.Workers)
				assert.Equal(t, "latin1", cfg.Nested.Charset)
			},
		},
		{
			name:   "prefix and suffix",
			prefix: "APP",
			suffix: "test",
			env:    map[string]string{"APP_ENV_TEST": "test", "APP_ENV": "ignored"},
			check: func(t *testing.T, cfg config) {
				assert.Equal(t, "test", cfg.Environment)
				assert.Nil(t, cfg.Debug)
			},
		},
		{
			name:   "empty values are skipped",
			prefix: "APP",
			env:    map[string]string{"APP_ENV": ""},
			check: func(t *testing.T, cfg config) {
				assert.Equal(t, "dev", cfg.Environment)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewAffixedEnvFeeder(tt.prefix, tt.suffix)
			f.Lookup = lookupFrom(tt.env)
			cfg := config{Environment: "dev"}
			require.NoError(t, f.Feed(&cfg))
			tt.check(t, cfg)
		})
	}
}

func TestAffixedEnvFeeder_Errors(t *testing.T) {
	type config struct {
		Workers int `env:"WORKERS"`
	}

	f := NewAffixedEnvFeeder("APP", "")
	require.ErrorIs(t, f.Feed(config{}), ErrEnvInvalidStructure)
	require.ErrorIs(t, f.Feed(nil), ErrEnvInvalidStructure)
	require.ErrorIs(t, NewAffixedEnvFeeder("", "").Feed(&config{}), ErrEnvEmptyPrefixAndSuffix)

	f.Lookup = lookupFrom(map[string]string{"APP_WORKERS": "many"})
	err := f.Feed(&config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
}

func TestAffixedEnvFeeder_UnexportedField(t *testing.T) {
	type config struct {
		hidden string `env:"HIDDEN"`
	}
	f := NewAffixedEnvFeeder("APP", "")
	f.Lookup = lookupFrom(map[string]string{"APP_HIDDEN": "x"})
	cfg := config{}
	require.ErrorIs(t, f.Feed(&cfg), ErrEnvFieldCannotBeSet)
	assert.Empty(t, cfg.hidden)
}
