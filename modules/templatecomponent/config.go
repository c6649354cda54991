package templatecomponent

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/componentkit"
)

// Configuration option names.
const (
	OptionDefaults                   = "defaults"
	OptionAnonymousTemplateDirectory = "anonymous_template_directory"
	OptionProfiler                   = "profiler"
	OptionControllersJSON            = "controllers_json"
)

// Defaults applied when the matching option is absent.
const (
	DefaultNamespace         = "app/components/"
	DefaultTemplateDirectory = "components"
)

var knownOptions = map[string]bool{
	OptionDefaults:                   true,
	OptionAnonymousTemplateDirectory: true,
	OptionProfiler:                   true,
	OptionControllersJSON:            true,
}

// Static errors for configuration normalization
var (
	ErrUnrecognizedOption = errors.New("unrecognized option")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidNamespace   = errors.New("invalid namespace")
)

// NamespaceDefaults are the attributes shared by every component living
// under one namespace.
type NamespaceDefaults struct {
	TemplateDirectory string `yaml:"template_directory" json:"template_directory" default:"components"`
	NamePrefix        string `yaml:"name_prefix" json:"name_prefix"`
}

// Config is the normalized template_component configuration.
// It is returned by value and never modified after normalization.
type Config struct {
	// Defaults maps a namespace (a component type path prefix ending in
	// "/") to its defaults.
	Defaults map[string]NamespaceDefaults `yaml:"defaults" json:"defaults"`

	// AnonymousTemplateDirectory holds templates of components that have
	// no backing type. Empty when not configured.
	AnonymousTemplateDirectory string `yaml:"anonymous_template_directory" json:"anonymous_template_directory"`

	// Profiler enables the data collector when the host runs in debug mode.
	Profiler bool `yaml:"profiler" json:"profiler"`

	// ControllersJSONSet reports that the deprecated controllers_json
	// option was given. It has no other effect.
	ControllersJSONSet bool `yaml:"-" json:"-"`
}

// Validate implements componentkit.ConfigValidator.
func (c Config) Validate() error {
	for _, ns := range c.Namespaces() {
		if !strings.HasSuffix(ns, "/") {
			return fmt.Errorf(`%w: the %s.%s namespace %q is invalid: it must end in a "/"`,
				ErrInvalidNamespace, Alias, OptionDefaults, ns)
		}
		if c.Defaults[ns].TemplateDirectory == "" {
			return fmt.Errorf("%w: %s.%s[%q].template_directory cannot be empty",
				ErrInvalidType, Alias, OptionDefaults, ns)
		}
	}
	return nil
}

// Namespaces returns the configured namespaces in sorted order.
func (c Config) Namespaces() []string {
	out := make([]string, 0, len(c.Defaults))
	for ns := range c.Defaults {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// controllersJSONDeprecation is the notice for the controllers_json option.
func controllersJSONDeprecation() (componentkit.DeprecationNotice, error) {
	return componentkit.NewOptionDeprecation(PackageName, DeprecatedSince, Alias+"."+OptionControllersJSON)
}

// anonymousDirectoryDeprecation is the notice for a missing
// anonymous_template_directory option.
func anonymousDirectoryDeprecation() (componentkit.DeprecationNotice, error) {
	removal, err := componentkit.RemovalVersion(DeprecatedSince)
	if err != nil {
		return componentkit.DeprecationNotice{}, err
	}
	return componentkit.DeprecationNotice{
		Package: PackageName,
		Version: DeprecatedSince,
		Message: fmt.Sprintf("Not setting the %q config option is deprecated. It will default to %q in %s.",
			Alias+"."+OptionAnonymousTemplateDirectory, DefaultTemplateDirectory, removal),
	}, nil
}

// Normalize merges the raw configuration maps, normalizes the result and
// sends every deprecation notice to sink. sink may be nil.
func Normalize(configs []map[string]any, sink componentkit.DeprecationSink) (Config, error) {
	cfg, notices, err := NormalizeConfigs(configs)
	if err != nil {
		return Config{}, err
	}
	if sink != nil {
		for _, n := range notices {
			sink.Deprecate(n)
		}
	}
	return cfg, nil
}

// NormalizeConfigs merges the raw maps (later maps win) and normalizes the
// result. It is a pure function of its input.
func NormalizeConfigs(configs []map[string]any) (Config, []componentkit.DeprecationNotice, error) {
	merged, err := MergeConfigs(configs)
	if err != nil {
		return Config{}, nil, err
	}
	return NormalizeConfig(merged)
}

// MergeConfigs merges raw configuration maps. Top-level keys of later maps
// replace earlier ones, keeping explicit nil values; the defaults mappings
// are merged namespace by namespace.
func MergeConfigs(configs []map[string]any) (map[string]any, error) {
	merged := make(map[string]any)
	for _, raw := range configs {
		for key, value := range raw {
			if key != OptionDefaults {
				merged[key] = value
				continue
			}
			prev, hadPrev := merged[key]
			if !hadPrev || prev == nil || value == nil {
				merged[key] = value
				continue
			}
			dst, err := toStringMap(prev, OptionDefaults)
			if err != nil {
				return nil, err
			}
			src, err := toStringMap(value, OptionDefaults)
			if err != nil {
				return nil, err
			}
			if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("%w: merging %s.%s: %v", componentkit.ErrInvalidConfiguration, Alias, OptionDefaults, err)
			}
			merged[key] = dst
		}
	}
	return merged, nil
}

// NormalizeConfig validates one raw map, applies defaults and returns the
// deprecation notices the map triggers. It does not log.
func NormalizeConfig(raw map[string]any) (Config, []componentkit.DeprecationNotice, error) {
	var notices []componentkit.DeprecationNotice

	if err := checkKnownOptions(raw); err != nil {
		return Config{}, nil, err
	}

	cfg := Config{Profiler: true}

	if value, ok := raw[OptionDefaults]; ok {
		defaults, err := normalizeDefaults(value)
		if err != nil {
			return Config{}, nil, err
		}
		cfg.Defaults = defaults
	} else {
		cfg.Defaults = map[string]NamespaceDefaults{
			DefaultNamespace: {TemplateDirectory: DefaultTemplateDirectory},
		}
	}

	switch v := raw[OptionAnonymousTemplateDirectory].(type) {
	case string:
		cfg.AnonymousTemplateDirectory = v
	case nil:
		notice, err := anonymousDirectoryDeprecation()
		if err != nil {
			return Config{}, nil, err
		}
		notices = append(notices, notice)
	default:
		return Config{}, nil, invalidType(OptionAnonymousTemplateDirectory, "string", v)
	}

	switch v := raw[OptionProfiler].(type) {
	case bool:
		cfg.Profiler = v
	case nil:
	default:
		return Config{}, nil, invalidType(OptionProfiler, "bool", v)
	}

	if _, ok := raw[OptionControllersJSON]; ok {
		notice, err := controllersJSONDeprecation()
		if err != nil {
			return Config{}, nil, err
		}
		cfg.ControllersJSONSet = true
		notices = append(notices, notice)
	}

	if err := componentkit.ValidateConfigRequired(&cfg); err != nil {
		if !errors.Is(err, componentkit.ErrInvalidConfiguration) {
			err = fmt.Errorf("%w: %w", componentkit.ErrInvalidConfiguration, err)
		}
		return Config{}, nil, err
	}
	return cfg, notices, nil
}

func checkKnownOptions(raw map[string]any) error {
	var unknown []string
	for key := range raw {
		if !knownOptions[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	available := make([]string, 0, len(knownOptions))
	for key := range knownOptions {
		available = append(available, key)
	}
	sort.Strings(available)
	return fmt.Errorf("%w: %w %q under %q, available options are %q",
		componentkit.ErrInvalidConfiguration, ErrUnrecognizedOption, strings.Join(unknown, ", "), Alias, strings.Join(available, ", "))
}

func normalizeDefaults(value any) (map[string]NamespaceDefaults, error) {
	out := make(map[string]NamespaceDefaults)
	if value == nil {
		return out, nil
	}
	entries, err := toStringMap(value, OptionDefaults)
	if err != nil {
		return nil, err
	}
	for ns, entry := range entries {
		defaults, err := normalizeNamespaceDefaults(ns, entry)
		if err != nil {
			return nil, err
		}
		out[ns] = defaults
	}
	return out, nil
}

// normalizeNamespaceDefaults accepts either a template directory string or
// a mapping with template_directory and name_prefix.
func normalizeNamespaceDefaults(ns string, entry any) (NamespaceDefaults, error) {
	var defaults NamespaceDefaults
	switch v := entry.(type) {
	case nil:
	case string:
		defaults.TemplateDirectory = v
	default:
		m, err := toStringMap(v, OptionDefaults+"."+ns)
		if err != nil {
			return NamespaceDefaults{}, err
		}
		// Remarshal through YAML so that unknown keys are rejected.
		data, err := yaml.Marshal(m)
		if err != nil {
			return NamespaceDefaults{}, fmt.Errorf("%w: %s.%s[%q]: %v", componentkit.ErrInvalidConfiguration, Alias, OptionDefaults, ns, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&defaults); err != nil {
			return NamespaceDefaults{}, fmt.Errorf("%w: %s.%s[%q]: %v", componentkit.ErrInvalidConfiguration, Alias, OptionDefaults, ns, err)
		}
	}
	if err := componentkit.ProcessConfigDefaults(&defaults); err != nil {
		return NamespaceDefaults{}, fmt.Errorf("%w: %w", componentkit.ErrInvalidConfiguration, err)
	}
	return defaults, nil
}

// toStringMap accepts the map shapes produced by the YAML, JSON, TOML and
// HCL decoders.
func toStringMap(value any, path string) (map[string]any, error) {
	switch m := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, invalidType(path, "mapping with string keys", value)
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, invalidType(path, "mapping", value)
	}
}

func invalidType(option, expected string, got any) error {
	return fmt.Errorf("%w: %w for %s.%s: expected %s, got %T",
		componentkit.ErrInvalidConfiguration, ErrInvalidType, Alias, option, expected, got)
}
