package componentkit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/GoCodeAlone/componentkit/feeders"
)

// TagObserver marks services that must be subscribed to container events
// once the container is compiled. The "events" attribute lists the event
// types ([]string); no attribute means every event.
const TagObserver = "componentkit.observer"

// EnvPrefix is the prefix of the environment variables read by
// LoadKernelConfig, e.g. APP_DEBUG.
const EnvPrefix = "APP"

// ErrObserverTagInvalid is returned when a service tagged as observer does
// not implement Observer.
var ErrObserverTagInvalid = errors.New("service tagged as observer does not implement Observer")

// KernelConfig holds the host settings exposed as kernel.* parameters.
type KernelConfig struct {
	Environment string `env:"ENV" yaml:"environment" default:"dev" required:"true"`

	// Debug defaults to true outside the "prod" environment.
	Debug *bool `env:"DEBUG" yaml:"debug"`

	ProjectDir string `env:"PROJECT_DIR" yaml:"project_dir" default:"."`
	CacheDir   string `env:"CACHE_DIR" yaml:"cache_dir"`
	BuildDir   string `env:"BUILD_DIR" yaml:"build_dir"`
	Charset    string `env:"CHARSET" yaml:"charset" default:"UTF-8"`
}

// IsDebug reports whether the kernel runs in debug mode.
func (k KernelConfig) IsDebug() bool {
	if k.Debug != nil {
		return *k.Debug
	}
	return k.Environment != "prod"
}

// LoadKernelConfig reads the kernel configuration through feeder (usually
// an environment feeder), then applies defaults and validates it. A nil
// feeder only applies defaults.
func LoadKernelConfig(feeder feeders.Feeder) (KernelConfig, error) {
	var cfg KernelConfig
	if feeder != nil {
		if err := feeder.Feed(&cfg); err != nil {
			return KernelConfig{}, fmt.Errorf("%w: kernel: %w", ErrInvalidConfiguration, err)
		}
	}
	if err := ProcessConfigDefaults(&cfg); err != nil {
		return KernelConfig{}, err
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(cfg.ProjectDir, "var", "cache", cfg.Environment)
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = cfg.CacheDir
	}
	if err := ValidateConfigRequired(&cfg); err != nil {
		return KernelConfig{}, err
	}
	return cfg, nil
}

// KernelOption configures a Kernel.
type KernelOption func(*Kernel)

// WithKernelLogger sets the logger handed to every container.
func WithKernelLogger(logger Logger) KernelOption {
	return func(k *Kernel) { k.logger = logger }
}

// WithBundles adds bundles.
func WithBundles(bundles ...Bundle) KernelOption {
	return func(k *Kernel) { k.bundles = append(k.bundles, bundles...) }
}

// WithConfigFiles adds configuration files, loaded in order.
func WithConfigFiles(paths ...string) KernelOption {
	return func(k *Kernel) { k.configFiles = append(k.configFiles, paths...) }
}

// WithObservers subscribes observers to every container the kernel boots.
func WithObservers(observers ...Observer) KernelOption {
	return func(k *Kernel) { k.observers = append(k.observers, observers...) }
}

// WithPassConfig lets the caller adjust compiler passes before compiling.
func WithPassConfig(fn func(*PassConfig)) KernelOption {
	return func(k *Kernel) { k.passHook = fn }
}

// WithContainerOptions forwards options to every container.
func WithContainerOptions(opts ...Option) KernelOption {
	return func(k *Kernel) { k.containerOptions = append(k.containerOptions, opts...) }
}

// Kernel boots containers: one fresh container per Boot call.
type Kernel struct {
	config           KernelConfig
	bundles          []Bundle
	configFiles      []string
	observers        []Observer
	logger           Logger
	passHook         func(*PassConfig)
	containerOptions []Option
}

// NewKernel creates a kernel.
func NewKernel(cfg KernelConfig, opts ...KernelOption) *Kernel {
	k := &Kernel{config: cfg, logger: nopLogger{}}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Config returns the kernel configuration.
func (k *Kernel) Config() KernelConfig {
	return k.config
}

// Parameters returns the kernel.* parameters.
func (k *Kernel) Parameters() ParameterBag {
	bundles := make(map[string]string, len(k.bundles))
	for _, b := range k.bundles {
		bundles[b.Name()] = fmt.Sprintf("%T", b)
	}
	return ParameterBag{
		ParamKernelDebug:       k.config.IsDebug(),
		ParamKernelEnvironment: k.config.Environment,
		ParamKernelProjectDir:  k.config.ProjectDir,
		ParamKernelCacheDir:    k.config.CacheDir,
		ParamKernelBuildDir:    k.config.BuildDir,
		ParamKernelCharset:     k.config.Charset,
		ParamKernelBundles:     bundles,
	}
}

// Boot builds, configures and compiles a new container.
func (k *Kernel) Boot(ctx context.Context) (*Container, error) {
	opts := append([]Option{WithLogger(k.logger)}, k.containerOptions...)
	c := NewContainer(k.Parameters(), opts...)

	for _, o := range k.observers {
		if err := c.RegisterObserver(o); err != nil {
			return nil, err
		}
	}
	for _, b := range k.bundles {
		if err := c.RegisterBundle(b); err != nil {
			return nil, err
		}
	}
	for _, path := range k.configFiles {
		if err := loadConfigFile(c, path); err != nil {
			return nil, err
		}
	}
	if k.passHook != nil {
		k.passHook(c.PassConfig())
	}

	k.logger.Info("Booting container", "environment", k.config.Environment, "debug", k.config.IsDebug(), "bundles", len(k.bundles))
	if err := c.Compile(ctx); err != nil {
		return nil, err
	}
	if err := AttachTaggedObservers(c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadConfigFile(c *Container, path string) error {
	feeder, err := feeders.ForFile(path)
	if err != nil {
		return err
	}
	for _, alias := range c.ExtensionAliases() {
		var raw map[string]any
		if err := feeder.FeedKey(alias, &raw); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, path, err)
		}
		if raw == nil {
			continue
		}
		if err := c.LoadFromExtension(alias, raw); err != nil {
			return err
		}
	}
	return nil
}

// AttachTaggedObservers instantiates every service tagged TagObserver and
// subscribes it to the container events listed in its tag.
func AttachTaggedObservers(c *Container) error {
	tagged := c.FindTaggedServiceIDs(TagObserver)
	ids := make([]string, 0, len(tagged))
	for id := range tagged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		inst, err := c.Get(id)
		if err != nil {
			return err
		}
		observer, ok := inst.(Observer)
		if !ok {
			return fmt.Errorf("%w: %s is %T", ErrObserverTagInvalid, id, inst)
		}
		var events []string
		for _, attrs := range tagged[id] {
			if list, ok := attrs["events"].([]string); ok {
				events = append(events, list...)
			}
		}
		if err := c.RegisterObserver(observer, events...); err != nil {
			return err
		}
	}
	return nil
}
