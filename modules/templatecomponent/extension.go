// Package templatecomponent is the container extension of the template
// component bundle. It normalizes the template_component configuration,
// registers the component services and, in debug mode, the data collector.
package templatecomponent

import (
	"errors"
	"fmt"

	"github.com/GoCodeAlone/componentkit"
)

// Identity of the bundle, used in deprecation notices.
const (
	Alias           = "template_component"
	PackageName     = "gocodealone/template-component"
	DeprecatedSince = "2.18"
)

// Service ids and parameters registered by the extension.
const (
	ComponentFactoryID = "template_component.component_factory"
	TemplateFinderID   = "template_component.template_finder"
	DataCollectorID    = "template_component.data_collector"

	ParamAnonymousTemplateDirectory = "template_component.anonymous_template_directory"
	ParamDefaults                   = "template_component.defaults"

	TagDataCollector  = "data_collector"
	CollectorTemplate = "collector/template_component.tmpl"
)

// Extension loads the template_component configuration.
type Extension struct{}

// NewExtension creates the extension.
func NewExtension() *Extension {
	return &Extension{}
}

// Alias implements componentkit.Extension.
func (e *Extension) Alias() string {
	return Alias
}

// Load implements componentkit.Extension. The container is the deprecation
// sink, so notices end up in its collector, its logger and its observers.
func (e *Extension) Load(configs []map[string]any, c *componentkit.Container) error {
	cfg, err := Normalize(configs, c)
	if err != nil {
		return err
	}

	debug, err := c.Parameters().Bool(componentkit.ParamKernelDebug)
	if err != nil {
		if !errors.Is(err, componentkit.ErrParameterNotFound) {
			return err
		}
		c.Logger().Debug("Parameter not set, assuming production mode", "parameter", componentkit.ParamKernelDebug)
		debug = false
	}

	if err := c.SetParameter(ParamAnonymousTemplateDirectory, cfg.AnonymousTemplateDirectory); err != nil {
		return err
	}
	defaults := make(map[string]NamespaceDefaults, len(cfg.Defaults))
	for ns, d := range cfg.Defaults {
		defaults[ns] = d
	}
	if err := c.SetParameter(ParamDefaults, defaults); err != nil {
		return err
	}

	if err := registerCoreServices(c); err != nil {
		return err
	}
	if err := RegisterOptionalServices(cfg, debug, c); err != nil {
		return err
	}

	c.Logger().Debug("Template component extension loaded",
		"debug", debug, "profiler", cfg.Profiler, "namespaces", cfg.Namespaces())
	return nil
}

func registerCoreServices(c *componentkit.Container) error {
	factory := componentkit.NewDefinition(ComponentFactoryID, "*templatecomponent.ComponentFactory", func(c *componentkit.Container) (any, error) {
		raw, err := c.Parameters().Get(ParamDefaults)
		if err != nil {
			return nil, err
		}
		defaults, ok := raw.(map[string]NamespaceDefaults)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T", componentkit.ErrParameterType, ParamDefaults, raw)
		}
		return NewComponentFactory(defaults), nil
	}).SetPublic(true)

	finder := componentkit.NewDefinition(TemplateFinderID, "*templatecomponent.TemplateFinder", func(c *componentkit.Container) (any, error) {
		dir, err := c.Parameters().String(ParamAnonymousTemplateDirectory)
		if err != nil {
			return nil, err
		}
		return &TemplateFinder{AnonymousDirectory: dir}, nil
	}).SetPublic(true)

	for _, def := range []*componentkit.Definition{factory, finder} {
		if _, err := c.Register(def); err != nil {
			return err
		}
	}
	return nil
}
