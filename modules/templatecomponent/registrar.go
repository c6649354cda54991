package templatecomponent

import (
	"fmt"

	"github.com/GoCodeAlone/componentkit"
)

// DefinitionRegistry is the part of the container the registrar needs.
type DefinitionRegistry interface {
	HasDefinition(id string) bool
	Register(def *componentkit.Definition) (*componentkit.Definition, error)
}

// RegisterOptionalServices registers the data collector if and only if
// the host runs in debug mode and the profiler option is enabled.
// It only ever adds: an existing definition under the same id is kept.
func RegisterOptionalServices(cfg Config, debugMode bool, registry DefinitionRegistry) error {
	if !debugMode || !cfg.Profiler {
		return nil
	}
	if registry.HasDefinition(DataCollectorID) {
		return nil
	}
	if _, err := registry.Register(newDataCollectorDefinition()); err != nil {
		return fmt.Errorf("register %s: %w", DataCollectorID, err)
	}
	return nil
}

func newDataCollectorDefinition() *componentkit.Definition {
	def := componentkit.NewDefinition(DataCollectorID, "*templatecomponent.DataCollector", func(c *componentkit.Container) (any, error) {
		self, err := c.Definition(DataCollectorID)
		if err != nil {
			return nil, err
		}
		arg, err := c.ResolveArgument(self, 0)
		if err != nil {
			return nil, err
		}
		factory, _ := arg.(*ComponentFactory)
		return NewDataCollector(factory), nil
	})
	def.SetArguments(componentkit.Reference(ComponentFactoryID))
	def.AddTag(TagDataCollector, map[string]any{
		"id":       CollectorName,
		"template": CollectorTemplate,
		"priority": 256,
	})
	def.AddTag(componentkit.TagObserver, map[string]any{
		"events": []string{componentkit.EventTypeComponentRendered},
	})
	return def
}
