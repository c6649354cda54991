package templatecomponent

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/GoCodeAlone/componentkit"
)

// BundleName is the name the bundle registers under.
const BundleName = "TemplateComponentBundle"

// ParamDataCollectorTemplates maps collector ids to their panel template.
const ParamDataCollectorTemplates = "data_collector.templates"

// Static errors for the data collector pass
var (
	ErrCollectorTagInvalid   = errors.New("data collector tag is missing the id or template attribute")
	ErrCollectorIDDuplicated = errors.New("data collector id is used more than once")
)

// Bundle wires the template_component extension and its compiler pass.
type Bundle struct {
	extension *Extension
}

// NewBundle creates the bundle.
func NewBundle() *Bundle {
	return &Bundle{extension: NewExtension()}
}

// Name implements componentkit.Bundle.
func (b *Bundle) Name() string {
	return BundleName
}

// ContainerExtension implements componentkit.Bundle.
func (b *Bundle) ContainerExtension() componentkit.Extension {
	return b.extension
}

// Build implements componentkit.Bundle.
func (b *Bundle) Build(c *componentkit.Container) error {
	return c.AddCompilerPass(DataCollectorPass{}, componentkit.PassTypeBeforeOptimization, 0)
}

// DataCollectorPass checks every service tagged data_collector and
// publishes the collector templates as the data_collector.templates
// parameter, ordered by descending priority.
type DataCollectorPass struct{}

// Name implements componentkit.CompilerPass.
func (DataCollectorPass) Name() string { return "data_collector" }

type collectorEntry struct {
	serviceID string
	id        string
	template  string
	priority  int
}

// Process implements componentkit.CompilerPass.
func (DataCollectorPass) Process(_ context.Context, c *componentkit.Container) error {
	tagged := c.FindTaggedServiceIDs(TagDataCollector)
	var entries []collectorEntry
	seen := make(map[string]string)
	for serviceID, attrSets := range tagged {
		for _, attrs := range attrSets {
			id, _ := attrs["id"].(string)
			template, _ := attrs["template"].(string)
			if id == "" || template == "" {
				return fmt.Errorf("%w: %s", ErrCollectorTagInvalid, serviceID)
			}
			if other, ok := seen[id]; ok {
				return fmt.Errorf("%w: %q by %s and %s", ErrCollectorIDDuplicated, id, other, serviceID)
			}
			seen[id] = serviceID
			priority, _ := attrs["priority"].(int)
			entries = append(entries, collectorEntry{serviceID: serviceID, id: id, template: template, priority: priority})
		}
	}
	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].id < entries[j].id
	})
	templates := make([][2]string, len(entries))
	for i, e := range entries {
		templates[i] = [2]string{e.id, e.template}
	}
	return c.SetParameter(ParamDataCollectorTemplates, templates)
}
