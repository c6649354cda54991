package templatecomponent

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/componentkit"
)

// CollectorName is the name the data collector reports to profilers.
const CollectorName = "template_component"

// RenderSample is one component render reported by the host.
type RenderSample struct {
	Component  string        `json:"component" yaml:"component"`
	Template   string        `json:"template" yaml:"template"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	PropsCount int           `json:"props_count" yaml:"props_count"`
}

// ComponentStats aggregates the samples of one component.
type ComponentStats struct {
	Component     string        `json:"component" yaml:"component"`
	Template      string        `json:"template" yaml:"template"`
	RenderCount   int           `json:"render_count" yaml:"render_count"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
}

// CollectorData is the snapshot exposed to profilers.
type CollectorData struct {
	Renders       []RenderSample   `json:"renders" yaml:"renders"`
	Components    []ComponentStats `json:"components" yaml:"components"`
	RenderCount   int              `json:"render_count" yaml:"render_count"`
	TotalDuration time.Duration    `json:"total_duration" yaml:"total_duration"`
	Namespaces    []string         `json:"namespaces" yaml:"namespaces"`
}

// DataCollector records component renders for the profiler. It is only
// registered in debug mode with the profiler enabled. Safe for concurrent use.
type DataCollector struct {
	mu         sync.Mutex
	namespaces []string
	renders    []RenderSample
}

// NewDataCollector creates a collector; factory may be nil.
func NewDataCollector(factory *ComponentFactory) *DataCollector {
	c := &DataCollector{}
	if factory != nil {
		c.namespaces = factory.Namespaces()
	}
	return c
}

// Name returns the collector name.
func (c *DataCollector) Name() string {
	return CollectorName
}

// Collect records one render.
func (c *DataCollector) Collect(sample RenderSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renders = append(c.renders, sample)
}

// Reset drops every recorded render.
func (c *DataCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renders = nil
}

// Data returns a snapshot. Components are sorted by name.
func (c *DataCollector) Data() CollectorData {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := CollectorData{
		Renders:    append([]RenderSample(nil), c.renders...),
		Namespaces: append([]string(nil), c.namespaces...),
	}
	byName := make(map[string]*ComponentStats)
	for _, r := range c.renders {
		stats, ok := byName[r.Component]
		if !ok {
			stats = &ComponentStats{Component: r.Component, Template: r.Template}
			byName[r.Component] = stats
		}
		stats.RenderCount++
		stats.TotalDuration += r.Duration
		data.RenderCount++
		data.TotalDuration += r.Duration
	}
	for _, stats := range byName {
		data.Components = append(data.Components, *stats)
	}
	sort.Slice(data.Components, func(i, j int) bool {
		return data.Components[i].Component < data.Components[j].Component
	})
	return data
}

// OnEvent implements componentkit.Observer. Events of type
// componentkit.EventTypeComponentRendered carry a RenderSample.
func (c *DataCollector) OnEvent(_ context.Context, event cloudevents.Event) error {
	if event.Type() != componentkit.EventTypeComponentRendered {
		return nil
	}
	var sample RenderSample
	if err := event.DataAs(&sample); err != nil {
		return fmt.Errorf("decode render sample: %w", err)
	}
	c.Collect(sample)
	return nil
}

// ObserverID implements componentkit.Observer.
func (c *DataCollector) ObserverID() string {
	return DataCollectorID
}
