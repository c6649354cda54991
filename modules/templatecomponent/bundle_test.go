package templatecomponent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/componentkit"
)

func TestBundle_DefaultPassesKeepCollector(t *testing.T) {
	c := createContainer(true)
	require.NoError(t, c.RegisterBundle(NewBundle()))
	require.NoError(t, c.LoadFromExtension(Alias, map[string]any{"anonymous_template_directory": "components/"}))
	require.NoError(t, c.Compile(context.Background()))

	assert.True(t, c.HasDefinition(DataCollectorID), "tagged services survive the removing passes")
	assert.True(t, c.HasDefinition(ComponentFactoryID))
	assert.True(t, c.HasDefinition(TemplateFinderID))

	templates, err := c.Parameters().Get(ParamDataCollectorTemplates)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{CollectorName, CollectorTemplate}}, templates)
}

func TestBundle_NoCollectorNoTemplatesParameter(t *testing.T) {
	c := createContainer(false)
	require.NoError(t, c.RegisterBundle(NewBundle()))
	require.NoError(t, c.Compile(context.Background()))

	assert.False(t, c.Parameters().Has(ParamDataCollectorTemplates))
	assert.Equal(t, BundleName, NewBundle().Name())
	assert.Equal(t, Alias, NewBundle().ContainerExtension().Alias())
}

func TestDataCollectorPass(t *testing.T) {
	register := func(t *testing.T, c *componentkit.Container, id string, attrs map[string]any) {
		t.Helper()
		_, err := c.Register(componentkit.NewDefinition(id, "x", nil).AddTag(TagDataCollector, attrs))
		require.NoError(t, err)
	}

	t.Run("orders by priority", func(t *testing.T) {
		c := componentkit.NewContainer(nil)
		register(t, c, "low", map[string]any{"id": "low", "template": "low.tmpl"})
		register(t, c, "high", map[string]any{"id": "high", "template": "high.tmpl", "priority": 300})
		register(t, c, "mid", map[string]any{"id": "mid", "template": "mid.tmpl", "priority": 10})

		require.NoError(t, DataCollectorPass{}.Process(context.Background(), c))
		templates, err := c.Parameters().Get(ParamDataCollectorTemplates)
		require.NoError(t, err)
		assert.Equal(t, [][2]string{{"high", "high.tmpl"}, {"mid", "mid.tmpl"}, {"low", "low.tmpl"}}, templates)
	})

	t.Run("missing attribute", func(t *testing.T) {
		c := componentkit.NewContainer(nil)
		register(t, c, "broken", map[string]any{"id": "broken"})
		err := DataCollectorPass{}.Process(context.Background(), c)
		require.ErrorIs(t, err, ErrCollectorTagInvalid)
	})

	t.Run("duplicate id", func(t *testing.T) {
		c := componentkit.NewContainer(nil)
		register(t, c, "a", map[string]any{"id": "same", "template": "a.tmpl"})
		register(t, c, "b", map[string]any{"id": "same", "template": "b.tmpl"})
		err := DataCollectorPass{}.Process(context.Background(), c)
		require.ErrorIs(t, err, ErrCollectorIDDuplicated)
	})
}

func TestKernel_BootWithBundle(t *testing.T) {
	debug := true
	k := componentkit.NewKernel(componentkit.KernelConfig{Environment: "dev", Debug: &debug},
		componentkit.WithBundles(NewBundle()))

	c, err := k.Boot(context.Background())
	require.NoError(t, err)

	collector, err := componentkit.Resolve[*DataCollector](c, DataCollectorID)
	require.NoError(t, err)

	sample := RenderSample{Component: "alert:Banner", Template: "components/alert/Banner.tmpl"}
	require.NoError(t, c.NotifyObservers(context.Background(),
		componentkit.NewCloudEvent(componentkit.EventTypeComponentRendered, "test", sample, nil)))
	assert.Equal(t, 1, collector.Data().RenderCount)

	assert.Equal(t, []string{anonymousDirectoryMessage}, messages(c.Deprecations()))
}
