package templatecomponent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/componentkit"
)

func TestDataCollector_Data(t *testing.T) {
	c := NewDataCollector(NewComponentFactory(map[string]NamespaceDefaults{"app/": {TemplateDirectory: "components"}}))
	assert.Equal(t, CollectorName, c.Name())
	assert.Equal(t, DataCollectorID, c.ObserverID())

	c.Collect(RenderSample{Component: "Banner", Template: "components/Banner.tmpl", Duration: 2 * time.Millisecond})
	c.Collect(RenderSample{Component: "Alert", Template: "components/Alert.tmpl", Duration: time.Millisecond, PropsCount: 3})
	c.Collect(RenderSample{Component: "Banner", Template: "components/Banner.tmpl", Duration: 3 * time.Millisecond})

	data := c.Data()
	assert.Equal(t, 3, data.RenderCount)
	assert.Equal(t, 6*time.Millisecond, data.TotalDuration)
	assert.Equal(t, []string{"app/"}, data.Namespaces)
	require.Len(t, data.Components, 2)
	assert.Equal(t, ComponentStats{Component: "Alert", Template: "components/Alert.tmpl", RenderCount: 1, TotalDuration: time.Millisecond}, data.Components[0])
	assert.Equal(t, "Banner", data.Components[1].Component)
	assert.Equal(t, 2, data.Components[1].RenderCount)
	assert.Len(t, data.Renders, 3)

	c.Reset()
	assert.Zero(t, c.Data().RenderCount)
	assert.Empty(t, NewDataCollector(nil).Data().Namespaces)
}

func TestDataCollector_OnEvent(t *testing.T) {
	c := NewDataCollector(nil)
	ctx := context.Background()

	sample := RenderSample{Component: "Banner", Template: "components/Banner.tmpl", Duration: time.Millisecond}
	event := componentkit.NewCloudEvent(componentkit.EventTypeComponentRendered, "test", sample, nil)
	require.NoError(t, c.OnEvent(ctx, event))

	other := componentkit.NewCloudEvent(componentkit.EventTypeContainerCompiled, "test", map[string]any{}, nil)
	require.NoError(t, c.OnEvent(ctx, other))

	broken := componentkit.NewCloudEvent(componentkit.EventTypeComponentRendered, "test", "not a sample", nil)
	require.Error(t, c.OnEvent(ctx, broken))

	assert.Equal(t, []RenderSample{sample}, c.Data().Renders)
}

func TestDataCollector_ConcurrentCollect(t *testing.T) {
	c := NewDataCollector(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Collect(RenderSample{Component: "Banner"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, c.Data().RenderCount)
}
