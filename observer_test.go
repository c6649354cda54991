package componentkit

import (
	"context"
	"errors"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCloudEvent(t *testing.T) {
	event := NewCloudEvent("test.event", "test.source", map[string]any{"id": "svc"}, map[string]any{"key": "value"})

	assert.Equal(t, "test.event", event.Type())
	assert.Equal(t, "test.source", event.Source())
	assert.Equal(t, cloudevents.VersionV1, event.SpecVersion())
	assert.False(t, event.Time().IsZero())

	id, err := uuid.Parse(event.ID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	var data map[string]any
	require.NoError(t, event.DataAs(&data))
	assert.Equal(t, "svc", data["id"])
	assert.Equal(t, "value", event.Extensions()["key"])

	require.NoError(t, ValidateCloudEvent(event))
	require.Error(t, ValidateCloudEvent(cloudevents.NewEvent()))
}

func TestObserverSet_FiltersAndOrders(t *testing.T) {
	set := newObserverSet(nopLogger{})
	var calls []string
	record := func(id string) Observer {
		return NewFunctionalObserver(id, func(_ context.Context, e cloudevents.Event) error {
			calls = append(calls, id+":"+e.Type())
			return nil
		})
	}

	require.NoError(t, set.RegisterObserver(record("zeta")))
	require.NoError(t, set.RegisterObserver(record("alpha"), "wanted"))
	require.ErrorIs(t, set.RegisterObserver(nil), ErrObserverNil)

	require.NoError(t, set.NotifyObservers(context.Background(), NewCloudEvent("wanted", "src", nil, nil)))
	require.NoError(t, set.NotifyObservers(context.Background(), NewCloudEvent("other", "src", nil, nil)))

	assert.Equal(t, []string{"alpha:wanted", "zeta:wanted", "zeta:other"}, calls)

	infos := set.GetObservers()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].ID)
	assert.Equal(t, []string{"wanted"}, infos[0].EventTypes)
	assert.Empty(t, infos[1].EventTypes)
}

func TestObserverSet_Unregister(t *testing.T) {
	set := newObserverSet(nopLogger{})
	called := false
	o := NewFunctionalObserver("o", func(context.Context, cloudevents.Event) error {
		called = true
		return nil
	})
	require.NoError(t, set.RegisterObserver(o))
	require.NoError(t, set.UnregisterObserver(o))
	require.NoError(t, set.UnregisterObserver(o))
	require.ErrorIs(t, set.UnregisterObserver(nil), ErrObserverNil)

	require.NoError(t, set.NotifyObservers(context.Background(), NewCloudEvent("e", "src", nil, nil)))
	assert.False(t, called)
	assert.Empty(t, set.GetObservers())
}

func TestObserverSet_ErrorsAndPanicsAreContained(t *testing.T) {
	logger := &testLogger{}
	set := newObserverSet(logger)
	reached := false

	require.NoError(t, set.RegisterObserver(NewFunctionalObserver("a-fails", func(context.Context, cloudevents.Event) error {
		return errors.New("nope")
	})))
	require.NoError(t, set.RegisterObserver(NewFunctionalObserver("b-panics", func(context.Context, cloudevents.Event) error {
		panic("boom")
	})))
	require.NoError(t, set.RegisterObserver(NewFunctionalObserver("c-ok", func(context.Context, cloudevents.Event) error {
		reached = true
		return nil
	})))

	require.NoError(t, set.NotifyObservers(context.Background(), NewCloudEvent("e", "src", nil, nil)))
	assert.True(t, reached)
	assert.Equal(t, []string{"Observer error", "Observer panicked"}, logger.messages("ERROR"))
}

func TestObserverSet_RejectsInvalidEvents(t *testing.T) {
	set := newObserverSet(nopLogger{})
	err := set.NotifyObservers(context.Background(), cloudevents.NewEvent())
	require.Error(t, err)
}
