package eventlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/componentkit"
)

func TestNew_Defaults(t *testing.T) {
	l, err := New(&bytes.Buffer{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, FormatText, l.config.Format)
	assert.Equal(t, LevelInfo, l.config.Level)
	assert.Equal(t, ObserverID, l.ObserverID())

	_, err = New(&bytes.Buffer{}, Config{Format: "xml"})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEventLogger_Formats(t *testing.T) {
	notice := componentkit.DeprecationNotice{Package: "p", Version: "1.0", Message: "gone"}
	event := componentkit.NewCloudEvent(componentkit.EventTypeConfigDeprecated, componentkit.EventSourceContainer, notice, map[string]any{"alias": "template_component"})

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{FormatText, func(t *testing.T, out string) {
			assert.True(t, strings.HasPrefix(out, "WARN [com.componentkit.config.deprecated] componentkit/container"))
			assert.Contains(t, out, "gone")
		}},
		{FormatStructured, func(t *testing.T, out string) {
			assert.Contains(t, out, "WARN com.componentkit.config.deprecated\n")
			assert.Contains(t, out, "  Source: componentkit/container\n")
			assert.Contains(t, out, "    alias: template_component")
		}},
		{FormatJSON, func(t *testing.T, out string) {
			var entry LogEntry
			require.NoError(t, json.Unmarshal([]byte(out), &entry))
			assert.Equal(t, LevelWarn, entry.Level)
			assert.Equal(t, componentkit.EventTypeConfigDeprecated, entry.Type)
			data, ok := entry.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "gone", data["message"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l, err := New(buf, Config{Format: tt.format})
			require.NoError(t, err)
			require.NoError(t, l.OnEvent(context.Background(), event))
			tt.check(t, strings.TrimSpace(buf.String()))
		})
	}
}

func TestEventLogger_LevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New(buf, Config{Level: "warn"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l.OnEvent(ctx, componentkit.NewCloudEvent(componentkit.EventTypeDefinitionRegistered, "src", nil, nil)))
	require.NoError(t, l.OnEvent(ctx, componentkit.NewCloudEvent(componentkit.EventTypeContainerCompiled, "src", nil, nil)))
	assert.Empty(t, buf.String())

	require.NoError(t, l.OnEvent(ctx, componentkit.NewCloudEvent(componentkit.EventTypeConfigDeprecated, "src", nil, nil)))
	assert.Contains(t, buf.String(), "WARN")
}

func TestEventLogger_ObservesContainer(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := New(buf, Config{Level: LevelDebug, Timestamps: true})
	require.NoError(t, err)

	c := componentkit.NewContainer(nil)
	require.NoError(t, c.RegisterObserver(l))
	_, err = c.Register(componentkit.NewDefinition("svc", "string", nil).SetPublic(true))
	require.NoError(t, err)
	require.NoError(t, c.Compile(context.Background()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "DEBUG ["+componentkit.EventTypeDefinitionRegistered+"]")
	assert.Contains(t, lines[1], "INFO ["+componentkit.EventTypeContainerCompiled+"]")
}
