package helpers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsContextDone(t *testing.T) {
	t.Run(`a nil context counts as done`, func(t *testing.T) {
		require.True(t, IsContextDone(nil))
	})

	t.Run(`a live context is not done`, func(t *testing.T) {
		require.False(t, IsContextDone(context.Background()))
	})

	t.Run(`a cancelled context is done`, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.True(t, IsContextDone(ctx))
	})
}

func TestPayloadText(t *testing.T) {
	t.Run(`an empty payload gives an empty blob`, func(t *testing.T) {
		require.Empty(t, PayloadText(nil))
		require.Empty(t, PayloadText(map[string]interface{}{}))
	})

	t.Run(`string values are lowercased`, func(t *testing.T) {
		text := PayloadText(map[string]interface{}{
			"subject": "URGENT Invoice",
		})
		require.Equal(t, "urgent invoice", text)
	})

	t.Run(`nested maps and slices are flattened`, func(t *testing.T) {
		text := PayloadText(map[string]interface{}{
			"body": map[string]interface{}{
				"paragraphs": []interface{}{"First Line", "Second LINE"},
			},
		})
		require.Contains(t, text, "first line")
		require.Contains(t, text, "second line")
	})

	t.Run(`non-string values are ignored`, func(t *testing.T) {
		text := PayloadText(map[string]interface{}{
			"amount":   42.5,
			"resend":   true,
			"subject":  "hello",
			"metadata": nil,
		})
		require.Equal(t, "hello", text)
	})

	t.Run(`values are separated so words do not merge`, func(t *testing.T) {
		text := PayloadText(map[string]interface{}{
			"parts": []interface{}{"alpha", "beta"},
		})
		require.Len(t, strings.Fields(text), 2)
	})
}
