package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	renderer, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer renderer.Close()

	assert.Equal(t, 30*time.Second, renderer.config.DefaultTimeout)
	assert.Equal(t, 1.0, renderer.config.Scale)
}

func TestChromedpRenderer_Render_Validation(t *testing.T) {
	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
	require.NoError(t, err)
	defer renderer.Close()

	t.Run("nil request", func(t *testing.T) {
		_, err := renderer.Render(context.Background(), nil)
		require.Error(t, err)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})

	t.Run("empty HTML", func(t *testing.T) {
		_, err := renderer.Render(context.Background(), &RenderRequest{HTML: "   "})
		require.Error(t, err)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})
}

func TestChromedpRenderer_BuildCompleteHTML(t *testing.T) {
	renderer, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer renderer.Close()

	t.Run("wraps a fragment", func(t *testing.T) {
		html := renderer.buildCompleteHTML(&RenderRequest{HTML: "<p>hello</p>", Title: "Invoice"})
		assert.Contains(t, html, "<!DOCTYPE html>")
		assert.Contains(t, html, "<title>Invoice</title>")
		assert.Contains(t, html, "<p>hello</p>")
	})

	t.Run("passes a full document through", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, doc, renderer.buildCompleteHTML(&RenderRequest{HTML: doc}))
	})
}

func TestRenderError(t *testing.T) {
	inner := assert.AnError
	err := NewRenderError(ErrCodeRenderFailed, "rendering failed", inner)

	assert.Contains(t, err.Error(), "rendering failed")
	assert.ErrorIs(t, err, inner)

	plain := NewRenderError(ErrCodeRenderTimeout, "timed out", nil)
	assert.Equal(t, "timed out", plain.Error())
}
