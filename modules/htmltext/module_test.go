package htmltext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipedox/internal/operator"
)

func TestHtmlTextOp(t *testing.T) {
	html := `<html><body><h1>Title</h1><p>Hello <b>world</b>.</p></body></html>`

	values, err := htmlTextOp{}.Invoke(context.Background(), operator.Args{"fobj": html})
	require.NoError(t, err)

	text := values["full_text"].(string)
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "world")
	assert.NotContains(t, text, "<p>")

	assert.Equal(t, html, values["raw_content"])
}

func TestHtmlTextOpRejectsBadFileObject(t *testing.T) {
	_, err := htmlTextOp{}.Invoke(context.Background(), operator.Args{"fobj": 3.14})
	require.Error(t, err)
}
