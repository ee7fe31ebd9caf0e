package defaults

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipedox/internal/pipeline"
	"github.com/vk/pipedox/internal/registry"
	"github.com/vk/pipedox/modules/htmltext"
	"github.com/vk/pipedox/modules/langdetect"
	"github.com/vk/pipedox/modules/rawtext"
	"github.com/vk/pipedox/modules/textanalysis"
)

func testRegistry() *registry.Registry {
	r := registry.New()
	r.Install(&rawtext.Module{}, &htmltext.Module{}, &textanalysis.Module{}, &langdetect.Module{})
	return r
}

func TestBuiltinSetBuildsCleanly(t *testing.T) {
	d := pipeline.NewDispatcher(Set(), testRegistry())
	require.NoError(t, d.BuildAll(context.Background()))
}

func TestWildcardPipelineExtractsText(t *testing.T) {
	d := pipeline.NewDispatcher(Set(), testRegistry())
	graph, err := d.Resolve(context.Background(), "pdf") // undeclared, falls back
	require.NoError(t, err)
	require.Equal(t, pipeline.Wildcard, graph.Key())

	in := pipeline.NewInstance(graph, map[string]any{
		"fobj":     "Visit https://example.com for details.\nSecond line.",
		"source":   "unit-test",
		"filename": "sample.pdf",
	})
	ctx := context.Background()

	text, err := in.Get(ctx, "full_text")
	require.NoError(t, err)
	assert.Contains(t, text, "example.com")

	lines, err := in.Get(ctx, "text_lines")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	urls, err := in.Get(ctx, "urls")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, urls)

	filename, err := in.Get(ctx, "filename")
	require.NoError(t, err)
	assert.Equal(t, "sample.pdf", filename)
}

func TestHtmlPipelineOverridesFullText(t *testing.T) {
	d := pipeline.NewDispatcher(Set(), testRegistry())
	graph, err := d.Resolve(context.Background(), "html")
	require.NoError(t, err)

	html := `<html><body><p>Plain words here.</p></body></html>`
	in := pipeline.NewInstance(graph, map[string]any{
		"fobj":     html,
		"source":   "unit-test",
		"filename": "page.html",
	})
	ctx := context.Background()

	// The html pipeline's own full_text producer wins over the inherited one.
	text, err := in.Get(ctx, "full_text")
	require.NoError(t, err)
	assert.Contains(t, text, "Plain words here.")
	assert.NotContains(t, text.(string), "<p>")

	raw, err := in.Get(ctx, "raw_content")
	require.NoError(t, err)
	assert.Equal(t, html, raw)

	mime, err := in.Get(ctx, "mime_type")
	require.NoError(t, err)
	assert.Equal(t, "text/html", mime)

	// Outputs inherited from the wildcard base keep working.
	urls, err := in.Get(ctx, "urls")
	require.NoError(t, err)
	assert.Equal(t, []string{}, urls)
}

func TestKeywordsHonorTopKOverride(t *testing.T) {
	d := pipeline.NewDispatcher(Set(), testRegistry())
	graph, err := d.Resolve(context.Background(), "text")
	require.NoError(t, err)

	in := pipeline.NewInstance(graph, map[string]any{
		"fobj":  "alpha alpha alpha beta beta gamma",
		"top_k": 1,
	})
	keywords, err := in.Get(context.Background(), "keywords")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, keywords)
}

func TestMergePrefersUserDeclarations(t *testing.T) {
	user := pipeline.DeclarationSet{
		"html": {Entries: []pipeline.Entry{pipeline.Constant("mime_type", "custom")}},
	}
	merged := Merge(Set(), user)

	d := pipeline.NewDispatcher(merged, testRegistry())
	graph, err := d.Resolve(context.Background(), "html")
	require.NoError(t, err)

	in := pipeline.NewInstance(graph, nil)
	mime, err := in.Get(context.Background(), "mime_type")
	require.NoError(t, err)
	assert.Equal(t, "custom", mime)

	// Built-in keys the user did not touch are still present.
	_, err = d.Resolve(context.Background(), "text")
	require.NoError(t, err)
}
