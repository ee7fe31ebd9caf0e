// Package htmltext extracts readable text from HTML documents by converting
// the markup to markdown-flavored plain text.
package htmltext

import (
	"context"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/vk/pipedox/internal/operator"
	"github.com/vk/pipedox/internal/registry"
	"github.com/vk/pipedox/modules/rawtext"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("htmlText", htmlTextOp{})
}

// htmlTextOp converts raw HTML into readable text. It produces both the raw
// markup and the converted text from one invocation.
type htmlTextOp struct{}

func (htmlTextOp) Meta() operator.Meta {
	return operator.Meta{
		Inputs:    operator.Inputs("fobj"),
		Outputs:   []string{"full_text", "raw_content"},
		Cacheable: true,
	}
}

func (htmlTextOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	raw, err := rawtext.Materialize(args["fobj"])
	if err != nil {
		return nil, err
	}
	text, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to text: %w", err)
	}
	return operator.Values{"full_text": text, "raw_content": raw}, nil
}
