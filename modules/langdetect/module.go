// Package langdetect provides language identification for extracted text.
package langdetect

import (
	"context"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/vk/pipedox/internal/operator"
	"github.com/vk/pipedox/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("detectLanguage", detectOp{})
}

// detectOp identifies the language of the document's full text. Empty or
// whitespace-only text yields "unknown" rather than an error.
type detectOp struct{}

func (detectOp) Meta() operator.Meta {
	return operator.Meta{
		Inputs:    operator.Inputs("full_text"),
		Outputs:   []string{"lang"},
		Cacheable: true,
	}
}

func (detectOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	text, _ := args["full_text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return operator.Values{"lang": "unknown"}, nil
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return operator.Values{"lang": "unknown"}, nil
	}
	return operator.Values{"lang": info.Lang.Iso6391()}, nil
}
