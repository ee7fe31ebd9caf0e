// Package rawtext provides the baseline text operators every document type
// can fall back to: materializing the seed file object into full text and
// splitting it into lines.
package rawtext

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vk/pipedox/internal/operator"
	"github.com/vk/pipedox/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the package's operators with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("rawText", rawTextOp{})
	r.Register("textLines", textLinesOp{})
}

// rawTextOp materializes the document's file object into one string.
type rawTextOp struct{}

func (rawTextOp) Meta() operator.Meta {
	return operator.Meta{
		Inputs:    operator.Inputs("fobj"),
		Outputs:   []string{"full_text"},
		Cacheable: true,
	}
}

func (rawTextOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	text, err := Materialize(args["fobj"])
	if err != nil {
		return nil, err
	}
	return operator.Values{"full_text": text}, nil
}

// Materialize turns a seed file object into a string. Accepted forms are
// string, []byte and io.Reader; anything else is a caller error.
func Materialize(fobj any) (string, error) {
	switch v := fobj.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return "", fmt.Errorf("reading file object: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file object type %T", fobj)
	}
}

// textLinesOp splits full text into trimmed, non-empty lines.
type textLinesOp struct{}

func (textLinesOp) Meta() operator.Meta {
	return operator.Meta{
		Inputs:    operator.Inputs("full_text"),
		Outputs:   []string{"text_lines"},
		Cacheable: true,
	}
}

func (textLinesOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	text, _ := args["full_text"].(string)
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return operator.Values{"text_lines": lines}, nil
}
