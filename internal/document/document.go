package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vk/pipedox/internal/ctxlog"
	"github.com/vk/pipedox/internal/pipeline"
)

// Options control how a document is opened.
type Options struct {
	// Type overrides document-type sniffing with an explicit key.
	Type string
	// Source records where the document came from (URL, upload name, path).
	// Defaults to the path the document was opened from.
	Source string
	// Overrides are instance-level seed and configuration values. They take
	// precedence over every declared configuration default.
	Overrides map[string]any
}

// Document is one open document bound to its type's resolved graph. All
// extraction happens lazily through Get.
type Document struct {
	id       string
	typeKey  string
	instance *pipeline.Instance
}

// Open reads the file at path and binds it to the pipeline for its document
// type. The type key comes from opts.Type or, failing that, from the file
// extension.
func Open(ctx context.Context, d *pipeline.Dispatcher, path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return FromBytes(ctx, d, data, filepath.Base(path), opts)
}

// FromBytes binds in-memory content to a pipeline, for callers that already
// hold the document body (uploads, test fixtures).
func FromBytes(ctx context.Context, d *pipeline.Dispatcher, data []byte, filename string, opts Options) (*Document, error) {
	typeKey := opts.Type
	if typeKey == "" {
		typeKey = SniffType(filename)
	}

	graph, err := d.Resolve(ctx, typeKey)
	if err != nil {
		return nil, err
	}

	seeds := map[string]any{
		"fobj":          data,
		"source":        opts.Source,
		"filename":      filename,
		"document_type": typeKey,
	}
	for name, value := range opts.Overrides {
		seeds[name] = value
	}

	doc := &Document{
		id:       uuid.NewString(),
		typeKey:  typeKey,
		instance: pipeline.NewInstance(graph, seeds),
	}
	ctxlog.FromContext(ctx).Debug("Opened document.",
		"document_id", doc.id,
		"type", typeKey,
		"pipeline", graph.Key(),
		"filename", filename,
	)
	return doc, nil
}

// SniffType maps a file name to a document-type key. The mapping is
// deliberately shallow: unknown extensions pass through as-is and land on
// the wildcard pipeline.
func SniffType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "htm", "html", "xhtml":
		return "html"
	case "txt", "md", "markdown":
		return "text"
	case "":
		return pipeline.Wildcard
	default:
		return ext
	}
}

// ID returns the instance identifier, used for log correlation.
func (doc *Document) ID() string { return doc.id }

// Type returns the document-type key the document was opened with.
func (doc *Document) Type() string { return doc.typeKey }

// Get resolves a named output from the document's pipeline.
func (doc *Document) Get(ctx context.Context, name string) (any, error) {
	return doc.instance.Get(ctx, name)
}

// Has reports whether the document's pipeline produces the named output.
func (doc *Document) Has(name string) bool { return doc.instance.Has(name) }

// Outputs returns the sorted output names the document can resolve.
func (doc *Document) Outputs() []string { return doc.instance.Outputs() }
