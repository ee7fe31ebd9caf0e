package hcldecl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/pipedox/internal/fsutil"
	"github.com/vk/pipedox/internal/pipeline"
)

// Loader parses .hcl declaration files into the pipeline declaration model.
type Loader struct {
	ops pipeline.OperatorLookup
}

// NewLoader creates a loader. The lookup supplies cacheable defaults for
// nodes that omit the cache attribute; unknown operator names are left for
// the graph builder to reject.
func NewLoader(ops pipeline.OperatorLookup) *Loader {
	return &Loader{ops: ops}
}

// LoadPath loads every .hcl file under path (a file or a directory) into one
// declaration set. A pipeline type declared twice across the loaded files is
// rejected as ambiguous.
func (l *Loader) LoadPath(path string) (pipeline.DeclarationSet, error) {
	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}

	set := pipeline.DeclarationSet{}
	parser := hclparse.NewParser()
	for _, filePath := range filePaths {
		file, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
		}
		if err := l.loadFile(file, filePath, set); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// LoadSource parses declarations from an in-memory buffer, mainly for tests.
func (l *Loader) LoadSource(src []byte, filename string) (pipeline.DeclarationSet, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	set := pipeline.DeclarationSet{}
	if err := l.loadFile(file, filename, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (l *Loader) loadFile(file *hcl.File, filename string, set pipeline.DeclarationSet) error {
	content, diags := file.Body.Content(topSchema)
	if diags.HasErrors() {
		return fmt.Errorf("invalid declaration file %s: %w", filename, diags)
	}

	for _, block := range content.Blocks {
		typeKey := block.Labels[0]
		if _, exists := set[typeKey]; exists {
			return fmt.Errorf("%s: pipeline %q is declared more than once", filename, typeKey)
		}
		decl, err := l.loadPipeline(block)
		if err != nil {
			return fmt.Errorf("%s: pipeline %q: %w", filename, typeKey, err)
		}
		set[typeKey] = decl
	}
	return nil
}

// loadPipeline translates one pipeline block into a Declaration, preserving
// the source order of its entries.
func (l *Loader) loadPipeline(block *hcl.Block) (*pipeline.Declaration, error) {
	content, diags := block.Body.Content(pipelineSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	decl := &pipeline.Declaration{}
	if attr, ok := content.Attributes["seeds"]; ok {
		if diags := gohcl.DecodeExpression(attr.Expr, nil, &decl.Seeds); diags.HasErrors() {
			return nil, diags
		}
	}

	for _, inner := range content.Blocks {
		var entry pipeline.Entry
		var err error
		switch inner.Type {
		case "node":
			entry, err = l.loadNode(inner)
		case "alias":
			entry, err = loadAlias(inner)
		case "constant":
			entry, err = loadConstant(inner)
		case "config":
			entry, err = loadConfig(inner)
		case "ref":
			entry, err = loadRef(inner)
		}
		if err != nil {
			return nil, err
		}
		decl.Entries = append(decl.Entries, entry)
	}
	return decl, nil
}

func (l *Loader) loadNode(block *hcl.Block) (pipeline.Entry, error) {
	name := block.Labels[0]
	var body nodeBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, fmt.Errorf("node %q: %w", name, diags)
	}

	spec := pipeline.Node(body.Operator)

	outputs := body.Outputs
	if len(outputs) == 0 {
		outputs = []string{name}
	}
	spec = spec.Out(outputs...)

	required, err := evalBindings(body.Inputs)
	if err != nil {
		return nil, fmt.Errorf("node %q: inputs: %w", name, err)
	}
	for _, b := range required {
		spec = spec.Bind(b.param, b.source)
	}
	optional, err := evalBindings(body.OptionalInputs)
	if err != nil {
		return nil, fmt.Errorf("node %q: optional_inputs: %w", name, err)
	}
	for _, b := range optional {
		spec = spec.BindOpt(b.param, b.source)
	}

	switch {
	case body.Cache != nil:
		spec = spec.Cached(*body.Cache)
	case l.ops != nil:
		if op, ok := l.ops.Lookup(body.Operator); ok {
			spec = spec.Cached(op.Meta().Cacheable)
		}
	}
	return spec, nil
}

type binding struct {
	param, source string
}

// evalBindings evaluates an inputs expression into a deterministic binding
// list, sorted by parameter name.
func evalBindings(expr hcl.Expression) ([]binding, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	mapped, err := stringMap(val)
	if err != nil {
		return nil, err
	}
	params := make([]string, 0, len(mapped))
	for param := range mapped {
		params = append(params, param)
	}
	sort.Strings(params)

	bindings := make([]binding, len(params))
	for i, param := range params {
		bindings[i] = binding{param: param, source: mapped[param]}
	}
	return bindings, nil
}

func loadAlias(block *hcl.Block) (pipeline.Entry, error) {
	name := block.Labels[0]
	var body aliasBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, fmt.Errorf("alias %q: %w", name, diags)
	}
	return pipeline.Alias(name, body.Target), nil
}

func loadConstant(block *hcl.Block) (pipeline.Entry, error) {
	name := block.Labels[0]
	var body constantBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, fmt.Errorf("constant %q: %w", name, diags)
	}
	val, diags := body.Value.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("constant %q: %w", name, diags)
	}
	value, err := ctyToGo(val)
	if err != nil {
		return nil, fmt.Errorf("constant %q: %w", name, err)
	}
	return pipeline.Constant(name, value), nil
}

func loadConfig(block *hcl.Block) (pipeline.Entry, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("config block: %w", diags)
	}
	defaults := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config %q: %w", name, diags)
		}
		value, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("config %q: %w", name, err)
		}
		defaults[name] = value
	}
	return pipeline.Config(defaults), nil
}

func loadRef(block *hcl.Block) (pipeline.Entry, error) {
	var body refBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, fmt.Errorf("ref %q: %w", block.Labels[0], diags)
	}
	return pipeline.Ref(block.Labels[0]), nil
}
