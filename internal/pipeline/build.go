package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/pipedox/internal/ctxlog"
	"github.com/vk/pipedox/internal/operator"
)

// OperatorLookup resolves a registered operator name to its implementation.
// The registry package provides the canonical implementation.
type OperatorLookup interface {
	Lookup(name string) (operator.Operator, bool)
}

// ResolvedGraph is the flattened, immutable graph for one document type:
// every output name maps to exactly one producing node, and every
// configuration name to one default value. It is built once per type and
// shared read-only across all instances of that type.
type ResolvedGraph struct {
	key       string
	producers map[string]*boundNode
	configs   map[string]any
	seeds     map[string]struct{}
}

// boundNode is a NodeSpec with its operator resolved from the registry.
type boundNode struct {
	spec *NodeSpec
	op   operator.Operator
}

// Key returns the document-type key the graph was built for.
func (g *ResolvedGraph) Key() string { return g.key }

// Outputs returns the sorted list of output names the graph can resolve.
func (g *ResolvedGraph) Outputs() []string {
	names := make([]string, 0, len(g.producers))
	for name := range g.producers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Produces reports whether the graph has a producing node for name.
func (g *ResolvedGraph) Produces(name string) bool {
	_, ok := g.producers[name]
	return ok
}

// build flattens the declaration registered under key and validates the
// result. Every failure here is fatal for the type: it surfaces from
// Dispatcher.Resolve before any document of that type is processed.
func build(ctx context.Context, key string, set DeclarationSet, ops OperatorLookup) (*ResolvedGraph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building pipeline graph.", "type", key)

	graph := &ResolvedGraph{
		key:       key,
		producers: make(map[string]*boundNode),
		configs:   make(map[string]any),
		seeds:     make(map[string]struct{}),
	}

	flattened := make(map[string]bool)
	if err := flatten(key, set, graph, flattened, nil); err != nil {
		return nil, err
	}

	if err := validate(graph, ops); err != nil {
		return nil, err
	}

	logger.Debug("Pipeline graph built.",
		"type", key,
		"outputs", len(graph.producers),
		"config_defaults", len(graph.configs),
	)
	return graph, nil
}

// flatten expands the declaration for key depth-first, left to right, merging
// outputs, config defaults and seed names into graph with insert-if-absent
// semantics. Since traversal order already encodes priority, the first writer
// for a name wins: direct entries outrank references, and earlier references
// outrank later ones.
//
// flattened memoizes fully expanded keys; visiting tracks the expansion stack
// so mutually referencing declarations fail cleanly instead of recursing
// forever.
func flatten(key string, set DeclarationSet, graph *ResolvedGraph, flattened map[string]bool, visiting []string) error {
	decl, ok := set[key]
	if !ok {
		referrer := ""
		if len(visiting) > 0 {
			referrer = visiting[len(visiting)-1]
		}
		return &UnknownGraphError{Key: key, Referrer: referrer}
	}
	for _, seen := range visiting {
		if seen == key {
			return &BuildError{Key: key, Problems: []string{
				fmt.Sprintf("reference cycle through %v", append(visiting, key)),
			}}
		}
	}
	if flattened[key] {
		return nil
	}
	visiting = append(visiting, key)

	for _, name := range decl.Seeds {
		graph.seeds[name] = struct{}{}
	}

	for _, entry := range decl.Entries {
		switch e := entry.(type) {
		case *NodeSpec:
			if len(e.outputs) == 0 {
				return &BuildError{Key: key, Problems: []string{
					fmt.Sprintf("%s: node declares no outputs", e.ID()),
				}}
			}
			node := &boundNode{spec: e, op: e.op}
			for _, out := range e.outputs {
				if _, exists := graph.producers[out]; !exists {
					graph.producers[out] = node
				}
			}
		case configEntry:
			for name, value := range e.defaults {
				if _, exists := graph.configs[name]; !exists {
					graph.configs[name] = value
				}
			}
		case refEntry:
			if err := flatten(e.key, set, graph, flattened, visiting); err != nil {
				return err
			}
		default:
			return &BuildError{Key: key, Problems: []string{fmt.Sprintf("unsupported entry type %T", entry)}}
		}
	}

	flattened[key] = true
	return nil
}

// validate binds every node to its operator and checks the whole graph
// statically: nodes must declare at least one output, every binding source
// must exist somewhere (seed, config default, or another node's output), the
// bindings must cover the operator's required parameters, and the node must
// not declare outputs its operator cannot produce. Catching all of this at
// build time keeps resolution failures down to genuine runtime conditions.
func validate(graph *ResolvedGraph, ops OperatorLookup) error {
	var problems []string

	checked := make(map[*boundNode]bool)
	for _, node := range graph.producers {
		if checked[node] {
			continue
		}
		checked[node] = true
		spec := node.spec

		if node.op == nil {
			if ops == nil {
				problems = append(problems, fmt.Sprintf("%s: no operator lookup available to resolve %q", spec.ID(), spec.opName))
				continue
			}
			op, ok := ops.Lookup(spec.opName)
			if !ok {
				problems = append(problems, fmt.Sprintf("%s: operator %q is not registered", spec.ID(), spec.opName))
				continue
			}
			node.op = op
		}

		meta := node.op.Meta()

		bound := make(map[string]bool, len(spec.bindings))
		for _, b := range spec.bindings {
			bound[b.Param] = true
			if _, ok := graph.seeds[b.Source]; ok {
				continue
			}
			if _, ok := graph.configs[b.Source]; ok {
				continue
			}
			if _, ok := graph.producers[b.Source]; ok {
				continue
			}
			problems = append(problems, fmt.Sprintf(
				"%s: binding %q refers to unknown source %q", spec.ID(), b.Param, b.Source))
		}

		if meta.Inputs != nil {
			for _, required := range meta.Required() {
				if !bound[required] {
					problems = append(problems, fmt.Sprintf(
						"%s: operator %q requires input %q which is not bound", spec.ID(), spec.opName, required))
				}
			}
		}
		if meta.Outputs != nil {
			for _, out := range spec.outputs {
				if !meta.ProducesOutput(out) {
					problems = append(problems, fmt.Sprintf(
						"%s: operator %q does not produce output %q", spec.ID(), spec.opName, out))
				}
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return &BuildError{Key: graph.key, Problems: problems}
	}
	return nil
}
