package pipeline

import (
	"context"
	"fmt"

	"github.com/vk/pipedox/internal/ctxlog"
	"github.com/vk/pipedox/internal/operator"
)

// Instance is the resolution state for one open document: the shared,
// read-only graph for its type, the constructor-supplied seed attributes,
// and a private append-only cache of computed outputs.
//
// Resolution is single-threaded by design: one document is driven by one
// logical caller, so cache writes and the in-progress markers are not
// synchronized. Distinct instances on distinct goroutines are fine; they
// share only the immutable graph.
type Instance struct {
	graph *ResolvedGraph
	seeds map[string]any

	cache map[string]any
	// resolving is the stack of node IDs on the current resolution path,
	// used to detect and report dependency cycles.
	resolving []string
	inFlight  map[*boundNode]bool
}

// NewInstance creates the resolution state for one document. seeds carries
// the constructor-supplied attributes (file object, source locator, explicit
// configuration overrides); it is copied, later mutation of the argument has
// no effect.
func NewInstance(graph *ResolvedGraph, seeds map[string]any) *Instance {
	copied := make(map[string]any, len(seeds))
	for name, value := range seeds {
		copied[name] = value
	}
	return &Instance{
		graph:    graph,
		seeds:    copied,
		cache:    make(map[string]any),
		inFlight: make(map[*boundNode]bool),
	}
}

// Graph returns the instance's resolved graph.
func (in *Instance) Graph() *ResolvedGraph { return in.graph }

// Has reports whether the instance's graph produces the named output.
func (in *Instance) Has(name string) bool {
	return in.graph.Produces(name)
}

// Outputs returns the sorted output names the instance can resolve.
func (in *Instance) Outputs() []string {
	return in.graph.Outputs()
}

// Get resolves the named output, lazily invoking producing operators as
// needed. Results of cacheable nodes are memoized, so a second Get for the
// same name (or for a sibling output of the same node) does not re-invoke
// the operator. Errors are local to this call; they poison neither the
// instance cache nor the shared graph, and nothing is retried.
func (in *Instance) Get(ctx context.Context, name string) (any, error) {
	if !in.graph.Produces(name) {
		return nil, &UnknownOutputError{Name: name, Key: in.graph.key}
	}
	return in.resolveOutput(ctx, name, name)
}

// resolveOutput runs the producing node for name, resolving its inputs
// recursively. requested is the name the caller originally asked for, kept
// for diagnostics on nested failures.
func (in *Instance) resolveOutput(ctx context.Context, name, requested string) (any, error) {
	if value, ok := in.cache[name]; ok {
		return value, nil
	}

	node := in.graph.producers[name]
	if node == nil {
		return nil, &UnknownOutputError{Name: name, Key: in.graph.key}
	}
	if in.inFlight[node] {
		return nil, &CycleError{Path: append(append([]string(nil), in.resolving...), node.spec.ID())}
	}

	in.inFlight[node] = true
	in.resolving = append(in.resolving, node.spec.ID())
	defer func() {
		in.inFlight[node] = false
		in.resolving = in.resolving[:len(in.resolving)-1]
	}()

	args := operator.Args{}
	for _, binding := range node.spec.bindings {
		value, found, err := in.resolveSource(ctx, binding.Source, requested)
		if err != nil {
			return nil, err
		}
		if !found {
			if binding.Optional {
				continue
			}
			return nil, &UnresolvedConfigError{Name: binding.Source, Node: node.spec.ID()}
		}
		args[binding.Param] = value
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking node.", "node", node.spec.ID(), "requested", requested)
	values, err := node.op.Invoke(ctx, args)
	if err != nil {
		return nil, &NodeError{Node: node.spec.ID(), Requested: requested, Err: err}
	}

	// One invocation yields every declared output; siblings must be served
	// from the same call, never from a re-invocation.
	for _, out := range node.spec.outputs {
		if _, ok := values[out]; !ok {
			return nil, &NodeError{Node: node.spec.ID(), Requested: requested,
				Err: fmt.Errorf("operator returned no value for declared output %q", out)}
		}
	}
	if node.spec.cacheable {
		for _, out := range node.spec.outputs {
			// A sibling output may have been overridden by a higher-priority
			// node; its cache slot belongs to the winning producer.
			if in.graph.producers[out] == node {
				in.cache[out] = values[out]
			}
		}
	}
	return values[name], nil
}

// resolveSource resolves one binding source in the contract's order: a
// constructor seed attribute first, then a declared configuration name, then
// the output of another node. found is false when the source is a declared
// seed or config name that ended up with no value anywhere.
func (in *Instance) resolveSource(ctx context.Context, source, requested string) (value any, found bool, err error) {
	if value, ok := in.seeds[source]; ok {
		return value, true, nil
	}
	if value, ok := in.configDefault(source); ok {
		return value, true, nil
	}
	if in.graph.Produces(source) {
		value, err := in.resolveOutput(ctx, source, requested)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	}
	return nil, false, nil
}
