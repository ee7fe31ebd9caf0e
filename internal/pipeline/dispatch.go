package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/vk/pipedox/internal/ctxlog"
)

// Dispatcher maps document-type keys to their resolved graphs. Graphs are
// built on first use and cached; since ResolvedGraph is immutable, one build
// is shared by every instance of the type. A key with no declaration of its
// own falls back to the Wildcard declaration.
//
// Dispatcher is safe for concurrent use; documents of many types may be
// opened from independent goroutines.
type Dispatcher struct {
	set DeclarationSet
	ops OperatorLookup

	mu    sync.Mutex
	built map[string]*buildResult
}

// buildResult caches the outcome of one graph build, error included: the
// declarations cannot change after construction, so a failed build stays
// failed.
type buildResult struct {
	graph *ResolvedGraph
	err   error
}

// NewDispatcher creates a dispatcher over an immutable declaration set. The
// lookup resolves operator names for declarations that reference operators by
// registry name.
func NewDispatcher(set DeclarationSet, ops OperatorLookup) *Dispatcher {
	return &Dispatcher{
		set:   set,
		ops:   ops,
		built: make(map[string]*buildResult),
	}
}

// Resolve returns the resolved graph for typeKey, building it on first use.
// Unknown keys fall back to the Wildcard declaration; if neither exists the
// lookup fails with an UnknownGraphError.
func (d *Dispatcher) Resolve(ctx context.Context, typeKey string) (*ResolvedGraph, error) {
	key := typeKey
	if _, ok := d.set[key]; !ok {
		if _, ok := d.set[Wildcard]; !ok {
			return nil, &UnknownGraphError{Key: typeKey}
		}
		ctxlog.FromContext(ctx).Debug("No declaration for document type, using wildcard.", "type", typeKey)
		key = Wildcard
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if result, ok := d.built[key]; ok {
		return result.graph, result.err
	}

	graph, err := build(ctx, key, d.set, d.ops)
	d.built[key] = &buildResult{graph: graph, err: err}
	return graph, err
}

// BuildAll eagerly builds every declared graph so that malformed declarations
// surface at startup instead of on the first document of the affected type.
func (d *Dispatcher) BuildAll(ctx context.Context) error {
	keys := make([]string, 0, len(d.set))
	for key := range d.set {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := d.Resolve(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Types returns the sorted list of declared document-type keys.
func (d *Dispatcher) Types() []string {
	keys := make([]string, 0, len(d.set))
	for key := range d.set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
