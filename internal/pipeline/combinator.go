package pipeline

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/pipedox/internal/operator"
)

// The combinators build NodeSpecs around small inline operators, so generic
// graph plumbing (renames, literals, one-off pure functions) needs no
// registry entry.

// Alias declares name as exactly the value of target. Alias nodes are always
// cacheable; resolving the alias amounts to aliasing the cache entry.
func Alias(name, target string) *NodeSpec {
	return NodeOp("alias", &aliasOp{out: name}).Bind("value", target).Out(name)
}

type aliasOp struct {
	out string
}

func (a *aliasOp) Meta() operator.Meta {
	return operator.Meta{Inputs: operator.Inputs("value"), Outputs: []string{a.out}, Cacheable: true}
}

func (a *aliasOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	return operator.Values{a.out: args["value"]}, nil
}

// Constant declares name as a fixed value. The value is returned as-is on
// every resolution; callers must treat it as immutable.
func Constant(name string, value any) *NodeSpec {
	return NodeOp("constant", &constantOp{out: name, value: value}).Out(name)
}

type constantOp struct {
	out   string
	value any
}

func (c *constantOp) Meta() operator.Meta {
	return operator.Meta{Outputs: []string{c.out}, Cacheable: true}
}

func (c *constantOp) Invoke(context.Context, operator.Args) (operator.Values, error) {
	return operator.Values{c.out: c.value}, nil
}

// ApplyFunc is a side-effect-free function wrapped into a graph node. It
// receives every bound input by name; aggregation nodes that want "all named
// inputs as one mapping" simply read the whole args map.
type ApplyFunc func(ctx context.Context, args operator.Args) (any, error)

// Apply wraps fn as a node producing the single output out. Bindings are
// added on the returned spec in the usual way.
func Apply(out string, fn ApplyFunc) *NodeSpec {
	return NodeOp("apply", &applyOp{out: out, fn: fn}).Out(out)
}

type applyOp struct {
	out string
	fn  ApplyFunc
}

func (a *applyOp) Meta() operator.Meta {
	return operator.Meta{Outputs: []string{a.out}, Cacheable: true}
}

func (a *applyOp) Invoke(ctx context.Context, args operator.Args) (operator.Values, error) {
	value, err := a.fn(ctx, args)
	if err != nil {
		return nil, err
	}
	return operator.Values{a.out: value}, nil
}

// MapFunc transforms one element of a sequence.
type MapFunc func(ctx context.Context, elem any) (any, error)

// MapEach wraps fn as a node that applies it to every element of the
// sequence bound to "items", producing the materialized output out with the
// input's length and order.
func MapEach(out, source string, fn MapFunc) *NodeSpec {
	return NodeOp("map", &mapOp{out: out, fn: fn}).Bind("items", source).Out(out)
}

// MapEachLazy is MapEach with a lazy result: the output is a single-pass,
// non-restartable *Seq whose elements are transformed on demand. Lazy map
// nodes are non-cacheable, since a consumed Seq cannot be handed out twice.
func MapEachLazy(out, source string, fn MapFunc) *NodeSpec {
	return NodeOp("map", &mapOp{out: out, fn: fn, lazy: true}).Bind("items", source).Out(out).Cached(false)
}

type mapOp struct {
	out  string
	fn   MapFunc
	lazy bool
}

func (m *mapOp) Meta() operator.Meta {
	return operator.Meta{Inputs: operator.Inputs("items"), Outputs: []string{m.out}, Cacheable: !m.lazy}
}

func (m *mapOp) Invoke(ctx context.Context, args operator.Args) (operator.Values, error) {
	elems, err := toSlice(args["items"])
	if err != nil {
		return nil, err
	}

	if m.lazy {
		i := 0
		seq := NewSeq(func() (any, bool, error) {
			if i >= len(elems) {
				return nil, false, nil
			}
			elem := elems[i]
			i++
			mapped, err := m.fn(ctx, elem)
			if err != nil {
				return nil, false, fmt.Errorf("element %d: %w", i-1, err)
			}
			return mapped, true, nil
		})
		return operator.Values{m.out: seq}, nil
	}

	mapped := make([]any, len(elems))
	for i, elem := range elems {
		mapped[i], err = m.fn(ctx, elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return operator.Values{m.out: mapped}, nil
}

// toSlice normalizes any slice or array value into []any.
func toSlice(value any) ([]any, error) {
	if elems, ok := value.([]any); ok {
		return elems, nil
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("map input must be a sequence, got %T", value)
	}
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, nil
}
