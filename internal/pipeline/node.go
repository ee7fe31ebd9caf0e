package pipeline

import (
	"fmt"
	"strings"

	"github.com/vk/pipedox/internal/operator"
)

// Binding wires one operator parameter to a source name. The source is
// resolved at call time against, in order, the instance's constructor seed
// attributes, the graph's configuration defaults, and finally the output of
// another node. An optional binding that resolves to nothing is omitted from
// the operator call instead of failing it.
type Binding struct {
	Param    string
	Source   string
	Optional bool
}

// NodeSpec is the immutable descriptor of a single graph node: which operator
// runs, how its parameters are bound, which output names it produces, and
// whether its results are memoized per instance.
//
// A NodeSpec is built fluently; every builder method returns a copy, so specs
// can safely be shared between declarations and reused as templates.
type NodeSpec struct {
	opName    string
	op        operator.Operator
	bindings  []Binding
	outputs   []string
	cacheable bool
}

// Node starts a NodeSpec for a registered operator name. The operator itself
// is looked up when the graph is built, so unknown names fail at build time,
// not mid-resolution.
func Node(opName string) *NodeSpec {
	return &NodeSpec{opName: opName, cacheable: true}
}

// NodeOp starts a NodeSpec around an inline operator instance, bypassing the
// registry. Used by combinators and tests; the cacheable default comes from
// the operator's own metadata.
func NodeOp(opName string, op operator.Operator) *NodeSpec {
	return &NodeSpec{opName: opName, op: op, cacheable: op.Meta().Cacheable}
}

func (n *NodeSpec) clone() *NodeSpec {
	c := *n
	c.bindings = append([]Binding(nil), n.bindings...)
	c.outputs = append([]string(nil), n.outputs...)
	return &c
}

// Bind wires the operator parameter param to the named source.
func (n *NodeSpec) Bind(param, source string) *NodeSpec {
	c := n.clone()
	c.bindings = append(c.bindings, Binding{Param: param, Source: source})
	return c
}

// BindOpt wires param to source like Bind, but marks the binding optional:
// if the source cannot be resolved the parameter is simply left out of the
// operator call.
func (n *NodeSpec) BindOpt(param, source string) *NodeSpec {
	c := n.clone()
	c.bindings = append(c.bindings, Binding{Param: param, Source: source, Optional: true})
	return c
}

// Out declares the output names this node produces, in order. All of them are
// populated from a single operator invocation.
func (n *NodeSpec) Out(names ...string) *NodeSpec {
	c := n.clone()
	c.outputs = append(c.outputs, names...)
	return c
}

// Cached overrides whether the node's outputs are memoized per instance.
// Non-cacheable nodes recompute on every request.
func (n *NodeSpec) Cached(cacheable bool) *NodeSpec {
	c := n.clone()
	c.cacheable = cacheable
	return c
}

// OpName returns the operator name the node was declared with.
func (n *NodeSpec) OpName() string { return n.opName }

// Outputs returns the declared output names.
func (n *NodeSpec) Outputs() []string { return append([]string(nil), n.outputs...) }

// Bindings returns the declared input bindings.
func (n *NodeSpec) Bindings() []Binding { return append([]Binding(nil), n.bindings...) }

// Cacheable reports whether the node's outputs are memoized per instance.
func (n *NodeSpec) Cacheable() bool { return n.cacheable }

// ID returns a stable identifier for diagnostics, e.g. "node.pdfText(full_text,tables)".
func (n *NodeSpec) ID() string {
	return fmt.Sprintf("node.%s(%s)", n.opName, strings.Join(n.outputs, ","))
}

func (n *NodeSpec) entry() {}
