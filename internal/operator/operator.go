package operator

import "context"

// Args carries the resolved, named inputs for one operator invocation.
type Args map[string]any

// Values carries the named outputs produced by one operator invocation.
type Values map[string]any

// Param describes one declared input parameter of an operator.
type Param struct {
	Name     string
	Optional bool
}

// Meta is the static metadata an operator exposes to the engine: which
// named inputs it consumes, which named outputs it produces, and whether
// its results may be memoized per document instance.
type Meta struct {
	Inputs    []Param
	Outputs   []string
	Cacheable bool
}

// Operator is the contract every pluggable computation implements. The
// engine resolves the declared inputs, invokes the operator once, and
// distributes the returned values under their declared output names.
//
// Invoke must run to completion before returning; the engine performs no
// locking around the call, so any shared state an operator touches (model
// caches and the like) must carry its own thread-safety guarantee.
type Operator interface {
	Invoke(ctx context.Context, args Args) (Values, error)
	Meta() Meta
}

// Inputs is a convenience constructor for required parameter lists.
func Inputs(names ...string) []Param {
	params := make([]Param, len(names))
	for i, name := range names {
		params[i] = Param{Name: name}
	}
	return params
}

// Required reports the names of the operator's non-optional parameters.
func (m Meta) Required() []string {
	var names []string
	for _, p := range m.Inputs {
		if !p.Optional {
			names = append(names, p.Name)
		}
	}
	return names
}

// ProducesOutput reports whether name is among the operator's declared outputs.
func (m Meta) ProducesOutput(name string) bool {
	for _, out := range m.Outputs {
		if out == name {
			return true
		}
	}
	return false
}
