package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/pipedox/internal/operator"
)

// Module is the interface extractor packages implement to plug their
// operators into an application instance.
type Module interface {
	Register(r *Registry)
}

// Registry maps the operator names used in pipeline declarations to their
// compiled Go implementations. It is populated once at startup and read-only
// afterwards.
type Registry struct {
	operators map[string]operator.Operator
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{operators: make(map[string]operator.Operator)}
}

// Register adds an operator under name. Two modules claiming the same name
// is a programming error, so it panics rather than silently shadowing.
func (r *Registry) Register(name string, op operator.Operator) {
	if _, exists := r.operators[name]; exists {
		panic(fmt.Sprintf("operator with name '%s' already registered", name))
	}
	slog.Debug("Registering operator.", "name", name)
	r.operators[name] = op
}

// Lookup resolves a registered operator by name. It satisfies
// pipeline.OperatorLookup.
func (r *Registry) Lookup(name string) (operator.Operator, bool) {
	op, ok := r.operators[name]
	return op, ok
}

// Names returns the sorted names of all registered operators.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install runs every module's Register hook against the registry.
func (r *Registry) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}
