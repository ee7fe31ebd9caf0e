package pipeline

import (
	"fmt"
	"strings"
)

// UnknownGraphError reports a build-time reference to a declaration key that
// does not exist in the set, or a Resolve call for a type with no declaration
// and no wildcard fallback.
type UnknownGraphError struct {
	Key      string
	Referrer string // declaration that referenced Key, empty for direct lookups
}

func (e *UnknownGraphError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("pipeline %q references undeclared pipeline %q", e.Referrer, e.Key)
	}
	return fmt.Sprintf("no pipeline declared for type %q and no %q fallback", e.Key, Wildcard)
}

// BuildError reports that a declaration could not be flattened into a valid
// graph. It is fatal for the document type: no instance of that type can be
// processed until the declaration is fixed.
type BuildError struct {
	Key      string
	Problems []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("pipeline %q failed to build:\n- %s", e.Key, strings.Join(e.Problems, "\n- "))
}

// UnknownOutputError reports a Get for a name no node in the instance's graph
// produces.
type UnknownOutputError struct {
	Name string
	Key  string
}

func (e *UnknownOutputError) Error() string {
	return fmt.Sprintf("pipeline %q produces no output named %q", e.Key, e.Name)
}

// CycleError reports a dependency cycle hit during resolution. Path lists the
// node IDs on the resolution path, with the node closing the cycle repeated
// at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// UnresolvedConfigError reports a required binding source that resolved to
// nothing: no constructor value, no configuration default, no producing node.
type UnresolvedConfigError struct {
	Name string
	Node string
}

func (e *UnresolvedConfigError) Error() string {
	return fmt.Sprintf("%s: no value or default for %q", e.Node, e.Name)
}

// NodeError wraps a failed operator invocation with the identity of the
// failing node and the output name originally requested from the instance.
type NodeError struct {
	Node      string
	Requested string
	Err       error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s (resolving %q): %v", e.Node, e.Requested, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
