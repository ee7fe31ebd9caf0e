package pipeline

import "sort"

// configDefault resolves a configuration name against the graph's flattened
// defaults. Construction-time overrides rank higher and are checked by the
// caller (they live in the instance seeds); among declared defaults the
// flattening already applied the graph's precedence rule, so the map holds
// the winning value per name.
func (in *Instance) configDefault(name string) (any, bool) {
	value, ok := in.graph.configs[name]
	return value, ok
}

// ConfigNames returns the sorted configuration names the graph declares
// defaults for. Mostly useful for diagnostics and tests.
func (g *ResolvedGraph) ConfigNames() []string {
	names := make([]string, 0, len(g.configs))
	for name := range g.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
