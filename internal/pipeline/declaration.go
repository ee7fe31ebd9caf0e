package pipeline

// Wildcard is the universal document-type key. A type key with no declaration
// of its own falls back to the wildcard graph.
const Wildcard = "*"

// Entry is one element of a Declaration's ordered list: a NodeSpec, a
// reference to another declared type key, or a block of configuration
// defaults.
type Entry interface {
	entry()
}

// refEntry pulls in another declaration by key, at lower priority than
// everything declared directly before it.
type refEntry struct {
	key string
}

func (refEntry) entry() {}

// Ref returns an entry that includes the declaration registered under key as
// a sub-graph. References rank below direct entries; among several
// references, the one listed first wins ties.
func Ref(key string) Entry {
	return refEntry{key: key}
}

// configEntry supplies default values for configuration names. It never
// becomes a data-flow edge; it only feeds the configuration resolver.
type configEntry struct {
	defaults map[string]any
}

func (configEntry) entry() {}

// Config returns an entry declaring configuration defaults. Defaults follow
// the same precedence rule as outputs: the first declaration of a name wins,
// and constructor-supplied instance values override all of them.
func Config(defaults map[string]any) Entry {
	copied := make(map[string]any, len(defaults))
	for name, value := range defaults {
		copied[name] = value
	}
	return configEntry{defaults: copied}
}

// Declaration is the ordered processing-graph description for one document
// type. Seeds names the constructor-supplied instance attributes the graph's
// bindings may refer to; the builder validates bindings against them.
type Declaration struct {
	Seeds   []string
	Entries []Entry
}

// DeclarationSet maps document-type keys to their declarations. It is read
// once at graph-build time and must not be mutated afterwards.
type DeclarationSet map[string]*Declaration
