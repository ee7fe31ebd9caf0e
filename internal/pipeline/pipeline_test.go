package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipedox/internal/operator"
)

// countingOp is a minimal operator that records how many times it ran.
type countingOp struct {
	outputs []string
	calls   int
	fn      func(args operator.Args) (operator.Values, error)
}

func (c *countingOp) Meta() operator.Meta {
	return operator.Meta{Cacheable: true}
}

func (c *countingOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	c.calls++
	if c.fn != nil {
		return c.fn(args)
	}
	values := operator.Values{}
	for _, out := range c.outputs {
		values[out] = out + "-value"
	}
	return values, nil
}

func newInstance(t *testing.T, set DeclarationSet, typeKey string, seeds map[string]any) *Instance {
	t.Helper()
	d := NewDispatcher(set, nil)
	graph, err := d.Resolve(context.Background(), typeKey)
	require.NoError(t, err)
	return NewInstance(graph, seeds)
}

func TestGetCachesCacheableNode(t *testing.T) {
	op := &countingOp{outputs: []string{"x"}}
	set := DeclarationSet{
		"doc": {Entries: []Entry{NodeOp("count", op).Out("x")}},
	}
	in := newInstance(t, set, "doc", nil)

	v1, err := in.Get(context.Background(), "x")
	require.NoError(t, err)
	v2, err := in.Get(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, "x-value", v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, op.calls)
}

func TestGetRecomputesNonCacheableNode(t *testing.T) {
	op := &countingOp{outputs: []string{"x"}}
	set := DeclarationSet{
		"doc": {Entries: []Entry{NodeOp("count", op).Out("x").Cached(false)}},
	}
	in := newInstance(t, set, "doc", nil)

	_, err := in.Get(context.Background(), "x")
	require.NoError(t, err)
	_, err = in.Get(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, 2, op.calls)
}

func TestSiblingOutputsShareOneInvocation(t *testing.T) {
	op := &countingOp{outputs: []string{"a", "b"}}
	set := DeclarationSet{
		"doc": {Entries: []Entry{NodeOp("count", op).Out("a", "b")}},
	}
	in := newInstance(t, set, "doc", nil)

	a, err := in.Get(context.Background(), "a")
	require.NoError(t, err)
	b, err := in.Get(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, "a-value", a)
	assert.Equal(t, "b-value", b)
	assert.Equal(t, 1, op.calls)
}

func TestDirectEntryOverridesReference(t *testing.T) {
	set := DeclarationSet{
		"sub": {Entries: []Entry{Constant("x", "from-sub")}},
		"doc": {Entries: []Entry{
			Ref("sub"),
			Constant("x", "direct"),
		}},
	}
	in := newInstance(t, set, "doc", nil)

	v, err := in.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "direct", v)
}

func TestEarlierReferenceWinsTies(t *testing.T) {
	set := DeclarationSet{
		"a":   {Entries: []Entry{Constant("y", "from-a")}},
		"b":   {Entries: []Entry{Constant("y", "from-b")}},
		"doc": {Entries: []Entry{Ref("a"), Ref("b")}},
	}
	in := newInstance(t, set, "doc", nil)

	v, err := in.Get(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, "from-a", v)
}

func TestCycleIsDetectedAtResolution(t *testing.T) {
	p := &countingOp{fn: func(args operator.Args) (operator.Values, error) {
		return operator.Values{"p": "p"}, nil
	}}
	q := &countingOp{fn: func(args operator.Args) (operator.Values, error) {
		return operator.Values{"q": "q"}, nil
	}}
	set := DeclarationSet{
		"doc": {Entries: []Entry{
			NodeOp("p", p).Bind("in", "q").Out("p"),
			NodeOp("q", q).Bind("in", "p").Out("q"),
		}},
	}
	in := newInstance(t, set, "doc", nil)

	_, err := in.Get(context.Background(), "p")
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.GreaterOrEqual(t, len(cycleErr.Path), 2)
}

func TestUnknownOutputName(t *testing.T) {
	set := DeclarationSet{
		"doc": {Entries: []Entry{Constant("x", 1)}},
	}
	in := newInstance(t, set, "doc", nil)

	_, err := in.Get(context.Background(), "doesNotExist")
	var unknownErr *UnknownOutputError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "doesNotExist", unknownErr.Name)
	assert.False(t, in.Has("doesNotExist"))
	assert.True(t, in.Has("x"))
}

func TestConfigPrecedence(t *testing.T) {
	echo := Apply("chosen", func(_ context.Context, args operator.Args) (any, error) {
		return args["k"], nil
	}).Bind("k", "topK")

	set := DeclarationSet{
		"doc": {Entries: []Entry{
			echo,
			Config(map[string]any{"topK": 5}),
		}},
	}

	t.Run("constructor override beats declared default", func(t *testing.T) {
		in := newInstance(t, set, "doc", map[string]any{"topK": 20})
		v, err := in.Get(context.Background(), "chosen")
		require.NoError(t, err)
		assert.Equal(t, 20, v)
	})

	t.Run("declared default applies without override", func(t *testing.T) {
		in := newInstance(t, set, "doc", nil)
		v, err := in.Get(context.Background(), "chosen")
		require.NoError(t, err)
		assert.Equal(t, 5, v)
	})

	t.Run("earlier config entry beats referenced one", func(t *testing.T) {
		layered := DeclarationSet{
			"base": {Entries: []Entry{Config(map[string]any{"topK": 99})}},
			"doc": {Entries: []Entry{
				echo,
				Config(map[string]any{"topK": 5}),
				Ref("base"),
			}},
		}
		in := newInstance(t, layered, "doc", nil)
		v, err := in.Get(context.Background(), "chosen")
		require.NoError(t, err)
		assert.Equal(t, 5, v)
	})

	t.Run("no default and no override fails", func(t *testing.T) {
		bare := DeclarationSet{
			"doc": {
				Seeds:   []string{"topK"},
				Entries: []Entry{echo},
			},
		}
		in := newInstance(t, bare, "doc", nil)
		_, err := in.Get(context.Background(), "chosen")
		var unresolved *UnresolvedConfigError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "topK", unresolved.Name)
	})

	t.Run("optional binding is omitted instead of failing", func(t *testing.T) {
		opt := Apply("chosen", func(_ context.Context, args operator.Args) (any, error) {
			if v, ok := args["k"]; ok {
				return v, nil
			}
			return "absent", nil
		}).BindOpt("k", "topK")
		bare := DeclarationSet{
			"doc": {
				Seeds:   []string{"topK"},
				Entries: []Entry{opt},
			},
		}
		in := newInstance(t, bare, "doc", nil)
		v, err := in.Get(context.Background(), "chosen")
		require.NoError(t, err)
		assert.Equal(t, "absent", v)
	})
}

func TestWildcardFallback(t *testing.T) {
	set := DeclarationSet{
		Wildcard: {Entries: []Entry{Constant("kind", "generic")}},
		"html":   {Entries: []Entry{Constant("kind", "html")}},
	}
	d := NewDispatcher(set, nil)

	generic, err := d.Resolve(context.Background(), "application/x-unheard-of")
	require.NoError(t, err)
	html, err := d.Resolve(context.Background(), "html")
	require.NoError(t, err)

	assert.Equal(t, Wildcard, generic.Key())
	assert.Equal(t, "html", html.Key())
}

func TestDispatcherCachesBuilds(t *testing.T) {
	set := DeclarationSet{
		"doc": {Entries: []Entry{Constant("x", 1)}},
	}
	d := NewDispatcher(set, nil)

	g1, err := d.Resolve(context.Background(), "doc")
	require.NoError(t, err)
	g2, err := d.Resolve(context.Background(), "doc")
	require.NoError(t, err)
	assert.Same(t, g1, g2)
}

func TestUndeclaredReferenceFailsBuild(t *testing.T) {
	set := DeclarationSet{
		"doc": {Entries: []Entry{Ref("missing")}},
	}
	d := NewDispatcher(set, nil)

	_, err := d.Resolve(context.Background(), "doc")
	var unknown *UnknownGraphError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Key)
	assert.Equal(t, "doc", unknown.Referrer)

	// BuildAll surfaces the same failure before any document is processed.
	err = d.BuildAll(context.Background())
	require.ErrorAs(t, err, &unknown)
}

func TestReferenceCycleFailsBuild(t *testing.T) {
	set := DeclarationSet{
		"a": {Entries: []Entry{Ref("b")}},
		"b": {Entries: []Entry{Ref("a")}},
	}
	d := NewDispatcher(set, nil)

	_, err := d.Resolve(context.Background(), "a")
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestUnknownBindingSourceFailsBuild(t *testing.T) {
	set := DeclarationSet{
		"doc": {Entries: []Entry{
			Apply("x", func(_ context.Context, args operator.Args) (any, error) {
				return nil, nil
			}).Bind("in", "neverDeclared"),
		}},
	}
	d := NewDispatcher(set, nil)

	_, err := d.Resolve(context.Background(), "doc")
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, buildErr.Error(), "neverDeclared")
}

func TestOperatorErrorIsWrappedWithNodeIdentity(t *testing.T) {
	boom := errors.New("boom")
	failing := &countingOp{fn: func(operator.Args) (operator.Values, error) {
		return nil, boom
	}}
	set := DeclarationSet{
		"doc": {Entries: []Entry{
			NodeOp("explode", failing).Out("x"),
			Alias("y", "x"),
		}},
	}
	in := newInstance(t, set, "doc", nil)

	// Requesting "y" fails inside the producer of "x"; the error names the
	// failing node and the originally requested output.
	_, err := in.Get(context.Background(), "y")
	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Contains(t, nodeErr.Node, "explode")
	assert.Equal(t, "y", nodeErr.Requested)
	assert.ErrorIs(t, err, boom)

	// The failure is not cached; the operator is invoked again next time.
	_, err = in.Get(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 2, failing.calls)
}

func TestShadowedSiblingOutputKeepsWinningProducer(t *testing.T) {
	multi := &countingOp{outputs: []string{"a", "b"}}
	set := DeclarationSet{
		"doc": {Entries: []Entry{
			Constant("a", "winner"),
			NodeOp("multi", multi).Out("a", "b"),
		}},
	}
	in := newInstance(t, set, "doc", nil)

	// Resolving "b" runs the multi-output node, but its "a" value must not
	// displace the higher-priority constant.
	b, err := in.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "b-value", b)

	a, err := in.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "winner", a)
}

func TestSeedResolution(t *testing.T) {
	set := DeclarationSet{
		"doc": {
			Seeds: []string{"filename"},
			Entries: []Entry{
				Alias("name", "filename"),
			},
		},
	}
	in := newInstance(t, set, "doc", map[string]any{"filename": "report.pdf"})

	v, err := in.Get(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", v)
}

func TestNodeSpecBuilderIsImmutable(t *testing.T) {
	base := Node("pdfText").Bind("fobj", "fobj").Out("full_text")
	cached := base.Cached(false)
	extended := base.Out("tables")

	assert.True(t, base.Cacheable())
	assert.False(t, cached.Cacheable())
	assert.Equal(t, []string{"full_text"}, base.Outputs())
	assert.Equal(t, []string{"full_text", "tables"}, extended.Outputs())
}
