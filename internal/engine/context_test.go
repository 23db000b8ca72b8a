package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

func TestContext_Stacks(t *testing.T) {
	ctx := NewContext()
	require.Nil(t, ctx.CurrentGlobal())
	require.Empty(t, ctx.CurrentSourceFile())

	a, b := value.NewScope(), value.NewScope()
	ctx.PushGlobal(a)
	ctx.PushGlobal(b)
	require.Equal(t, 2, ctx.GlobalDepth())
	require.Same(t, b, ctx.CurrentGlobal())
	require.Same(t, b, ctx.PopGlobal())
	require.Same(t, a, ctx.CurrentGlobal())

	ctx.PushSourceFile("one")
	ctx.PushSourceFile("two")
	require.Equal(t, "two", ctx.CurrentSourceFile())
	require.Equal(t, "two", ctx.PopSourceFile())
	require.Equal(t, 1, ctx.SourceFileDepth())
}

func TestContext_EmptyPopsPanic(t *testing.T) {
	require.Panics(t, func() { NewContext().PopGlobal() })
	require.Panics(t, func() { NewContext().PopSourceFile() })
	require.Panics(t, func() { NewContext().PushGlobal(nil) })
}

func TestContext_Lookup(t *testing.T) {
	ctx := NewContext()
	ctx.PushGlobal(value.ScopeFromMap(map[string]any{"a": "outer"}))
	ctx.PushGlobal(value.ScopeFromMap(map[string]any{"a": "inner"}))

	v, ok := ctx.Lookup("a")
	require.True(t, ok)
	require.Equal(t, "inner", v.Str())

	_, ok = ctx.Lookup("missing")
	require.False(t, ok)
}
