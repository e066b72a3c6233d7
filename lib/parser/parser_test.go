package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebagchi/binraster/lib/databuffer"
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fbcontext"
	"github.com/thebagchi/binraster/lib/fberrors"
	"github.com/thebagchi/binraster/lib/leaf"
	"github.com/thebagchi/binraster/lib/parser"
)

func newRootStack(data []byte) (*dmanager.Manager, *parser.Stack, *fbcontext.Context) {
	root := dmanager.NewRoot(databuffer.FromBytes(data)).Enter()
	ctx := fbcontext.New()
	return root, parser.NewStack(ctx), ctx
}

func TestEvaluateStoresUnderExplicitLabel(t *testing.T) {
	m, stack, ctx := newRootStack([]byte{0x42})
	require.NoError(t, parser.Evaluate(leaf.NewByte().WithLabel("flag"), m, stack))
	assert.Equal(t, byte(0x42), ctx.Dict()["flag"])
}

func TestEvaluateStoresUnderBackupLabelWithAddress(t *testing.T) {
	m, stack, ctx := newRootStack([]byte{0x01, 0x02})
	require.NoError(t, parser.Evaluate(leaf.NewByte(), m, stack))
	require.NoError(t, parser.Evaluate(leaf.NewByte(), m, stack))
	dict := ctx.Dict()
	assert.Equal(t, byte(0x01), dict["byte_0x0"])
	assert.Equal(t, byte(0x02), dict["byte_0x1"])
}

func TestEvaluateEmitsSpacerWhenAddressAhead(t *testing.T) {
	m, stack, ctx := newRootStack([]byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, parser.Evaluate(leaf.NewByte().WithLabel("first"), m, stack))
	require.NoError(t, parser.Evaluate(leaf.NewByte().WithLabel("third").WithAddress(2), m, stack))

	dict := ctx.Dict()
	assert.Equal(t, byte(0xAA), dict["first"])
	assert.Equal(t, byte(0xCC), dict["third"])
	assert.Equal(t, []byte{0xBB}, dict["spacer_0x1"])
}

func TestEvaluateAddressOverrunErrors(t *testing.T) {
	m, stack, _ := newRootStack([]byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, parser.Evaluate(leaf.NewByte().WithLabel("first"), m, stack))
	require.NoError(t, parser.Evaluate(leaf.NewByte().WithLabel("second"), m, stack))

	err := parser.Evaluate(leaf.NewByte().WithAddress(0), m, stack)
	require.Error(t, err)
	kind, ok := fberrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, fberrors.AddressOverrun, kind)
}

func TestLookupSearchesHeadThenAncestors(t *testing.T) {
	outer := fbcontext.New()
	outer.Set("length", 5)
	outer.Set("shadowed", "outer")
	inner := fbcontext.New()
	inner.Set("shadowed", "inner")

	stack := parser.NewStack(outer).Push(inner)

	v, ok := stack.Lookup("length")
	require.True(t, ok)
	assert.Equal(t, 5, v)

	v, ok = stack.Lookup("shadowed")
	require.True(t, ok)
	assert.Equal(t, "inner", v)

	v, ok = stack.LookupAt(1, "shadowed")
	require.True(t, ok)
	assert.Equal(t, "outer", v)

	_, ok = stack.LookupAt(5, "length")
	assert.False(t, ok)
}

func TestEvaluatePropagatesLeafFailure(t *testing.T) {
	// A bare Failure (not wrapped in an optional scope) is not revertible:
	// Evaluate must propagate its error rather than silently swallow it.
	// Optional-scope suppression is exercised at the combinator level
	// (see lib/combinator's Section/Optional tests).
	m, stack, ctx := newRootStack([]byte{0x01})
	err := parser.Evaluate(leaf.NewFailure().WithLabel("never"), m, stack)
	assert.Error(t, err)
	_, ok := ctx.Get("never")
	assert.False(t, ok)
}
