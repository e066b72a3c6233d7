package fbcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestSetDeduplicatesUnsuffixedKeys(t *testing.T) {
	c := New()
	k1 := c.Set("byte_0x0", 1)
	k2 := c.Set("byte_0x0", 2)
	k3 := c.Set("byte_0x0", 3)
	assert.Equal(t, "byte_0x0", k1)
	assert.Equal(t, "byte_0x0 1", k2)
	assert.Equal(t, "byte_0x0 2", k3)
}

func TestGetSearchesNewestFirst(t *testing.T) {
	c := New()
	c.Set("a", "outer")
	c.NewChild()
	c.Set("a", "inner")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "inner", v)
}

func TestUpdateExtMergesAndDeduplicates(t *testing.T) {
	c := New()
	c.Set("x", "outer-x")
	c.NewChild()
	c.Set("x", "inner-x")
	c.Set("y", "inner-y")
	c.UpdateExt()

	dict := c.Dict()
	assert.Equal(t, "inner-y", dict["y"])
	assert.Equal(t, "inner-x", dict["x 1"])
	assert.Equal(t, "outer-x", dict["x"])
}

func TestDiscardChildDropsWithoutMerge(t *testing.T) {
	c := New()
	c.Set("x", "outer-x")
	c.NewChild()
	c.Set("x", "inner-x")
	c.DiscardChild()

	dict := c.Dict()
	assert.Equal(t, "outer-x", dict["x"])
	_, exists := dict["x 1"]
	assert.False(t, exists)
}

func TestUpdateExtRequiresTwoLayers(t *testing.T) {
	c := New()
	assert.Panics(t, func() { c.UpdateExt() })
}
