// Package fbcontext implements the hierarchical key→value result store:
// a stack of maps, read newest-first, with automatic key deduplication and
// deferred merge-into-parent.
package fbcontext

import (
	"strconv"
	"strings"
)

// Context is a stack of layers. Reads search newest (top) to oldest
// (bottom); writes only ever touch the top layer.
type Context struct {
	layers []map[string]any
}

// New creates a Context with a single empty layer.
func New() *Context {
	return &Context{layers: []map[string]any{{}}}
}

// NewChild pushes a fresh, empty top layer onto c. The rest of the stack
// remains read-visible.
func (c *Context) NewChild() {
	c.layers = append(c.layers, map[string]any{})
}

// UpdateExt merges the top layer into the layer below it (applying the
// deduplication rule to each key) and removes the top layer from the stack.
// Requires at least two layers.
func (c *Context) UpdateExt() {
	if len(c.layers) < 2 {
		panic("fbcontext: UpdateExt requires at least two layers")
	}
	top := c.layers[len(c.layers)-1]
	parent := c.layers[len(c.layers)-2]
	for _, key := range orderedKeys(top) {
		parent[uniquify(key, parent)] = top[key]
	}
	c.layers = c.layers[:len(c.layers)-1]
	c.layers[len(c.layers)-1] = parent
}

// DiscardChild drops the top layer without merging it, used when a
// revertible scope's contents must be thrown away. Requires at least two
// layers.
func (c *Context) DiscardChild() {
	if len(c.layers) < 2 {
		panic("fbcontext: DiscardChild requires at least two layers")
	}
	c.layers = c.layers[:len(c.layers)-1]
}

// Update merges m's entries into the top layer, applying the deduplication
// rule to each key. Keys merge in sorted order so suffix assignment is
// deterministic.
func (c *Context) Update(m map[string]any) {
	top := c.layers[len(c.layers)-1]
	for _, key := range orderedKeys(m) {
		top[uniquify(key, top)] = m[key]
	}
}

// Set stores v under k in the top layer, renaming on collision per the
// deduplication rule, and returns the key actually used.
func (c *Context) Set(k string, v any) string {
	top := c.layers[len(c.layers)-1]
	key := uniquify(k, top)
	top[key] = v
	return key
}

// Get searches the stack newest-first for k and reports whether it was
// found.
func (c *Context) Get(k string) (any, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if v, ok := c.layers[i][k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Dict snapshots the effective (newest-wins) view of the stack into a
// plain map.
func (c *Context) Dict() map[string]any {
	out := map[string]any{}
	for _, layer := range c.layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// uniquify implements the Context insertion rule: split k at whitespace; if
// the last token is numeric, treat k as already-suffixed (base = k without
// the last token, i = that token's value); otherwise base = k, i = 1. While
// candidate is present in layer, replace candidate with "{base} {i}" and
// increment i. Returns the first non-colliding candidate.
func uniquify(k string, layer map[string]any) string {
	base := k
	i := 1
	if idx := strings.LastIndex(k, " "); idx >= 0 {
		if n, err := strconv.Atoi(k[idx+1:]); err == nil {
			base = k[:idx]
			i = n
		}
	}
	candidate := k
	for {
		if _, exists := layer[candidate]; !exists {
			return candidate
		}
		candidate = base + " " + strconv.Itoa(i)
		i++
	}
}

// orderedKeys returns m's keys in a stable order so that repeated
// UpdateExt/Update calls over the same input produce deterministic
// " N" suffix assignment.
func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order isn't tracked by a plain map; callers that care about
	// exact suffix assignment order should use Set in the desired order and
	// avoid relying on UpdateExt's internal map iteration for ties. Sorting
	// keeps output at least reproducible across runs.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
