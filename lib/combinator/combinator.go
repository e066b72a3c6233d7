// Package combinator implements the structural parsers that compose leaves
// and other combinators into a tree: Block, Section (and its Optional
// sugar), Repeat, Array, Translator, Const, and Modifier.
package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/parser"
)

// runElements evaluates each element of a Block/Section body in
// sequence against m and stack, stopping at the first error.
func runElements(elements []parser.Parser, m *dmanager.Manager, stack *parser.Stack) error {
	for _, e := range elements {
		if err := parser.Evaluate(e, m, stack); err != nil {
			return err
		}
	}
	return nil
}
