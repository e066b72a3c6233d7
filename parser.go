// Package binraster is the top-level façade: build a parser tree out of
// lib/leaf, lib/combinator, and lib/decode, then hand it to Parse or
// ParseReader to run it over a byte slice or a streaming source.
package binraster

import (
	"io"

	"github.com/thebagchi/binraster/lib/databuffer"
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fbcontext"
	"github.com/thebagchi/binraster/lib/parser"
)

// Parse runs tree over the full contents of data and returns the flattened
// result map.
func Parse(tree parser.Parser, data []byte) (map[string]any, error) {
	return run(tree, databuffer.FromBytes(data))
}

// ParseReader runs tree over a streaming source, pulling more data as the
// parse needs it.
func ParseReader(tree parser.Parser, r io.Reader) (map[string]any, error) {
	return run(tree, databuffer.FromReader(r))
}

func run(tree parser.Parser, buf *databuffer.DataBuffer) (map[string]any, error) {
	root := dmanager.NewRoot(buf).Enter()
	ctx := fbcontext.New()
	stack := parser.NewStack(ctx)

	err := parser.Evaluate(tree, root, stack)
	if exitErr := root.Exit(err); exitErr != nil {
		return nil, exitErr
	}
	if err != nil {
		return nil, err
	}
	return ctx.Dict(), nil
}
