// Command binraster is a small demonstration driver: it parses a file with
// a fixed, illustrative format (a magic byte, a little-endian length, and
// a payload of that many bytes) and prints the result as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/thebagchi/binraster"
	"github.com/thebagchi/binraster/lib/combinator"
	"github.com/thebagchi/binraster/lib/decode"
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/leaf"
	"github.com/thebagchi/binraster/lib/parser"
)

// sampleTree describes: a one-byte magic number (0x7F), a little-endian
// uint32 payload length, and the payload itself.
func sampleTree() parser.Parser {
	return combinator.NewBlock([]parser.Parser{
		combinator.Const(leaf.NewByte(), uint8(0x7F)).WithLabel("magic"),
		decode.UInt32L().WithLabel("length"),
		leaf.NewVarBytes("length").WithLabel("payload"),
	}, dmanager.Byte)
}

func main() {
	var (
		filename = flag.String("file", "", "binary file to parse")
	)
	flag.Parse()
	if len(*filename) == 0 {
		fmt.Fprintln(os.Stderr, "Error: input file required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		os.Exit(1)
	}

	result, err := binraster.Parse(sampleTree(), data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
