package combinator

import (
	"reflect"

	"github.com/thebagchi/binraster/lib/bitbuffer"
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fberrors"
	"github.com/thebagchi/binraster/lib/leaf"
	"github.com/thebagchi/binraster/lib/parser"
)

// constParser runs inner to completion and asserts the decoded value equals
// want, failing with a *mismatch* error otherwise. On success it stores the
// value exactly as inner produced it, so a labeled Const behaves like any
// other field save for the added assertion.
type constParser struct {
	parser.Base
	inner parser.Parser
	want  any
}

// Const builds a parser asserting inner decodes to want.
func Const(inner parser.Parser, want any) parser.Parser {
	return constParser{Base: parser.NewBase("Const"), inner: inner, want: want}
}

// ConstFrom infers inner's shape from want's Go type: bool becomes a single
// bit, a small unsigned int becomes a byte, []byte becomes a fixed byte
// run, and a bitbuffer.BitBuffer becomes a matching-width bit word.
func ConstFrom(want any) (parser.Parser, error) {
	switch v := want.(type) {
	case bool:
		return Const(leaf.NewBit(), v), nil
	case uint8:
		return Const(leaf.NewByte(), v), nil
	case []byte:
		return Const(leaf.NewBytes(len(v)), v), nil
	case bitbuffer.BitBuffer:
		return Const(leaf.NewBitWord(v.Len()), v), nil
	default:
		return nil, fberrors.New(fberrors.Type, "no default leaf for constant value's type")
	}
}

func (p constParser) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p constParser) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p constParser) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	v, reverted, err := parser.EvaluateValue(p.inner, m, stack)
	if err != nil {
		return parser.Outcome{}, err
	}
	if reverted {
		return parser.Outcome{Kind: parser.Reverted}, nil
	}
	if !reflect.DeepEqual(v, p.want) {
		return parser.Outcome{}, fberrors.New(fberrors.Mismatch, "constant field did not match its expected value")
	}
	return parser.Outcome{Kind: parser.Value, Value: v}, nil
}
