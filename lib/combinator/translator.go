package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/parser"
)

// Translator runs inner to completion (its own addressing, read, and
// translation included), then applies an additional transform to the
// resulting value. It is how a derived field ("celsius from raw tenths of a
// degree", "enum name from a raw byte") is expressed without writing a new
// leaf type.
type Translator struct {
	parser.Base
	inner parser.Parser
	fn    func(any) (any, error)
}

// NewTranslator wraps inner with fn.
func NewTranslator(inner parser.Parser, backupLabel string, fn func(any) (any, error)) Translator {
	return Translator{Base: parser.NewBase(backupLabel), inner: inner, fn: fn}
}

func (p Translator) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p Translator) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p Translator) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	v, reverted, err := parser.EvaluateValue(p.inner, m, stack)
	if err != nil {
		return parser.Outcome{}, err
	}
	if reverted {
		return parser.Outcome{Kind: parser.Reverted}, nil
	}
	return parser.Outcome{Kind: parser.Value, Value: v}, nil
}

func (p Translator) Translate(v any) (any, error) {
	return p.fn(v)
}
