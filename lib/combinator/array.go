package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/parser"
)

// Array runs inner count times, accumulating each iteration's decoded value
// (not its storage key) into a plain ordered Go slice. A reverted iteration
// appends a nil entry rather than stopping the array, mirroring a Block's
// own optional-element behavior one level down.
type Array struct {
	parser.Base
	inner parser.Parser
	count int
}

// NewArray builds an Array running inner count times.
func NewArray(inner parser.Parser, count int) Array {
	return Array{Base: parser.NewBase("Array"), inner: inner, count: count}
}

func (p Array) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p Array) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p Array) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	out := make([]any, 0, p.count)
	for i := 0; i < p.count; i++ {
		v, reverted, err := parser.EvaluateValue(p.inner, m, stack)
		if err != nil {
			return parser.Outcome{}, err
		}
		if reverted {
			out = append(out, nil)
			continue
		}
		out = append(out, v)
	}
	return parser.Outcome{Kind: parser.Value, Value: out}, nil
}
