package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/parser"
)

// Modifier runs inner to completion, letting it store its result normally,
// then calls fn for a side-effecting adjustment (deriving or rewriting a
// sibling field from what was just parsed). It produces no value of its
// own, so the generic evaluator is told Success: nothing further to store.
type Modifier struct {
	parser.Base
	inner parser.Parser
	fn    func(stack *parser.Stack) error
}

// NewModifier wraps inner with a post-hoc side effect.
func NewModifier(inner parser.Parser, fn func(stack *parser.Stack) error) Modifier {
	return Modifier{Base: parser.NewBase("Modifier"), inner: inner, fn: fn}
}

func (p Modifier) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p Modifier) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p Modifier) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	if err := parser.Evaluate(p.inner, m, stack); err != nil {
		return parser.Outcome{}, err
	}
	if p.fn != nil {
		if err := p.fn(stack); err != nil {
			return parser.Outcome{}, err
		}
	}
	return parser.Outcome{Kind: parser.Success}, nil
}
