package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fbcontext"
	"github.com/thebagchi/binraster/lib/parser"
)

// Block groups a sequence of elements into their own addressing scope and
// their own, independent Context. Once the scope completes, a labeled
// Block's flattened contents become a single nested map stored under its
// label; an unlabeled Block's contents merge directly into the enclosing
// Context instead.
type Block struct {
	parser.Base
	elements []parser.Parser
	mode     dmanager.AddrMode
}

// NewBlock builds a Block over elements, addressed in mode (Bit or Byte;
// Parent inherits the enclosing scope's mode).
func NewBlock(elements []parser.Parser, mode dmanager.AddrMode) Block {
	return Block{Base: parser.NewBase("Block"), elements: elements, mode: mode}
}

// Optional wraps inner in a Section marked optional: a recoverable failure
// anywhere inside inner is suppressed and the enclosing tree continues with
// nothing stored for inner. It is sugar for Section([inner], optional=true).
func Optional(inner parser.Parser) Section {
	return NewSection([]parser.Parser{inner}, dmanager.Parent, true)
}

func (p Block) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p Block) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p Block) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	child, err := m.MakeChild(dmanager.ChildOptions{
		Relative: true,
		AddrType: p.mode,
	})
	if err != nil {
		return parser.Outcome{}, err
	}
	child.Enter()

	ctx := fbcontext.New()
	childStack := stack.Push(ctx)
	innerErr := runElements(p.elements, child, childStack)
	outerErr := child.Exit(innerErr)

	if innerErr != nil && outerErr == nil {
		return parser.Outcome{Kind: parser.Reverted}, nil
	}
	if outerErr != nil {
		return parser.Outcome{}, outerErr
	}
	if p.Label() == "" {
		return parser.Outcome{Kind: parser.Merge, Value: ctx.Dict()}, nil
	}
	return parser.Outcome{Kind: parser.Value, Value: ctx.Dict()}, nil
}
