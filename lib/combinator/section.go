package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/parser"
)

// Section groups a sequence of elements into their own addressing scope but
// writes directly into a child layer of the *enclosing* Context; once the
// scope completes, that layer is merged upward (so Section's elements end
// up flattened alongside their siblings, unlike Block's own nested map).
//
// An optional Section additionally makes its scope revertible: a
// recoverable failure anywhere inside is swallowed, the enclosing cursor is
// left untouched, and nothing the Section wrote is merged.
type Section struct {
	parser.Base
	elements []parser.Parser
	mode     dmanager.AddrMode
	optional bool
}

// NewSection builds a Section over elements.
func NewSection(elements []parser.Parser, mode dmanager.AddrMode, optional bool) Section {
	return Section{Base: parser.NewBase("Section"), elements: elements, mode: mode, optional: optional}
}

func (p Section) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p Section) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p Section) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	child, err := m.MakeChild(dmanager.ChildOptions{
		Relative:   true,
		AddrType:   p.mode,
		Revertible: p.optional,
	})
	if err != nil {
		return parser.Outcome{}, err
	}
	child.Enter()

	head := stack.Head()
	head.NewChild()
	innerErr := runElements(p.elements, child, stack)
	outerErr := child.Exit(innerErr)

	if innerErr != nil && outerErr == nil {
		head.DiscardChild()
		return parser.Outcome{Kind: parser.Reverted}, nil
	}
	if outerErr != nil {
		head.DiscardChild()
		return parser.Outcome{}, outerErr
	}
	return parser.Outcome{Kind: parser.Context}, nil
}
