package combinator

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fberrors"
	"github.com/thebagchi/binraster/lib/leaf"
	"github.com/thebagchi/binraster/lib/parser"
)

// Repeat runs inner n times, each iteration storing into the same child
// layer of the enclosing Context (so repeated unlabeled or same-labeled
// iterations pick up the " N" deduplication suffix), then merges that layer
// upward once all iterations complete. count is either an int literal or a
// string naming a context-stack key (resolved the same way VarBytes
// resolves its length), matching the source's "n may be an integer or a
// key to look up" contract.
type Repeat struct {
	parser.Base
	inner    parser.Parser
	count    any
	mode     dmanager.AddrMode
	optional bool
}

// NewRepeat builds a Repeat running inner count times. count must be an int
// or a string key.
func NewRepeat(inner parser.Parser, count any, mode dmanager.AddrMode, optional bool) Repeat {
	return Repeat{Base: parser.NewBase("Repeat"), inner: inner, count: count, mode: mode, optional: optional}
}

func (p Repeat) resolveCount(stack *parser.Stack) (int, error) {
	switch c := p.count.(type) {
	case int:
		return c, nil
	case string:
		v, ok := stack.Lookup(c)
		if !ok {
			return 0, fberrors.New(fberrors.State, "repeat count source key not found in context")
		}
		return leaf.AsInt(v)
	default:
		return 0, fberrors.New(fberrors.Type, "repeat count must be an int or a string key")
	}
}

func (p Repeat) WithLabel(label string) parser.Parser {
	p.Base = p.Base.Relabel(label)
	return p
}

func (p Repeat) WithAddress(addr int) parser.Parser {
	p.Base = p.Base.Readdress(addr)
	return p
}

func (p Repeat) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	count, err := p.resolveCount(stack)
	if err != nil {
		return parser.Outcome{}, err
	}

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

	var innerErr error
	for i := 0; i < count; i++ {
		if innerErr = parser.Evaluate(p.inner, child, stack); innerErr != nil {
			break
		}
	}
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
