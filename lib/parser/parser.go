// Package parser defines the abstract parser contract shared by every leaf
// and combinator in the tree: an optional label, an optional target
// address, a backup label used when no label is set, sequential
// evaluation, spacer emission, and the translation pipeline.
//
// Concrete parsers are immutable values; WithLabel/WithAddress return cheap
// modified copies, the Go analog of a `P >> "k"` / `P @ n` operator-sugar
// style found in declarative parser DSLs. Go has no operator overloading,
// so the sugar becomes plain methods.
package parser

import (
	"fmt"

	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fbcontext"
	"github.com/thebagchi/binraster/lib/fberrors"
)

// Kind classifies what a parser's Read produced.
type Kind int

const (
	// Value means Outcome.Value holds a decoded value to be stored under
	// the parser's effective label.
	Value Kind = iota
	// Success means the parser already stored its result directly; the
	// generic evaluator does nothing further.
	Success
	// Reverted means an optional scope suppressed a recoverable failure;
	// nothing should be stored.
	Reverted
	// Context means the parser (a Section or Repeat) wrote into a child
	// layer of the enclosing Context and that layer must now be merged
	// with UpdateExt.
	Context
	// Merge means Outcome.Value holds a map whose entries are folded
	// directly into the enclosing Context rather than nested under a
	// label; produced by an unlabeled Block.
	Merge
)

// Outcome is what a Parser's Read returns before translation/storage.
type Outcome struct {
	Kind  Kind
	Value any
}

// Base holds the three mutable visibles common to every parser: label,
// address, and the backup label used when no label is set. Concrete types
// embed Base and implement WithLabel/WithAddress themselves (Go has no way
// to covariantly return the embedding type from a promoted method).
type Base struct {
	label       string
	hasAddress  bool
	address     int
	backupLabel string
}

// NewBase builds a Base with the given default backup label.
func NewBase(backupLabel string) Base {
	return Base{backupLabel: backupLabel}
}

func (b Base) Label() string       { return b.label }
func (b Base) HasAddress() bool    { return b.hasAddress }
func (b Base) Address() int        { return b.address }
func (b Base) BackupLabel() string { return b.backupLabel }

// Relabel returns a copy of b with label set. Concrete types use this to
// implement WithLabel: `func (p T) WithLabel(l string) Parser { p.Base =
// p.Base.Relabel(l); return p }`.
func (b Base) Relabel(label string) Base {
	b.label = label
	return b
}

// Readdress returns a copy of b with an explicit target address set.
func (b Base) Readdress(addr int) Base {
	b.hasAddress = true
	b.address = addr
	return b
}

// Translate is the identity translation; concrete parsers override it by
// defining their own Translate method, which shadows this promoted one.
func (b Base) Translate(v any) (any, error) { return v, nil }

// Parser is the contract every leaf and combinator satisfies.
type Parser interface {
	Label() string
	HasAddress() bool
	Address() int
	BackupLabel() string
	WithLabel(label string) Parser
	WithAddress(addr int) Parser
	Read(m *dmanager.Manager, stack *Stack) (Outcome, error)
	Translate(v any) (any, error)
}

// Stack is the tuple of contexts combinators propagate: Head is where the
// current combinator writes, the remainder are ancestor contexts from
// unrelated parser subtrees encountered during a nested parse, kept around
// so inner parsers can look values up by key across scopes.
type Stack struct {
	layers []*fbcontext.Context
}

// NewStack builds a Stack with root as its sole (and head) entry.
func NewStack(root *fbcontext.Context) *Stack {
	return &Stack{layers: []*fbcontext.Context{root}}
}

// Head returns the context the current combinator writes into.
func (s *Stack) Head() *fbcontext.Context {
	return s.layers[0]
}

// Push returns a new Stack with ctx as its head and s's contexts as
// ancestors, used when a Block starts a brand-new Context for its own
// subtree.
func (s *Stack) Push(ctx *fbcontext.Context) *Stack {
	layers := make([]*fbcontext.Context, 0, len(s.layers)+1)
	layers = append(layers, ctx)
	layers = append(layers, s.layers...)
	return &Stack{layers: layers}
}

// Lookup searches the head context first, then each ancestor context in
// turn, for key.
func (s *Stack) Lookup(key string) (any, bool) {
	for _, ctx := range s.layers {
		if v, ok := ctx.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

// LookupAt reads key from the stack entry at index (0 is the head), for
// lookups that must target one specific scope rather than take the newest
// match.
func (s *Stack) LookupAt(index int, key string) (any, bool) {
	if index < 0 || index >= len(s.layers) {
		return nil, false
	}
	return s.layers[index].Get(key)
}

// Depth reports how many contexts the stack currently holds.
func (s *Stack) Depth() int {
	return len(s.layers)
}

// effectiveLabel resolves the key a parser's result is stored under: the
// explicit label if set, else "<BackupLabel>_<hex(addr)>" using the
// pre-read address.
func effectiveLabel(p Parser, preAddr int) string {
	if p.Label() != "" {
		return p.Label()
	}
	return fmt.Sprintf("%s_0x%x", p.BackupLabel(), preAddr)
}

// spacerLabel synthesizes the label for a spacer covering [c, t).
func spacerLabel(c, t int) string {
	if t-c == 1 {
		return fmt.Sprintf("spacer_0x%x", c)
	}
	return fmt.Sprintf("spacer_0x%x-0x%x", c, t-1)
}

// runSpacer reads (target-current) units from m (bits or bytes depending on
// m's mode) and stores them under a synthesized spacer label in head. A
// zero-length spacer is a no-op; current > target is an address-overrun.
func runSpacer(m *dmanager.Manager, head *fbcontext.Context, current, target int) error {
	if current > target {
		return fberrors.New(fberrors.AddressOverrun, "target address has already been passed")
	}
	if current == target {
		return nil
	}
	n := int64(target - current)
	data, err := m.Read(&n)
	if err != nil {
		return err
	}
	head.Set(spacerLabel(current, target), data.Bytes())
	return nil
}

// evaluate runs the addressing/spacer step, delegates to Read, then runs
// Translate over Value outcomes. It does not store anything into a
// context; callers decide how to use the outcome. preAddr is the address
// the parser itself was read at, recorded after any spacer so unlabeled
// fields are keyed by their actual position.
func evaluate(p Parser, m *dmanager.Manager, stack *Stack) (out Outcome, preAddr int, err error) {
	if p.HasAddress() {
		cur, err := m.Address()
		if err != nil {
			return Outcome{}, 0, err
		}
		if err := runSpacer(m, stack.Head(), cur, p.Address()); err != nil {
			return Outcome{}, 0, annotate(p, m, err)
		}
	}

	preAddr, err = m.Address()
	if err != nil {
		return Outcome{}, 0, err
	}

	out, err = p.Read(m, stack)
	if err != nil {
		return Outcome{}, 0, annotate(p, m, err)
	}

	if out.Kind != Value {
		return out, preAddr, nil
	}

	v, err := p.Translate(out.Value)
	if err != nil {
		return Outcome{}, 0, annotate(p, m, err)
	}
	out.Value = v
	return out, preAddr, nil
}

// Evaluate runs p against m and stores its result into stack's head
// context: a Reverted outcome stores nothing, a Context outcome is merged
// with UpdateExt, a Merge outcome's map entries fold directly into the
// head, a Success outcome is left alone (the parser already stored it),
// and any other outcome is stored under p's effective label.
func Evaluate(p Parser, m *dmanager.Manager, stack *Stack) error {
	out, preAddr, err := evaluate(p, m, stack)
	if err != nil {
		return err
	}

	switch out.Kind {
	case Reverted:
		return nil
	case Context:
		stack.Head().UpdateExt()
		return nil
	case Merge:
		if fields, ok := out.Value.(map[string]any); ok {
			stack.Head().Update(fields)
		}
		return nil
	case Success:
		return nil
	default:
		stack.Head().Set(effectiveLabel(p, preAddr), out.Value)
		return nil
	}
}

// EvaluateValue is the Array/Translator/Const-facing variant of Evaluate:
// it runs p and returns its decoded value directly instead of storing it
// under a label, along with whether the iteration reverted. It is meant
// for Value/Success/Reverted-shaped inner parsers (Block, Translator, and
// the leaves); a Context-shaped inner parser stores through the stack as
// usual and yields no value here.
func EvaluateValue(p Parser, m *dmanager.Manager, stack *Stack) (value any, reverted bool, err error) {
	out, _, err := evaluate(p, m, stack)
	if err != nil {
		return nil, false, err
	}
	switch out.Kind {
	case Reverted:
		return nil, true, nil
	case Context:
		// The inner parser left a filled child layer behind; fold it in so
		// the layer stack stays balanced even without a storing caller.
		stack.Head().UpdateExt()
		return nil, false, nil
	case Success:
		return nil, false, nil
	default:
		// Value and Merge both carry the decoded value verbatim; an
		// unlabeled Block iterated by an Array contributes its sub-map as
		// a plain entry.
		return out.Value, false, nil
	}
}

// annotate attaches the offending parser's label/address and the manager's
// absolute cursor to a propagating *fberrors.Error.
func annotate(p Parser, m *dmanager.Manager, err error) error {
	fe, ok := err.(*fberrors.Error)
	if !ok {
		return err
	}
	return fe.WithSite(p.Label(), p.Address(), p.HasAddress(), m.Cursor())
}
