// Package leaf implements the primitive readers at the bottom of a parser
// tree: fixed and variable byte runs, single bits and bit words, padding to
// an address, reading the remainder of the input, and a Failure leaf used
// to exercise optional/revertible scopes.
package leaf

import (
	"github.com/thebagchi/binraster/lib/dmanager"
	"github.com/thebagchi/binraster/lib/fberrors"
	"github.com/thebagchi/binraster/lib/parser"
)

func n64(n int) *int64 {
	v := int64(n)
	return &v
}

// Byte reads a single byte.
type Byte struct{ parser.Base }

func NewByte() Byte { return Byte{parser.NewBase("byte")} }

func (p Byte) WithLabel(l string) parser.Parser   { p.Base = p.Base.Relabel(l); return p }
func (p Byte) WithAddress(a int) parser.Parser    { p.Base = p.Base.Readdress(a); return p }
func (p Byte) Read(m *dmanager.Manager, _ *parser.Stack) (parser.Outcome, error) {
	raw, err := m.ReadBytes(n64(1))
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Kind: parser.Value, Value: raw[0]}, nil
}

// Bytes reads a fixed count of bytes.
type Bytes struct {
	parser.Base
	count int
}

func NewBytes(count int) Bytes { return Bytes{Base: parser.NewBase("bytes"), count: count} }

func (p Bytes) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p Bytes) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p Bytes) Read(m *dmanager.Manager, _ *parser.Stack) (parser.Outcome, error) {
	raw, err := m.ReadBytes(n64(p.count))
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Kind: parser.Value, Value: raw}, nil
}

// VarBytes reads a variable-length byte run whose length was stored earlier
// in the context stack under sourceKey (by a prior, typically integer,
// field).
type VarBytes struct {
	parser.Base
	sourceKey string
}

func NewVarBytes(sourceKey string) VarBytes {
	return VarBytes{Base: parser.NewBase("bytes"), sourceKey: sourceKey}
}

func (p VarBytes) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p VarBytes) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p VarBytes) Read(m *dmanager.Manager, stack *parser.Stack) (parser.Outcome, error) {
	raw, ok := stack.Lookup(p.sourceKey)
	if !ok {
		return parser.Outcome{}, fberrors.New(fberrors.State, "variable-length source key not found in context")
	}
	count, err := asInt(raw)
	if err != nil {
		return parser.Outcome{}, err
	}
	data, err := m.ReadBytes(n64(count))
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Kind: parser.Value, Value: data}, nil
}

// AsInt coerces a context-stored numeric value to an int, the same
// coercion VarBytes applies to its resolved length; exported so other
// packages (Repeat's resolvable iteration count) can resolve a
// context-looked-up count the same way.
func AsInt(v any) (int, error) { return asInt(v) }

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	default:
		return 0, fberrors.New(fberrors.Type, "context value is not an integer length")
	}
}

// PadToAddress advances the cursor to an absolute address with no stored
// value of its own; the spacer emitted by the generic evaluator does the
// actual work, so Read has nothing left to do.
type PadToAddress struct{ parser.Base }

func NewPadToAddress(addr int) PadToAddress {
	return PadToAddress{parser.NewBase("PadToAddress").Readdress(addr)}
}

func (p PadToAddress) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p PadToAddress) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p PadToAddress) Read(*dmanager.Manager, *parser.Stack) (parser.Outcome, error) {
	return parser.Outcome{Kind: parser.Success}, nil
}

// Remnant reads every byte remaining in the input.
type Remnant struct{ parser.Base }

func NewRemnant() Remnant { return Remnant{parser.NewBase("remnant")} }

func (p Remnant) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p Remnant) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p Remnant) Read(m *dmanager.Manager, _ *parser.Stack) (parser.Outcome, error) {
	raw, err := m.ReadBytes(nil)
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Kind: parser.Value, Value: raw}, nil
}

// Bit reads a single bit as a bool.
type Bit struct{ parser.Base }

func NewBit() Bit { return Bit{parser.NewBase("bit")} }

func (p Bit) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p Bit) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p Bit) Read(m *dmanager.Manager, _ *parser.Stack) (parser.Outcome, error) {
	bits, err := m.ReadBits(n64(1))
	if err != nil {
		return parser.Outcome{}, err
	}
	v, err := bits.Bit(0)
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Kind: parser.Value, Value: v}, nil
}

// BitWord reads n bits and yields the raw bitbuffer.BitBuffer; decoders such
// as BitUInt and BitFlags translate it further.
type BitWord struct {
	parser.Base
	count int
}

func NewBitWord(count int) BitWord { return BitWord{Base: parser.NewBase("bits"), count: count} }

func (p BitWord) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p BitWord) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p BitWord) Read(m *dmanager.Manager, _ *parser.Stack) (parser.Outcome, error) {
	bits, err := m.ReadBits(n64(p.count))
	if err != nil {
		return parser.Outcome{}, err
	}
	return parser.Outcome{Kind: parser.Value, Value: bits}, nil
}

// Failure never succeeds; it exists to exercise Optional/revertible scopes
// in tests without depending on crafted malformed input.
type Failure struct{ parser.Base }

func NewFailure() Failure { return Failure{parser.NewBase("failure")} }

func (p Failure) WithLabel(l string) parser.Parser { p.Base = p.Base.Relabel(l); return p }
func (p Failure) WithAddress(a int) parser.Parser  { p.Base = p.Base.Readdress(a); return p }
func (p Failure) Read(*dmanager.Manager, *parser.Stack) (parser.Outcome, error) {
	return parser.Outcome{}, fberrors.New(fberrors.NoData, "failure leaf always fails")
}
