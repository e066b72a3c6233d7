// Package dmanager implements the parser-facing cursor: a tree of nested
// parsing scopes sharing one DataBuffer, with transactional (revertible)
// semantics for optional sub-trees.
//
// # Overview
//
// A Manager tracks an absolute bit cursor, a base that addressing is
// relative to, an addressing mode, and an optional parent. At most one
// child scope may be active under a Manager at a time (the has-child
// guard), and a Manager rejects all operations unless it is currently
// "entered" (the with-active guard). Scoped acquire/release is explicit:
// every Manager must be paired with exactly one Enter and one Exit.
package dmanager

import (
	"github.com/thebagchi/binraster/lib/bitbuffer"
	"github.com/thebagchi/binraster/lib/databuffer"
	"github.com/thebagchi/binraster/lib/fberrors"
)

// AddrMode selects how a Manager's address() is expressed and, for child
// construction, how addressing is inherited.
type AddrMode int

const (
	// Parent inherits the parent's addressing mode; only valid as an
	// argument to MakeChild, never as a Manager's resolved mode.
	Parent AddrMode = iota
	// Bit addresses are expressed in bits relative to base.
	Bit
	// Byte addresses are expressed in whole bytes relative to base; reads
	// are expected to be byte-aligned.
	Byte
	// ByteStrict behaves like Byte but additionally asserts that the
	// cursor is 8-bit aligned at scope entry.
	ByteStrict
)

// ChildOptions configures MakeChild. The zero value means Relative false
// (the child keeps the parent's base), AddrType Parent, and Revertible
// false.
type ChildOptions struct {
	Relative   bool
	AddrType   AddrMode
	Revertible bool
}

// Manager is one node in a tree of parsing scopes.
type Manager struct {
	buffer     *databuffer.DataBuffer
	cursor     int64
	base       int64
	mode       AddrMode
	parent     *Manager
	revertible bool
	trimSafe   bool
	hasChild   bool
	active     bool
}

// NewRoot creates the root Manager over buf, starting at bit 0 with byte
// addressing.
func NewRoot(buf *databuffer.DataBuffer) *Manager {
	return &Manager{
		buffer:   buf,
		mode:     Byte,
		trimSafe: true,
	}
}

// MakeChild creates a child scope. relative=true bases the child's
// addressing at the parent's current cursor; addrType selects the child's
// addressing mode (Parent inherits); revertible=true makes recoverable
// failures inside the child's scope (or any non-revertible descendant)
// suppressible without disturbing the parent's cursor, and disables
// trimming for the child's subtree.
func (m *Manager) MakeChild(opts ChildOptions) (*Manager, error) {
	if err := m.failIfUnsafe(); err != nil {
		return nil, err
	}

	mode := opts.AddrType
	switch mode {
	case Parent:
		mode = m.mode
	case ByteStrict:
		if m.cursor%8 != 0 {
			return nil, fberrors.New(fberrors.State, "strict byte addressing must start on a byte boundary")
		}
		mode = Byte
	case Byte, Bit:
		// explicit
	default:
		return nil, fberrors.New(fberrors.Type, "unknown address mode")
	}

	if mode != m.mode && !opts.Relative {
		return nil, fberrors.New(fberrors.State, "address type changes require relative addressing")
	}

	child := &Manager{
		buffer:     m.buffer,
		cursor:     m.cursor,
		parent:     m,
		mode:       mode,
		revertible: opts.Revertible,
		trimSafe:   m.trimSafe && !opts.Revertible,
	}
	if opts.Relative {
		child.base = m.cursor
	} else {
		child.base = m.base
	}

	m.hasChild = true
	return child, nil
}

func (m *Manager) failIfUnsafe() error {
	if m.hasChild {
		return fberrors.New(fberrors.State, "manager has an active child")
	}
	if !m.active {
		return fberrors.New(fberrors.State, "manager used outside its scope")
	}
	return nil
}

// Enter marks the manager as active, allowing reads. It must be called
// exactly once before any other operation and paired with Exit.
func (m *Manager) Enter() *Manager {
	m.active = true
	return m
}

// Exit commits or reverts the scope depending on err:
//
//   - On nil err: if a parent exists and the parent's mode is byte
//     addressed, the consumed span must be byte-aligned (a *state* error is
//     returned otherwise); the parent's cursor is advanced to this scope's
//     cursor, the parent's has-child guard clears, and if this scope is
//     trim-safe the buffer is trimmed.
//   - On a recoverable err inside a revertible scope: the failure is
//     consumed, the parent's cursor is left untouched, and the parent's
//     has-child guard clears. The returned error is nil.
//   - Otherwise the error is returned unchanged.
func (m *Manager) Exit(err error) error {
	m.active = false

	if err == nil {
		if m.parent != nil {
			if m.parent.mode == Byte && (m.cursor-m.base)%8 != 0 {
				return fberrors.New(fberrors.State, "cannot return a non-byte length to a byte-addressed parent")
			}
			m.parent.cursor = m.cursor
			m.parent.hasChild = false
			if m.trimSafe {
				m.buffer.Trim(m.cursor)
			}
		}
		return nil
	}

	kind, ok := fberrors.KindOf(err)
	if ok && kind.Recoverable() && m.revertible {
		if m.parent != nil {
			m.parent.hasChild = false
		}
		return nil
	}
	return err
}

// Address returns the current address, in bits or bytes per mode, relative
// to base.
func (m *Manager) Address() (int, error) {
	if err := m.failIfUnsafe(); err != nil {
		return 0, err
	}
	rel := m.cursor - m.base
	if m.mode == Byte || m.mode == ByteStrict {
		return int(rel / 8), nil
	}
	return int(rel), nil
}

// Cursor returns the manager's absolute bit cursor. Exposed for tests and
// for error-site annotation; not part of the public parser-facing surface.
func (m *Manager) Cursor() int64 {
	return m.cursor
}

// Mode reports the manager's resolved addressing mode.
func (m *Manager) Mode() AddrMode {
	return m.mode
}

// ReadBits advances the cursor by n bits (or to EOF if n is nil) and
// returns the bits read. A zero-length read is valid and returns an empty
// buffer without touching the buffer.
func (m *Manager) ReadBits(n *int64) (bitbuffer.BitBuffer, error) {
	if err := m.failIfUnsafe(); err != nil {
		return bitbuffer.BitBuffer{}, err
	}
	if n != nil && *n == 0 {
		return bitbuffer.FromBytes(nil), nil
	}
	data, stop, err := m.buffer.GetData(m.cursor, n)
	if err != nil {
		return bitbuffer.BitBuffer{}, err
	}
	m.cursor = stop
	if m.trimSafe {
		m.buffer.Trim(m.cursor)
	}
	return data, nil
}

// ReadBytes is ReadBits scaled by 8, returning the materialized bytes.
func (m *Manager) ReadBytes(n *int64) ([]byte, error) {
	if err := m.failIfUnsafe(); err != nil {
		return nil, err
	}
	var bits *int64
	if n != nil {
		if *n == 0 {
			return []byte{}, nil
		}
		bl := *n * 8
		bits = &bl
	}
	data, err := m.ReadBits(bits)
	if err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}

// Read dispatches to ReadBits or ReadBytes depending on the manager's mode.
func (m *Manager) Read(n *int64) (bitbuffer.BitBuffer, error) {
	if m.mode == Byte || m.mode == ByteStrict {
		raw, err := m.ReadBytes(n)
		if err != nil {
			return bitbuffer.BitBuffer{}, err
		}
		return bitbuffer.FromBytes(raw), nil
	}
	return m.ReadBits(n)
}
