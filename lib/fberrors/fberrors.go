// Package fberrors defines the error taxonomy shared by every layer of the
// parser engine: bit buffers, the data buffer, the data manager, and the
// parser/combinator tree.
package fberrors

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a parse-time failure.
type Kind int

const (
	// NoData means a read ran past the end of the input. Recoverable
	// inside an optional scope.
	NoData Kind = iota
	// AddressOverrun means a spacer target lies behind the current cursor.
	// Recoverable.
	AddressOverrun
	// Mismatch means a Const/Flag predicate rejected its translated
	// input. Recoverable.
	Mismatch
	// Bounds means a negative length or an out-of-range index was
	// supplied. Fatal.
	Bounds
	// Type means the wrong input type was supplied to a constructor.
	// Fatal.
	Type
	// State means a DataManager was misused: child active, used outside
	// its scope, mode mismatch at scope exit, etc. Fatal.
	State
	// Unsupported means a non-unit slice step or an unimplemented
	// operation was requested. Fatal.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NoData:
		return "no-data"
	case AddressOverrun:
		return "address-overrun"
	case Mismatch:
		return "mismatch"
	case Bounds:
		return "bounds"
	case Type:
		return "type"
	case State:
		return "state"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Recoverable reports whether an enclosing revertible scope may suppress
// this kind of failure instead of propagating it out of parse.
func (k Kind) Recoverable() bool {
	switch k {
	case NoData, AddressOverrun, Mismatch:
		return true
	default:
		return false
	}
}

// Error is the single error value parse surfaces on failure. It identifies
// the category, the offending parser by label and/or address, and the
// absolute bit offset in the source at which the failure occurred.
type Error struct {
	Kind    Kind
	Label   string
	Address int
	HasAddr bool
	Offset  int64
	Message string
	cause   error
}

func (e *Error) Error() string {
	where := e.Label
	if where == "" {
		where = "<unlabeled>"
	}
	if e.HasAddr {
		where = fmt.Sprintf("%s@0x%x", where, e.Address)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (at bit %d, parser %s)", e.Kind, e.Message, e.Offset, where)
	}
	return fmt.Sprintf("%s at bit %d, parser %s", e.Kind, e.Offset, where)
}

// Unwrap exposes a wrapped cause, if any, for errors.Is/As chaining.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is supports errors.Is(err, fberrors.Kind): compares Kind values when the
// target is also an *Error.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds an *Error with the given kind and message, unaddressed and
// unlabeled; callers fill in Label/Address/Offset via With* before it
// escapes a scope.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error that chains an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithSite returns a copy of e annotated with the offending parser's label,
// address (if any), and the absolute bit offset at the point of failure.
func (e *Error) WithSite(label string, address int, hasAddr bool, offset int64) *Error {
	cp := *e
	if cp.Label == "" {
		cp.Label = label
	}
	if !cp.HasAddr && hasAddr {
		cp.Address = address
		cp.HasAddr = true
	}
	cp.Offset = offset
	return &cp
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and
// reports ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
