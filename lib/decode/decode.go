// Package decode layers typed values on top of the raw leaves and
// combinators: fixed-width integers and floats, UUIDs, boolean flags, and
// their bit-mode counterparts.
package decode

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/google/uuid"

	"github.com/thebagchi/binraster/lib/bitbuffer"
	"github.com/thebagchi/binraster/lib/combinator"
	"github.com/thebagchi/binraster/lib/fberrors"
	"github.com/thebagchi/binraster/lib/leaf"
	"github.com/thebagchi/binraster/lib/parser"
)

// Int builds a fixed-width integer reader: size must be 1, 2, 4, or 8
// bytes; order selects byte order (ignored when size is 1); signed selects
// between the matching intN/uintN Go type.
func Int(size int, order binary.ByteOrder, signed bool) parser.Parser {
	prefix := "uint"
	if signed {
		prefix = "int"
	}
	return combinator.NewTranslator(leaf.NewBytes(size), fmt.Sprintf("%s%d", prefix, size*8), func(v any) (any, error) {
		raw, ok := v.([]byte)
		if !ok {
			return nil, fberrors.New(fberrors.Type, "integer decoder requires raw bytes")
		}
		var u uint64
		switch size {
		case 1:
			u = uint64(raw[0])
		case 2:
			u = uint64(order.Uint16(raw))
		case 4:
			u = uint64(order.Uint32(raw))
		case 8:
			u = order.Uint64(raw)
		default:
			return nil, fberrors.New(fberrors.Unsupported, "integer width must be 1, 2, 4, or 8 bytes")
		}
		if !signed {
			switch size {
			case 1:
				return uint8(u), nil
			case 2:
				return uint16(u), nil
			case 4:
				return uint32(u), nil
			default:
				return u, nil
			}
		}
		switch size {
		case 1:
			return int8(u), nil
		case 2:
			return int16(u), nil
		case 4:
			return int32(u), nil
		default:
			return int64(u), nil
		}
	})
}

func Int8() parser.Parser    { return Int(1, binary.BigEndian, true) }
func UInt8() parser.Parser   { return Int(1, binary.BigEndian, false) }
func Int16L() parser.Parser  { return Int(2, binary.LittleEndian, true) }
func UInt16L() parser.Parser { return Int(2, binary.LittleEndian, false) }
func UInt16B() parser.Parser { return Int(2, binary.BigEndian, false) }
func Int32L() parser.Parser  { return Int(4, binary.LittleEndian, true) }
func Int32B() parser.Parser  { return Int(4, binary.BigEndian, true) }
func UInt32L() parser.Parser { return Int(4, binary.LittleEndian, false) }
func UInt32B() parser.Parser { return Int(4, binary.BigEndian, false) }

// Float32 builds a 32-bit IEEE-754 float reader in the given byte order.
func Float32(order binary.ByteOrder) parser.Parser {
	return combinator.NewTranslator(leaf.NewBytes(4), "float32", func(v any) (any, error) {
		raw, ok := v.([]byte)
		if !ok {
			return nil, fberrors.New(fberrors.Type, "float decoder requires raw bytes")
		}
		return math.Float32frombits(order.Uint32(raw)), nil
	})
}

// Float64 builds a 64-bit IEEE-754 float reader in the given byte order.
func Float64(order binary.ByteOrder) parser.Parser {
	return combinator.NewTranslator(leaf.NewBytes(8), "float64", func(v any) (any, error) {
		raw, ok := v.([]byte)
		if !ok {
			return nil, fberrors.New(fberrors.Type, "float decoder requires raw bytes")
		}
		return math.Float64frombits(order.Uint64(raw)), nil
	})
}

func Float32L() parser.Parser { return Float32(binary.LittleEndian) }
func Float64L() parser.Parser { return Float64(binary.LittleEndian) }

// UuidB reads 16 bytes as a big-endian (network byte order) RFC 4122 UUID.
func UuidB() parser.Parser {
	return combinator.NewTranslator(leaf.NewBytes(16), "uuid", func(v any) (any, error) {
		raw, ok := v.([]byte)
		if !ok {
			return nil, fberrors.New(fberrors.Type, "uuid decoder requires raw bytes")
		}
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, fberrors.Wrap(fberrors.Type, "invalid uuid bytes", err)
		}
		return id, nil
	})
}

// UuidL reads 16 bytes as a mixed-endian ("bytes_le") UUID: the time_low,
// time_mid, and time_hi_and_version fields are byte-swapped before parsing,
// matching the Microsoft GUID wire layout.
func UuidL() parser.Parser {
	return combinator.NewTranslator(leaf.NewBytes(16), "uuid", func(v any) (any, error) {
		raw, ok := v.([]byte)
		if !ok || len(raw) != 16 {
			return nil, fberrors.New(fberrors.Type, "uuid decoder requires 16 raw bytes")
		}
		swapped := append([]byte(nil), raw...)
		reverse(swapped[0:4])
		reverse(swapped[4:6])
		reverse(swapped[6:8])
		id, err := uuid.FromBytes(swapped)
		if err != nil {
			return nil, fberrors.Wrap(fberrors.Type, "invalid uuid bytes", err)
		}
		return id, nil
	})
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Flag translates inner's decoded value to a bool: falseSentinel maps to
// false; if trueSentinel is non-nil, only an exact match maps to true and
// anything else is a mismatch, otherwise any non-false value maps to true.
func Flag(inner parser.Parser, falseSentinel any, trueSentinel *any) parser.Parser {
	return combinator.NewTranslator(inner, "Flag", func(v any) (any, error) {
		if reflect.DeepEqual(v, falseSentinel) {
			return false, nil
		}
		if trueSentinel == nil || reflect.DeepEqual(v, *trueSentinel) {
			return true, nil
		}
		return nil, fberrors.New(fberrors.Mismatch, "flag value matched neither sentinel")
	})
}

// ByteFlag is Flag over a single raw byte.
func ByteFlag(falseSentinel byte) parser.Parser {
	return Flag(leaf.NewByte(), falseSentinel, nil)
}

// BitFlags reads count bits and translates them into an ordered []bool
// instead of an integer.
func BitFlags(count int) parser.Parser {
	return combinator.NewTranslator(leaf.NewBitWord(count), "Flags", func(v any) (any, error) {
		bits, ok := v.(bitbuffer.BitBuffer)
		if !ok {
			return nil, fberrors.New(fberrors.Type, "bit flags decoder requires a bit buffer")
		}
		return bits.ToBools(), nil
	})
}

// BitUInt reads count bits and translates them into an unsigned integer,
// the bit-mode counterpart of Int.
func BitUInt(count int) parser.Parser {
	return combinator.NewTranslator(leaf.NewBitWord(count), "BitUInt", func(v any) (any, error) {
		bits, ok := v.(bitbuffer.BitBuffer)
		if !ok {
			return nil, fberrors.New(fberrors.Type, "bit uint decoder requires a bit buffer")
		}
		return bits.Uint64()
	})
}
