// Package bitbuffer provides an immutable, right-justified bit-string view
// over a byte slice.
//
// # Overview
//
// A BitBuffer never copies or mutates the bytes it was built from; it only
// remembers a [start, stop) bit range into them. Reslicing, indexing a
// single bit, and materializing to bytes are all pure operations on that
// range. Bit order is MSB-first: bit 0 of a byte is its 0x80 bit.
//
// # Dependencies
//
// Uses only the Go standard library (encoding/binary for the big-endian
// integer conversion, bytes for wide equality); there is no ecosystem library for
// right-justified sub-byte bit slicing.
package bitbuffer

import (
	"bytes"
	"encoding/binary"

	"github.com/thebagchi/binraster/lib/fberrors"
)

// BitBuffer is a read-only view of bits [start, stop) into Data, addressed
// MSB-first. Two BitBuffers built from different underlying byte slices can
// still compare equal by content.
type BitBuffer struct {
	data      []byte
	startByte int
	startBit  int // 0..7
	stopByte  int
	stopBit   int // 0..7
	length    int // stop - start, in bits
}

// FromBytes builds a BitBuffer over the full bit range of data.
func FromBytes(data []byte) BitBuffer {
	return BitBuffer{data: data, stopByte: len(data), length: len(data) * 8}
}

// Slice builds a BitBuffer over bits [startBit, stopBit) of data. A nil
// stopBit means "to the end".
func Slice(data []byte, startBit int, stopBit *int) (BitBuffer, error) {
	total := len(data) * 8
	stop := total
	if stopBit != nil {
		stop = *stopBit
	}
	if startBit < 0 || startBit > total || stop < 0 || stop > total || stop < startBit {
		return BitBuffer{}, fberrors.New(fberrors.Bounds, "bit range out of range")
	}
	return BitBuffer{
		data:      data,
		startByte: startBit / 8,
		startBit:  startBit % 8,
		stopByte:  stop / 8,
		stopBit:   stop % 8,
		length:    stop - startBit,
	}, nil
}

// Reslice builds a new BitBuffer from a sub-range [start, stop) of b,
// expressed in bits relative to b's own start. A nil stop means "to the end
// of b".
func (b BitBuffer) Reslice(start int, stop *int) (BitBuffer, error) {
	end := b.length
	if stop != nil {
		end = *stop
	}
	if start < 0 || start > b.length || end < 0 || end > b.length || end < start {
		return BitBuffer{}, fberrors.New(fberrors.Bounds, "bit slice out of range")
	}
	baseBit := b.startByte*8 + b.startBit
	return Slice(b.data, baseBit+start, ptr(baseBit+end))
}

func ptr(v int) *int { return &v }

// Len returns the length of the buffer in bits.
func (b BitBuffer) Len() int {
	return b.length
}

// Bit returns the value of bit i (0 <= i < Len()).
func (b BitBuffer) Bit(i int) (bool, error) {
	if i < 0 || i >= b.length {
		return false, fberrors.New(fberrors.Bounds, "bit index out of range")
	}
	absBit := b.startByte*8 + b.startBit + i
	byteIdx := absBit / 8
	mask := byte(0x80 >> uint(absBit%8))
	return b.data[byteIdx]&mask != 0, nil
}

// ToBools returns the ordered sequence of bit values in the buffer.
func (b BitBuffer) ToBools() []bool {
	out := make([]bool, b.length)
	for i := range out {
		out[i], _ = b.Bit(i)
	}
	return out
}

// Bytes materializes the buffer to ceil(Len()/8) bytes: bits are packed
// MSB-first from the first bit into the first output byte, and the last
// output byte's low (8 - len%8) % 8 bits are zero. Taking bits [0, L) of a
// byte slice therefore returns its first ceil(L/8) bytes with the trailing
// bits cleared.
//
// The byte-aligned case is a plain copy; the unaligned case carry-shifts
// each pair of adjacent raw bytes left by the start offset.
func (b BitBuffer) Bytes() []byte {
	if b.length == 0 {
		return nil
	}

	outLen := (b.length + 7) / 8
	out := make([]byte, outLen)

	if b.startBit == 0 {
		copy(out, b.data[b.startByte:b.startByte+outLen])
	} else {
		up := uint(b.startBit)
		for i := 0; i < outLen; i++ {
			v := b.data[b.startByte+i] << up
			if b.startByte+i+1 < len(b.data) {
				v |= b.data[b.startByte+i+1] >> (8 - up)
			}
			out[i] = v
		}
	}

	if tail := uint((8 - b.length%8) % 8); tail != 0 {
		out[outLen-1] &= 0xFF << tail
	}
	return out
}

// Uint64 converts the buffer to an unsigned big-endian integer. A
// zero-length buffer raises a *state* error since there is no value to
// convert.
func (b BitBuffer) Uint64() (uint64, error) {
	if b.length == 0 {
		return 0, fberrors.New(fberrors.State, "cannot convert empty bit buffer to integer")
	}
	if b.length > 64 {
		return 0, fberrors.New(fberrors.Unsupported, "bit buffer too wide for uint64")
	}
	raw := b.Bytes()
	var tmp [8]byte
	copy(tmp[8-len(raw):], raw)
	v := binary.BigEndian.Uint64(tmp[:])
	return v >> (uint(8*len(raw)) - uint(b.length)), nil
}

// Equal compares two buffers by content: equal lengths, and (when non-empty)
// equal value. Buffers wider than 64 bits compare by their materialized
// bytes, which is the same comparison since equal lengths pack identically.
func (b BitBuffer) Equal(other BitBuffer) bool {
	if b.length != other.length {
		return false
	}
	if b.length == 0 {
		return true
	}
	if b.length <= 64 {
		av, aerr := b.Uint64()
		bv, berr := other.Uint64()
		return aerr == nil && berr == nil && av == bv
	}
	return bytes.Equal(b.Bytes(), other.Bytes())
}
