// Package databuffer implements the chunked, streaming-aware byte storage
// that BitBuffers are carved from.
//
// # Overview
//
// A DataBuffer owns a deque of byte chunks plus a parallel deque of
// cumulative bit bounds, such that chunk i covers bits [bounds[i],
// bounds[i+1]). Reads that cross the upper bound pull more data from an
// optional streaming source before failing; chunks strictly before the
// buffer's lower bound can be discarded once a DataManager scope decides
// they are no longer reachable (see lib/dmanager).
//
// # Dependencies
//
// Standard library only: chunk bookkeeping here is a small, task-specific
// deque with no ecosystem equivalent worth pulling in.
package databuffer

import (
	"io"

	"github.com/thebagchi/binraster/lib/bitbuffer"
	"github.com/thebagchi/binraster/lib/fberrors"
)

// Size is the number of bits requested per stream fill: 8 KiB of bits
// (64 Kibit, i.e. 8192 bytes).
const Size = 8192 * 8

// DataBuffer is the shared, growable byte store behind a tree of
// DataManagers. It is not safe for concurrent use; the DataManager
// has-child guard is what keeps access to it single-threaded.
type DataBuffer struct {
	chunks    [][]byte
	bounds    []int64 // len(bounds) == len(chunks)+1
	stream    io.Reader
	streamEOF bool
}

// FromBytes builds a DataBuffer over a single, already-complete byte slice.
func FromBytes(data []byte) *DataBuffer {
	return &DataBuffer{
		chunks:    [][]byte{data},
		bounds:    []int64{0, int64(len(data)) * 8},
		streamEOF: true,
	}
}

// FromReader builds a DataBuffer that pulls chunks from src on demand as
// reads outrun the buffered window.
func FromReader(src io.Reader) *DataBuffer {
	db := &DataBuffer{
		chunks: [][]byte{},
		bounds: []int64{0},
		stream: src,
	}
	db.fill(Size)
	return db
}

// LowerBound returns the bit address of the first byte still buffered.
func (db *DataBuffer) LowerBound() int64 {
	return db.bounds[0]
}

// UpperBound returns the bit address just past the last buffered byte.
func (db *DataBuffer) UpperBound() int64 {
	return db.bounds[len(db.bounds)-1]
}

// fill requests ceil(max(Size, want)/8) bytes from the stream and appends
// one chunk, marking EOF on a short read. A want of 0 or less requests a
// plain Size-bit fill; draining the whole stream is drain's job.
func (db *DataBuffer) fill(want int64) int64 {
	if db.stream == nil || db.streamEOF {
		return 0
	}
	if want <= 0 {
		want = Size
	}
	need := want
	if need < Size {
		need = Size
	}
	byteLen := (need + 7) / 8
	buf := make([]byte, byteLen)
	n, err := io.ReadFull(db.stream, buf)
	buf = buf[:n]
	if err != nil {
		db.streamEOF = true
	}
	if n == 0 {
		return 0
	}
	db.chunks = append(db.chunks, buf)
	db.bounds = append(db.bounds, db.bounds[len(db.bounds)-1]+int64(n)*8)
	return int64(n) * 8
}

// drain reads everything remaining from the stream into one final chunk.
func (db *DataBuffer) drain() {
	if db.stream == nil || db.streamEOF {
		return
	}
	all, _ := io.ReadAll(db.stream)
	db.streamEOF = true
	if len(all) == 0 {
		return
	}
	db.chunks = append(db.chunks, all)
	db.bounds = append(db.bounds, db.bounds[len(db.bounds)-1]+int64(len(all))*8)
}

// GetData reads bitLength bits starting at startBit, pulling from the
// stream as needed. A nil bitLength drains the stream and returns
// everything from startBit to the (now final) upper bound.
func (db *DataBuffer) GetData(startBit int64, bitLength *int64) (bitbuffer.BitBuffer, int64, error) {
	if startBit < db.LowerBound() {
		return bitbuffer.BitBuffer{}, 0, fberrors.New(fberrors.Bounds, "cursor points to data no longer buffered")
	}
	if startBit > db.UpperBound() {
		return bitbuffer.BitBuffer{}, 0, fberrors.New(fberrors.Bounds, "cursor points past end of buffered data")
	}

	var stop int64
	if bitLength != nil {
		if *bitLength < 0 {
			return bitbuffer.BitBuffer{}, 0, fberrors.New(fberrors.Bounds, "cannot read negative length")
		}
		stop = startBit + *bitLength
		if stop > db.UpperBound() {
			needed := stop - db.UpperBound()
			for db.UpperBound() < stop {
				got := db.fill(needed)
				if got == 0 {
					return bitbuffer.BitBuffer{}, 0, fberrors.New(fberrors.NoData, "read past end of input")
				}
				needed -= got
			}
		}
	} else {
		db.drain()
		stop = db.UpperBound()
	}

	buf, err := db.sliceBytes(startBit, stop)
	if err != nil {
		return bitbuffer.BitBuffer{}, 0, err
	}
	return buf, stop, nil
}

// sliceBytes copies together the minimal byte span covering bits
// [start, stop) across one or more chunks and returns a BitBuffer view over
// that copy, offset to the requested bit range.
func (db *DataBuffer) sliceBytes(start, stop int64) (bitbuffer.BitBuffer, error) {
	if stop <= start {
		return bitbuffer.FromBytes(nil), nil
	}

	startChunk := db.chunkContaining(start)
	stopChunk := db.chunkContaining(stop - 1)

	startByteInChunk := int((start - db.bounds[startChunk]) / 8)
	stopBitInChunk := stop - db.bounds[stopChunk]
	stopByteInChunk := int((stopBitInChunk + 7) / 8)

	var raw []byte
	if startChunk == stopChunk {
		raw = db.chunks[startChunk][startByteInChunk:stopByteInChunk]
	} else {
		raw = append(raw, db.chunks[startChunk][startByteInChunk:]...)
		for i := startChunk + 1; i < stopChunk; i++ {
			raw = append(raw, db.chunks[i]...)
		}
		raw = append(raw, db.chunks[stopChunk][:stopByteInChunk]...)
	}

	startSlice := int(start % 8)
	stopSlice := startSlice + int(stop-start)
	return bitbuffer.Slice(raw, startSlice, &stopSlice)
}

func (db *DataBuffer) chunkContaining(bit int64) int {
	// bounds is sorted; find the last bound <= bit.
	lo, hi := 0, len(db.bounds)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if db.bounds[mid] <= bit {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo >= len(db.chunks) {
		lo = len(db.chunks) - 1
	}
	return lo
}

// Trim discards chunks strictly before addrBit, always retaining at least
// one chunk.
func (db *DataBuffer) Trim(addrBit int64) {
	for len(db.bounds) > 2 && addrBit > db.bounds[1] {
		db.chunks = db.chunks[1:]
		db.bounds = db.bounds[1:]
	}
}
