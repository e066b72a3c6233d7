package databuffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesBounds(t *testing.T) {
	db := FromBytes([]byte{1, 2, 3, 4})
	assert.Equal(t, int64(0), db.LowerBound())
	assert.Equal(t, int64(32), db.UpperBound())
}

func TestGetDataWithinBuffer(t *testing.T) {
	db := FromBytes([]byte{0x11, 0x22, 0x33, 0x44})
	bl := int64(16)
	buf, stop, err := db.GetData(8, &bl)
	require.NoError(t, err)
	assert.Equal(t, int64(24), stop)
	assert.Equal(t, []byte{0x22, 0x33}, buf.Bytes())
}

func TestGetDataNilLengthDrainsReader(t *testing.T) {
	db := FromReader(bytes.NewReader([]byte{0xAA, 0xBB, 0xCC}))
	buf, stop, err := db.GetData(0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(24), stop)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, buf.Bytes())
}

func TestGetDataPastEndOfInputErrors(t *testing.T) {
	db := FromBytes([]byte{0x01})
	bl := int64(16)
	_, _, err := db.GetData(0, &bl)
	assert.Error(t, err)
}

func TestGetDataBelowLowerBoundErrors(t *testing.T) {
	db := &DataBuffer{
		chunks:    [][]byte{{0x01}, {0x02}, {0x03}},
		bounds:    []int64{0, 8, 16, 24},
		streamEOF: true,
	}
	db.Trim(16)
	bl := int64(8)
	_, _, err := db.GetData(0, &bl)
	assert.Error(t, err)
}

func TestTrimKeepsAtLeastOneChunk(t *testing.T) {
	db := &DataBuffer{
		chunks:    [][]byte{{0x01}, {0x02}, {0x03}},
		bounds:    []int64{0, 8, 16, 24},
		streamEOF: true,
	}
	db.Trim(999)
	assert.Equal(t, 1, len(db.chunks))
	assert.Equal(t, int64(16), db.LowerBound())
}

func TestSliceBytesSpanningChunks(t *testing.T) {
	db := &DataBuffer{
		chunks:    [][]byte{{0xF0}, {0x0F}},
		bounds:    []int64{0, 8, 16},
		streamEOF: true,
	}
	bl := int64(8)
	buf, stop, err := db.GetData(4, &bl)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stop)
	v, err := buf.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00), v)
}
