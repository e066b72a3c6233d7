package dmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebagchi/binraster/lib/databuffer"
	"github.com/thebagchi/binraster/lib/fberrors"
)

func TestRootReadAdvancesAddress(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01, 0x02, 0x03})).Enter()
	n := int64(2)
	data, err := root.ReadBytes(&n)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	addr, err := root.Address()
	require.NoError(t, err)
	assert.Equal(t, 2, addr)
}

func TestChildCommitsToParentOnSuccess(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01, 0x02, 0x03, 0x04})).Enter()
	child, err := root.MakeChild(ChildOptions{Relative: true, AddrType: Parent})
	require.NoError(t, err)
	child.Enter()

	n := int64(2)
	_, err = child.ReadBytes(&n)
	require.NoError(t, err)

	require.NoError(t, child.Exit(nil))

	addr, err := root.Address()
	require.NoError(t, err)
	assert.Equal(t, 2, addr)
}

func TestRevertibleChildSuppressesRecoverableFailure(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01, 0x02, 0x03, 0x04})).Enter()
	child, err := root.MakeChild(ChildOptions{Relative: true, AddrType: Parent, Revertible: true})
	require.NoError(t, err)
	child.Enter()

	n := int64(2)
	_, _ = child.ReadBytes(&n)
	innerErr := fberrors.New(fberrors.NoData, "simulated failure")

	assert.NoError(t, child.Exit(innerErr))

	addr, err := root.Address()
	require.NoError(t, err)
	assert.Equal(t, 0, addr, "parent cursor must be untouched after a reverted child")
}

func TestNonRevertibleChildPropagatesFailure(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01})).Enter()
	child, err := root.MakeChild(ChildOptions{Relative: true, AddrType: Parent})
	require.NoError(t, err)
	child.Enter()

	innerErr := fberrors.New(fberrors.NoData, "simulated failure")
	assert.Error(t, child.Exit(innerErr))
}

func TestHasChildGuardRejectsConcurrentChild(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01, 0x02})).Enter()
	_, err := root.MakeChild(ChildOptions{Relative: true, AddrType: Parent})
	require.NoError(t, err)

	_, err = root.MakeChild(ChildOptions{Relative: true, AddrType: Parent})
	assert.Error(t, err)

	n := int64(1)
	_, err = root.ReadBytes(&n)
	assert.Error(t, err, "parent reads are rejected while a child is active")

	_, err = root.Address()
	assert.Error(t, err)
}

func TestUseOutsideScopeIsRejected(t *testing.T) {
	m := NewRoot(databuffer.FromBytes([]byte{0x01}))
	n := int64(1)
	_, err := m.ReadBytes(&n)
	assert.Error(t, err, "a manager never entered must reject reads")
}

func TestByteStrictRejectsUnalignedEntry(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01, 0x02})).Enter()
	bitChild, err := root.MakeChild(ChildOptions{Relative: true, AddrType: Bit})
	require.NoError(t, err)
	bitChild.Enter()

	n := int64(4)
	_, err = bitChild.ReadBits(&n)
	require.NoError(t, err)

	_, err = bitChild.MakeChild(ChildOptions{Relative: true, AddrType: ByteStrict})
	assert.Error(t, err, "cursor sits mid-byte, ByteStrict must reject entry")
}

func TestAddressModeChangeRequiresRelative(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01, 0x02})).Enter()
	_, err := root.MakeChild(ChildOptions{Relative: false, AddrType: Bit})
	assert.Error(t, err)
}

func TestZeroLengthReadIsNoop(t *testing.T) {
	root := NewRoot(databuffer.FromBytes([]byte{0x01})).Enter()
	n := int64(0)
	bits, err := root.ReadBits(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, bits.Len())

	addr, err := root.Address()
	require.NoError(t, err)
	assert.Equal(t, 0, addr)
}
