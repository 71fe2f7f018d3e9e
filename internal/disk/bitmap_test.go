package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/isocarve/internal/disk"
	"github.com/stretchr/testify/require"
)

// memReader is a flat byte buffer standing in for a partition, counting the
// number of ReadAt calls so cache-invalidation behavior can be asserted.
// Bytes past the end of the buffer read as zero, so a group's first block
// far beyond the populated region reads as a blank block.
type memReader struct {
	data  []byte
	reads int
}

func newMemReader(size int) *memReader {
	return &memReader{data: make([]byte, size)}
}

func (m *memReader) ReadAt(p []byte, off int64) error {
	m.reads++
	clear(p)
	if off < int64(len(m.data)) {
		copy(p, m.data[off:])
	}
	return nil
}

func (m *memReader) readSuperblock(addr uint64) (*disk.Superblock, error) {
	buf := make([]byte, disk.SuperblockSize)
	if err := m.ReadAt(buf, int64(addr)); err != nil {
		return nil, err
	}
	return disk.ParseSuperblock(buf)
}

const testBlockSize = 4096

// buildBitmapFixture lays out a synthetic partition with a valid primary
// superblock, a one-block group descriptor table covering groups 0-2 and 3,
// and two populated bitmap blocks for groups 0 and 2. Group 3's backup
// superblock location is left zeroed (invalid magic) to exercise the
// integrity cross-check.
func buildBitmapFixture(t *testing.T) *memReader {
	t.Helper()
	m := newMemReader(64 * 1024)

	sb := make([]byte, disk.SuperblockSize)
	binary.LittleEndian.PutUint16(sb[56:], 0xEF53)
	copy(m.data[1024:], sb)

	putDesc := func(localOff int, bitmapBlockNum uint32) {
		binary.LittleEndian.PutUint32(m.data[testBlockSize+localOff:], bitmapBlockNum)
	}
	putDesc(0, 5)  // group 0 -> bitmap at block 5
	putDesc(64, 6) // group 2 -> bitmap at block 6

	m.data[5*testBlockSize+0] = 0b00000001 // group0 block 0 allocated
	m.data[5*testBlockSize+1] = 0b00000100 // group0 block 10 allocated

	m.data[6*testBlockSize+0] = 0b00100000 // group2 block 5 (local) allocated

	return m
}

func newTestOracle(m *memReader) *disk.BitmapOracle {
	return disk.NewBitmapOracle(m, 0, testBlockSize, m.readSuperblock)
}

func TestBitmapOracle_RoundTrip(t *testing.T) {
	m := buildBitmapFixture(t)
	o := newTestOracle(m)

	blocksPerGrp := uint32(testBlockSize * 8)

	allocated, err := o.IsAllocated(0)
	require.NoError(t, err)
	require.True(t, allocated)

	allocated, err = o.IsAllocated(1)
	require.NoError(t, err)
	require.False(t, allocated)

	allocated, err = o.IsAllocated(10)
	require.NoError(t, err)
	require.True(t, allocated)

	group2Base := 2 * blocksPerGrp
	allocated, err = o.IsAllocated(group2Base + 5)
	require.NoError(t, err)
	require.True(t, allocated)

	allocated, err = o.IsAllocated(group2Base)
	require.NoError(t, err)
	require.False(t, allocated)
}

func TestBitmapOracle_CacheNoExtraReadWithinGroup(t *testing.T) {
	m := buildBitmapFixture(t)
	o := newTestOracle(m)

	blocksPerGrp := uint32(testBlockSize * 8)
	group2Base := 2 * blocksPerGrp

	_, err := o.IsAllocated(group2Base)
	require.NoError(t, err)
	afterFirst := m.reads

	_, err = o.IsAllocated(group2Base + 1)
	require.NoError(t, err)
	require.Equal(t, afterFirst, m.reads, "querying another block in the same group must not re-read the table or bitmap")
}

func TestBitmapOracle_InvalidBackupSuperblock(t *testing.T) {
	m := buildBitmapFixture(t)
	o := newTestOracle(m)

	blocksPerGrp := uint32(testBlockSize * 8)
	group3Base := 3 * blocksPerGrp // group 3 is a power of 3, subject to the cross-check

	_, err := o.IsAllocated(group3Base)
	require.ErrorContains(t, err, "Invalid Superblock")
}
