package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/isocarve/internal/disk"
	"github.com/stretchr/testify/require"
)

func buildSuperblock(t *testing.T, totalBlocks, freeBlocks, blocksPerGroup, rawBlockSize uint32, magic uint16) []byte {
	t.Helper()
	buf := make([]byte, disk.SuperblockSize)
	le := binary.LittleEndian
	le.PutUint32(buf[4:], totalBlocks)
	le.PutUint32(buf[12:], freeBlocks)
	le.PutUint32(buf[24:], rawBlockSize)
	le.PutUint32(buf[32:], blocksPerGroup)
	le.PutUint16(buf[56:], magic)
	return buf
}

func TestSuperblock_BlockSizeDerivation(t *testing.T) {
	cases := map[uint32]uint32{0: 1024, 1: 2048, 2: 4096, 3: 8192}
	for raw, want := range cases {
		sb, err := disk.ParseSuperblock(buildSuperblock(t, 1000, 10, 8192, raw, 0xEF53))
		require.NoError(t, err)
		require.Equal(t, want, sb.BlockSize())
	}
}

func TestSuperblock_Valid(t *testing.T) {
	sb, err := disk.ParseSuperblock(buildSuperblock(t, 1000, 10, 8192, 2, 0xEF53))
	require.NoError(t, err)
	require.True(t, sb.Valid())

	bad, err := disk.ParseSuperblock(buildSuperblock(t, 1000, 10, 8192, 2, 0x0000))
	require.NoError(t, err)
	require.False(t, bad.Valid())
}

func TestSuperblock_GroupCount(t *testing.T) {
	sb, err := disk.ParseSuperblock(buildSuperblock(t, 8193, 0, 8192, 2, 0xEF53))
	require.NoError(t, err)
	require.Equal(t, uint32(2), sb.GroupCount())

	exact, err := disk.ParseSuperblock(buildSuperblock(t, 8192, 0, 8192, 2, 0xEF53))
	require.NoError(t, err)
	require.Equal(t, uint32(1), exact.GroupCount())
}

func TestParseSuperblock_WrongSize(t *testing.T) {
	_, err := disk.ParseSuperblock(make([]byte, 10))
	require.Error(t, err)
}
