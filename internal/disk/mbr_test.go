package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/isocarve/internal/disk"
	"github.com/stretchr/testify/require"
)

func buildMBR(t *testing.T, lbas [4]uint32, signature uint16) []byte {
	t.Helper()
	buf := make([]byte, disk.MBRSize)
	for i, lba := range lbas {
		off := 0x1BE + i*16
		binary.LittleEndian.PutUint32(buf[off+0x08:], lba)
	}
	binary.LittleEndian.PutUint16(buf[0x1FE:], signature)
	return buf
}

func TestParseMBR_RoundTrip(t *testing.T) {
	lbas := [4]uint32{0, 2048, 0, 4096}
	buf := buildMBR(t, lbas, 0xAA55)

	mbr, err := disk.ParseMBR(buf)
	require.NoError(t, err)
	require.True(t, mbr.Valid())

	for i, lba := range lbas {
		addr, ok := disk.PartitionAddr(mbr, i)
		if lba == 0 {
			require.False(t, ok, "slot %d should be absent", i)
			continue
		}
		require.True(t, ok, "slot %d should be present", i)
		require.Equal(t, uint64(lba)*512, addr)
	}
}

func TestParseMBR_InvalidSignature(t *testing.T) {
	buf := buildMBR(t, [4]uint32{2048, 0, 0, 0}, 0x0000)
	mbr, err := disk.ParseMBR(buf)
	require.NoError(t, err)
	require.False(t, mbr.Valid())
}

func TestPartitionAddr_OutOfRange(t *testing.T) {
	mbr, err := disk.ParseMBR(buildMBR(t, [4]uint32{2048, 0, 0, 0}, 0xAA55))
	require.NoError(t, err)

	_, ok := disk.PartitionAddr(mbr, 4)
	require.False(t, ok)
	_, ok = disk.PartitionAddr(mbr, -1)
	require.False(t, ok)
}

func TestParseMBR_WrongSize(t *testing.T) {
	_, err := disk.ParseMBR(make([]byte, 100))
	require.Error(t, err)
}
