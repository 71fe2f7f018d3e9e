package carve_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/ostafen/isocarve/internal/carve"
	"github.com/stretchr/testify/require"
)

type writerMemReader struct{ data []byte }

func (m *writerMemReader) ReadAt(p []byte, off int64) error {
	if int(off)+len(p) > len(m.data) {
		return io.ErrUnexpectedEOF
	}
	copy(p, m.data[off:off+int64(len(p))])
	return nil
}

func buildPVD(blockSize uint32, spaceSize uint32, logicalBlockSize uint16) []byte {
	pvd := make([]byte, blockSize)
	pvd[0] = 0x01
	copy(pvd[1:6], "CD001")
	binary.LittleEndian.PutUint32(pvd[80:], spaceSize)
	binary.LittleEndian.PutUint16(pvd[128:], logicalBlockSize)
	return pvd
}

// Truncation law (property 9): the written byte length equals the PVD's
// declared volume size, with the final block truncated when that size
// isn't an exact multiple of the block size.
func TestWriter_TruncationLaw(t *testing.T) {
	const blockSize = uint32(2048)
	ctx := &carve.Context{BlockSize: blockSize}

	r := &writerMemReader{data: make([]byte, 0x8000+int(blockSize))}
	copy(r.data[0x8000:], buildPVD(blockSize, 3, 2048)) // 3 logical blocks * 2048 = 6144 bytes

	for i := 0; i < 3; i++ {
		block := bytes.Repeat([]byte{byte(i + 1)}, int(blockSize))
		copy(r.data[uint64(i)*uint64(blockSize):], block)
	}
	// a fourth, non-declared block must never be read or written
	copy(r.data[3*uint64(blockSize):], bytes.Repeat([]byte{0xFF}, int(blockSize)))

	pool := carve.NewPool(4)
	for i := uint32(0); i < 4; i++ {
		pool.Append(carve.BlockEntry{Addr: uint64(i) * uint64(blockSize), BlockNum: i, SizeHint: blockSize})
	}

	w := carve.NewWriter(ctx, r)
	volumeSize, err := w.VolumeSize(carve.BlockEntry{Addr: 0})
	require.NoError(t, err)
	require.EqualValues(t, 6144, volumeSize)

	var out bytes.Buffer
	written, err := w.Write(&out, pool, volumeSize)
	require.NoError(t, err)
	require.EqualValues(t, 6144, written)
	require.Equal(t, 6144, out.Len())
	require.NotContains(t, out.Bytes(), byte(0xFF))
}

// A volume size that isn't a multiple of the block size truncates the final
// block to exactly the remaining byte count.
func TestWriter_TruncatesPartialFinalBlock(t *testing.T) {
	const blockSize = uint32(1024)
	ctx := &carve.Context{BlockSize: blockSize}

	r := &writerMemReader{data: make([]byte, int(blockSize)*2)}
	volumeSize := uint64(1536) // 1.5 blocks

	for i := 0; i < 2; i++ {
		block := bytes.Repeat([]byte{byte(i + 1)}, int(blockSize))
		copy(r.data[uint64(i)*uint64(blockSize):], block)
	}

	pool := carve.NewPool(2)
	pool.Append(carve.BlockEntry{Addr: 0, BlockNum: 0, SizeHint: blockSize})
	pool.Append(carve.BlockEntry{Addr: uint64(blockSize), BlockNum: 1, SizeHint: blockSize})

	w := carve.NewWriter(ctx, r)
	var out bytes.Buffer
	written, err := w.Write(&out, pool, volumeSize)
	require.NoError(t, err)
	require.EqualValues(t, volumeSize, written)
	require.Len(t, out.Bytes()[1024:], 512)
}

func TestWriter_MissingDescriptorIsAnError(t *testing.T) {
	const blockSize = uint32(2048)
	ctx := &carve.Context{BlockSize: blockSize}
	r := &writerMemReader{data: make([]byte, 0x8000+int(blockSize))}

	w := carve.NewWriter(ctx, r)
	_, err := w.VolumeSize(carve.BlockEntry{Addr: 0})
	require.Error(t, err)
}
