package carve_test

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/ostafen/isocarve/internal/carve"
	"github.com/stretchr/testify/require"
)

type reassembleMemReader struct{ data []byte }

func (m *reassembleMemReader) ReadAt(p []byte, off int64) error {
	if int(off)+len(p) > len(m.data) {
		return io.ErrUnexpectedEOF
	}
	copy(p, m.data[off:off+int64(len(p))])
	return nil
}

func blockNumbers(pool *carve.Pool) []uint32 {
	out := make([]uint32, pool.Len())
	for i := range out {
		out[i] = pool.At(i).BlockNum
	}
	return out
}

func sequentialRange(from, to uint32) []uint32 {
	out := make([]uint32, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Scenario C: a trivial file with no indirect blocks at all recovers exactly
// its 12 direct blocks.
func TestReassembler_ScenarioC_NoIndirect(t *testing.T) {
	const blockSize = uint32(16)
	ctx := &carve.Context{BlockSize: blockSize, TotalBlocks: 1_000_000}

	r := &reassembleMemReader{data: make([]byte, 4096)}
	indirect := carve.NewPool(1)

	re := carve.NewReassembler(ctx, r, indirect)
	out := carve.NewPool(20)

	first := carve.BlockEntry{Addr: 100 * uint64(blockSize), BlockNum: 100}
	require.NoError(t, re.Reassemble(first, out))

	require.Equal(t, sequentialRange(100, 111), blockNumbers(out))
}

// Scenario D: a single populated indirect layer extends the direct blocks
// with the indirect block's own pointer entries, in order.
func TestReassembler_ScenarioD_SingleIndirect(t *testing.T) {
	const blockSize = uint32(16)
	ctx := &carve.Context{BlockSize: blockSize, TotalBlocks: 1_000_000}

	r := &reassembleMemReader{data: make([]byte, 4096)}
	indirectBlockAddr := uint64(200) * uint64(blockSize)
	putLEAt(r.data, int(indirectBlockAddr), []uint32{112, 113, 114, 115})

	indirect := carve.NewPool(1)
	indirect.Append(carve.BlockEntry{Addr: indirectBlockAddr, BlockNum: 200})

	re := carve.NewReassembler(ctx, r, indirect)
	out := carve.NewPool(20)

	first := carve.BlockEntry{Addr: 100 * uint64(blockSize), BlockNum: 100}
	require.NoError(t, re.Reassemble(first, out))

	want := append(sequentialRange(100, 111), 112, 113, 114, 115)
	require.Equal(t, want, blockNumbers(out))
}

// A nested indirect layer (the single-indirect block's own content pointing
// at a further pointer block) is walked recursively, with every leaf
// appended in pre-order left-to-right order — property 8.
func TestReassembler_NestedIndirectOrdering(t *testing.T) {
	const blockSize = uint32(24) // 6 slots, enough for the classifier's run test
	ctx := &carve.Context{BlockSize: blockSize, TotalBlocks: 1_000_000}

	r := &reassembleMemReader{data: make([]byte, 16384)}

	outerAddr := uint64(500) * uint64(blockSize)
	putLEAt(r.data, int(outerAddr), []uint32{112, 113, 114, 600, 0, 0})

	innerAddr := uint64(600) * uint64(blockSize)
	putLEAt(r.data, int(innerAddr), []uint32{601, 602, 603, 604, 0, 0})

	indirect := carve.NewPool(1)
	indirect.Append(carve.BlockEntry{Addr: outerAddr, BlockNum: 500})

	re := carve.NewReassembler(ctx, r, indirect)
	out := carve.NewPool(20)

	first := carve.BlockEntry{Addr: 100 * uint64(blockSize), BlockNum: 100}
	require.NoError(t, re.Reassemble(first, out))

	want := append(sequentialRange(100, 111), 112, 113, 114, 601, 602, 603, 604)
	require.Equal(t, want, blockNumbers(out))
}

func putLEAt(data []byte, offset int, values []uint32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[offset+i*4:], v)
	}
}
