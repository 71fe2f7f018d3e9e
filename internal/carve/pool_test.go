package carve_test

import (
	"testing"

	"github.com/ostafen/isocarve/internal/carve"
	"github.com/stretchr/testify/require"
)

func TestPool_AppendPreservesOrder(t *testing.T) {
	p := carve.NewPool(0)
	for i := uint32(0); i < 5; i++ {
		p.Append(carve.BlockEntry{BlockNum: i})
	}
	require.Equal(t, 5, p.Len())
	for i := 0; i < 5; i++ {
		require.EqualValues(t, i, p.At(i).BlockNum)
	}
}

// Reset must return the pool to empty without losing its backing capacity,
// so a single recovered pool can be reused across successive first-block
// reassemblies instead of leaking entries between files.
func TestPool_ResetClearsWithoutLeaking(t *testing.T) {
	p := carve.NewPool(0)
	p.Append(carve.BlockEntry{BlockNum: 1})
	p.Append(carve.BlockEntry{BlockNum: 2})
	require.Equal(t, 2, p.Len())

	p.Reset()
	require.Equal(t, 0, p.Len())

	p.Append(carve.BlockEntry{BlockNum: 99})
	require.Equal(t, 1, p.Len())
	require.EqualValues(t, 99, p.At(0).BlockNum)
}
