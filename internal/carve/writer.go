package carve

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ostafen/isocarve/internal/disk"
	"github.com/ostafen/isocarve/pkg/reader"
)

// isoVolumeSpaceSizeOffset and isoLogicalBlockSizeOffset are PVD field
// offsets relative to the start of the descriptor (§4.8): the 32-bit volume
// space size (in logical blocks) at byte 80, and the 16-bit logical block
// size at byte 128. Both are stored twice, little-endian then big-endian;
// only the little-endian half is read.
const (
	isoVolumeSpaceSizeOffset  = 80
	isoLogicalBlockSizeOffset = 128
)

// Writer implements §4.8: stream a recovered pool's blocks out to a file,
// truncating the final block so the output ends exactly at the ISO
// volume's declared size instead of at the last whole ext block.
type Writer struct {
	ctx *Context
	r   disk.Reader
}

func NewWriter(ctx *Context, r disk.Reader) *Writer {
	return &Writer{ctx: ctx, r: r}
}

// VolumeSize reads the primary volume descriptor located at first.Addr +
// 0x8000 and returns the declared ISO volume size in bytes. first must be a
// pool entry flagged FlagPrimaryDescriptor.
func (w *Writer) VolumeSize(first BlockEntry) (uint64, error) {
	pvd := make([]byte, w.ctx.BlockSize)
	if err := w.r.ReadAt(pvd, int64(first.Addr+pvdOffset)); err != nil {
		return 0, err
	}
	if !hasISOSignature(pvd) {
		return 0, fmt.Errorf("carve: no primary volume descriptor at 0x%x", first.Addr+pvdOffset)
	}

	spaceSize := binary.LittleEndian.Uint32(pvd[isoVolumeSpaceSizeOffset : isoVolumeSpaceSizeOffset+4])
	logicalBlockSize := binary.LittleEndian.Uint16(pvd[isoLogicalBlockSizeOffset : isoLogicalBlockSizeOffset+2])
	if logicalBlockSize == 0 {
		return 0, fmt.Errorf("carve: primary volume descriptor at 0x%x has zero logical block size", first.Addr+pvdOffset)
	}
	return uint64(spaceSize) * uint64(logicalBlockSize), nil
}

// Write streams every block of recovered to dst in order, truncating the
// last block written so the total bytes written equal volumeSize exactly
// (or the pool's full byte length, whichever is smaller — a pool shorter
// than the declared volume size is written in full, per §4.8 edge cases).
//
// The pool is presented as one logical stream via PoolReadSeeker and pulled
// through a BufferedReadSeeker sized to one ext block, so a short final
// chunk is served straight out of the buffer instead of requiring a
// dedicated truncation branch.
func (w *Writer) Write(dst io.Writer, recovered *Pool, volumeSize uint64) (uint64, error) {
	src := reader.NewBufferedReadSeeker(PoolReadSeeker(w.r, recovered), int(w.ctx.BlockSize))

	written, err := io.CopyN(dst, src, int64(volumeSize))
	if err != nil && err != io.EOF {
		return uint64(written), fmt.Errorf("carve: write recovered blocks: %w", err)
	}
	return uint64(written), nil
}
