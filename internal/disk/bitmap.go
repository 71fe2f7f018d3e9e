package disk

import (
	"encoding/binary"
	"fmt"
)

const groupDescSize = 32

// Reader is the minimal positioned-read capability the Bitmap Oracle needs;
// diskio.Device satisfies it without this package importing diskio.
type Reader interface {
	ReadAt(p []byte, off int64) error
}

// BitmapOracle answers "is block N allocated?" by lazily loading the
// block-group descriptor table and data-bitmap one group at a time. It
// caches exactly one group's bitmap, per §4.4 — the scan is sequential, so a
// cache of more than one group buys nothing and costs memory.
type BitmapOracle struct {
	r             Reader
	partitionAddr uint64
	blockSize     uint32
	descsPerBlock uint32
	blocksPerGrp  uint32

	currentGroup int64 // -1 means unset
	bitmap       []byte

	readSuperblock func(addr uint64) (*Superblock, error)
}

// NewBitmapOracle builds an oracle over partition [partitionAddr,
// partitionAddr+...) with the given block size. readSuperblock backs the
// integrity cross-check of §4.4/scenario F; tests may substitute a stub.
func NewBitmapOracle(r Reader, partitionAddr uint64, blockSize uint32, readSuperblock func(addr uint64) (*Superblock, error)) *BitmapOracle {
	return &BitmapOracle{
		r:              r,
		partitionAddr:  partitionAddr,
		blockSize:      blockSize,
		descsPerBlock:  blockSize / groupDescSize,
		blocksPerGrp:   blockSize * 8,
		currentGroup:   -1,
		bitmap:         make([]byte, blockSize),
		readSuperblock: readSuperblock,
	}
}

// IsAllocated implements §4.4: locate the block's group, reload the group's
// bitmap if the cache is stale, then test the LSB-first bit for the block.
func (o *BitmapOracle) IsAllocated(blockNum uint32) (bool, error) {
	g := uint32(blockNum) / o.blocksPerGrp
	if int64(g) != o.currentGroup {
		if err := o.reload(g); err != nil {
			return false, err
		}
	}

	bit := blockNum % o.blocksPerGrp
	return (o.bitmap[bit/8]>>(bit%8))&1 == 1, nil
}

// isChecked reports whether group g is subject to the backup-superblock
// integrity cross-check: group 0, group 1, or a pure power of 3, 5, or 7.
func isChecked(g uint32) bool {
	if g == 0 || g == 1 {
		return true
	}
	return isPowerOf(g, 3) || isPowerOf(g, 5) || isPowerOf(g, 7)
}

func isPowerOf(n, base uint32) bool {
	if base == 1 {
		return n == 1
	}
	for p := uint64(1); p <= uint64(n); p *= uint64(base) {
		if p == uint64(n) {
			return true
		}
	}
	return false
}

func (o *BitmapOracle) reload(g uint32) error {
	if isChecked(g) {
		sbAddr := o.partitionAddr + uint64(g)*uint64(o.blocksPerGrp)*uint64(o.blockSize)
		if g == 0 {
			sbAddr += SuperblockSize
		}
		sb, err := o.readSuperblock(sbAddr)
		if err != nil {
			return err
		}
		if !sb.Valid() {
			return fmt.Errorf("Invalid Superblock at 0x%x", sbAddr)
		}
	}

	tableBlock := g / o.descsPerBlock
	tableAddr := o.partitionAddr + uint64(o.blockSize) + uint64(tableBlock)*uint64(o.blockSize)

	descBlock := make([]byte, o.blockSize)
	if err := o.r.ReadAt(descBlock, int64(tableAddr)); err != nil {
		return err
	}

	localOff := (g % o.descsPerBlock) * groupDescSize
	bitmapBlockNum := binary.LittleEndian.Uint32(descBlock[localOff : localOff+4])
	bitmapAddr := o.partitionAddr + uint64(bitmapBlockNum)*uint64(o.blockSize)

	if err := o.r.ReadAt(o.bitmap, int64(bitmapAddr)); err != nil {
		return err
	}
	o.currentGroup = int64(g)
	return nil
}
