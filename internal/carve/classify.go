package carve

import (
	"encoding/binary"

	"github.com/ostafen/isocarve/internal/disk"
)

// pvdOffset is the byte offset of the ISO 9660 primary volume descriptor
// relative to the start of the image: 16 logical sectors of 2048 bytes.
const pvdOffset = 0x8000

// Classifier implements §4.6: for every scanned block, decide whether it is
// an ISO first-block candidate, an ext indirect-block candidate, or neither.
type Classifier struct {
	ctx *Context
	r   disk.Reader
}

func NewClassifier(ctx *Context, r disk.Reader) *Classifier {
	return &Classifier{ctx: ctx, r: r}
}

// Classify takes the block at addr (already read by the scanner and passed
// in as block), applies the first-block test and, failing that, the
// indirect-block test, appending the result to firstBlocks or indirect as
// appropriate. A block that passes both tests is recorded only as a
// first-block candidate.
func (c *Classifier) Classify(block []byte, addr uint64, blockNum uint32, firstBlocks, indirect *Pool) error {
	flag, err := c.isLikelyFirstBlock(block, addr)
	if err != nil {
		return err
	}
	if flag != 0 {
		firstBlocks.Append(BlockEntry{Addr: addr, BlockNum: blockNum, SizeHint: flag})
		return nil
	}

	if isIndirectBlock(block, c.ctx.TotalBlocks) {
		indirect.Append(BlockEntry{Addr: addr, BlockNum: blockNum})
	}
	return nil
}

// isLikelyFirstBlock implements the first-block test of §4.6: a candidate
// is recognized either by a primary volume descriptor at addr+0x8000, or by
// the combination of any ISO descriptor there plus the scanned block itself
// looking like an MBR (its own bytes 510-511 equal 0xAA55 — ext indirect
// blocks never coincidentally carry that signature, so it's a useful second
// signal when the PVD type byte is ambiguous).
func (c *Classifier) isLikelyFirstBlock(block []byte, addr uint64) (uint32, error) {
	pvd := make([]byte, c.ctx.BlockSize)
	if err := c.r.ReadAt(pvd, int64(addr+pvdOffset)); err != nil {
		return 0, err
	}

	isDescriptor := hasISOSignature(pvd)
	isPrimaryDesc := isDescriptor && pvd[0] == 0x01
	hasMBR := len(block) >= 512 && binary.LittleEndian.Uint16(block[510:512]) == 0xAA55

	var flag uint32
	if isPrimaryDesc {
		flag |= FlagPrimaryDescriptor
	}
	if isDescriptor && hasMBR {
		flag |= FlagMBRLike
	}
	return flag, nil
}

// hasISOSignature reports whether block carries "CD001" at byte offset 1,
// the ISO 9660 volume descriptor signature.
func hasISOSignature(block []byte) bool {
	return len(block) >= 6 && string(block[1:6]) == "CD001"
}

// isIndirectBlock implements the indirect-block test of §4.6: block is
// interpreted as an array of little-endian uint32 block numbers; the first
// six slots are walked looking for a run of consecutive numbers, optionally
// followed by zero padding.
func isIndirectBlock(block []byte, totalBlocks uint32) bool {
	n := len(block) / 4
	if n < 6 {
		return false
	}
	at := func(i int) uint32 { return binary.LittleEndian.Uint32(block[i*4 : i*4+4]) }

	blockAddr := at(0)
	if blockAddr == 0 || blockAddr > totalBlocks {
		return false
	}

	consecutive := 0
	for i := 1; i < 6; i++ {
		v := at(i)
		switch {
		case v > totalBlocks:
			return false
		case v == blockAddr+1:
			blockAddr++
			consecutive++
		case v == 0:
			return allZero(block, i*4, n*4)
		case consecutive >= 3:
			return true
		default:
			consecutive = 0
		}
	}
	return consecutive > 3
}

// allZero reports whether block[from:to] (as a run of uint32 slots) is
// entirely zero, per the trailing-zero law of §8 property 7.
func allZero(block []byte, from, to int) bool {
	for _, b := range block[from:to] {
		if b != 0 {
			return false
		}
	}
	return true
}
