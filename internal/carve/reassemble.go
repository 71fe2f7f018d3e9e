package carve

import (
	"encoding/binary"

	"github.com/ostafen/isocarve/internal/disk"
)

// Reassembler implements §4.7: given a first-block candidate, walk its
// direct blocks and its single/double/triple indirect layers, consuming the
// indirect-candidate pool built during the scan, to produce an ordered
// recovered-block pool.
type Reassembler struct {
	ctx      *Context
	r        disk.Reader
	indirect *Pool
}

func NewReassembler(ctx *Context, r disk.Reader, indirect *Pool) *Reassembler {
	return &Reassembler{ctx: ctx, r: r, indirect: indirect}
}

// Reassemble appends F's recovered blocks to out in pre-order, left-to-right
// order: the 12 contiguous direct blocks first, then the data leaves of the
// single, double, and triple indirect trees. out should be Reset before
// each call so recovered pools never leak between successive first-block
// candidates (§9 Open Questions).
func (re *Reassembler) Reassemble(f BlockEntry, out *Pool) error {
	for i := uint32(0); i < 12; i++ {
		out.Append(BlockEntry{
			Addr:     f.Addr + uint64(i)*uint64(re.ctx.BlockSize),
			BlockNum: f.BlockNum + i,
			SizeHint: re.ctx.BlockSize,
		})
	}

	next := f.BlockNum + 12
	var lastEntry uint32
	for layer := 0; layer < 3; layer++ {
		if _, err := re.recoverIndirectFor(next, &lastEntry, out); err != nil {
			return err
		}
		next = lastEntry + 1
	}
	return nil
}

// recoverIndirectFor locates, within the indirect-candidate pool, the block
// whose first stored pointer equals nextBlockNum and which does not lie
// within the journal-heuristic region, then recurses toward the root of
// that indirect tree. The sentinel nextBlockNum == 1 means the inode has no
// further blocks at this layer.
func (re *Reassembler) recoverIndirectFor(nextBlockNum uint32, lastEntryOut *uint32, out *Pool) (uint32, error) {
	if nextBlockNum == 1 {
		return 0, nil
	}

	buf := make([]byte, re.ctx.BlockSize)
	for i := 0; i < re.indirect.Len(); i++ {
		entry := re.indirect.At(i)
		if err := re.r.ReadAt(buf, int64(entry.Addr)); err != nil {
			return 0, err
		}

		containsBlock := binary.LittleEndian.Uint32(buf[0:4]) == nextBlockNum
		isInJournal := entry.BlockNum < re.ctx.BlockSize*8
		if !containsBlock || isInJournal {
			continue
		}

		found, err := re.recoverIndirectFor(entry.BlockNum, lastEntryOut, out)
		if err != nil {
			return 0, err
		}
		if found == 0 {
			last, err := re.addBlocksFrom(buf, out)
			if err != nil {
				return 0, err
			}
			*lastEntryOut = last
		}
		return entry.BlockNum, nil
	}
	return 0, nil
}

// addBlocksFrom performs a pre-order depth-first walk of one indirect
// block's pointer array, appending data leaves to out and recursing into
// nested indirect pointers. It returns the raw value stored in the block's
// last slot — the expected first pointer of the next indirect layer —
// unless the last slot itself pointed to a nested indirect block, in which
// case that recursive call's return value takes precedence.
func (re *Reassembler) addBlocksFrom(block []byte, out *Pool) (uint32, error) {
	n := len(block) / 4
	buf := make([]byte, re.ctx.BlockSize)

	for i := 0; i < n; i++ {
		v := binary.LittleEndian.Uint32(block[i*4 : i*4+4])
		if v == 0 {
			continue
		}

		addr := re.ctx.PartitionAddr + uint64(v)*uint64(re.ctx.BlockSize)
		if err := re.r.ReadAt(buf, int64(addr)); err != nil {
			return 0, err
		}

		if isIndirectBlock(buf, re.ctx.TotalBlocks) {
			last, err := re.addBlocksFrom(buf, out)
			if err != nil {
				return 0, err
			}
			if i+1 == n {
				return last, nil
			}
			continue
		}

		out.Append(BlockEntry{Addr: addr, BlockNum: v, SizeHint: re.ctx.BlockSize})
	}
	return binary.LittleEndian.Uint32(block[(n-1)*4 : n*4]), nil
}
