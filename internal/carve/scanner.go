package carve

import "github.com/ostafen/isocarve/internal/disk"

// ScanReport summarizes a completed scan for the sanity cross-check of
// §4.5 step 4.
type ScanReport struct {
	Scanned          uint32
	Allocated        uint32
	FreeFromSuperblk uint32
}

// Scanner drives the strictly sequential, single-threaded pass over every
// block of a partition (§4.5). It reads each scanned block off the device
// and hands that buffer to the Block Classifier; the Bitmap Oracle and the
// Classifier issue their own reads for group bitmaps and for the PVD probe.
type Scanner struct {
	ctx       *Context
	r         disk.Reader
	bitmap    *disk.BitmapOracle
	classify  *Classifier
	freeCount uint32
}

func NewScanner(ctx *Context, r disk.Reader, bitmap *disk.BitmapOracle, classifier *Classifier, freeBlocksFromSuperblock uint32) *Scanner {
	return &Scanner{ctx: ctx, r: r, bitmap: bitmap, classify: classifier, freeCount: freeBlocksFromSuperblock}
}

// Scan iterates block 0..TotalBlocks of the partition, applying the
// allocation filter of ctx.Mode, and feeds every passing block to the
// classifier. Ordering is significant: the first-block and indirect pools
// downstream depend on insertion order matching on-disk order.
func (s *Scanner) Scan(firstBlocks, indirect *Pool) (*ScanReport, error) {
	report := &ScanReport{FreeFromSuperblk: s.freeCount}
	block := make([]byte, s.ctx.BlockSize)

	for i := uint32(0); i < s.ctx.TotalBlocks; i++ {
		allocated, err := s.bitmap.IsAllocated(i)
		if err != nil {
			return nil, err
		}
		if allocated {
			report.Allocated++
		}

		if !s.passesFilter(allocated) {
			continue
		}

		addr := s.ctx.BlockAddr(i)
		if err := s.r.ReadAt(block, int64(addr)); err != nil {
			return nil, err
		}

		report.Scanned++
		if err := s.classify.Classify(block, addr, i, firstBlocks, indirect); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (s *Scanner) passesFilter(allocated bool) bool {
	switch s.ctx.Mode {
	case AllocatedOnly:
		return allocated
	case UnallocatedOnly:
		return !allocated
	default:
		return true
	}
}
