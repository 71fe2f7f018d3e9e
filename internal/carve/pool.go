package carve

// BlockEntry is the candidate-block triple of §3: an absolute device byte
// address, the block number within the partition, and a size hint whose
// meaning depends on which pool the entry lives in (a bitflag for
// first-block candidates, unused for indirect candidates, block_size for
// recovered blocks).
type BlockEntry struct {
	Addr     uint64
	BlockNum uint32
	SizeHint uint32
}

// First-block SizeHint bitflags (§3).
const (
	FlagPrimaryDescriptor uint32 = 1 << 0
	FlagMBRLike           uint32 = 1 << 1
)

// Pool is an append-only ordered sequence of block entries, insertion order
// preserved. The C original backs its dynamic array with a custom allocator
// that asserts the next write slot is still zero — a sentinel that only
// means anything because that allocator zero-initializes memory before
// handing it out. A plain growable slice needs no such assertion: append
// never writes over unrelated memory, so there's nothing to assert against.
type Pool struct {
	entries []BlockEntry
}

// NewPool returns an empty pool, optionally pre-sizing its backing array —
// the C original starts its first-block/indirect/recovered arrays at fixed
// capacities (1000/10000/100000); Go's append grows on demand, so the hint
// only avoids early reallocation.
func NewPool(capacityHint int) *Pool {
	return &Pool{entries: make([]BlockEntry, 0, capacityHint)}
}

// Append adds e as the next entry in scan/reconstruction order.
func (p *Pool) Append(e BlockEntry) { p.entries = append(p.entries, e) }

// Len returns the number of entries currently in the pool.
func (p *Pool) Len() int { return len(p.entries) }

// At returns the entry at index i.
func (p *Pool) At(i int) BlockEntry { return p.entries[i] }

// Entries returns the pool's entries in insertion order. The returned slice
// aliases the pool's backing array and must not be mutated by the caller.
func (p *Pool) Entries() []BlockEntry { return p.entries }

// Reset clears the pool back to empty without releasing its backing array,
// so it can be reused across successive first-block reassemblies. The C
// original leaks the recovered pool between files (the free/re-init pair is
// commented out, §9 Open Questions); this module calls Reset before each
// reassembly instead, closing that leak as the spec requires.
func (p *Pool) Reset() { p.entries = p.entries[:0] }
