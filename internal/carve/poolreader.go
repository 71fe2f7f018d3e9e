package carve

import (
	"io"
	"sync"

	"github.com/ostafen/isocarve/internal/disk"
	"github.com/ostafen/isocarve/pkg/reader"
)

// readerAtAdapter exposes a disk.Reader (whose ReadAt reports failure via an
// error return rather than the stdlib io.ReaderAt convention) as a standard
// io.ReaderAt, so recovered pools can be read through pkg/reader's
// MultiReadSeeker exactly the way the rest of the module composes readers.
type readerAtAdapter struct {
	r disk.Reader
}

func (a readerAtAdapter) ReadAt(p []byte, off int64) (int, error) {
	if err := a.r.ReadAt(p, off); err != nil {
		return 0, err
	}
	return len(p), nil
}

// PoolReadSeeker returns an io.ReadSeeker presenting pool's recovered blocks
// as one contiguous logical stream, in insertion order, each block
// truncated to its SizeHint. Both the Writer and the FUSE mount (through
// PoolReaderAt) read a recovered candidate through it, instead of
// re-deriving block addresses themselves.
func PoolReadSeeker(r disk.Reader, pool *Pool) io.ReadSeeker {
	adapter := readerAtAdapter{r: r}

	entries := pool.Entries()
	readers := make([]io.ReadSeeker, len(entries))
	sizes := make([]int64, len(entries))
	for i, e := range entries {
		size := int64(e.SizeHint)
		readers[i] = io.NewSectionReader(adapter, int64(e.Addr), size)
		sizes[i] = size
	}
	return reader.NewMultiReadSeeker(readers, sizes)
}

// poolReaderAt adapts a *MultiReadSeeker into a concurrency-safe
// io.ReaderAt by serializing seek-then-read pairs behind a mutex — the FUSE
// layer issues concurrent Read calls against one open file handle, but the
// underlying seeker is stateful.
type poolReaderAt struct {
	mu sync.Mutex
	rs io.ReadSeeker
}

func (p *poolReaderAt) ReadAt(b []byte, off int64) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(p.rs, b)
}

// PoolReaderAt returns an io.ReaderAt over pool's recovered blocks, for
// consumers (the FUSE mount) that need random access rather than a single
// forward pass.
func PoolReaderAt(r disk.Reader, pool *Pool) io.ReaderAt {
	return &poolReaderAt{rs: PoolReadSeeker(r, pool)}
}

// PoolSize returns the total logical byte length of pool as PoolReadSeeker
// would present it: the sum of every entry's SizeHint.
func PoolSize(pool *Pool) int64 {
	var total int64
	for _, e := range pool.Entries() {
		total += int64(e.SizeHint)
	}
	return total
}
