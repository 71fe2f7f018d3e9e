package fuse

import "io"

// FileEntry is one synthetic recovered-candidate file: its own reader over
// the (possibly discontiguous, indirect-tree-assembled) recovered blocks,
// not an offset into one shared contiguous region.
type FileEntry struct {
	Name string
	R    io.ReaderAt
	Size uint64
}
