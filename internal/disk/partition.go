package disk

import "fmt"

// Partition describes one MBR slot resolved against its ext superblock,
// sufficient to drive the Bitmap Oracle and the partition scan.
type Partition struct {
	Num         int    // 1-based slot number, matching the CLI's partition suffix
	Offset      uint64 // byte offset of the partition on the device (LBA * 512)
	BlockSize   uint32 // 1024 << raw_block_size, from the superblock
	TotalBlocks uint32
	FreeBlocks  uint32
}

// Resolve reads the MBR and the superblock of partition index (0-based) and
// returns the Partition describing it. It does not open a device itself;
// callers supply a 512-byte MBR reader and a superblock reader so this can
// be exercised against synthetic buffers in tests.
func Resolve(mbr *MBR, index int, readSuperblock func(addr uint64) (*Superblock, error)) (*Partition, error) {
	if !mbr.Valid() {
		return nil, fmt.Errorf("Invalid MBR: signature does not match 0xAA55.")
	}

	addr, ok := PartitionAddr(mbr, index)
	if !ok {
		return nil, fmt.Errorf("Invalid Partition: Partition %d does not exist.", index+1)
	}

	sb, err := readSuperblock(addr + 1024)
	if err != nil {
		return nil, err
	}
	if !sb.Valid() {
		return nil, fmt.Errorf("Invalid superblock")
	}

	return &Partition{
		Num:         index + 1,
		Offset:      addr,
		BlockSize:   sb.BlockSize(),
		TotalBlocks: sb.TotalBlocks,
		FreeBlocks:  sb.FreeBlocks,
	}, nil
}
