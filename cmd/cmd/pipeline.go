package cmd

import (
	"github.com/ostafen/isocarve/internal/carve"
	"github.com/ostafen/isocarve/internal/disk"
	"github.com/ostafen/isocarve/internal/diskio"
)

// scanResult bundles everything a completed partition scan leaves behind:
// the open device, the resolved partition, the immutable scan Context, and
// the two candidate pools the Scanner built.
type scanResult struct {
	dev         *diskio.Device
	part        *disk.Partition
	ctx         *carve.Context
	firstBlocks *carve.Pool
	indirect    *carve.Pool
	report      *carve.ScanReport
}

// runScan opens devicePath, resolves its partition, and drives a full
// Scanner pass over it in the given mode. It is the shared first stage of
// recover and mount.
func runScan(devicePath string, mode carve.ScanMode) (*scanResult, error) {
	dev, part, err := openPartition(devicePath)
	if err != nil {
		return nil, err
	}

	ctx := &carve.Context{
		PartitionAddr: part.Offset,
		BlockSize:     part.BlockSize,
		TotalBlocks:   part.TotalBlocks,
		Mode:          mode,
	}

	readSuperblock := func(addr uint64) (*disk.Superblock, error) {
		buf := make([]byte, disk.SuperblockSize)
		if err := dev.ReadAt(buf, int64(addr)); err != nil {
			return nil, err
		}
		return disk.ParseSuperblock(buf)
	}

	bitmap := disk.NewBitmapOracle(dev, part.Offset, part.BlockSize, readSuperblock)
	classifier := carve.NewClassifier(ctx, dev)
	scanner := carve.NewScanner(ctx, dev, bitmap, classifier, part.FreeBlocks)

	firstBlocks := carve.NewPool(1000)
	indirect := carve.NewPool(10000)

	report, err := scanner.Scan(firstBlocks, indirect)
	if err != nil {
		dev.Close()
		return nil, err
	}

	return &scanResult{
		dev:         dev,
		part:        part,
		ctx:         ctx,
		firstBlocks: firstBlocks,
		indirect:    indirect,
		report:      report,
	}, nil
}
