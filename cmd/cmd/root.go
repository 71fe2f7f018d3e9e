package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ostafen/isocarve/internal/disk"
	"github.com/ostafen/isocarve/internal/diskio"
)

const AppName = "isocarve"

// Execute builds and runs the root command. The distilled CLI (spec §6.2)
// is a single flat command — `isocarve <device-path> [option]` — so the
// root command itself runs recovery, taking the scan mode (all, free or
// used) as an optional second positional argument; mount and inspect are
// the only true subcommands, carried over from the teacher's multi-command
// layout for the browsing and diagnostic surfaces that aren't part of the
// core recovery path.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:          AppName + " <device-path> [all|free|used]",
		Short:        AppName + " - ISO 9660 carving tool for ext2/3/4 partitions",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         RunRecover,
	}
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(DefineMountCommand())
	rootCmd.AddCommand(DefineInspectCommand())

	return rootCmd.Execute()
}

// devicePathPrefixLen is the length of a bare "/dev/sdX" device path, before
// any partition-suffix digits.
const devicePathPrefixLen = 8

// parseDevicePath validates the device-path argument against spec §6.2
// (must match `/dev/sd*`, total length > 7) and splits off a trailing
// digit suffix selecting a partition. Absent a suffix, partition index 0
// (the CLI's "partition 1") is used.
func parseDevicePath(raw string) (path string, partitionIndex int, err error) {
	if !strings.HasPrefix(raw, "/dev/sd") || len(raw) <= 7 {
		return "", 0, fmt.Errorf("invalid device path %q: must match /dev/sd*", raw)
	}
	if len(raw) <= devicePathPrefixLen {
		return raw, 0, nil
	}

	suffix := raw[devicePathPrefixLen:]
	n, convErr := strconv.Atoi(suffix)
	if convErr != nil || n <= 0 {
		return raw, 0, nil
	}
	return raw[:devicePathPrefixLen], n - 1, nil
}

// openPartition opens the device at raw and resolves its MBR-addressed
// partition, the shared first step of recover and mount (via runScan).
func openPartition(raw string) (*diskio.Device, *disk.Partition, error) {
	path, index, err := parseDevicePath(raw)
	if err != nil {
		return nil, nil, err
	}

	dev, err := diskio.Open(path)
	if err != nil {
		return nil, nil, err
	}

	mbrBuf := make([]byte, disk.MBRSize)
	if err := dev.ReadAt(mbrBuf, 0); err != nil {
		dev.Close()
		return nil, nil, err
	}
	mbr, err := disk.ParseMBR(mbrBuf)
	if err != nil {
		dev.Close()
		return nil, nil, err
	}

	readSuperblock := func(addr uint64) (*disk.Superblock, error) {
		buf := make([]byte, disk.SuperblockSize)
		if err := dev.ReadAt(buf, int64(addr)); err != nil {
			return nil, err
		}
		return disk.ParseSuperblock(buf)
	}

	part, err := disk.Resolve(mbr, index, readSuperblock)
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return dev, part, nil
}
