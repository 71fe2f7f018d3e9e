//go:build linux
// +build linux

package diskio

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ostafen/isocarve/internal/fs"
)

// deviceSize returns the addressable size of f. For a block device it asks
// the kernel directly via BLKGETSIZE64, since a raw device's os.FileInfo.Size
// is always zero; for a regular file (a disk image) the stat size is exact.
//
// BLKGETSIZE64 yields a uint64, so it's issued as a raw ioctl syscall rather
// than through IoctlGetInt, which would truncate the result through a native
// int on platforms where that's narrower than 64 bits.
func deviceSize(path string, f fs.File, info os.FileInfo) (int64, error) {
	if info.Mode()&os.ModeDevice == 0 {
		return info.Size(), nil
	}

	type fder interface{ Fd() uintptr }
	fd, ok := f.(fder)
	if !ok {
		return info.Size(), nil
	}

	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, errno
	}
	return int64(size), nil
}

// sectorSize returns the device's logical sector size via BLKSSZGET, falling
// back to the historical 512-byte default when the ioctl isn't supported
// (e.g. the path is a regular file standing in for a device).
func sectorSize(f fs.File) int64 {
	type fder interface{ Fd() uintptr }
	fd, ok := f.(fder)
	if !ok {
		return DefaultSectorSize
	}

	sz, err := unix.IoctlGetInt(int(fd.Fd()), unix.BLKSSZGET)
	if err != nil {
		return DefaultSectorSize
	}
	return int64(sz)
}
