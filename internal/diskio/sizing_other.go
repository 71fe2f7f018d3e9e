//go:build !linux
// +build !linux

package diskio

import (
	"os"

	"github.com/ostafen/isocarve/internal/fs"
)

// deviceSize falls back to the regular os.FileInfo size outside Linux, where
// this module has no raw block-device ioctl support (see DESIGN.md).
func deviceSize(path string, f fs.File, info os.FileInfo) (int64, error) {
	return info.Size(), nil
}

func sectorSize(f fs.File) int64 {
	return DefaultSectorSize
}
