package diskio

import (
	"io"
	"os"
)

const DefaultSectorSize = 512

// createOutputFile implements the create+truncate, user-rw-only semantics
// required by §6.3 for a freshly confirmed recovery output path.
func createOutputFile(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
}
