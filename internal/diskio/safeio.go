// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package diskio provides positioned, fatal-on-error access to a read-only
// block device. A forensic scan runs for hours against a physical disk; a
// short read or EIO partway through almost always means the drive is
// failing, and papering over it with retries would silently corrupt the
// reassembly. Every SafeIO operation therefore reports failure as a
// *FatalIOError, never a plain error, so callers cannot accidentally treat
// it as recoverable.
package diskio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ostafen/isocarve/internal/fs"
)

// FatalIOError wraps any I/O failure that SafeIO considers unrecoverable.
// Only cmd/cmd is allowed to act on it by terminating the process; every
// other layer just propagates it.
type FatalIOError struct {
	Op  string
	Err error
}

func (e *FatalIOError) Error() string { return fmt.Sprintf("safeio: %s: %v", e.Op, e.Err) }
func (e *FatalIOError) Unwrap() error { return e.Err }

func fatal(op string, err error) *FatalIOError {
	return &FatalIOError{Op: op, Err: err}
}

// Device is a positioned, read-only handle on a block device or image file.
type Device struct {
	path     string
	f        fs.File
	size     int64
	sectorSz int64
}

// Open opens path read-only. Any failure is fatal: a device
// that can't be opened can't be scanned, and there is no degraded mode.
func Open(path string) (*Device, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fatal("open "+path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fatal("stat "+path, err)
	}

	size, err := deviceSize(path, f, info)
	if err != nil {
		f.Close()
		return nil, fatal("size "+path, err)
	}

	return &Device{path: path, f: f, size: size, sectorSz: sectorSize(f)}, nil
}

// Path returns the device path this handle was opened from.
func (d *Device) Path() string { return d.path }

// Size returns the total addressable size of the device in bytes.
func (d *Device) Size() int64 { return d.size }

// SectorSize returns the device's logical sector size in bytes, as reported
// by the kernel (BLKSSZGET on Linux) or DefaultSectorSize as a fallback. The
// MBR Reader assumes every LBA is a 512-byte sector (§3); a device reporting
// a different sector size is a sign the on-disk geometry doesn't match that
// assumption and partition offsets derived from the MBR may be wrong.
func (d *Device) SectorSize() int64 { return d.sectorSz }

// ReadAt reads exactly len(p) bytes at offset off. A short read (other than
// a clean EOF landing exactly on len(p) bytes) or any OS error is fatal.
func (d *Device) ReadAt(p []byte, off int64) error {
	n, err := d.f.ReadAt(p, off)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(p)) {
		return fatal(fmt.Sprintf("read %d bytes @%d", len(p), off), err)
	}
	if n != len(p) {
		return fatal(fmt.Sprintf("read %d bytes @%d", len(p), off), io.ErrUnexpectedEOF)
	}
	return nil
}


// Close releases the underlying device handle.
func (d *Device) Close() error {
	if err := d.f.Close(); err != nil {
		return fatal("close "+d.path, err)
	}
	return nil
}

// CreateOutput opens path for writing a recovered file: create-or-truncate,
// user-rw only, matching the prompt-driven output semantics of §6.3.
func CreateOutput(path string) (io.WriteCloser, error) {
	w, err := createOutputFile(path)
	if err != nil {
		return nil, fatal("create "+path, err)
	}
	return w, nil
}

// WriteAll writes all of p to w, treating any short write or error as fatal
// — the sink is assumed to be local disk, where a partial write means the
// filesystem is out of space or otherwise broken.
func WriteAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil || n != len(p) {
		if err == nil {
			err = io.ErrShortWrite
		}
		return fatal(fmt.Sprintf("write %d bytes", len(p)), err)
	}
	return nil
}
