//go:build linux
// +build linux

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
package fuse

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/ostafen/isocarve/internal/logger"
	osutils "github.com/ostafen/isocarve/pkg/util/os"
)

// Mount serves finfos as a read-only directory of recovered candidates at
// mountpoint, blocking until the mount is unmounted or a termination signal
// arrives. Each entry reads through its own reader over the recovered pool
// it was built from — recovered candidates are never materialized on disk
// until a caller reads through the mount.
func Mount(mountpoint string, finfos []FileEntry) error {
	created, err := PrepareMountpoint(mountpoint)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint)
	if err != nil {
		return err
	}
	defer c.Close()

	entries := make(map[string]FileEntry, len(finfos))
	for _, e := range finfos {
		entries[e.Name] = e
	}

	fs := &RecoverFS{
		entries:    entries,
		mountpoint: mountpoint,
	}

	go func() {
		srv := fusefs.New(c, nil)
		if err := srv.Serve(fs); err != nil {
			logger.Error().Err(err).Msg("fuse serve failed")
		}
	}()
	return waitForUmount(mountpoint)
}

func waitForUmount(mountpoint string) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	logger.Info().Msg("mounted, waiting for termination signal")

	const maxUnmountRetries = 3

	unmountAttempts := 0
	for sig := range sigc {
		logger.Info().Str("signal", sig.String()).Msg("signal received")

		if unmountAttempts >= maxUnmountRetries {
			return fmt.Errorf("exceeded %d unmount retries for %s", maxUnmountRetries, mountpoint)
		}

		logger.Info().Str("mountpoint", mountpoint).Int("attempt", unmountAttempts+1).Msg("attempting unmount")
		err := fuse.Unmount(mountpoint)
		if err == nil {
			logger.Info().Msg("unmounted successfully")
			return nil
		}

		unmountAttempts++
		logger.Warn().Err(err).Int("remaining", maxUnmountRetries-unmountAttempts).Msg("unmount failed, waiting for another signal")
	}
	return nil
}

// PrepareMountpoint ensures the given path is a valid, empty directory
// suitable for FUSE mounting, creating it if it doesn't exist.
func PrepareMountpoint(mountpoint string) (bool, error) {
	return osutils.EnsureDir(mountpoint, true)
}
