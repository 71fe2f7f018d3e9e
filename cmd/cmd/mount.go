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
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ostafen/isocarve/internal/carve"
	"github.com/ostafen/isocarve/internal/fuse"
	"github.com/ostafen/isocarve/internal/logger"
)

// DefineMountCommand adds the `mount` subcommand: re-scan a partition and
// expose every first-block candidate flagged with a primary volume
// descriptor as a synthetic read-only file under mountpoint (candidates
// carrying only the MBR-like flag are skipped), so a candidate can be inspected (e.g. mounted
// again as loopback ISO 9660) without committing it to disk via Write.
func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mount <device-path> <mountpoint> [all|free|used]",
		Short:        "Mount recovered ISO candidates from a partition over FUSE",
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		RunE:         RunMount,
	}
	return cmd
}

func RunMount(command *cobra.Command, args []string) error {
	level, _ := command.Flags().GetString("log-level")
	logger.Init(logger.ParseLevel(level))

	mode := carve.AllBlocks
	if len(args) > 2 {
		mode = carve.ParseScanMode(args[2])
	}

	result, err := runScan(args[0], mode)
	if err != nil {
		fatal(err)
		return nil
	}
	defer result.dev.Close()

	reassembler := carve.NewReassembler(result.ctx, result.dev, result.indirect)

	var entries []fuse.FileEntry
	for i := 0; i < result.firstBlocks.Len(); i++ {
		candidate := result.firstBlocks.At(i)
		if candidate.SizeHint&carve.FlagPrimaryDescriptor == 0 {
			continue
		}

		recovered := carve.NewPool(100_000)
		if err := reassembler.Reassemble(candidate, recovered); err != nil {
			fatal(err)
			return nil
		}

		entries = append(entries, fuse.FileEntry{
			Name: fmt.Sprintf("candidate-%d.iso", candidate.BlockNum),
			R:    carve.PoolReaderAt(result.dev, recovered),
			Size: uint64(carve.PoolSize(recovered)),
		})
	}

	logger.Info().Int("candidates", len(entries)).Str("mountpoint", args[1]).Msg("mounting recovered candidates")
	return fuse.Mount(args[1], entries)
}
