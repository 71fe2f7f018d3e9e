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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ostafen/isocarve/internal/carve"
	"github.com/ostafen/isocarve/internal/diskio"
	"github.com/ostafen/isocarve/internal/logger"
	"github.com/ostafen/isocarve/pkg/util/format"
	osutils "github.com/ostafen/isocarve/pkg/util/os"
)

// RunRecover implements the distilled CLI's default action (spec §6.2): scan
// the named partition, reassemble every first-block candidate the scan
// flags with a primary volume descriptor (candidates carrying only the
// MBR-like flag are skipped), and prompt the operator to write each one out.
func RunRecover(command *cobra.Command, args []string) error {
	level, _ := command.Flags().GetString("log-level")
	logger.Init(logger.ParseLevel(level))

	mode := carve.AllBlocks
	if len(args) > 1 {
		mode = carve.ParseScanMode(args[1])
	}

	result, err := runScan(args[0], mode)
	if err != nil {
		fatal(err)
		return nil
	}
	defer result.dev.Close()

	logger.Info().
		Uint32("scanned", result.report.Scanned).
		Uint32("allocated", result.report.Allocated).
		Uint32("free_from_superblock", result.report.FreeFromSuperblk).
		Int("first_block_candidates", result.firstBlocks.Len()).
		Int("indirect_candidates", result.indirect.Len()).
		Msg("scan complete")

	reassembler := carve.NewReassembler(result.ctx, result.dev, result.indirect)
	writer := carve.NewWriter(result.ctx, result.dev)
	recovered := carve.NewPool(100_000)

	found := 0
	for i := 0; i < result.firstBlocks.Len(); i++ {
		candidate := result.firstBlocks.At(i)
		if candidate.SizeHint&carve.FlagPrimaryDescriptor == 0 {
			continue
		}
		found++

		volumeSize, err := writer.VolumeSize(candidate)
		if err != nil {
			logger.Warn().Err(err).Uint32("block", candidate.BlockNum).Msg("skipping candidate")
			continue
		}

		recovered.Reset()
		if err := reassembler.Reassemble(candidate, recovered); err != nil {
			fatal(err)
			return nil
		}

		fmt.Printf("Found ISO candidate at block %d (%s, %d blocks recovered).\n",
			candidate.BlockNum, format.FormatBytes(int64(volumeSize)), recovered.Len())

		if !promptYesNo("Write this file to disk?") {
			continue
		}

		out, path := promptOutputPath()
		written, err := writer.Write(out, recovered, volumeSize)
		out.Close()
		if err != nil {
			fatal(err)
			return nil
		}
		fmt.Printf("Wrote %s to %s\n", format.FormatBytes(int64(written)), path)
	}

	if found == 0 {
		fmt.Println("No ISO 9660 candidates found.")
	}
	return nil
}

func promptYesNo(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s [y/n] ", question)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

func promptOutputPath() (io.WriteCloser, string) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Output path: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fatal(err)
		}
		path := strings.TrimSpace(line)

		if dir := filepath.Dir(path); dir != "." {
			if _, err := osutils.EnsureDir(dir, false); err != nil {
				fmt.Printf("cannot prepare output directory %s: %v\n", dir, err)
				continue
			}
		}

		w, err := diskio.CreateOutput(path)
		if err != nil {
			fmt.Printf("cannot open %s for writing: %v\n", path, err)
			continue
		}
		return w, path
	}
}
