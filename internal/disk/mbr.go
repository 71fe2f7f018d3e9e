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
package disk

import (
	"encoding/binary"
	"fmt"
)

const (
	MBRSize      = 512
	mbrSignature = 0xAA55
	sectorSize   = 512
)

// PartitionEntry is one 16-byte slot of the MBR partition table.
type PartitionEntry struct {
	BootIndicator uint8   // 0x00: 0x80 bootable, 0x00 inactive
	StartCHS      [3]byte // 0x01
	Type          uint8   // 0x04
	EndCHS        [3]byte // 0x05
	StartLBA      [4]byte // 0x08: little-endian sector number
	TotalSectors  [4]byte // 0x0C: little-endian sector count
}

// LBA returns the partition's starting logical block address.
func (p *PartitionEntry) LBA() uint32 { return binary.LittleEndian.Uint32(p.StartLBA[:]) }

// Sectors returns the partition's length in 512-byte sectors.
func (p *PartitionEntry) Sectors() uint32 { return binary.LittleEndian.Uint32(p.TotalSectors[:]) }

// MBR is the 512-byte master boot record at device offset 0.
type MBR struct {
	BootCode      [440]byte // 0x000-0x1B7
	DiskSignature [4]byte   // 0x1B8-0x1BB
	Reserved      [2]byte   // 0x1BC-0x1BD
	Partitions    [4]PartitionEntry
	Signature     [2]byte // 0x1FE-0x1FF
}

// SignatureValue returns the trailing two-byte signature; callers compare it
// against 0xAA55 themselves (ParseMBR deliberately does not validate it, so
// a non-MBR device still produces a structured MBR value upstream).
func (m *MBR) SignatureValue() uint16 { return binary.LittleEndian.Uint16(m.Signature[:]) }

// Valid reports whether the MBR carries the expected 0xAA55 signature.
func (m *MBR) Valid() bool { return m.SignatureValue() == mbrSignature }

// ParseMBR decodes exactly 512 bytes into an MBR. It does not validate the
// signature — that is the caller's job (see Valid), so that a device that
// isn't MBR-partitioned still yields a parsed structure rather than an
// error at this layer.
func ParseMBR(data []byte) (*MBR, error) {
	if len(data) != MBRSize {
		return nil, fmt.Errorf("disk: MBR must be %d bytes, got %d", MBRSize, len(data))
	}

	var mbr MBR
	copy(mbr.BootCode[:], data[0x000:0x1B8])
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])
	copy(mbr.Reserved[:], data[0x1BC:0x1BE])

	for i := range mbr.Partitions {
		off := 0x1BE + i*16
		e := data[off : off+16]
		mbr.Partitions[i].BootIndicator = e[0x00]
		copy(mbr.Partitions[i].StartCHS[:], e[0x01:0x04])
		mbr.Partitions[i].Type = e[0x04]
		copy(mbr.Partitions[i].EndCHS[:], e[0x05:0x08])
		copy(mbr.Partitions[i].StartLBA[:], e[0x08:0x0C])
		copy(mbr.Partitions[i].TotalSectors[:], e[0x0C:0x10])
	}

	copy(mbr.Signature[:], data[0x1FE:0x200])
	return &mbr, nil
}

// PartitionAddr returns the byte offset of partition index (0..3), or
// (0, false) if the index is out of range or the slot's LBA is zero
// (the slot is empty).
func PartitionAddr(mbr *MBR, index int) (uint64, bool) {
	if index < 0 || index >= len(mbr.Partitions) {
		return 0, false
	}
	lba := mbr.Partitions[index].LBA()
	if lba == 0 {
		return 0, false
	}
	return uint64(lba) * sectorSize, true
}
