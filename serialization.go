// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
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

package kmercount

import (
	"encoding/binary"
	"io"
)

// MainVersion is the main version number of the block file format.
const MainVersion uint8 = 1

// MinorVersion is the minor version number of the block file format.
const MinorVersion uint8 = 0

// blockMagic identifies a kmercount block file.
var blockMagic = [8]byte{'.', 'k', 'm', 'r', 'c', 'n', 't', '1'}

var be = binary.BigEndian

// blockFileHeader is written once at the start of every output/iteration
// file, lazily on the first WriteBlock call, following serialization.go's
// magic-then-fixed-fields layout:
//
//	offset      bytes   name            type
//	0           8       magic           [8]byte
//	64          1       MainVersion     uint8
//	72          1       MinorVersion    uint8
//	80          1       K               uint8
//	88          1       WPrefix         uint8
//	96          1       WData           uint8
//	104         1       reserved        uint8
//	112         4       Flag            uint32
//
// Each block that follows is written by writeBlock.
type blockFileHeader struct {
	K       uint8
	WPrefix uint8
	WData   uint8
	Flag    uint32
}

func readBlockFileHeader(r io.Reader) (blockFileHeader, error) {
	var m [8]byte
	if err := binary.Read(r, be, &m); err != nil {
		return blockFileHeader{}, err
	}
	if m != blockMagic {
		return blockFileHeader{}, ErrInvalidFileFormat
	}

	var fields [6]uint8
	if err := binary.Read(r, be, &fields); err != nil {
		return blockFileHeader{}, err
	}
	// fields: MainVersion, MinorVersion, K, WPrefix, WData, reserved
	if fields[0] != MainVersion {
		return blockFileHeader{}, ErrInvalidFileFormat
	}

	var h blockFileHeader
	h.K = fields[2]
	h.WPrefix = fields[3]
	h.WData = fields[4]
	if err := binary.Read(r, be, &h.Flag); err != nil {
		return blockFileHeader{}, err
	}
	return h, nil
}

func writeBlockFileHeader(w io.Writer, h blockFileHeader) error {
	if err := binary.Write(w, be, blockMagic); err != nil {
		return err
	}
	fields := [6]uint8{MainVersion, MinorVersion, h.K, h.WPrefix, h.WData, 0}
	if err := binary.Write(w, be, fields); err != nil {
		return err
	}
	return binary.Write(w, be, h.Flag)
}

// block is one prefix bucket's counted kmers: Suffixes[i] occurred Counts[i]
// times. Suffixes are strictly ascending, mirroring CountArray.CountKmers's
// output.
type block struct {
	Prefix   uint64
	Suffixes []uint64
	Counts   []uint64
}

// writeBlock appends one block to w:
//
//	offset  bytes  name       type
//	0       8      prefix     uint64
//	8       8      n          uint64 (number of (suffix,count) pairs)
//	16+     var    pairs      n × PutUint64s(deltaSuffix, count)
//
// Suffix deltas are coded relative to the previous suffix in the block (the
// first entry's delta is its suffix value, since suffixes start from 0),
// following varint-GB.go's two-value control-byte codec — the same codec
// the teacher used for (kmer, taxid) pairs, here carrying (delta, count).
func writeBlock(w io.Writer, b block) error {
	var hdr [16]byte
	be.PutUint64(hdr[0:8], b.Prefix)
	be.PutUint64(hdr[8:16], uint64(len(b.Suffixes)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	buf := make([]byte, 16)
	var prev uint64
	for i, suf := range b.Suffixes {
		delta := suf - prev
		prev = suf
		ctrl, n := PutUint64s(buf, delta, b.Counts[i])
		if _, err := w.Write([]byte{ctrl}); err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
	}
	return nil
}

// readBlock reads one block written by writeBlock, or returns io.EOF if the
// stream is exhausted.
func readBlock(r io.Reader) (block, error) {
	var hdr [16]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return block{}, err
	}
	prefix := be.Uint64(hdr[0:8])
	n := be.Uint64(hdr[8:16])

	b := block{Prefix: prefix, Suffixes: make([]uint64, n), Counts: make([]uint64, n)}
	var ctrl [1]byte
	buf := make([]byte, 16)
	var prev uint64
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(r, ctrl[:]); err != nil {
			return block{}, err
		}
		blens := ctrlByte2ByteLengths[ctrl[0]]
		need := int(blens[0] + blens[1])
		if _, err := io.ReadFull(r, buf[:need]); err != nil {
			return block{}, err
		}
		values, _ := Uint64s(ctrl[0], buf[:need])
		prev += values[0]
		b.Suffixes[i] = prev
		b.Counts[i] = values[1]
	}
	return b, nil
}
