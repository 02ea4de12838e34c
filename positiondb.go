// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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
	"fmt"
	"io"
)

// PositionDB is the bit-packed hash-bucket table described in spec.md §4.7,
// the Go layout of meryl-san/libkmer/positionDB.H. It is built directly by
// callers that already have the packed fields (e.g. a decoder for some other
// tool's dump), not by CountDriver itself: PositionDBDump exists to give this
// codebase's text diagnostic format a tested, byte-for-byte contract.
type PositionDB struct {
	TableSizeInEntries uint64
	HashWidth          uint

	// Exactly one of HashTableBP or HashTableFW is populated: the bit-packed
	// form stores each entry in HashWidth bits; the fixed-width form stores
	// one uint64 per entry (length TableSizeInEntries+1, so entry h+1 is
	// always addressable).
	HashTableBP []byte
	HashTableFW []uint64

	ChckWidth uint
	PptrWidth uint
	SizeWidth uint
	PosnWidth uint

	Buckets   []byte
	Positions []byte
}

// wFin is the total bit width of one occupied bucket slot: chk + pos + dup +
// (optional) siz.
func (p *PositionDB) wFin() uint {
	return p.ChckWidth + p.PptrWidth + 1 + p.SizeWidth
}

// bucketRange returns the half-open [start, end) range of slot indices
// belonging to bucket h.
func (p *PositionDB) bucketRange(h uint64) (start, end uint64) {
	if p.HashTableBP != nil {
		w := uint64(p.HashWidth)
		return getValue(p.HashTableBP, h*w, p.HashWidth), getValue(p.HashTableBP, (h+1)*w, p.HashWidth)
	}
	return p.HashTableFW[h], p.HashTableFW[h+1]
}

// Dump writes the bucket table to w in the text diagnostic format defined by
// spec.md §4.7, the Go port of positionDB::dump in positionDB-dump.C: one "B"
// line per bucket header, then one slot line per occupied entry in that
// bucket's range.
func (p *PositionDB) Dump(w io.Writer) error {
	allWidths := []uint{p.ChckWidth, p.PptrWidth, 1, p.SizeWidth}
	nFields := 4
	if p.SizeWidth == 0 {
		nFields = 3
	}
	widths := allWidths[:nFields]
	wFin := uint64(p.wFin())

	for h := uint64(0); h < p.TableSizeInEntries; h++ {
		st, ed := p.bucketRange(h)
		if _, err := fmt.Fprintf(w, "B %d %d-%d\n", h, st, ed); err != nil {
			return err
		}

		for ; st < ed; st++ {
			vals := make([]uint64, 4)
			getValues(p.Buckets, st*wFin, widths, vals)

			tag := byte('U')
			if vals[2] == 0 {
				tag = 'D'
			}
			if _, err := fmt.Fprintf(w, "%c chk=%x pos=%d siz=%d", tag, vals[0], vals[1], vals[3]); err != nil {
				return err
			}

			if vals[2] == 0 {
				if err := p.dumpPositions(w, vals[1]); err != nil {
					return err
				}
			}

			if _, err := fmt.Fprint(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// dumpPositions writes the position list stored at positions[idx*posnWidth..],
// a posnWidth-bit length followed by that many posnWidth-bit positions.
func (p *PositionDB) dumpPositions(w io.Writer, idx uint64) error {
	pos := idx * uint64(p.PosnWidth)
	length := getValue(p.Positions, pos, p.PosnWidth)
	pos += uint64(p.PosnWidth)

	for ; length > 0; length-- {
		if _, err := fmt.Fprintf(w, " %d", getValue(p.Positions, pos, p.PosnWidth)); err != nil {
			return err
		}
		pos += uint64(p.PosnWidth)
	}
	return nil
}
