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
	"strings"
	"testing"
)

// buildSlot packs one bucket slot (chk, pos, dup[, siz]) at bit offset o into
// b, returning the offset immediately after it.
func buildSlot(b []byte, o uint64, widths []uint, chk, pos, dup, siz uint64) uint64 {
	vals := []uint64{chk, pos, dup, siz}
	return setValues(b, o, widths, vals[:len(widths)])
}

func TestPositionDBDumpFormat(t *testing.T) {
	const chckWidth, pptrWidth, posnWidth = 8, 8, 8
	widths := []uint{chckWidth, pptrWidth, 1} // sizeWidth == 0: absent

	// 3 slots total, wFin = 8+8+1 = 17 bits each.
	buckets := make([]byte, bitsToBytes(17*3))
	o := uint64(0)
	o = buildSlot(buckets, o, widths, 0xAB, 42, 1, 0) // bucket 0, slot 0: unique
	o = buildSlot(buckets, o, widths, 0x01, 0, 0, 0)  // bucket 0, slot 1: duplicated, positions[0..]
	buildSlot(buckets, o, widths, 0xFF, 7, 1, 0)       // bucket 1, slot 2: unique

	// positions[0..]: length=2, then 10, 20.
	positions := make([]byte, bitsToBytes(posnWidth*3))
	setValue(positions, 0*posnWidth, posnWidth, 2)
	setValue(positions, 1*posnWidth, posnWidth, 10)
	setValue(positions, 2*posnWidth, posnWidth, 20)

	db := &PositionDB{
		TableSizeInEntries: 2,
		HashTableFW:        []uint64{0, 2, 3},
		ChckWidth:          chckWidth,
		PptrWidth:          pptrWidth,
		SizeWidth:          0,
		PosnWidth:          posnWidth,
		Buckets:            buckets,
		Positions:          positions,
	}

	var sb strings.Builder
	if err := db.Dump(&sb); err != nil {
		t.Fatal(err)
	}

	want := "B 0 0-2\n" +
		"U chk=ab pos=42 siz=0\n" +
		"D chk=1 pos=0 siz=0 10 20\n" +
		"B 1 2-3\n" +
		"U chk=ff pos=7 siz=0\n"

	if sb.String() != want {
		t.Errorf("dump mismatch:\ngot:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestPositionDBDumpEmptyBuckets(t *testing.T) {
	db := &PositionDB{
		TableSizeInEntries: 2,
		HashTableFW:        []uint64{0, 0, 0},
		ChckWidth:          8,
		PptrWidth:          8,
		PosnWidth:          8,
		Buckets:            nil,
		Positions:          nil,
	}

	var sb strings.Builder
	if err := db.Dump(&sb); err != nil {
		t.Fatal(err)
	}

	want := "B 0 0-0\nB 1 0-0\n"
	if sb.String() != want {
		t.Errorf("dump mismatch: got %q, want %q", sb.String(), want)
	}
}

func TestPositionDBDumpWithSizeField(t *testing.T) {
	const chckWidth, pptrWidth, sizeWidth, posnWidth = 4, 4, 4, 8
	widths := []uint{chckWidth, pptrWidth, 1, sizeWidth}

	buckets := make([]byte, bitsToBytes(13))
	buildSlot(buckets, 0, widths, 0x5, 0x3, 1, 0x7)

	db := &PositionDB{
		TableSizeInEntries: 1,
		HashTableFW:        []uint64{0, 1},
		ChckWidth:          chckWidth,
		PptrWidth:          pptrWidth,
		SizeWidth:          sizeWidth,
		PosnWidth:          posnWidth,
		Buckets:            buckets,
	}

	var sb strings.Builder
	if err := db.Dump(&sb); err != nil {
		t.Fatal(err)
	}

	want := "B 0 0-1\nU chk=5 pos=3 siz=7\n"
	if sb.String() != want {
		t.Errorf("dump mismatch: got %q, want %q", sb.String(), want)
	}
}
