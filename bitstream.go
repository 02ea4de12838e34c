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

// getValue extracts w (0-64) bits from B starting at bit offset o, big-endian
// within each byte, and returns them as the integer they represent. This is
// the positionDB bitfield reader ported from positionDB-dump.C's
// getDecodedValue, generalized from the C++'s fixed field widths to an
// arbitrary w.
func getValue(b []byte, o uint64, w uint) uint64 {
	if w == 0 {
		return 0
	}

	var v uint64
	bitsLeft := w
	pos := o

	for bitsLeft > 0 {
		byteIdx := pos >> 3
		bitIdx := uint(pos & 7)
		avail := 8 - bitIdx
		take := avail
		if take > bitsLeft {
			take = bitsLeft
		}

		shift := avail - take
		mask := byte((1 << take) - 1)
		chunk := (b[byteIdx] >> shift) & mask

		v = (v << take) | uint64(chunk)

		pos += uint64(take)
		bitsLeft -= take
	}

	return v
}

// getValues reads n consecutive variable-width fields starting at bit offset
// o, equivalent to n calls to getValue, and writes them into out. It returns
// the bit offset immediately after the last field, for callers that chain
// reads (as positionDB's slot decoder does with chk/pos/dup/siz).
func getValues(b []byte, o uint64, widths []uint, out []uint64) uint64 {
	for i, w := range widths {
		out[i] = getValue(b, o, w)
		o += uint64(w)
	}
	return o
}

// setValue writes the low w bits of v into B at bit offset o, big-endian
// within each byte. The caller must ensure v < 1<<w; any higher bits of v are
// not written.
func setValue(b []byte, o uint64, w uint, v uint64) {
	if w == 0 {
		return
	}

	bitsLeft := w
	pos := o

	for bitsLeft > 0 {
		byteIdx := pos >> 3
		bitIdx := uint(pos & 7)
		avail := 8 - bitIdx
		take := avail
		if take > bitsLeft {
			take = bitsLeft
		}

		shift := avail - take
		remaining := bitsLeft - take
		chunk := byte((v >> remaining) & ((1 << take) - 1))

		mask := byte(((1 << take) - 1) << shift)
		b[byteIdx] = (b[byteIdx] &^ mask) | (chunk << shift)

		pos += uint64(take)
		bitsLeft -= take
	}
}

// setValues is the write-side counterpart of getValues.
func setValues(b []byte, o uint64, widths []uint, values []uint64) uint64 {
	for i, w := range widths {
		setValue(b, o, w, values[i])
		o += uint64(w)
	}
	return o
}

// bitsToBytes returns the number of bytes needed to hold nbits bits.
func bitsToBytes(nbits uint64) uint64 {
	return (nbits + 7) / 8
}
