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

import "testing"

func TestEstimateKmersFromFile(t *testing.T) {
	cases := []struct {
		name string
		size int64
		want uint64
	}{
		{"reads.fa", 1000, 1000},
		{"reads.fa.gz", 1000, 4000},
		{"reads.fa.xz", 1000, 5000},
		{"reads.fa.bz2", 1000, 4000},
		{"-", 1000, 0},
	}

	for _, c := range cases {
		got := EstimateKmersFromFile(c.name, c.size)
		if got != c.want {
			t.Errorf("EstimateKmersFromFile(%q, %d) = %d, want %d", c.name, c.size, got, c.want)
		}
	}
}

// sliceBaseIterator is a minimal in-memory BaseIterator used to drive
// CountDriver in tests without depending on real FASTA files.
type sliceBaseIterator struct {
	seqs [][]byte
	si   int
	pos  int
}

func newSliceBaseIterator(seqs ...string) *sliceBaseIterator {
	b := &sliceBaseIterator{}
	for _, s := range seqs {
		b.seqs = append(b.seqs, []byte(s))
	}
	return b
}

func (b *sliceBaseIterator) Next() (base byte, endOfSeq bool, atEnd bool) {
	for b.si < len(b.seqs) && b.pos >= len(b.seqs[b.si]) {
		b.si++
		b.pos = 0
	}
	if b.si >= len(b.seqs) {
		return 0, false, true
	}

	base = b.seqs[b.si][b.pos]
	b.pos++
	endOfSeq = b.pos >= len(b.seqs[b.si])
	return base, endOfSeq, false
}

func (b *sliceBaseIterator) Close() error { return nil }

var _ BaseIterator = (*sliceBaseIterator)(nil)
var _ BaseIterator = (*FastxBaseIterator)(nil)
