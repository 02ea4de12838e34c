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

import "github.com/twotwotwo/sorts/sortutil"

// segmentBits is the number of bits held by one CountArray segment, matching
// merylOp-count.C's SEGMENT_SIZE (8192 * 64).
const segmentBits = 8192 * 64

// CountArray is the in-core bucket for a single prefix: a growable, bit-packed
// list of wData-bit kmer suffixes, appended one at a time as bases stream in,
// later collapsed into sorted (suffix, count) pairs. It is the Go counterpart
// of merylOp-count.C's merylCountArray, whose segmented allocation strategy
// (grow by fixed-size bit segments rather than reallocating the whole array)
// is kept; its sort/uniq/count step is ported using
// github.com/twotwotwo/sorts/sortutil instead of a C++ in-place radix sort.
type CountArray struct {
	prefix uint64
	wData  uint

	segments [][]byte // each segmentBits long
	nStored  uint64   // number of suffixes appended since the last removeCountedKmers

	suffixes []uint64 // set by countKmers; unique suffixes in ascending order
	counts   []uint64 // counts[i] is the number of times suffixes[i] was added
}

// kmersPerSegment returns how many wData-bit suffixes fit in one segment.
func kmersPerSegment(wData uint) uint64 {
	return segmentBits / uint64(wData)
}

// NewCountArray returns an empty CountArray for the given prefix bucket.
func NewCountArray(prefix uint64, wData uint) *CountArray {
	return &CountArray{prefix: prefix, wData: wData}
}

// Prefix returns the bucket's prefix value.
func (c *CountArray) Prefix() uint64 { return c.prefix }

// NumStored returns the number of suffixes appended since the last
// RemoveCountedKmers.
func (c *CountArray) NumStored() uint64 { return c.nStored }

// Add appends one wData-bit suffix to the bucket, growing a new segment if
// the current one is full. suffix must already be masked to wData bits.
func (c *CountArray) Add(suffix uint64) {
	perSeg := kmersPerSegment(c.wData)
	segIdx := c.nStored / perSeg
	slotInSeg := c.nStored % perSeg

	if segIdx == uint64(len(c.segments)) {
		c.segments = append(c.segments, make([]byte, bitsToBytes(segmentBits)))
	}

	setValue(c.segments[segIdx], slotInSeg*uint64(c.wData), c.wData, suffix)
	c.nStored++
}

// CountKmers sorts the stored suffixes and collapses runs of equal values
// into (suffix, count) pairs, the Go counterpart of merylCountArray::countKmers.
// Results are retrievable via Suffixes/Counts until the next CountKmers or
// RemoveCountedKmers call.
func (c *CountArray) CountKmers() {
	perSeg := kmersPerSegment(c.wData)

	raw := make([]uint64, c.nStored)
	for i := uint64(0); i < c.nStored; i++ {
		segIdx := i / perSeg
		slotInSeg := i % perSeg
		raw[i] = getValue(c.segments[segIdx], slotInSeg*uint64(c.wData), c.wData)
	}

	sortutil.Uint64s(raw)

	c.suffixes = c.suffixes[:0]
	c.counts = c.counts[:0]

	for i := 0; i < len(raw); {
		j := i + 1
		for j < len(raw) && raw[j] == raw[i] {
			j++
		}
		c.suffixes = append(c.suffixes, raw[i])
		c.counts = append(c.counts, uint64(j-i))
		i = j
	}
}

// Suffixes returns the unique suffixes found by the last CountKmers call, in
// ascending order.
func (c *CountArray) Suffixes() []uint64 { return c.suffixes }

// Counts returns the occurrence count for each entry in Suffixes.
func (c *CountArray) Counts() []uint64 { return c.counts }

// RemoveCountedKmers discards the in-core segments and counted results,
// mirroring merylCountArray::removeCountedKmers. The bucket is ready to
// accept Add calls for the next iteration afterwards.
func (c *CountArray) RemoveCountedKmers() {
	c.segments = nil
	c.nStored = 0
	c.suffixes = nil
	c.counts = nil
}
