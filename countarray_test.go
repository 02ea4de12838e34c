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
	"math/rand"
	"testing"
)

func TestCountArrayBasic(t *testing.T) {
	c := NewCountArray(0, 6) // wData = 6 bits, values in [0,64)

	want := map[uint64]uint64{}
	for i := 0; i < 500; i++ {
		v := uint64(rand.Intn(64))
		c.Add(v)
		want[v]++
	}

	c.CountKmers()

	suffixes := c.Suffixes()
	counts := c.Counts()
	if len(suffixes) != len(counts) {
		t.Fatalf("len(suffixes)=%d != len(counts)=%d", len(suffixes), len(counts))
	}

	got := map[uint64]uint64{}
	for i, s := range suffixes {
		got[s] = counts[i]
		if i > 0 && suffixes[i-1] >= s {
			t.Errorf("suffixes not strictly ascending at %d: %d >= %d", i, suffixes[i-1], s)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("distinct values: got %d, want %d", len(got), len(want))
	}
	for v, n := range want {
		if got[v] != n {
			t.Errorf("count for %d: got %d, want %d", v, got[v], n)
		}
	}
}

func TestCountArraySpansMultipleSegments(t *testing.T) {
	wData := uint(4)
	c := NewCountArray(1, wData)

	perSeg := kmersPerSegment(wData)
	n := perSeg*2 + 17 // force at least 3 segments

	for i := uint64(0); i < n; i++ {
		c.Add(i % 16)
	}
	if uint64(len(c.segments)) < 3 {
		t.Errorf("expected >= 3 segments for %d entries, got %d", n, len(c.segments))
	}

	c.CountKmers()
	var total uint64
	for _, cnt := range c.Counts() {
		total += cnt
	}
	if total != n {
		t.Errorf("sum of counts = %d, want %d", total, n)
	}
}

func TestCountArrayRemoveCountedKmersResets(t *testing.T) {
	c := NewCountArray(0, 8)
	c.Add(3)
	c.Add(7)
	c.CountKmers()
	if c.NumStored() == 0 {
		t.Fatal("expected NumStored > 0 before reset")
	}

	c.RemoveCountedKmers()
	if c.NumStored() != 0 || len(c.Suffixes()) != 0 || len(c.segments) != 0 {
		t.Error("RemoveCountedKmers did not fully clear the bucket")
	}

	// bucket must be reusable afterwards
	c.Add(5)
	c.CountKmers()
	if len(c.Suffixes()) != 1 || c.Suffixes()[0] != 5 || c.Counts()[0] != 1 {
		t.Errorf("bucket not reusable after reset: suffixes=%v counts=%v", c.Suffixes(), c.Counts())
	}
}
