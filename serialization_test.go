// Copyright © 2018-2021 Wei Shen <shenwei356@gmail.com>
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
	"bytes"
	"io"
	"math/rand"
	"testing"
)

func TestBlockFileHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := blockFileHeader{K: 21, WPrefix: 18, WData: 24, Flag: 0}
	if err := writeBlockFileHeader(&buf, h); err != nil {
		t.Fatal(err)
	}

	got, err := readBlockFileHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("header round-trip: got %+v, want %+v", got, h)
	}
}

func TestReadBlockFileHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not a kmercount file..........")
	if _, err := readBlockFileHeader(buf); err != ErrInvalidFileFormat {
		t.Errorf("expected ErrInvalidFileFormat, got %v", err)
	}
}

func TestBlockRoundTrip(t *testing.T) {
	suffixes := []uint64{0, 1, 5, 6, 1000, 1000000, 1000000000}
	counts := make([]uint64, len(suffixes))
	for i := range counts {
		counts[i] = uint64(rand.Intn(1000) + 1)
	}
	want := block{Prefix: 42, Suffixes: suffixes, Counts: counts}

	var buf bytes.Buffer
	if err := writeBlock(&buf, want); err != nil {
		t.Fatal(err)
	}

	got, err := readBlock(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Prefix != want.Prefix {
		t.Errorf("Prefix = %d, want %d", got.Prefix, want.Prefix)
	}
	if !uint64sEqual(got.Suffixes, want.Suffixes) {
		t.Errorf("Suffixes = %v, want %v", got.Suffixes, want.Suffixes)
	}
	if !uint64sEqual(got.Counts, want.Counts) {
		t.Errorf("Counts = %v, want %v", got.Counts, want.Counts)
	}
}

func TestReadBlockEOF(t *testing.T) {
	var buf bytes.Buffer
	if _, err := readBlock(&buf); err != io.EOF {
		t.Errorf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestMultipleBlocksSequential(t *testing.T) {
	blocks := []block{
		{Prefix: 0, Suffixes: []uint64{1, 2, 3}, Counts: []uint64{1, 1, 2}},
		{Prefix: 1, Suffixes: []uint64{4}, Counts: []uint64{9}},
		{Prefix: 7, Suffixes: nil, Counts: nil},
	}

	var buf bytes.Buffer
	for _, b := range blocks {
		if err := writeBlock(&buf, b); err != nil {
			t.Fatal(err)
		}
	}

	for i, want := range blocks {
		got, err := readBlock(&buf)
		if err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
		if got.Prefix != want.Prefix || !uint64sEqual(got.Suffixes, want.Suffixes) || !uint64sEqual(got.Counts, want.Counts) {
			t.Errorf("block %d: got %+v, want %+v", i, got, want)
		}
	}

	if _, err := readBlock(&buf); err != io.EOF {
		t.Errorf("expected io.EOF after last block, got %v", err)
	}
}

func uint64sEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
