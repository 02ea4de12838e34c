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
	"io"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
)

// BaseIterator streams the bases of one or more input sequences. endOfSeq is
// true on the call that returns the last base of a sequence; atEnd is true
// once the iterator has nothing left. This is the core's only dependency on
// sequence input (spec.md's Non-goal "sequence file readers" keeps the
// actual file-format parsing out of the core, behind this interface).
type BaseIterator interface {
	Next() (base byte, endOfSeq bool, atEnd bool)
	Close() error
}

// FastxBaseIterator is a reference BaseIterator built on
// github.com/shenwei356/bio/seqio/fastx, the same FASTA/Q reader
// unikmer/cmd/count.go uses. It is example wiring for CountDriver callers,
// not part of the core's tested contract.
type FastxBaseIterator struct {
	reader *fastx.Reader

	record *fastx.Record
	pos    int
	err    error
	atEnd  bool
}

// NewFastxBaseIterator opens file (FASTA or FASTQ, optionally gzipped, per
// fastx.NewDefaultReader's own format sniffing) for streaming.
func NewFastxBaseIterator(file string) (*FastxBaseIterator, error) {
	r, err := fastx.NewDefaultReader(file)
	if err != nil {
		return nil, err
	}
	it := &FastxBaseIterator{reader: r}
	it.advanceRecord()
	return it, nil
}

func (it *FastxBaseIterator) advanceRecord() {
	record, err := it.reader.Read()
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		it.atEnd = true
		it.record = nil
		return
	}
	it.record = record
	it.pos = 0
}

// Next returns the next base of the current record, advancing to the next
// record (and reporting endOfSeq) when the current one is exhausted.
func (it *FastxBaseIterator) Next() (base byte, endOfSeq bool, atEnd bool) {
	if it.atEnd || it.record == nil {
		return 0, false, true
	}

	seq := it.record.Seq.Seq
	base = seq[it.pos]
	it.pos++

	if it.pos >= len(seq) {
		endOfSeq = true
		it.advanceRecord()
	}
	return base, endOfSeq, false
}

// Err returns the first non-EOF read error encountered, if any.
func (it *FastxBaseIterator) Err() error {
	return it.err
}

// Close reports the first non-EOF read error encountered, if any. The
// underlying fastx.Reader manages its own file handle and needs no explicit
// close, matching how unikmer/cmd/count.go uses it.
func (it *FastxBaseIterator) Close() error {
	return it.err
}

// EstimateKmersFromFile gives a rough guess at how many kmers an input file
// contains, from its size and filename suffix alone (it never opens or
// decompresses the file). Ported from
// guesstimateNumberOfkmersInInput_dnaSeqFile in merylOp-count.C; the
// per-codec multipliers approximate each compressor's typical ratio on DNA
// sequence.
func EstimateKmersFromFile(name string, sizeBytes int64) uint64 {
	if name == "-" {
		return 0
	}

	switch {
	case strings.HasSuffix(name, ".xz"):
		return uint64(sizeBytes) * 5
	case strings.HasSuffix(name, ".gz"):
		return uint64(sizeBytes) * 4
	case strings.HasSuffix(name, ".bz2"):
		return uint64(sizeBytes) * 4
	default:
		return uint64(sizeBytes)
	}
}
