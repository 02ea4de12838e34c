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

// Operation selects which strand(s) of a kmer window are counted.
type Operation uint8

const (
	// Count counts the canonical kmer: min(forward, reverse-complement).
	Count Operation = iota
	// CountForward always counts the forward strand.
	CountForward
	// CountReverse always counts the reverse-complement strand.
	CountReverse
)

func (op Operation) String() string {
	switch op {
	case Count:
		return "canonical"
	case CountForward:
		return "forward"
	case CountReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Options holds the tunables recognised by the counting engine (spec.md §6).
// It is built once by the caller (typically the cmd layer, from cobra flags)
// and threaded explicitly through CountDriver; there is no global state.
type Options struct {
	K int // kmer size, 1 <= K <= 32

	MaxMemory uint64 // soft memory budget in bytes; triggers a flush when exceeded
	NumCPUs   int    // flush/merge worker count

	ExpectedKmers uint64 // optional override for the size estimator; 0 means "estimate"

	Operation Operation

	NumOutputFiles int // number of prefix-partitioned output files; a power of two

	// Scale, when > 1, sub-samples canonical kmers (see scale.go); 1 disables it.
	Scale uint64

	Verbose  bool
	Compress bool // gzip-wrap iteration and final output files
}

// DefaultOptions returns an Options with sane defaults, mirroring the
// defaults unikmer/cmd sets via cobra flag defaults.
func DefaultOptions() Options {
	return Options{
		K:              0,
		MaxMemory:      4 << 30, // 4 GiB
		NumCPUs:        2,
		ExpectedKmers:  0,
		Operation:      Count,
		NumOutputFiles: 4,
		Scale:          1,
		Verbose:        false,
		Compress:       true,
	}
}

// Validate checks the fatal preconditions from spec.md §6 and normalizes
// NumCPUs to 1 if the caller left it unset or negative.
func (o *Options) Validate() error {
	if o.K <= 0 || o.K > 32 {
		return ErrKOverflow
	}
	if o.NumOutputFiles <= 0 || o.NumOutputFiles&(o.NumOutputFiles-1) != 0 {
		return ErrInvalidFileCount
	}
	if o.NumCPUs <= 0 {
		o.NumCPUs = 1
	}
	return nil
}
