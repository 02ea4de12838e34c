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
	"encoding/binary"

	"github.com/cespare/xxhash"
)

// maxScaleHash is the full uint64 range; a canonical code passes the scale
// filter when its hash falls below maxScaleHash/Scale, keeping roughly a
// 1/Scale fraction of the kmer space.
const maxScaleHash = ^uint64(0)

// passesScale reports whether code should be kept under sub-sampling factor
// scale (scale <= 1 means no sub-sampling; callers skip calling this then).
// It hashes the 8-byte big-endian code with xxhash, the same hash
// sketch.go's minimizer sampler uses on raw sequence windows, applied here
// directly to the already 2-bit-encoded canonical code instead of a live
// sequence buffer.
func passesScale(code uint64, scale uint64) bool {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], code)
	h := xxhash.Sum64(buf[:])
	return h < maxScaleHash/scale
}
