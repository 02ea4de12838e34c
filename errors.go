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

import "errors"

// ErrIllegalBase means a byte outside {A,C,G,T} (upper or lower case) was seen.
var ErrIllegalBase = errors.New("kmercount: illegal base")

// ErrKOverflow means k is 0 or > 32.
var ErrKOverflow = errors.New("kmercount: k (1-32) overflow")

// ErrNoOutput means no output was configured for a count operation.
var ErrNoOutput = errors.New("kmercount: no output configured")

// ErrNoExpectedKmers means the estimator could not obtain a non-zero expected kmer count.
var ErrNoExpectedKmers = errors.New("kmercount: expectedKmers is zero after estimation")

// ErrTooManyIterations means the chosen memory budget needs more than 32 spill iterations.
var ErrTooManyIterations = errors.New("kmercount: memory budget requires too many spill iterations")

// ErrPrefixOverflow is a programmer error: a computed bucket prefix fell outside [0, nPrefix).
var ErrPrefixOverflow = errors.New("kmercount: prefix out of range")

// ErrInvalidFileCount means the requested output file count is not a power of two, or
// exceeds the number of prefix buckets.
var ErrInvalidFileCount = errors.New("kmercount: output file count must be a power of two <= nPrefix")

// ErrInvalidFileFormat means the magic number of a block/iteration file did not match.
var ErrInvalidFileFormat = errors.New("kmercount: invalid block file format")
