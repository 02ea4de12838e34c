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

import "github.com/dustin/go-humanize"

// slackBytes is the margin by which a larger wPrefix must undercut the best
// candidate so far before it replaces it, matching merylOp-count.C's 16 MiB
// fudge factor: when two candidates are within 16 MiB of each other, the
// smaller wPrefix (fewer, larger buckets) is kept.
const slackBytes = 16 * 1024 * 1024

// maxIterations is the largest number of spill iterations EstimateSize will
// accept before giving up, matching merylOp-count.C's "nOutputs > 32" check.
const maxIterations = 32

// SizeEstimate is the result of SizeEstimator: how to split a 2k-bit kmer
// code into a prefix (bucket address) and data (suffix) piece, and how many
// spill iterations that split is expected to require.
type SizeEstimate struct {
	WPrefix    uint   // number of bits in the prefix
	NPrefix    uint64 // 1 << WPrefix
	WData      uint   // number of bits in the suffix (2*K - WPrefix)
	WDataMask  uint64 // mask selecting the low WData bits
	Iterations uint32 // number of spill iterations EstimateSize expects to need
	TotalBytes uint64 // estimated peak memory, for logging
}

// countArrayStructBytes approximates the Go runtime's footprint for one
// empty CountArray struct plus the segment-pointer slice header, standing in
// for merylOp-count.C's sizeof(merylCountArray) (a C++ struct-size constant
// that has no Go equivalent). It counts one 8-byte word plus three slice
// headers (segments, suffixes, counts), which is below the struct's actual
// 96-byte size on 64-bit platforms.
const countArrayStructBytes = 8 + 3*24

// EstimateSize chooses wPrefix to minimize total memory for storing
// nKmerEstimate kmers of size k under a maxMemory budget, the Go port of
// merylOp-count.C's estimateSizes(). It returns ErrTooManyIterations if even
// the best split would need more than maxIterations spill passes.
func EstimateSize(maxMemory, nKmerEstimate uint64, k int) (SizeEstimate, error) {
	var minMemory uint64 = ^uint64(0)
	var minWP uint = 0
	var minTotal uint64

	for wp := uint(1); wp < uint(2*k); wp++ {
		nPrefix := uint64(1) << wp
		kmersPerPrefix := nKmerEstimate/nPrefix + 1
		wData := uint(2*k) - wp
		kmersPerSeg := segmentBits / uint64(wData)
		segsPerPrefix := kmersPerPrefix/kmersPerSeg + 1

		structMemory := countArrayStructBytes*nPrefix + 8*nPrefix*segsPerPrefix
		dataMemory := nPrefix * segsPerPrefix * segmentBits / 8
		totalMemory := structMemory + dataMemory

		if wp >= 3 && (minWP == 0 || totalMemory+slackBytes < minMemory) {
			minMemory = totalMemory
			minWP = wp
			minTotal = totalMemory
		}

		if minMemory != ^uint64(0) && totalMemory > 4*minMemory {
			break
		}
	}

	if minWP == 0 {
		// k=1 never reaches the wp>=3 floor; fall back to the
		// largest usable prefix width, leaving at least 1 data bit.
		minWP = uint(2*k) - 1
		if minWP == 0 {
			minWP = 1
		}
		nPrefix := uint64(1) << minWP
		wData := uint(2*k) - minWP
		kmersPerSeg := segmentBits / uint64(wData)
		segsPerPrefix := nKmerEstimate/nPrefix/kmersPerSeg + 1
		minTotal = countArrayStructBytes*nPrefix + 8*nPrefix*segsPerPrefix + nPrefix*segsPerPrefix*segmentBits/8
	}

	wData := uint(2*k) - minWP
	est := SizeEstimate{
		WPrefix:    minWP,
		NPrefix:    uint64(1) << minWP,
		WData:      wData,
		WDataMask:  (uint64(1) << wData) - 1,
		TotalBytes: minTotal,
	}

	nOutputs := minTotal/maxMemory + 1
	if nOutputs > maxIterations {
		log.Errorf("cannot fit into memory limit %s; would need %d iterations", humanize.IBytes(maxMemory), nOutputs)
		return SizeEstimate{}, ErrTooManyIterations
	}
	if nOutputs > 1 {
		log.Warningf("memory limit %s is tight; expecting %d spill iterations", humanize.IBytes(maxMemory), nOutputs)
	}
	est.Iterations = uint32(nOutputs)

	log.Infof("estimated %s to count %s %d-mers (prefix bits=%d, data bits=%d)",
		humanize.IBytes(minTotal), humanize.Comma(int64(nKmerEstimate)), k, minWP, wData)

	return est, nil
}
