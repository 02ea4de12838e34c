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
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// CountDriver runs the top-level streaming count loop: load bases into
// prefix buckets, flush to the Writer when the memory budget is exceeded,
// and merge spill iterations at the end. It is the Go port of
// merylOperation::count() in merylOp-count.C.
type CountDriver struct {
	opt Options
	est SizeEstimate

	buckets []*CountArray
	writer  *Writer

	kmersAdded  uint64
	memReported uint64
}

// NewCountDriver builds a driver for opt, estimating the prefix/data bit
// split from opt.ExpectedKmers (or expectedKmers, if opt.ExpectedKmers is 0)
// and allocating one CountArray per prefix bucket.
func NewCountDriver(opt Options, w *Writer, expectedKmers uint64) (*CountDriver, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNoOutput
	}

	n := opt.ExpectedKmers
	if n == 0 {
		n = expectedKmers
	}
	if n == 0 {
		return nil, ErrNoExpectedKmers
	}

	est, err := EstimateSize(opt.MaxMemory, n, opt.K)
	if err != nil {
		return nil, err
	}

	buckets := make([]*CountArray, est.NPrefix)
	for p := uint64(0); p < est.NPrefix; p++ {
		buckets[p] = NewCountArray(p, est.WData)
	}

	log.Infof("counting %s %s %d-mers with prefix bits=%d, data bits=%d",
		humanize.Comma(int64(n)), opt.Operation, opt.K, est.WPrefix, est.WData)

	return &CountDriver{opt: opt, est: est, buckets: buckets, writer: w}, nil
}

// AddSequence streams one sequence's bases through it into the buckets,
// flushing to the writer whenever the memory budget is exceeded. It
// corresponds to one pass of merylOperation::count()'s outer "for each
// input file" loop, generalized to any BaseIterator.
func (d *CountDriver) AddSequence(it BaseIterator) error {
	enc, err := NewKmerEncoder(d.opt.K)
	if err != nil {
		return err
	}

	for {
		b, endOfSeq, atEnd := it.Next()
		if atEnd {
			return nil
		}

		forward, revComp, ready, ok := enc.AddBase(b)
		if ok && ready {
			code := canonicalFor(d.opt.Operation, forward, revComp)
			if d.opt.Scale <= 1 || passesScale(code, d.opt.Scale) {
				pp := code >> d.est.WData
				mm := code & d.est.WDataMask
				d.buckets[pp].Add(mm)
				d.kmersAdded++
			}
		}

		if endOfSeq {
			enc.Reset()
		}

		if err := d.maybeFlush(); err != nil {
			return err
		}
	}
}

// maybeFlush triggers a parallel flush once the estimated in-core memory
// (kmersAdded * wData bits) exceeds the configured budget, matching
// merylOp-count.C's "memUsed > _maxMemory * 8" check.
func (d *CountDriver) maybeFlush() error {
	memUsed := d.kmersAdded * uint64(d.est.WData)

	if memUsed-d.memReported > 1<<30 {
		d.memReported = memUsed
		log.Infof("used %s (%d bits) out of %s",
			humanize.IBytes(memUsed/8), memUsed, humanize.IBytes(d.opt.MaxMemory))
	}

	if memUsed <= d.opt.MaxMemory*8 {
		return nil
	}

	log.Noticef("memory full, writing results using %d threads", d.opt.NumCPUs)
	if err := d.flushAll(); err != nil {
		return err
	}
	if err := d.writer.IncrementIteration(); err != nil {
		return errors.Wrap(err, "incrementing iteration")
	}
	d.kmersAdded = 0
	d.memReported = 0
	return nil
}

// flushAll dumps every bucket to the writer and clears the in-core data,
// using a dynamically scheduled worker pool across output files: each
// goroutine claims the next unclaimed file index from a shared atomic
// counter and processes every prefix routed to that file, the Go
// counterpart of merylOp-count.C's
// "#pragma omp parallel for schedule(dynamic, 1)" loop (see SPEC_FULL.md §9
// for why a counter is used here instead of a channel of tokens).
func (d *CountDriver) flushAll() error {
	var nextFile int64 = -1
	numFiles := int64(d.writer.NumberOfFiles())

	var wg sync.WaitGroup
	errCh := make(chan error, d.opt.NumCPUs)

	worker := func() {
		defer wg.Done()
		for {
			ff := atomic.AddInt64(&nextFile, 1)
			if ff >= numFiles {
				return
			}

			first := d.writer.FirstPrefixInFile(int(ff))
			last := d.writer.LastPrefixInFile(int(ff))

			for pp := first; pp <= last; pp++ {
				bucket := d.buckets[pp]
				bucket.CountKmers()
				if err := d.writer.WriteBlock(pp, bucket.Suffixes(), bucket.Counts()); err != nil {
					select {
					case errCh <- errors.Wrapf(err, "writing prefix %d", pp):
					default:
					}
					return
				}
				bucket.RemoveCountedKmers()
			}
		}
	}

	n := d.opt.NumCPUs
	if n <= 0 {
		n = 1
	}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go worker()
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Finish flushes any remaining in-core kmers and finalizes the writer
// (merging iterations, or renaming the lone iteration to its final name).
func (d *CountDriver) Finish() error {
	if d.kmersAdded > 0 {
		if err := d.flushAll(); err != nil {
			return err
		}
	}
	if err := d.writer.FinishIteration(); err != nil {
		return errors.Wrap(err, "finishing iterations")
	}
	log.Notice("finished counting")
	return nil
}
