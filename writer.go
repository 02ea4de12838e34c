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
	"bufio"
	"container/heap"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// Writer partitions nPrefix buckets across a power-of-two number of output
// files and manages the spill-iteration/merge lifecycle, the Go port of
// the output-management counterpart merylOp-count.C drives through its
// `_output` member (firstPrefixInFile/lastPrefixInFile/fileOf and the
// iteration/merge/rename logic at the end of count()). The bit-split
// diagram from merylOp-count.C is kept verbatim:
//
//	kmer -- [ wPrefix (e.g. 18) = prefixSize               | wData (e.g. 36) ]
//	file -- [ numFileBits        | prefixSize - numFileBits ]
type Writer struct {
	baseName string
	k        int
	wPrefix  uint
	wData    uint
	nPrefix  uint64

	numFiles    int
	numFileBits uint

	compress bool

	iteration int        // number of completed incrementIteration calls
	mu        sync.Mutex // guards handles and rawFiles in handleFor
	handles   map[int]io.WriteCloser
	rawFiles  map[int]*os.File
}

// NewWriter returns a Writer that will split nPrefix buckets (wPrefix bits)
// across numFiles output files, writing to paths of the form
// "<baseName>.partNN" (final) or "<baseName>.iterII.partNN" (spill).
func NewWriter(baseName string, k int, wPrefix uint, numFiles int, compress bool) (*Writer, error) {
	if numFiles <= 0 || numFiles&(numFiles-1) != 0 {
		return nil, ErrInvalidFileCount
	}
	nPrefix := uint64(1) << wPrefix
	if uint64(numFiles) > nPrefix {
		return nil, ErrInvalidFileCount
	}

	numFileBits := uint(0)
	for (1 << numFileBits) < numFiles {
		numFileBits++
	}

	return &Writer{
		baseName:    baseName,
		k:           k,
		wPrefix:     wPrefix,
		wData:       uint(2*k) - wPrefix,
		nPrefix:     nPrefix,
		numFiles:    numFiles,
		numFileBits: numFileBits,
		compress:    compress,
		handles:     make(map[int]io.WriteCloser),
		rawFiles:    make(map[int]*os.File),
	}, nil
}

// NumberOfFiles returns the number of output files.
func (w *Writer) NumberOfFiles() int { return w.numFiles }

// FileOf returns which output file prefix p belongs to.
func (w *Writer) FileOf(p uint64) int {
	return int(p >> (w.wPrefix - w.numFileBits))
}

// FirstPrefixInFile returns the smallest prefix routed to file ff.
func (w *Writer) FirstPrefixInFile(ff int) uint64 {
	return uint64(ff) << (w.wPrefix - w.numFileBits)
}

// LastPrefixInFile returns the largest prefix routed to file ff.
func (w *Writer) LastPrefixInFile(ff int) uint64 {
	return w.FirstPrefixInFile(ff+1) - 1
}

func (w *Writer) iterationFileName(ff int) string {
	return fmt.Sprintf("%s.iter%03d.part%03d", w.baseName, w.iteration, ff)
}

func (w *Writer) finalFileName(ff int) string {
	return fmt.Sprintf("%s.part%03d", w.baseName, ff)
}

func (w *Writer) handleFor(ff int) (io.WriteCloser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if h, ok := w.handles[ff]; ok {
		return h, nil
	}

	f, err := os.Create(w.iterationFileName(ff))
	if err != nil {
		return nil, errors.Wrap(err, w.iterationFileName(ff))
	}
	w.rawFiles[ff] = f

	var h io.WriteCloser
	if w.compress {
		h = pgzip.NewWriter(f)
	} else {
		h = nopSyncWriteCloser{bufio.NewWriter(f)}
	}
	if err := writeBlockFileHeader(h, blockFileHeader{K: uint8(w.k), WPrefix: uint8(w.wPrefix), WData: uint8(w.wData)}); err != nil {
		return nil, errors.Wrap(err, w.iterationFileName(ff))
	}
	w.handles[ff] = h
	return h, nil
}

// WriteBlock writes one CountArray's counted results as a block to the
// output file that owns prefix. It is safe to call concurrently for
// distinct files (the worker pool in driver.go assigns each goroutine a
// disjoint set of file indices), but not for the same file index.
func (w *Writer) WriteBlock(prefix uint64, suffixes, counts []uint64) error {
	ff := w.FileOf(prefix)
	h, err := w.handleFor(ff)
	if err != nil {
		return err
	}
	return writeBlock(h, block{Prefix: prefix, Suffixes: suffixes, Counts: counts})
}

// IncrementIteration closes every currently open output file (flushing it to
// disk) and starts a new spill iteration; the next WriteBlock for a given
// file opens a fresh "<baseName>.iterII.partNN" file.
func (w *Writer) IncrementIteration() error {
	for ff, h := range w.handles {
		if err := h.Close(); err != nil {
			return errors.Wrap(err, w.iterationFileName(ff))
		}
		if f := w.rawFiles[ff]; f != nil {
			if err := f.Close(); err != nil {
				return errors.Wrap(err, w.iterationFileName(ff))
			}
		}
	}
	w.handles = make(map[int]io.WriteCloser)
	w.rawFiles = make(map[int]*os.File)
	w.iteration++
	return nil
}

// FinishIteration closes out the writer: if only one iteration ever ran, its
// per-file outputs are simply renamed to their final names; otherwise every
// file's iteration outputs are merged, summing counts for equal (prefix,
// suffix) keys, matching merylOp-count.C's closing comment ("Merge any
// iterations into a single file, or just rename the single file").
func (w *Writer) FinishIteration() error {
	if err := w.IncrementIteration(); err != nil {
		return err
	}

	if w.iteration <= 1 {
		for ff := 0; ff < w.numFiles; ff++ {
			src := fmt.Sprintf("%s.iter000.part%03d", w.baseName, ff)
			dst := w.finalFileName(ff)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			if err := os.Rename(src, dst); err != nil {
				return errors.Wrap(err, dst)
			}
		}
		return nil
	}

	for ff := 0; ff < w.numFiles; ff++ {
		if err := w.mergeFile(ff); err != nil {
			return err
		}
	}
	return nil
}

// mergeFile k-way merges the w.iteration spill files for output file ff into
// its final file, summing counts for matching (prefix, suffix) keys.
func (w *Writer) mergeFile(ff int) error {
	var readers []*bufio.Reader
	var closers []io.Closer

	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for it := 0; it < w.iteration; it++ {
		name := fmt.Sprintf("%s.iter%03d.part%03d", w.baseName, it, ff)
		f, err := os.Open(name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrap(err, name)
		}
		closers = append(closers, f)

		var r io.Reader = f
		if w.compress {
			gz, err := pgzip.NewReader(f)
			if err != nil {
				return errors.Wrap(err, name)
			}
			closers = append(closers, gz)
			r = gz
		}

		if _, err := readBlockFileHeader(r); err != nil {
			return errors.Wrap(err, name)
		}
		readers = append(readers, bufio.NewReader(r))
	}

	out, err := os.Create(w.finalFileName(ff))
	if err != nil {
		return errors.Wrap(err, w.finalFileName(ff))
	}
	defer out.Close()

	var dst io.WriteCloser
	if w.compress {
		dst = pgzip.NewWriter(out)
	} else {
		dst = nopSyncWriteCloser{bufio.NewWriter(out)}
	}
	defer dst.Close()

	if err := writeBlockFileHeader(dst, blockFileHeader{K: uint8(w.k), WPrefix: uint8(w.wPrefix), WData: uint8(w.wData)}); err != nil {
		return err
	}

	return mergeBlockStreams(readers, dst)
}

// blockSource is one spill file's remaining block stream, used as a
// container/heap item keyed by the next unread block's prefix.
type blockSource struct {
	r       *bufio.Reader
	current block
	done    bool
}

func (s *blockSource) advance() error {
	b, err := readBlock(s.r)
	if err == io.EOF {
		s.done = true
		return nil
	}
	if err != nil {
		return err
	}
	s.current = b
	return nil
}

type blockHeap []*blockSource

func (h blockHeap) Len() int { return len(h) }
func (h blockHeap) Less(i, j int) bool {
	return h[i].current.Prefix < h[j].current.Prefix
}
func (h blockHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *blockHeap) Push(x interface{})  { *h = append(*h, x.(*blockSource)) }
func (h *blockHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeBlockStreams drains readers (one per spill iteration, each already
// past its file header) in ascending prefix order, combining blocks that
// share a prefix across iterations by summing counts for equal suffixes,
// and writes the result to dst.
func mergeBlockStreams(readers []*bufio.Reader, dst io.Writer) error {
	h := make(blockHeap, 0, len(readers))
	for _, r := range readers {
		s := &blockSource{r: r}
		if err := s.advance(); err != nil {
			return err
		}
		if !s.done {
			h = append(h, s)
		}
	}
	heap.Init(&h)

	for h.Len() > 0 {
		prefix := h[0].current.Prefix

		merged := map[uint64]uint64{}
		var order []uint64

		for h.Len() > 0 && h[0].current.Prefix == prefix {
			s := heap.Pop(&h).(*blockSource)
			for i, suf := range s.current.Suffixes {
				if _, ok := merged[suf]; !ok {
					order = append(order, suf)
				}
				merged[suf] += s.current.Counts[i]
			}
			if err := s.advance(); err != nil {
				return err
			}
			if !s.done {
				heap.Push(&h, s)
			}
		}

		sort.Sort(CodeSlice(order))

		counts := make([]uint64, len(order))
		for i, suf := range order {
			counts[i] = merged[suf]
		}

		if err := writeBlock(dst, block{Prefix: prefix, Suffixes: order, Counts: counts}); err != nil {
			return err
		}
	}
	return nil
}

// nopSyncWriteCloser adapts a *bufio.Writer into an io.WriteCloser that
// flushes the buffer on Close without touching the underlying file, used for
// the uncompressed output path (Options.Compress == false). The underlying
// *os.File is closed separately by the caller (see Writer.rawFiles), the
// same way it is for the compressed (pgzip) path.
type nopSyncWriteCloser struct {
	*bufio.Writer
}

func (n nopSyncWriteCloser) Close() error {
	return n.Writer.Flush()
}
