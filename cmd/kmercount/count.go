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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/kmercount/kmercount"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

// checkFiles verifies every input file exists before any work begins,
// the same up-front check unikmer/cmd/util.go's checkFiles performs ("-"
// for stdin is always accepted).
func checkFiles(files ...string) {
	for _, file := range files {
		if file == "-" {
			continue
		}
		ok, err := pathutil.Exists(file)
		checkError(errors.Wrap(err, file))
		if !ok {
			checkError(fmt.Errorf("file does not exist: %s", file))
		}
	}
}

func checkError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "count kmers from FASTA/Q files",
	Long: `count kmers from FASTA/Q files

Streams bases from each input file through a memory-bounded prefix-bucketed
counter, spilling to disk in iterations when the memory budget is exceeded
and merging the spills into a sorted, prefix-partitioned output.
`,
	Run: func(cmd *cobra.Command, args []string) {
		k, err := cmd.Flags().GetInt("kmer-len")
		checkError(err)
		if k <= 0 || k > 32 {
			checkError(fmt.Errorf("-k/--kmer-len must be in [1, 32], got %d", k))
		}

		memStr, err := cmd.Flags().GetString("max-memory")
		checkError(err)
		maxMemory, err := humanize.ParseBytes(memStr)
		checkError(errors.Wrap(err, "--max-memory"))

		threads, err := cmd.Flags().GetInt("threads")
		checkError(err)
		runtime.GOMAXPROCS(threads)

		verbose, err := cmd.Flags().GetBool("verbose")
		checkError(err)
		kmercount.SetVerbose(verbose)

		expectedKmers, err := cmd.Flags().GetUint64("expected-kmers")
		checkError(err)

		opName, err := cmd.Flags().GetString("operation")
		checkError(err)
		var op kmercount.Operation
		switch opName {
		case "count":
			op = kmercount.Count
		case "count-forward":
			op = kmercount.CountForward
		case "count-reverse":
			op = kmercount.CountReverse
		default:
			checkError(fmt.Errorf("--operation must be one of count, count-forward, count-reverse, got %q", opName))
		}

		scale, err := cmd.Flags().GetUint64("scale")
		checkError(err)

		compress, err := cmd.Flags().GetBool("compress")
		checkError(err)

		numOutFiles, err := cmd.Flags().GetInt("out-files")
		checkError(err)

		outPrefix, err := cmd.Flags().GetString("out-prefix")
		checkError(err)

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one input file is required"))
		}
		checkFiles(args...)

		opt := kmercount.DefaultOptions()
		opt.K = k
		opt.MaxMemory = maxMemory
		opt.NumCPUs = threads
		opt.ExpectedKmers = expectedKmers
		opt.Operation = op
		opt.NumOutputFiles = numOutFiles
		opt.Scale = scale
		opt.Verbose = verbose
		opt.Compress = compress
		checkError(opt.Validate())

		if expectedKmers == 0 {
			for _, file := range args {
				if file == "-" {
					continue
				}
				info, err := os.Stat(file)
				checkError(errors.Wrap(err, file))
				expectedKmers += kmercount.EstimateKmersFromFile(file, info.Size())
			}
		}

		est, err := kmercount.EstimateSize(opt.MaxMemory, expectedKmers, opt.K)
		checkError(err)

		w, err := kmercount.NewWriter(outPrefix, opt.K, est.WPrefix, opt.NumOutputFiles, opt.Compress)
		checkError(err)

		driver, err := kmercount.NewCountDriver(opt, w, expectedKmers)
		checkError(err)

		for _, file := range args {
			it, err := kmercount.NewFastxBaseIterator(file)
			checkError(errors.Wrap(err, file))
			checkError(driver.AddSequence(it))
			checkError(errors.Wrap(it.Err(), file))
		}

		checkError(driver.Finish())
	},
}

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().IntP("kmer-len", "k", 0, "kmer length (1-32)")
	countCmd.Flags().StringP("max-memory", "m", "4GiB", "soft memory limit before spilling to disk")
	countCmd.Flags().Uint64P("expected-kmers", "n", 0, "override the kmer-count estimate used to size the prefix split (0: estimate from input file sizes)")
	countCmd.Flags().StringP("operation", "", "count", "one of: count, count-forward, count-reverse")
	countCmd.Flags().Uint64P("scale", "", 1, "keep roughly 1/scale of kmers (scale=1 keeps all)")
	countCmd.Flags().BoolP("compress", "", true, "gzip-compress output files")
	countCmd.Flags().IntP("out-files", "", 4, "number of output files (must be a power of two)")
	countCmd.Flags().StringP("out-prefix", "o", "kmercount-out", "prefix for output block files")
}
