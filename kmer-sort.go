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

// CodeSlice is a slice of bare kmer codes (uint64), for sorting with
// sort.Sort. Used by writer.go's merge path to order the small number of
// entries a prefix collects per iteration, where sort.Sort's overhead is
// cheaper than invoking the parallel sortutil.Uint64s used by CountArray for
// its much larger in-core runs.
type CodeSlice []uint64

func (codes CodeSlice) Len() int      { return len(codes) }
func (codes CodeSlice) Swap(i, j int) { codes[i], codes[j] = codes[j], codes[i] }
func (codes CodeSlice) Less(i, j int) bool {
	return codes[i] < codes[j]
}
