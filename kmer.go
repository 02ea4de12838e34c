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

// Encode converts a byte slice of {A,C,G,T} (either case) to a 2-bit-packed
// uint64.
//
// Codes:
//
//	  A    00
//	  C    01
//	  G    10
//	  T    11
func Encode(kmer []byte) (code uint64, err error) {
	k := len(kmer)
	if k == 0 || k > 32 {
		return 0, ErrKOverflow
	}

	for i := range kmer {
		switch kmer[k-1-i] {
		case 'A', 'a':
			code |= 0 << uint64(i*2)
		case 'C', 'c':
			code |= 1 << uint64(i*2)
		case 'G', 'g':
			code |= 2 << uint64(i*2)
		case 'T', 't':
			code |= 3 << uint64(i*2)
		default:
			return code, ErrIllegalBase
		}
	}
	return code, nil
}

// baseCode returns the 2-bit code of a single base, or ok=false if it is not
// one of {A,C,G,T} (either case). This is the per-base step used by
// KmerEncoder.AddBase, rather than Encode's whole-slice loop.
func baseCode(b byte) (code uint64, ok bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	default:
		return 0, false
	}
}

// Reverse returns the code of the reversed (not complemented) sequence.
func Reverse(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code & 3
		code >>= 2
	}
	return
}

// Complement returns the code of the complemented (not reversed) sequence.
func Complement(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c |= (code&3 ^ 3) << uint(i<<1)
		code >>= 2
	}
	return
}

// RevComp returns the code of the reverse-complement sequence.
func RevComp(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code&3 ^ 3
		code >>= 2
	}
	return
}

// Canonical returns min(code, RevComp(code, k)).
func Canonical(code uint64, k int) uint64 {
	rc := RevComp(code, k)
	if rc < code {
		return rc
	}
	return code
}

// bit2base maps a 2-bit code back to its base letter.
var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Decode converts a code back to a kmer of length k.
func Decode(code uint64, k int) []byte {
	kmer := make([]byte, k)
	for i := 0; i < k; i++ {
		kmer[k-1-i] = bit2base[code&3]
		code >>= 2
	}
	return kmer
}

// KmerCode pairs a 2k-bit code with its length, following unikmer's KmerCode.
type KmerCode struct {
	Code uint64
	K    int
}

// NewKmerCode returns a new KmerCode from a byte slice.
func NewKmerCode(kmer []byte) (KmerCode, error) {
	code, err := Encode(kmer)
	if err != nil {
		return KmerCode{}, err
	}
	return KmerCode{code, len(kmer)}, nil
}

// Equal reports whether two KmerCodes have the same K and Code.
func (kcode KmerCode) Equal(other KmerCode) bool {
	return kcode.K == other.K && kcode.Code == other.Code
}

// Rev returns the KmerCode of the reversed sequence.
func (kcode KmerCode) Rev() KmerCode {
	return KmerCode{Reverse(kcode.Code, kcode.K), kcode.K}
}

// Comp returns the KmerCode of the complemented sequence.
func (kcode KmerCode) Comp() KmerCode {
	return KmerCode{Complement(kcode.Code, kcode.K), kcode.K}
}

// RevComp returns the KmerCode of the reverse-complement sequence.
func (kcode KmerCode) RevComp() KmerCode {
	return KmerCode{RevComp(kcode.Code, kcode.K), kcode.K}
}

// Canonical returns the canonical KmerCode: min(kcode, kcode.RevComp()).
func (kcode KmerCode) Canonical() KmerCode {
	rc := kcode.RevComp()
	if rc.Code < kcode.Code {
		return rc
	}
	return kcode
}

// Bytes decodes the KmerCode back to a kmer.
func (kcode KmerCode) Bytes() []byte {
	return Decode(kcode.Code, kcode.K)
}

// String returns the kmer as a string.
func (kcode KmerCode) String() string {
	return string(Decode(kcode.Code, kcode.K))
}

// KmerEncoder maintains a sliding window of the forward (F) and
// reverse-complement (R) 2k-bit encodings of the last k bases seen, as bases
// are streamed in one at a time. It is the Go counterpart of merylOp-count.C's
// kmerTiny pair (fmer.addR() / rmer.addL()), re-expressed with the bit
// arithmetic in Encode/RevComp above.
type KmerEncoder struct {
	k      int
	mask   uint64
	f, r   uint64
	loaded int // number of valid bases accumulated since the last reset, capped at k
}

// NewKmerEncoder returns a KmerEncoder for kmer size k (1 <= k <= 32).
func NewKmerEncoder(k int) (*KmerEncoder, error) {
	if k <= 0 || k > 32 {
		return nil, ErrKOverflow
	}
	var mask uint64
	if k == 32 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(2*k)) - 1
	}
	return &KmerEncoder{k: k, mask: mask}, nil
}

// Reset clears the sliding window; the next k valid bases are required before
// AddBase reports ready again. This is called on an invalid base or an
// end-of-sequence marker (spec.md §3, §4.6 step 6).
func (e *KmerEncoder) Reset() {
	e.loaded = 0
}

// AddBase folds one base into the sliding window. ok is false if b is not one
// of {A,C,G,T} (either case), in which case the window is reset and ready is
// always false. ready is true once k consecutive valid bases have been seen;
// forward and revComp are only meaningful when ready is true.
func (e *KmerEncoder) AddBase(b byte) (forward, revComp uint64, ready bool, ok bool) {
	code, ok := baseCode(b)
	if !ok {
		e.Reset()
		return 0, 0, false, false
	}

	e.f = ((e.f << 2) | code) & e.mask
	e.r = (e.r >> 2) | ((code ^ 3) << uint(2*e.k-2))

	if e.loaded < e.k {
		e.loaded++
	}
	if e.loaded < e.k {
		return 0, 0, false, true
	}
	return e.f, e.r, true, true
}

// K returns the configured kmer size.
func (e *KmerEncoder) K() int {
	return e.k
}

// canonicalFor picks forward, reverse-complement, or the lexicographically
// smaller of the two, according to op (spec.md §4.2).
func canonicalFor(op Operation, forward, revComp uint64) uint64 {
	switch op {
	case CountForward:
		return forward
	case CountReverse:
		return revComp
	default: // Count
		if forward < revComp {
			return forward
		}
		return revComp
	}
}
