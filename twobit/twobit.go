// Package twobit implements a packed 2-bit-per-base nucleotide sequence,
// modeled on the twobitseq class in the Isolator/seqbias codebase this
// package is ported from, with kmer extraction under an optional position
// mask.
package twobit

import (
	"math/rand"
	"strings"

	"github.com/pkg/errors"
)

// codesPerWord is the number of 2-bit codes packed into one machine word
// (W in the packing scheme: position i's code lives in bits
// 2*(i%codesPerWord)..+1 of word i/codesPerWord).
const codesPerWord = 32

// MaxKmer is the largest k supported by a single Kmer value: k <= 4*sizeof(word).
const MaxKmer = 4 * 8 // 4*sizeof(uint64)

// Kmer is an unsigned integer packing up to MaxKmer 2-bit nucleotide codes,
// high-order bit = leftmost (or first-in-mask) nucleotide.
type Kmer = uint64

// ErrShortSequence is returned when a kmer extraction would read outside the
// stored sequence.
var ErrShortSequence = errors.New("twobit: requested kmer extends past the stored sequence")

// code maps one ASCII nucleotide to its 2-bit value. A/U->0, C->1, G->2,
// T->3; anything else (including N) is not a fixed code -- see FromASCIIRand.
func code(c byte) (Kmer, bool) {
	switch c {
	case 'a', 'A', 'u', 'U':
		return 0, true
	case 'c', 'C':
		return 1, true
	case 'g', 'G':
		return 2, true
	case 't', 'T':
		return 3, true
	default:
		return 0, false
	}
}

var baseChar = [4]byte{'a', 'c', 'g', 't'}

// TwoBitSeq is an immutable-after-construction packed nucleotide sequence.
// Bits beyond position n-1 of the final word are always zero.
type TwoBitSeq struct {
	words []uint64
	n     int
}

// NewEmpty returns a zero-length sequence.
func NewEmpty() *TwoBitSeq {
	return &TwoBitSeq{}
}

// FromASCII packs an ASCII nucleotide string. Any character other than
// A/C/G/T/U (case-insensitive) -- including N -- is replaced by a uniformly
// random base, using the package-level RNG. Use FromASCIIRand in code paths
// that need reproducibility (the trainer plumbs its own seeded RNG).
func FromASCII(s string) *TwoBitSeq {
	return FromASCIIRand(s, globalRand)
}

// FromASCIIRand packs s like FromASCII, drawing N-fallback bases from rng.
func FromASCIIRand(s string, rng *rand.Rand) *TwoBitSeq {
	n := len(s)
	if n == 0 {
		return NewEmpty()
	}
	t := &TwoBitSeq{
		words: make([]uint64, n/codesPerWord+1),
		n:     n,
	}
	for i := 0; i < n; i++ {
		c, ok := code(s[i])
		if !ok {
			c = Kmer(rng.Intn(4))
		}
		block, offset := i/codesPerWord, uint(i%codesPerWord)
		t.words[block] |= c << (2 * offset)
	}
	return t
}

var globalRand = rand.New(rand.NewSource(1))

// Len returns the number of bases in the sequence.
func (t *TwoBitSeq) Len() int { return t.n }

func (t *TwoBitSeq) codeAt(pos int) Kmer {
	block, offset := pos/codesPerWord, uint(pos%codesPerWord)
	return (t.words[block] >> (2 * offset)) & 0x3
}

// GetKmer extracts the contiguous k-mer ending at pos (inclusive), i.e.
// positions pos-k+1..=pos, with the high-order 2 bits holding the leftmost
// (lowest-position) nucleotide.
func (t *TwoBitSeq) GetKmer(k, pos int) (Kmer, error) {
	if k <= 0 || k > MaxKmer {
		return 0, errors.Errorf("twobit: k=%d out of range", k)
	}
	if pos-k+1 < 0 || pos >= t.n {
		return 0, ErrShortSequence
	}
	var K Kmer
	for i := pos - k + 1; i <= pos; i++ {
		K = (K << 2) | t.codeAt(i)
	}
	return K, nil
}

// MakeKmer extracts the masked k-mer anchored at pos: it concatenates, in
// mask order and high-bit-first, the codes at the positions where mask is
// true (each such position is pos+i for mask index i). It returns the kmer
// value and the effective k (popcount of mask).
func (t *TwoBitSeq) MakeKmer(pos int, mask []bool) (Kmer, int, error) {
	var K Kmer
	k := 0
	for i, want := range mask {
		if !want {
			continue
		}
		p := pos + i
		if p < 0 || p >= t.n {
			return 0, 0, ErrShortSequence
		}
		K = (K << 2) | t.codeAt(p)
		k++
	}
	return K, k, nil
}

// String renders the sequence back to lower-case ASCII.
func (t *TwoBitSeq) String() string {
	var b strings.Builder
	b.Grow(t.n)
	for i := 0; i < t.n; i++ {
		b.WriteByte(baseChar[t.codeAt(i)])
	}
	return b.String()
}

// ReverseComplement returns a new TwoBitSeq holding the reverse complement
// of t. Complementing a 2-bit code under this alphabet (A=0,C=1,G=2,T=3) is
// XOR with 3: A<->T (0<->3), C<->G (1<->2).
func (t *TwoBitSeq) ReverseComplement() *TwoBitSeq {
	out := &TwoBitSeq{words: make([]uint64, len(t.words)), n: t.n}
	for i := 0; i < t.n; i++ {
		c := t.codeAt(t.n-1-i) ^ 0x3
		block, offset := i/codesPerWord, uint(i%codesPerWord)
		out.words[block] |= c << (2 * offset)
	}
	return out
}

// ReverseComplementASCII reverse-complements an ASCII nucleotide string,
// mapping any non-ACGT byte (N included) to 'n'. It is the ASCII-level
// equivalent of ReverseComplement, used by the trainer before a window is
// packed, exactly where the original C++ sequencing_bias calls
// seqrc() on a raw char buffer.
func ReverseComplementASCII(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[len(s)-1-i] = complementByte(s[i])
	}
	return string(b)
}

func complementByte(c byte) byte {
	switch c {
	case 'a', 'A':
		return 't'
	case 'c', 'C':
		return 'g'
	case 'g', 'G':
		return 'c'
	case 't', 'T', 'u', 'U':
		return 'a'
	default:
		return 'n'
	}
}
