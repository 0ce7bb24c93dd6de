package twobit_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/bioc/seqbias/twobit"
)

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "acgt", "ACGTACGTACGTACGTACGTACGTACGTACGTACGT", strings.Repeat("acgt", 20)} {
		got := twobit.FromASCII(s).String()
		if got != strings.ToLower(s) {
			t.Errorf("FromASCII(%q).String() = %q, want %q", s, got, strings.ToLower(s))
		}
	}
}

func TestNFallbackIsAlwaysACGT(t *testing.T) {
	seq := twobit.FromASCIIRand(strings.Repeat("N", 200), rand.New(rand.NewSource(42)))
	for _, c := range seq.String() {
		if !strings.ContainsRune("acgt", c) {
			t.Fatalf("unexpected base %q in N-substituted sequence", c)
		}
	}
}

func TestGetKmerContiguous(t *testing.T) {
	seq := twobit.FromASCII("acgtacgt")
	k, err := seq.GetKmer(4, 3)
	if err != nil {
		t.Fatalf("GetKmer: %v", err)
	}
	// positions 0..3 = a,c,g,t = 0,1,2,3 -> 00 01 10 11
	want := twobit.Kmer(0b00011011)
	if k != want {
		t.Errorf("got %#b, want %#b", k, want)
	}
}

func TestGetKmerShortSequence(t *testing.T) {
	seq := twobit.FromASCII("acgt")
	if _, err := seq.GetKmer(5, 3); err != twobit.ErrShortSequence {
		t.Errorf("expected ErrShortSequence, got %v", err)
	}
	if _, err := seq.GetKmer(2, 0); err != twobit.ErrShortSequence {
		t.Errorf("expected ErrShortSequence for pos-k+1<0, got %v", err)
	}
}

func TestMakeKmerMasked(t *testing.T) {
	seq := twobit.FromASCII("acgtacgt")
	mask := []bool{true, false, true, false, true}
	K, k, err := seq.MakeKmer(0, mask)
	if err != nil {
		t.Fatalf("MakeKmer: %v", err)
	}
	if k != 3 {
		t.Fatalf("effective k = %d, want 3", k)
	}
	// positions 0,2,4 = a,g,a = 0,2,0 -> 00 10 00
	want := twobit.Kmer(0b001000)
	if K != want {
		t.Errorf("got %#b, want %#b", K, want)
	}
}

func TestMakeKmerOutOfBounds(t *testing.T) {
	seq := twobit.FromASCII("acgt")
	mask := []bool{true, true, true, true, true, true}
	if _, _, err := seq.MakeKmer(0, mask); err != twobit.ErrShortSequence {
		t.Errorf("expected ErrShortSequence, got %v", err)
	}
}

func TestReverseComplement(t *testing.T) {
	seq := twobit.FromASCII("acgtt")
	got := seq.ReverseComplement().String()
	if want := "aacgt"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReverseComplementPalindrome(t *testing.T) {
	seq := twobit.FromASCII("acgt")
	got := seq.ReverseComplement().String()
	if want := "acgt"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReverseComplementASCII(t *testing.T) {
	if got, want := twobit.ReverseComplementASCII("acgtn"), "nacgt"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
