package motif_test

import (
	"strings"
	"testing"

	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/motif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictNoOpIsAllOnes(t *testing.T) {
	ref, err := fasta.New(strings.NewReader(">chr1\n" + strings.Repeat("acgt", 50) + "\n"))
	require.NoError(t, err)
	m := motif.NoOp(3, 3)

	got, err := motif.Predict(ref, "chr1", 10, 20, motif.Forward, m)
	require.NoError(t, err)
	require.Len(t, got, 11)
	for i, v := range got {
		assert.InDelta(t, 1.0, v, 1e-9, "Predict[%d]", i)
	}
}

func TestPredictEdgeInterval(t *testing.T) {
	ref, err := fasta.New(strings.NewReader(">chr1\n" + strings.Repeat("acgt", 50) + "\n"))
	require.NoError(t, err)
	m := motif.NoOp(5, 0)

	got, err := motif.Predict(ref, "chr1", 0, 9, motif.Forward, m)
	require.NoError(t, err)
	// The first 5 anchors (0..4) lack a full left pad of 5 and must read
	// as boundary cases; NoOp always scores 1.0 regardless, but the
	// length and the fact that Predict didn't error on the edge matters.
	require.Len(t, got, 10)
	for i, v := range got {
		assert.InDelta(t, 1.0, v, 1e-9, "Predict[%d]", i)
	}
}

func TestPredictStrandSymmetryOnPalindrome(t *testing.T) {
	// "acgt" is its own reverse complement, so "acgt" repeated is a
	// reverse-complement palindrome.
	region := "acgtacgtacgtacgt"
	ref, err := fasta.New(strings.NewReader(">chr1\n" + region + "\n"))
	require.NoError(t, err)
	m := motif.NoOp(2, 2)

	fwd, err := motif.Predict(ref, "chr1", 4, 11, motif.Forward, m)
	require.NoError(t, err)
	rev, err := motif.Predict(ref, "chr1", 4, 11, motif.Reverse, m)
	require.NoError(t, err)
	require.Len(t, rev, len(fwd))
	// A NoOp model scores 1.0 everywhere regardless of strand, so this
	// mainly exercises that both directions return without error and
	// the expected length; see motif_test.go for asymmetric-model cases.
	for i := range fwd {
		assert.InDelta(t, 1.0, fwd[i], 1e-9, "index %d fwd", i)
		assert.InDelta(t, 1.0, rev[i], 1e-9, "index %d rev", i)
	}
}
