package motif

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/postable"
	"github.com/bioc/seqbias/twobit"
)

func TestRoundAway(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{2.5, 3},
		{-2.5, -3},
		{0.4, 1},
		{-0.4, -1},
		{0.0, 0},
		{-0.0, 0},
	}
	for _, c := range cases {
		if got := roundAway(c.in); got != c.want {
			t.Errorf("roundAway(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRandGaussStatistics(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 20000
	const sigma = 3.0
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := randGauss(rng, sigma)
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if math.Abs(mean) > 0.1 {
		t.Errorf("sample mean = %v, want near 0", mean)
	}
	if math.Abs(variance-sigma*sigma) > 0.5 {
		t.Errorf("sample variance = %v, want near %v", variance, sigma*sigma)
	}
}

func TestExtractWindow(t *testing.T) {
	seq := "acgtacgtacgt"
	w, ok := extractWindow(seq, 5, 2, 2, false)
	if !ok || w != seq[3:8] {
		t.Fatalf("forward extractWindow = %q, %v; want %q, true", w, ok, seq[3:8])
	}
	if _, ok := extractWindow(seq, 1, 2, 2, false); ok {
		t.Fatalf("expected out-of-bounds window to fail")
	}
	if _, ok := extractWindow("acgtnacgtacgt", 5, 2, 2, false); ok {
		t.Fatalf("expected window containing 'n' to fail")
	}
}

func TestIsDegenerateWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// Every window has a random base at 0, 1, and 3 but always 'g' at 2.
	var seqs []*twobit.TwoBitSeq
	for i := 0; i < 20; i++ {
		w := randBasesSample(rng, 2) + "g" + randBasesSample(rng, 1)
		seqs = append(seqs, twobit.FromASCIIRand(w, rng))
	}
	if !isDegenerateWindow(seqs, 2) {
		t.Error("expected position 2 ('g' in every window) to be degenerate")
	}
	if isDegenerateWindow(seqs, 0) {
		t.Error("position 0 varies across windows and should not be reported degenerate")
	}
}

func randBasesSample(rng *rand.Rand, n int) string {
	const alphabet = "acgt"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(4)]
	}
	return string(b)
}

func TestFitReturnsModel(t *testing.T) {
	ref, err := fasta.New(strings.NewReader(">chr1\n" + strings.Repeat("acgtacgtgcat", 40) + "\n"))
	if err != nil {
		t.Fatalf("fasta.New: %v", err)
	}
	seqNames := []string{"chr1"}

	var records []postable.ReadPos
	for pos := uint32(20); pos < 400; pos += 5 {
		records = append(records, postable.ReadPos{
			Key:   postable.Key{Tid: 0, Pos: pos, Strand: postable.Forward},
			Count: 1,
		})
	}

	opts := DefaultTrainOpts(3, 3)
	opts.BGSamples = 1
	m, err := Fit(ref, seqNames, records, opts)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m == nil {
		t.Fatal("Fit returned a nil model")
	}
	if m.L != 3 || m.R != 3 {
		t.Fatalf("Fit model L/R = %d/%d, want 3/3", m.L, m.R)
	}
	if len(m.Parents) != m.N() {
		t.Fatalf("len(Parents) = %d, want %d", len(m.Parents), m.N())
	}
}
