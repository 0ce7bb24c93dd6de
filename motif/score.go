package motif

import (
	"math"

	"github.com/bioc/seqbias/twobit"
)

// scoreEpsilon is the additive smoothing applied only inside the logarithm
// at scoring time, per spec.md §9 ("add ε = 1e-12 only inside the logarithm
// to sidestep log 0"); it never touches a persisted FG/BG table.
const scoreEpsilon = 1e-12

// windowCode returns the 2-bit code for window position pos (0-based,
// window-local) of the sequence anchored so that window position 0 is
// genomic position a-L. ok is false if pos is outside the stored
// sequence, which the caller treats as a zero/uninformative factor.
func windowCode(seq *twobit.TwoBitSeq, base, pos int) (uint64, bool) {
	genomic := base + pos
	if genomic < 0 || genomic >= seq.Len() {
		return 0, false
	}
	k, err := seq.GetKmer(1, genomic)
	if err != nil {
		return 0, false
	}
	return k, true
}

// tableIndex computes the flat conditional-table index for position i:
// the child's code in the least-significant 2 bits, followed by each
// parent's code in the order Parents[i] lists them.
func tableIndex(seq *twobit.TwoBitSeq, base, i int, parents []int) (idx uint64, ok bool) {
	c, ok := windowCode(seq, base, i)
	if !ok {
		return 0, false
	}
	idx = c
	for slot, p := range parents {
		pc, ok := windowCode(seq, base, p)
		if !ok {
			return 0, false
		}
		idx |= pc << uint(2*(slot+1))
	}
	return idx, true
}

// Score evaluates the model at a single anchor offset a (window position 0
// maps to genomic position a-L) against seq, returning the bias factor.
// Positions that fall outside seq, or whose background probability is
// zero, contribute a factor of 1 rather than propagating NaN/Inf.
func (m *Model) Score(seq *twobit.TwoBitSeq, a int) float64 {
	base := a - m.L
	if base < 0 || a+m.R >= seq.Len() {
		return 1.0
	}
	logBias := 0.0
	for i := 0; i < m.N(); i++ {
		idx, ok := tableIndex(seq, base, i, m.Parents[i])
		if !ok {
			continue
		}
		fg := m.FG[i][idx]
		bg := m.BG[i][idx]
		if bg == 0 {
			continue
		}
		// epsilon sidesteps log(0) for an informative-but-unobserved
		// foreground cell (fg == 0); it lives only inside the logarithm and
		// is never persisted, per spec.md's scoring note.
		logBias += math.Log(fg+scoreEpsilon) - math.Log(bg+scoreEpsilon)
	}
	return math.Exp(logBias)
}

// ScoreRange scores every anchor in [start, end] (inclusive, 0-based,
// genomic coordinates within seq) and returns the resulting bias vector of
// length end-start+1.
func (m *Model) ScoreRange(seq *twobit.TwoBitSeq, start, end int) []float64 {
	out := make([]float64, end-start+1)
	for a := start; a <= end; a++ {
		out[a-start] = m.Score(seq, a)
	}
	return out
}
