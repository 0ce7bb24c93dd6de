package motif

import (
	"math"

	"blainsmith.com/go/seahash"
	"github.com/bioc/seqbias/kmer"
	"github.com/bioc/seqbias/twobit"
)

// epsilon is the additive smoothing applied only while scoring candidate
// parents during structure learning; it is never part of a persisted
// model, matching the written semantics of the discrimination score.
const epsilon = 1e-6

// MinTrainingWindows is the minimum number of foreground or background
// windows required to attempt structure learning; below this, Learn
// returns a NoOp model.
const MinTrainingWindows = 100

// DefaultMaxParents and DefaultMaxDistance bound the greedy search: at
// most this many parents per position, drawn only from positions within
// this many slots to the left.
const (
	DefaultMaxParents  = 4
	DefaultMaxDistance = 10
)

// Learn fits foreground and background conditional tables for a window of
// length L+1+R from the sample windows in fg and bg (each sequence must
// have length L+1+R). complexityPenalty is charged per added parameter
// when deciding whether a candidate parent is worth its added
// dimensionality.
func Learn(fg, bg []*twobit.TwoBitSeq, L, R int, maxParents, maxDistance int, complexityPenalty float64) *Model {
	if len(fg) < MinTrainingWindows || len(bg) < MinTrainingWindows {
		return NoOp(L, R)
	}

	n := L + 1 + R
	m := &Model{L: L, R: R, Parents: make([][]int, n), FG: make([][]float64, n), BG: make([][]float64, n)}

	for i := 0; i < n; i++ {
		var parents []int
		if !isDegenerateWindow(fg, i) {
			parents = learnPosition(fg, bg, n, i, maxParents, maxDistance, complexityPenalty)
		}
		m.Parents[i] = parents

		slots := append([]int{i}, parents...)
		fgJoint := jointCounts(fg, slots)
		bgJoint := jointCounts(bg, slots)
		fgJoint.DistConditionalizeChild()
		bgJoint.DistConditionalizeChild()
		m.FG[i] = rowOf(fgJoint)
		m.BG[i] = rowOf(bgJoint)
	}
	return m
}

func rowOf(mat *kmer.Matrix) []float64 {
	out := make([]float64, mat.NCols())
	for K := uint64(0); K < uint64(mat.NCols()); K++ {
		out[K] = mat.Get(0, K)
	}
	return out
}

// learnPosition runs the greedy per-position parent search for window
// position i and returns the accepted parent list, in acceptance order.
func learnPosition(fg, bg []*twobit.TwoBitSeq, n, i, maxParents, maxDistance int, complexityPenalty float64) []int {
	var parents []int
	score := discrimination(fg, bg, append([]int{i}, parents...))

	for len(parents) < maxParents {
		cand := candidates(i, n, maxDistance, parents)
		bestJ := -1
		bestScore := score
		bestImprovement := 0.0
		for _, j := range cand {
			slots := append(append([]int{i}, parents...), j)
			s := discrimination(fg, bg, slots)
			oldCols := pow4(len(parents))
			newCols := pow4(len(parents) + 1)
			improvement := (s - score) - complexityPenalty*float64(newCols-oldCols)
			if improvement > bestImprovement {
				bestImprovement = improvement
				bestScore = s
				bestJ = j
			}
		}
		if bestJ < 0 {
			break
		}
		parents = append(parents, bestJ)
		score = bestScore
	}
	return parents
}

// isDegenerateWindow reports whether every foreground window has the same
// base at position pos, using a seahash fingerprint of each window's code
// byte rather than repeated direct comparisons. A degenerate position can't
// be discriminated by any parent choice (the child side of every joint
// count is the same value), so learnPosition is skipped for it and it gets
// an empty parent set.
func isDegenerateWindow(seqs []*twobit.TwoBitSeq, pos int) bool {
	h := seahash.New()
	var want uint64
	seen := false
	for _, seq := range seqs {
		c, err := seq.GetKmer(1, pos)
		if err != nil {
			continue
		}
		h.Reset()
		h.Write([]byte{byte(c)})
		sum := h.Sum64()
		if !seen {
			want, seen = sum, true
			continue
		}
		if sum != want {
			return false
		}
	}
	return seen
}

func pow4(k int) int {
	c := 1
	for i := 0; i < k; i++ {
		c *= 4
	}
	return c
}

// candidates lists positions within maxDistance to the left of i that
// aren't already parents, ordered by |i-j| then j so that the first
// candidate achieving the best improvement is the one the tie-break rule
// (smaller |i-j|, then smaller j) would pick.
func candidates(i, n, maxDistance int, taken []int) []int {
	var out []int
	lo := i - maxDistance
	if lo < 0 {
		lo = 0
	}
	for j := i - 1; j >= lo; j-- {
		already := false
		for _, p := range taken {
			if p == j {
				already = true
				break
			}
		}
		if !already {
			out = append(out, j)
		}
	}
	return out
}

// jointCounts tallies raw occurrence counts of the codes at the given
// window positions (slots[0] is the child, the rest are parents) across
// seqs, as a 1-row kmer.Matrix of width 4^len(slots).
func jointCounts(seqs []*twobit.TwoBitSeq, slots []int) *kmer.Matrix {
	m := kmer.New(1, len(slots))
	for _, seq := range seqs {
		var idx uint64
		ok := true
		for slot, pos := range slots {
			c, err := seq.GetKmer(1, pos)
			if err != nil {
				ok = false
				break
			}
			idx |= c << uint(2*slot)
		}
		if !ok {
			continue
		}
		m.Set(0, idx, m.Get(0, idx)+1)
	}
	return m
}

// discrimination computes the symmetric KL divergence between the
// epsilon-smoothed foreground and background joint distributions over
// slots.
func discrimination(fg, bg []*twobit.TwoBitSeq, slots []int) float64 {
	fgCounts := jointCounts(fg, slots)
	bgCounts := jointCounts(bg, slots)
	fgCounts.MakeDistribution()
	bgCounts.MakeDistribution()

	cols := uint64(fgCounts.NCols())
	var kl float64
	for K := uint64(0); K < cols; K++ {
		p := fgCounts.Get(0, K) + epsilon
		q := bgCounts.Get(0, K) + epsilon
		kl += (p - q) * (math.Log(p) - math.Log(q))
	}
	return kl
}
