// Package motif learns and scores the sequence-composition bias motif: a
// per-position Bayesian network over a window of nucleotides, with
// conditional distribution tables fit separately against foreground
// (read-start-anchored) and background windows. It is a Go port of the
// motif class from the Isolator/seqbias sources this codebase descends
// from; that class's own source was not available to port from directly,
// so the learning and scoring algorithms below follow the written
// specification of its behavior position for position.
package motif

// Model is a learned (or no-op) sequence bias motif: n window positions,
// each with an ordered parent set and a pair of conditional distribution
// tables (foreground, background) over 4^(len(parents)+1) kmer values,
// child slot least-significant.
type Model struct {
	// L and R are the number of positions to the left and right of the
	// anchor included in the window (n = L + 1 + R).
	L, R int
	// Parents[i] lists the window positions motif position i is
	// conditioned on, in the order they were accepted during learning.
	Parents [][]int
	// FG and BG hold, for each position, a flat conditional table of
	// length 4^(len(Parents[i])+1): P(X_i | X_parents), row-major with the
	// child (X_i) as the least-significant digit. Built from raw joint
	// counts via kmer.Matrix.DistConditionalizeChild.
	FG [][]float64
	BG [][]float64
}

// N returns the window length L+1+R.
func (m *Model) N() int { return m.L + 1 + m.R }

// NoOp returns a model with n positions, no parents, and uniform
// conditional tables, matching the reference implementation's
// InsufficientData fallback: scoring such a model always yields a bias of
// 1.0, since fg/bg ratios are 1 everywhere.
func NoOp(L, R int) *Model {
	n := L + 1 + R
	m := &Model{L: L, R: R, Parents: make([][]int, n), FG: make([][]float64, n), BG: make([][]float64, n)}
	for i := 0; i < n; i++ {
		m.Parents[i] = nil
		m.FG[i] = uniformTable(1)
		m.BG[i] = uniformTable(1)
	}
	return m
}

func uniformTable(nSlots int) []float64 {
	cols := 1
	for i := 0; i < nSlots; i++ {
		cols *= 4
	}
	t := make([]float64, cols)
	for i := range t {
		t[i] = 1.0 / float64(cols)
	}
	return t
}
