// Package kmer implements KmerMatrix: a dense table of nonnegative doubles
// indexed by (window position, kmer value), with the normalization and
// conditional-marginalization operations the motif learner needs. It plays
// the role of the kmer_matrix class in the original seqbias C++ sources.
package kmer

import "github.com/pkg/errors"

// Matrix is an n-row x 4^k-column table of nonnegative doubles. Rows are
// interpreted as raw counts during tallying, or as a probability
// distribution once MakeDistribution has been called.
type Matrix struct {
	n, k int
	cols int // 4^k
	data []float64
}

// New allocates a zeroed n x 4^k matrix.
func New(n, k int) *Matrix {
	cols := pow4(k)
	return &Matrix{n: n, k: k, cols: cols, data: make([]float64, n*cols)}
}

func pow4(k int) int {
	c := 1
	for i := 0; i < k; i++ {
		c *= 4
	}
	return c
}

// NRows returns the number of window positions.
func (m *Matrix) NRows() int { return m.n }

// K returns the number of kmer slots (2-bit digits) per row.
func (m *Matrix) K() int { return m.k }

// NCols returns 4^K(), the number of columns.
func (m *Matrix) NCols() int { return m.cols }

// SetAll sets every entry to v.
func (m *Matrix) SetAll(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

func (m *Matrix) checkRow(i int) {
	if i < 0 || i >= m.n {
		panic(errors.Errorf("kmer: row %d out of range [0,%d)", i, m.n))
	}
}

func (m *Matrix) checkKmer(K uint64) {
	if int(K) < 0 || int(K) >= m.cols {
		panic(errors.Errorf("kmer: kmer value %d out of range [0,%d)", K, m.cols))
	}
}

// Get returns the entry for row i, kmer value K.
func (m *Matrix) Get(i int, K uint64) float64 {
	m.checkRow(i)
	m.checkKmer(K)
	return m.data[i*m.cols+int(K)]
}

// Set assigns the entry for row i, kmer value K.
func (m *Matrix) Set(i int, K uint64, v float64) {
	m.checkRow(i)
	m.checkKmer(K)
	m.data[i*m.cols+int(K)] = v
}

// Add adds other into m in place. Panics if shapes differ.
func (m *Matrix) Add(other *Matrix) {
	if m.n != other.n || m.k != other.k {
		panic("kmer: shape mismatch in Add")
	}
	for i := range m.data {
		m.data[i] += other.data[i]
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{n: m.n, k: m.k, cols: m.cols, data: make([]float64, len(m.data))}
	copy(out.data, m.data)
	return out
}

// MakeDistribution row-normalizes m in place so that each row sums to 1. A
// row that sums to zero is left all-zero (not NaN). It returns m so callers
// can chain it, and is idempotent: calling it twice in a row is identical to
// calling it once, since the second pass finds each row already summing to 1
// (or to 0).
func (m *Matrix) MakeDistribution() *Matrix {
	for i := 0; i < m.n; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]
		var sum float64
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			continue
		}
		for j := range row {
			row[j] /= sum
		}
	}
	return m
}

// digitAt extracts the 2-bit digit at slot (0 = least-significant, the
// model-file convention where slot 0 is the child variable) from a kmer
// index.
func digitAt(idx uint64, slot int) uint64 {
	return (idx >> uint(2*slot)) & 0x3
}

// DistConditionalize reinterprets the joint distribution stored in each row
// as P(X_i | X_overJ = v): within each row, entries sharing the same digit
// at slot overJ are summed and that sum is used to normalize the group.
// Dimensionality (k, columns) is unchanged; only the grouping used for
// normalization changes. Requires the row to currently represent a joint
// P(X_kmer) (e.g. immediately after MakeDistribution on raw joint counts).
func (m *Matrix) DistConditionalize(overJ int) *Matrix {
	for i := 0; i < m.n; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]
		var sums [4]float64
		for idx, v := range row {
			sums[digitAt(uint64(idx), overJ)] += v
		}
		for idx := range row {
			s := sums[digitAt(uint64(idx), overJ)]
			if s == 0 {
				row[idx] = 0
				continue
			}
			row[idx] /= s
		}
	}
	return m
}

// DistConditionalizeChild reinterprets the joint distribution stored in each
// row as P(X_0 | X_1, ..., X_{k-1}), where slot 0 is always the "child"
// variable: entries sharing the same values at every slot except 0 are
// summed and used to normalize within that group. Unlike DistConditionalize,
// which groups by a single slot's value, this groups by the joint value of
// every *other* slot, which is what conditioning on a whole parent set
// (rather than one variable) requires. A row with only the child slot
// (k=1) has exactly one group (all entries share the trivial empty "rest"),
// so the result is simply the row's own marginal distribution.
func (m *Matrix) DistConditionalizeChild() *Matrix {
	groups := m.cols / 4
	for i := 0; i < m.n; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]
		sums := make([]float64, groups)
		for idx, v := range row {
			sums[idx>>2] += v
		}
		for idx := range row {
			s := sums[idx>>2]
			if s == 0 {
				row[idx] = 0
				continue
			}
			row[idx] /= s
		}
	}
	return m
}

// expandIndex reconstructs a k-digit index from a (k-1)-digit reduced index,
// inserting digit d at position slot.
func expandIndex(newIdx uint64, k, slot int, d uint64) uint64 {
	var old uint64
	for oldSlot := 0; oldSlot < k; oldSlot++ {
		var digit uint64
		if oldSlot == slot {
			digit = d
		} else {
			newSlot := oldSlot
			if oldSlot > slot {
				newSlot--
			}
			digit = digitAt(newIdx, newSlot)
		}
		old |= digit << uint(2*oldSlot)
	}
	return old
}

// DistMarginalize collapses one kmer slot, returning a new matrix with the
// same number of rows and k-1 slots: each output cell sums the 4 input
// cells that differ only at slot.
func (m *Matrix) DistMarginalize(slot int) *Matrix {
	if m.k == 0 {
		panic("kmer: cannot marginalize a 0-slot matrix")
	}
	out := New(m.n, m.k-1)
	for i := 0; i < m.n; i++ {
		srcRow := m.data[i*m.cols : (i+1)*m.cols]
		dstRow := out.data[i*out.cols : (i+1)*out.cols]
		for newIdx := range dstRow {
			var sum float64
			for d := uint64(0); d < 4; d++ {
				sum += srcRow[expandIndex(uint64(newIdx), m.k, slot, d)]
			}
			dstRow[newIdx] = sum
		}
	}
	return out
}
