package kmer_test

import (
	"testing"

	"github.com/bioc/seqbias/kmer"
	"github.com/stretchr/testify/assert"
)

func TestMakeDistributionIdempotent(t *testing.T) {
	m := kmer.New(2, 2) // 2 rows, k=2 -> 16 columns
	for K := uint64(0); K < 16; K++ {
		m.Set(0, K, float64(K)+1)
		// row 1 left all-zero
	}
	once := m.Clone().MakeDistribution()
	twice := once.Clone().MakeDistribution()
	for i := 0; i < 2; i++ {
		for K := uint64(0); K < 16; K++ {
			assert.InDelta(t, once.Get(i, K), twice.Get(i, K), 1e-12, "row %d kmer %d", i, K)
		}
	}
	// Zero row stays zero.
	for K := uint64(0); K < 16; K++ {
		assert.Equal(t, 0.0, once.Get(1, K), "expected zero row to stay zero at %d", K)
	}
	var sum float64
	for K := uint64(0); K < 16; K++ {
		sum += once.Get(0, K)
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestDistConditionalize(t *testing.T) {
	// k=2 (slot0=child 2 values doubled up via slot1=parent), 1 row.
	m := kmer.New(1, 2)
	// slot1 (parent, bits 2-3) = 0 for idx 0..3, = 1 for idx 4..7, etc.
	// Put all mass on parent=0 group, split evenly over child values.
	for idx := uint64(0); idx < 4; idx++ {
		m.Set(0, idx, 2.0)
	}
	m.DistConditionalize(1)
	for idx := uint64(0); idx < 4; idx++ {
		assert.InDelta(t, 0.25, m.Get(0, idx), 1e-12, "idx %d", idx)
	}
	for idx := uint64(4); idx < 16; idx++ {
		assert.Equal(t, 0.0, m.Get(0, idx), "idx %d (empty conditioning class)", idx)
	}
}

func TestDistConditionalizeChild(t *testing.T) {
	// k=1: a single child slot has exactly one "rest" group (empty), so the
	// result is just the row's own marginal distribution.
	m1 := kmer.New(1, 1)
	m1.Set(0, 0, 1)
	m1.Set(0, 1, 3)
	m1.Set(0, 2, 0)
	m1.Set(0, 3, 4)
	m1.DistConditionalizeChild()
	assert.InDelta(t, 0.125, m1.Get(0, 0), 1e-12)
	assert.InDelta(t, 0.375, m1.Get(0, 1), 1e-12)
	assert.InDelta(t, 0.0, m1.Get(0, 2), 1e-12)
	assert.InDelta(t, 0.5, m1.Get(0, 3), 1e-12)

	// k=2: slot0 = child, slot1 = parent. Build a joint where, conditioned
	// on parent=0, child is uniform, and conditioned on parent=1, all mass
	// is on child=2.
	m2 := kmer.New(1, 2)
	for c := uint64(0); c < 4; c++ {
		m2.Set(0, c, 1) // parent=0 group: child uniform
	}
	m2.Set(0, 4+2, 5) // parent=1, child=2: all the mass
	m2.DistConditionalizeChild()
	for c := uint64(0); c < 4; c++ {
		assert.InDelta(t, 0.25, m2.Get(0, c), 1e-12, "parent=0 child=%d", c)
	}
	for c := uint64(0); c < 4; c++ {
		want := 0.0
		if c == 2 {
			want = 1.0
		}
		assert.InDelta(t, want, m2.Get(0, 4+c), 1e-12, "parent=1 child=%d", c)
	}
}

func TestDistMarginalize(t *testing.T) {
	m := kmer.New(1, 2) // slot0 = child, slot1 = parent
	for idx := uint64(0); idx < 16; idx++ {
		m.Set(0, idx, float64(idx))
	}
	out := m.DistMarginalize(1) // collapse the parent slot
	assert.Equal(t, 1, out.K())
	// For each child value c, sum over parent p in 0..3 of idx = c + 4*p.
	for c := uint64(0); c < 4; c++ {
		want := 0.0
		for p := uint64(0); p < 4; p++ {
			want += float64(c + 4*p)
		}
		assert.Equal(t, want, out.Get(0, c), "child %d", c)
	}
}

func TestAdd(t *testing.T) {
	a := kmer.New(1, 1)
	b := kmer.New(1, 1)
	a.Set(0, 0, 1)
	b.Set(0, 0, 2)
	a.Add(b)
	assert.Equal(t, 3.0, a.Get(0, 0))
}
