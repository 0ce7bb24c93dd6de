package motif_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/bioc/seqbias/motif"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := motif.NoOp(2, 2)
	m.Parents[2] = []int{0, 1}
	m.FG[2] = []float64{0.1, 0.2, 0.3, 0.05, 0.05, 0.05, 0.05, 0.05, 0.05, 0.05, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}
	m.BG[2] = m.FG[2]

	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := motif.Save(ctx, m, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := motif.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.L != m.L || got.R != m.R {
		t.Fatalf("L/R mismatch: got (%d,%d), want (%d,%d)", got.L, got.R, m.L, m.R)
	}
	if len(got.Parents) != len(m.Parents) {
		t.Fatalf("Parents length mismatch: got %d, want %d", len(got.Parents), len(m.Parents))
	}
	for i := range m.FG {
		if len(got.FG[i]) != len(m.FG[i]) {
			t.Fatalf("FG[%d] length mismatch: got %d, want %d", i, len(got.FG[i]), len(m.FG[i]))
		}
		for j := range m.FG[i] {
			if math.Abs(got.FG[i][j]-m.FG[i][j]) > 1e-12 {
				t.Errorf("FG[%d][%d] = %v, want %v", i, j, got.FG[i][j], m.FG[i][j])
			}
		}
	}
}
