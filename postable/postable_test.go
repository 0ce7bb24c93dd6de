package postable_test

import (
	"testing"

	"github.com/bioc/seqbias/postable"
)

func TestInsertAndCount(t *testing.T) {
	tbl := postable.New()
	tbl.Insert(0, 100, postable.Forward)
	tbl.Insert(0, 100, postable.Forward)
	tbl.Insert(0, 200, postable.Reverse)
	if got := tbl.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	recs := tbl.Dump(0)
	if len(recs) != 2 {
		t.Fatalf("Dump returned %d records, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Pos == 100 {
			if r.Count != 2 {
				t.Errorf("pos 100 count = %d, want 2", r.Count)
			}
			if r.Strand != postable.Forward {
				t.Errorf("pos 100 strand = %v, want +", r.Strand)
			}
		}
		if r.Pos == 200 && r.Count != 1 {
			t.Errorf("pos 200 count = %d, want 1", r.Count)
		}
	}
}

func TestDumpIsSortedByTidThenPos(t *testing.T) {
	tbl := postable.New()
	tbl.Insert(2, 50, postable.Forward)
	tbl.Insert(1, 900, postable.Forward)
	tbl.Insert(1, 10, postable.Reverse)
	tbl.Insert(0, 5, postable.Forward)

	recs := tbl.Dump(0)
	for i := 1; i < len(recs); i++ {
		a, b := recs[i-1], recs[i]
		if a.Tid > b.Tid || (a.Tid == b.Tid && a.Pos > b.Pos) {
			t.Fatalf("dump not sorted: %+v before %+v", a, b)
		}
	}
}

func TestDumpLimit(t *testing.T) {
	tbl := postable.New()
	for i := int32(0); i < 10; i++ {
		tbl.Insert(0, uint32(i), postable.Forward)
	}
	recs := tbl.Dump(3)
	if len(recs) != 3 {
		t.Fatalf("Dump(3) returned %d records, want 3", len(recs))
	}
}

func TestByTid(t *testing.T) {
	recs := []postable.ReadPos{
		{Key: postable.Key{Tid: 1, Pos: 5}},
		{Key: postable.Key{Tid: 0, Pos: 1}},
		{Key: postable.Key{Tid: 1, Pos: 9}},
	}
	order := postable.ByTid(recs)
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Errorf("ByTid = %v, want [0 1]", order)
	}
}
