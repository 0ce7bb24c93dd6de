// Package postable implements PosTable, a growable (tid, pos, strand) ->
// count table fed by a BAM scan and later dumped, sorted, and sampled by the
// trainer. It shards its entries by a farm hash of the key the way
// fusion's kmerIndex shards by farmhash(kmer), trading a little memory for
// fewer collisions per bucket on the large tables a whole-genome BAM
// produces.
package postable

import (
	"sort"

	"github.com/biogo/store/llrb"
	farm "github.com/dgryski/go-farm"
)

// Strand is the aligned strand of a read.
type Strand int8

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Key identifies one bucket in the table: a reference sequence, a 0-based
// genomic position, and a strand. For a reverse-strand read, Pos is the
// strand-aware 5' end (the rightmost aligned base), not the leftmost
// coordinate an aligner reports.
type Key struct {
	Tid    int32
	Pos    uint32
	Strand Strand
}

// ReadPos is one flattened record produced by Dump.
type ReadPos struct {
	Key
	Count uint64
}

const numShards = 256

// PosTable is a mapping (tid, pos, strand) -> count. It grows during BAM
// ingest and becomes read-only once Dump is called. It is not safe for
// concurrent insertion, matching the single-threaded scan that feeds it.
type PosTable struct {
	shards [numShards]map[Key]*uint64
	size   int
}

// New returns an empty PosTable.
func New() *PosTable {
	t := &PosTable{}
	for i := range t.shards {
		t.shards[i] = make(map[Key]*uint64)
	}
	return t
}

func shardFor(k Key) (shard int, h uint64) {
	buf := [13]byte{}
	buf[0] = byte(k.Strand)
	for i := 0; i < 4; i++ {
		buf[1+i] = byte(k.Tid >> (8 * i))
	}
	for i := 0; i < 4; i++ {
		buf[5+i] = byte(k.Pos >> (8 * i))
	}
	h = farm.Hash64WithSeed(buf[:9], 0)
	return int(h % numShards), h
}

// Insert increments the counter for (tid, pos, strand), creating it on
// first use.
func (t *PosTable) Insert(tid int32, pos uint32, strand Strand) {
	k := Key{Tid: tid, Pos: pos, Strand: strand}
	shard, _ := shardFor(k)
	m := t.shards[shard]
	if c, ok := m[k]; ok {
		*c++
		return
	}
	v := uint64(1)
	m[k] = &v
	t.size++
}

// Len returns the number of distinct (tid, pos, strand) keys recorded.
func (t *PosTable) Len() int { return t.size }

// llrbRecord adapts ReadPos for insertion into an llrb.Tree, ordering first
// by Tid then by Pos then by Strand -- the order the trainer wants so it
// can load each reference chromosome at most once.
type llrbRecord ReadPos

func (r llrbRecord) Compare(c llrb.Comparable) int {
	o := c.(llrbRecord)
	if d := int(r.Tid) - int(o.Tid); d != 0 {
		return d
	}
	if d := int(r.Pos) - int(o.Pos); d != 0 {
		return d
	}
	return int(r.Strand) - int(o.Strand)
}

// Dump returns up to limit records in (tid, pos, strand) order. Pass a
// limit <= 0 for no cap. The order matches the reference implementation's
// dump-then-sort-by-tid contract; ordering is produced here rather than left
// to the caller since the records are already flowing through an ordered
// tree on their way out.
func (t *PosTable) Dump(limit int) []ReadPos {
	tree := llrb.Tree{}
	for _, m := range t.shards {
		for k, c := range m {
			tree.Insert(llrbRecord{Key: k, Count: *c})
		}
	}
	out := make([]ReadPos, 0, t.size)
	tree.Do(func(c llrb.Comparable) bool {
		out = append(out, ReadPos(c.(llrbRecord)))
		return limit > 0 && len(out) >= limit
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByTid returns the distinct reference sequence ids found in records, in
// ascending order, the shape the trainer's chromosome-at-a-time scan wants.
func ByTid(records []ReadPos) []int32 {
	seen := make(map[int32]bool)
	var order []int32
	for _, r := range records {
		if !seen[r.Tid] {
			seen[r.Tid] = true
			order = append(order, r.Tid)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}
