// Package bamutil opens a BAM file and streams the primary, single-block
// alignments seqbias needs for training and counting, the way
// grailbio/bio's encoding/bamprovider opens and scans BAM files, but trimmed to the read-only, single-pass-or-region-query shape
// this package actually needs.
package bamutil

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// Strand is the aligned strand of a record.
type Strand int8

const (
	Forward Strand = iota
	Reverse
)

// Alignment is the subset of a BAM record the rest of this codebase needs:
// enough to key a PosTable entry and nothing more.
type Alignment struct {
	Tid    int32
	Pos    int  // 0-based leftmost aligned reference position
	End    int  // 0-based, one past the last aligned reference position
	Strand Strand
}

// FivePrimePos returns the strand-aware 5' genomic position of a: the
// leftmost aligned base on the forward strand, the rightmost on the
// reverse strand.
func (a Alignment) FivePrimePos() int {
	if a.Strand == Reverse {
		return a.End - 1
	}
	return a.Pos
}

// Reader iterates a BAM file's primary, single-block alignments in file
// order, discarding secondary/supplementary records and anything whose
// CIGAR is not a single block (soft/hard clips included, since those still
// produce more than one CIGAR op once "M" is joined with "S"/"H").
type Reader struct {
	f      file.File
	reader *bam.Reader
	header *sam.Header
	index  *bam.Index
}

// Open opens the BAM file at path. The caller must call Close when done.
func Open(ctx context.Context, path string) (*Reader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r, err := bam.NewReader(f.Reader(ctx), 1)
	if err != nil {
		f.Close(ctx)
		return nil, err
	}
	return &Reader{f: f, reader: r, header: r.Header()}, nil
}

// OpenIndexed opens path along with its .bai index at indexPath, enabling
// QueryRegion. If indexPath is "", path+".bai" is used.
func OpenIndexed(ctx context.Context, path, indexPath string) (*Reader, error) {
	r, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if indexPath == "" {
		indexPath = path + ".bai"
	}
	idxFile, err := file.Open(ctx, indexPath)
	if err != nil {
		r.Close(ctx)
		return nil, err
	}
	defer idxFile.Close(ctx)
	idx, err := bam.ReadIndex(idxFile.Reader(ctx))
	if err != nil {
		r.Close(ctx)
		return nil, err
	}
	r.index = idx
	return r, nil
}

// QueryRegion calls fn for every primary, single-block alignment whose
// start falls in [start, end) on reference tid, using the .bai index
// loaded by OpenIndexed to seek directly to the first overlapping chunk
// rather than scanning the whole file.
func (r *Reader) QueryRegion(tid int32, start, end int, fn func(Alignment) error) error {
	refs := r.header.Refs()
	if int(tid) < 0 || int(tid) >= len(refs) {
		return nil
	}
	ref := refs[tid]
	chunks, err := r.index.Chunks(ref, start, end)
	if err == index.ErrInvalid || len(chunks) == 0 {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.reader.Seek(chunks[0].Begin); err != nil {
		return err
	}
	for {
		rec, err := r.reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if rec.Ref.ID() != int(tid) {
			return nil
		}
		if rec.Start() >= end {
			return nil
		}
		if rec.Start() < start || !IsPrimarySingleBlock(rec) {
			continue
		}
		if err := fn(ToAlignment(rec)); err != nil {
			return err
		}
	}
}

// Close releases the underlying file handle.
func (r *Reader) Close(ctx context.Context) error {
	if err := r.reader.Close(); err != nil {
		vlog.Infof("bamutil: closing reader: %v", err)
	}
	return r.f.Close(ctx)
}

// RefNames returns the reference sequence names in header (tid) order.
func (r *Reader) RefNames() []string {
	refs := r.header.Refs()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name()
	}
	return names
}

// IsPrimarySingleBlock reports whether rec should be ingested: mapped,
// primary, not a duplicate, and aligned with exactly one CIGAR block (so
// gapped and clipped alignments -- which would otherwise muddy the 5' end
// computation -- are excluded, matching the "single-block" contract BAM
// collaborators must enforce).
func IsPrimarySingleBlock(rec *sam.Record) bool {
	if rec.Flags&(sam.Unmapped|sam.Secondary|sam.Supplementary|sam.Duplicate) != 0 {
		return false
	}
	return len(rec.Cigar) == 1
}

// ToAlignment converts a primary single-block record into an Alignment.
func ToAlignment(rec *sam.Record) Alignment {
	strand := Forward
	if rec.Flags&sam.Reverse != 0 {
		strand = Reverse
	}
	return Alignment{
		Tid:    int32(rec.Ref.ID()),
		Pos:    rec.Start(),
		End:    rec.End(),
		Strand: strand,
	}
}

// Each calls fn for every primary, single-block alignment in the file, in
// file order. It stops and returns the first error encountered, from either
// the scan or fn.
func (r *Reader) Each(fn func(Alignment) error) error {
	for {
		rec, err := r.reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !IsPrimarySingleBlock(rec) {
			continue
		}
		if err := fn(ToAlignment(rec)); err != nil {
			return err
		}
	}
}
