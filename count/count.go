// Package count implements the count_reads external-interface operation:
// tallying primary alignment 5' positions over a genomic interval, with
// optional bias correction and strand handling, grounded on the
// seqbias_count_reads R-facing routine this codebase's BAM scanning and
// prediction pieces (bamutil, motif) are themselves ported from.
package count

import (
	"context"

	"github.com/bioc/seqbias/bamutil"
	"github.com/bioc/seqbias/errs"
	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/motif"
)

// Interval names a count_reads query: a 0-based inclusive genomic range on
// one reference sequence, optionally restricted to one strand.
type Interval struct {
	Seqname string
	Start   int
	End     int
	Strand  motif.Strand // motif.Either, motif.Forward, or motif.Reverse
}

// Reads implements count_reads(bam_handle, interval, model?, binary?,
// sum_counts?). When model is non-nil, each contributing read's credit is
// divided by the model's bias at the read's 5' position, matching the
// reference's "1.0 / bs[s][x-c_start]" correction. binary counts a
// position's presence once regardless of how many reads start there;
// sumCounts collapses the whole interval to a single total, returned as a
// length-1 slice. The result is otherwise a vector of length
// interval.End-interval.Start+1, in increasing-genomic-coordinate order,
// reversed only when Strand is Reverse and sumCounts is false (mirroring
// predict's reversal convention for minus-strand output).
//
// Reads relies on Reader.QueryRegion, which seeks using the alignment's
// leftmost position; a reverse-strand read whose alignment starts before
// interval.Start but whose 5' end (its rightmost base) falls inside the
// interval is not visited. This matches typical short-read libraries where
// alignment length is small relative to query windows, but is a known
// simplification relative to the reference, which visits every BAM record
// overlapping the region and filters on 5' position only.
func Reads(ctx context.Context, reader *bamutil.Reader, f fasta.Fasta, interval Interval, model *motif.Model, binary, sumCounts bool) ([]float64, error) {
	if interval.End < interval.Start {
		return nil, errs.E(errs.InvalidInput, "count_reads: empty interval", nil)
	}
	if interval.Strand != motif.Either && interval.Strand != motif.Forward && interval.Strand != motif.Reverse {
		return nil, errs.E(errs.InvalidInput, "count_reads: strand must be +, -, or unrestricted", nil)
	}

	tid, ok := tidFor(reader, interval.Seqname)
	if !ok {
		return nil, errs.E(errs.InvalidInput, "count_reads: reference sequence "+interval.Seqname+" not found in BAM header", nil)
	}

	var biasFwd, biasRev []float64
	if model != nil {
		if interval.Strand == motif.Either || interval.Strand == motif.Forward {
			b, err := motif.Predict(f, interval.Seqname, interval.Start, interval.End, motif.Forward, model)
			if err != nil {
				return nil, err
			}
			biasFwd = b
		}
		if interval.Strand == motif.Either || interval.Strand == motif.Reverse {
			b, err := motif.Predict(f, interval.Seqname, interval.Start, interval.End, motif.Reverse, model)
			if err != nil {
				return nil, err
			}
			biasRev = b
		}
	}

	var alignments []bamutil.Alignment
	err := reader.QueryRegion(tid, interval.Start, interval.End+1, func(a bamutil.Alignment) error {
		alignments = append(alignments, a)
		return nil
	})
	if err != nil {
		return nil, errs.E(errs.IOFailure, "count_reads: scanning BAM region", err)
	}

	return countAlignments(alignments, interval, biasFwd, biasRev, binary, sumCounts), nil
}

func tidFor(reader *bamutil.Reader, seqname string) (int32, bool) {
	for i, name := range reader.RefNames() {
		if name == seqname {
			return int32(i), true
		}
	}
	return 0, false
}

// countAlignments does the actual tallying described by Reads, pulled out
// as a pure function of already-collected alignments so it can be tested
// without a real BAM file.
func countAlignments(alignments []bamutil.Alignment, interval Interval, biasFwd, biasRev []float64, binary, sumCounts bool) []float64 {
	n := interval.End - interval.Start + 1
	counts := make([]float64, n)
	seen := make([]bool, n)

	for _, a := range alignments {
		if interval.Strand == motif.Forward && a.Strand != bamutil.Forward {
			continue
		}
		if interval.Strand == motif.Reverse && a.Strand != bamutil.Reverse {
			continue
		}

		x := a.FivePrimePos()
		if x < interval.Start || x > interval.End {
			continue
		}
		idx := x - interval.Start

		credit := 1.0
		switch {
		case a.Strand == bamutil.Forward && biasFwd != nil:
			credit = 1.0 / biasFwd[idx]
		case a.Strand == bamutil.Reverse && biasRev != nil:
			// biasRev came from motif.Predict(..., motif.Reverse, ...), which
			// returns its vector in decreasing-genomic order (biasRev[0] is
			// the bias at genomic end); idx is increasing-genomic, so the
			// matching entry is the mirrored one.
			credit = 1.0 / biasRev[len(biasRev)-1-idx]
		}

		if binary {
			if seen[idx] {
				continue
			}
			seen[idx] = true
		}
		counts[idx] += credit
	}

	if interval.Strand == motif.Reverse && !sumCounts {
		for i, j := 0, len(counts)-1; i < j; i, j = i+1, j-1 {
			counts[i], counts[j] = counts[j], counts[i]
		}
	}

	if sumCounts {
		var total float64
		for _, c := range counts {
			total += c
		}
		return []float64{total}
	}
	return counts
}
