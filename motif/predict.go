package motif

import (
	"github.com/bioc/seqbias/errs"
	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/twobit"
)

// Strand names one of the two strands a predict or count_reads query can be
// restricted to, or Either for "don't filter on strand".
type Strand int8

const (
	Either Strand = iota
	Forward
	Reverse
)

// Predict implements the predict(model, seqname, start, end, strand)
// external-interface operation: start and end are 0-based inclusive
// genomic coordinates. The returned vector has length end-start+1, one bias
// factor per anchor: increasing genomic coordinate on the + strand, reversed
// (decreasing genomic coordinate) on the - strand, per spec.md §4.F. count.go
// mirrors this convention when correcting reverse-strand read counts.
func Predict(f fasta.Fasta, seqName string, start, end int, strand Strand, m *Model) ([]float64, error) {
	if end < start {
		return nil, errs.E(errs.InvalidInput, "predict: empty interval", nil)
	}
	if strand != Forward && strand != Reverse {
		return nil, errs.E(errs.InvalidInput, "predict: strand must be + or -", nil)
	}

	padLeft, padRight := m.L, m.R
	if strand == Reverse {
		padLeft, padRight = m.R, m.L
	}

	chromLen, err := f.Len(seqName)
	if err != nil {
		return nil, errs.E(errs.InvalidInput, "predict: reference sequence "+seqName+" not found", err)
	}

	fetchStart := start - padLeft
	if fetchStart < 0 {
		fetchStart = 0
	}
	fetchEnd := end + padRight // inclusive
	if uint64(fetchEnd) >= chromLen {
		fetchEnd = int(chromLen) - 1
	}
	if fetchEnd < fetchStart {
		// The whole padded window falls outside the chromosome: every
		// anchor is a boundary case.
		out := make([]float64, end-start+1)
		for i := range out {
			out[i] = 1.0
		}
		return out, nil
	}

	seqStr, ok := fasta.FetchSeq(f, seqName, uint64(fetchStart), uint64(fetchEnd))
	if !ok {
		return nil, errs.E(errs.InvalidInput, "predict: could not fetch reference slice for "+seqName, nil)
	}
	seq := twobit.FromASCII(seqStr)

	if strand == Reverse {
		seq = seq.ReverseComplement()
	}

	// anchorFor(g) is the local index, in seq, of the anchor scoring
	// genomic position g (before any strand reversal of the result).
	// localFwd is g's offset into the fetched (pre-revcomp) slice.
	anchorFor := func(g int) int {
		localFwd := g - fetchStart
		if strand == Forward {
			return localFwd
		}
		// The fetched slice was reverse-complemented, so position 0 of
		// seq corresponds to fetchEnd and position len-1 to fetchStart.
		return seq.Len() - 1 - localFwd
	}

	out := make([]float64, end-start+1)
	for g := start; g <= end; g++ {
		a := anchorFor(g)
		idx := g - start
		if a < 0 || a >= seq.Len() {
			out[idx] = 1.0
			continue
		}
		out[idx] = m.Score(seq, a)
	}

	if strand == Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}
