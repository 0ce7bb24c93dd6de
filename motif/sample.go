package motif

import (
	"math"
	"math/rand"
	"sort"

	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/postable"
	"github.com/bioc/seqbias/twobit"
	"github.com/grailbio/base/log"
)

// maxBackgroundRetries bounds the background-offset retry loop described
// in the training procedure; the reference implementation retries without
// limit, but a generous finite cap avoids a true infinite loop on
// pathological (e.g. all-N) chromosomes while never binding in practice.
const maxBackgroundRetries = 1000

// roundAway rounds away from zero, like the reference trainer's background
// offset rounding: round_away(2.5) == 3, round_away(-2.5) == -3.
func roundAway(a float64) float64 {
	if a < 0.0 {
		return math.Floor(a)
	}
	return math.Ceil(a)
}

// randGauss draws one sample from a zero-mean Gaussian with the given
// sigma, using the polar (Marsaglia) form of the Box-Muller transform.
// This intentionally reproduces the reference trainer's sampler bit for
// bit rather than using math/rand.NormFloat64 (which uses the ziggurat
// algorithm and would draw a different sequence from the same seed).
func randGauss(rng *rand.Rand, sigma float64) float64 {
	var x, y, r2 float64
	for {
		x = -1 + 2*rng.Float64()
		y = -1 + 2*rng.Float64()
		r2 = x*x + y*y
		if r2 <= 1.0 && r2 != 0 {
			break
		}
	}
	return sigma * y * math.Sqrt(-2.0*math.Log(r2)/r2)
}

// TrainOpts configures Fit.
type TrainOpts struct {
	L, R              int
	MaxReads          int
	ComplexityPenalty float64
	MaxParents        int
	MaxDistance       int
	// BGSamples is the number of background windows sampled per read.
	BGSamples int
	// BGSigma is the standard deviation of the Gaussian background offset.
	BGSigma float64
	// Seed seeds the trainer's random source (shuffling, N-fallback,
	// background offsets), for reproducible fits.
	Seed int64
}

// DefaultTrainOpts returns the reference implementation's defaults.
func DefaultTrainOpts(L, R int) TrainOpts {
	return TrainOpts{
		L: L, R: R,
		MaxReads:          math.MaxInt32,
		ComplexityPenalty: 1.0,
		MaxParents:        DefaultMaxParents,
		MaxDistance:       DefaultMaxDistance,
		BGSamples:         2,
		BGSigma:           500,
		Seed:              1,
	}
}

// Fit trains a Model from dumped PosTable records against a reference. seqNames
// maps a record's Tid to a FASTA sequence name (the BAM header's reference
// order). Records are shuffled, capped at opts.MaxReads, and sorted by Tid
// so each chromosome is fetched from f at most once.
func Fit(f fasta.Fasta, seqNames []string, records []postable.ReadPos, opts TrainOpts) (*Model, error) {
	rng := rand.New(rand.NewSource(opts.Seed))

	recs := make([]postable.ReadPos, len(records))
	copy(recs, records)
	rng.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })

	maxReads := opts.MaxReads
	if maxReads <= 0 || maxReads > len(recs) {
		maxReads = len(recs)
	}
	recs = recs[:maxReads]
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Tid < recs[j].Tid })

	var foreground, background []*twobit.TwoBitSeq

	seqLen := make(map[string]uint64)
	if lens, err := fasta.SequenceLengths(f); err == nil {
		for _, sl := range lens {
			seqLen[sl.Name] = sl.Len
		}
	}

	var curTid int32 = -1
	var curSeq string
	var curOK bool
	warned := make(map[int32]bool)

	for _, r := range recs {
		if r.Tid != curTid {
			curTid = r.Tid
			curSeq, curOK = "", false
			if int(r.Tid) >= 0 && int(r.Tid) < len(seqNames) {
				name := seqNames[r.Tid]
				if l, ok := seqLen[name]; ok && l > 0 {
					if seq, ok := fasta.FetchSeq(f, name, 0, l-1); ok {
						curSeq, curOK = seq, true
					}
				}
			}
			if !curOK && !warned[r.Tid] {
				warned[r.Tid] = true
				log.Error.Printf("motif: reference sequence for tid %d not found, skipping its reads", r.Tid)
			}
		}
		if !curOK {
			continue
		}

		strand := r.Strand == postable.Reverse
		if w, ok := extractWindow(curSeq, int(r.Pos), opts.L, opts.R, strand); ok {
			foreground = append(foreground, twobit.FromASCIIRand(w, rng))

			made := 0
			for tries := 0; made < opts.BGSamples && tries < maxBackgroundRetries; tries++ {
				offset := int(roundAway(randGauss(rng, opts.BGSigma)))
				bgPos := int(r.Pos) + offset
				if bw, ok := extractWindow(curSeq, bgPos, opts.L, opts.R, strand); ok {
					background = append(background, twobit.FromASCIIRand(bw, rng))
					made++
				}
			}
		}
	}

	complexityPenalty := opts.ComplexityPenalty
	if len(foreground) < 10000 {
		complexityPenalty = 0.25
	}

	return Learn(foreground, background, opts.L, opts.R, opts.MaxParents, opts.MaxDistance, complexityPenalty), nil
}

// extractWindow extracts the L+1+R window anchored at pos from seq (all
// lower-case ASCII), reverse-complementing on the minus strand, as the
// reference trainer does for both foreground reads and their background
// offsets. It reports ok=false on out-of-bounds or a window containing an
// unresolved base ('n').
func extractWindow(seq string, pos, L, R int, reverse bool) (string, bool) {
	var start, end int // end exclusive
	if reverse {
		start, end = pos-R, pos+L+1
	} else {
		start, end = pos-L, pos+R+1
	}
	if start < 0 || end > len(seq) {
		return "", false
	}
	w := seq[start:end]
	if containsN(w) {
		return "", false
	}
	if reverse {
		w = twobit.ReverseComplementASCII(w)
	}
	return w, true
}

func containsN(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 'n' {
			return true
		}
	}
	return false
}
