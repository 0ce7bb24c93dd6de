package main

/*
seqbias-fit trains a sequencing-bias motif from aligned reads and a
reference FASTA, and writes the resulting model to a YAML file.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bioc/seqbias/bamutil"
	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/motif"
	"github.com/bioc/seqbias/postable"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	out               = flag.String("out", "", "Output model path (YAML)")
	l                 = flag.Int("L", 10, "Number of bases to model to the left of the read start")
	r                 = flag.Int("R", 10, "Number of bases to model to the right of the read start")
	maxReads          = flag.Int("max-reads", 0, "Maximum number of reads to train on; 0 = unlimited")
	complexityPenalty = flag.Float64("complexity-penalty", 1.0, "Per-parameter penalty charged when considering a candidate parent position")
	maxParents        = flag.Int("max-parents", motif.DefaultMaxParents, "Maximum number of parent positions per window position")
	maxDistance       = flag.Int("max-distance", motif.DefaultMaxDistance, "Maximum distance (in window positions) a parent may be from its child")
	bgSamples         = flag.Int("bg-samples", 2, "Number of background windows sampled per read")
	bgSigma           = flag.Float64("bg-sigma", 500, "Standard deviation of the Gaussian background offset")
	seed              = flag.Int64("seed", 1, "Seed for the trainer's random source")
)

func usage() {
	fmt.Printf("Usage: %s -out model.yaml ref.fasta reads.bam\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 2 {
		log.Fatalf("expected exactly 2 positional arguments (ref.fasta reads.bam), got %d: %s", flag.NArg(), strings.Join(flag.Args(), " "))
	}
	if *out == "" {
		log.Fatalf("-out is required")
	}
	refPath, bamPath := flag.Arg(0), flag.Arg(1)

	ctx := vcontext.Background()

	ref, err := loadReference(ctx, refPath)
	if err != nil {
		log.Panicf("loading reference: %v", err)
	}

	reader, err := bamutil.Open(ctx, bamPath)
	if err != nil {
		log.Panicf("opening %s: %v", bamPath, err)
	}
	defer reader.Close(ctx)

	table := postable.New()
	if err := reader.Each(func(a bamutil.Alignment) error {
		strand := postable.Forward
		if a.Strand == bamutil.Reverse {
			strand = postable.Reverse
		}
		table.Insert(a.Tid, uint32(a.FivePrimePos()), strand)
		return nil
	}); err != nil {
		log.Panicf("scanning %s: %v", bamPath, err)
	}
	log.Info.Printf("seqbias-fit: collected %d distinct 5' positions from %s", table.Len(), bamPath)

	records := table.Dump(0)
	opts := motif.DefaultTrainOpts(*l, *r)
	opts.MaxReads = *maxReads
	opts.ComplexityPenalty = *complexityPenalty
	opts.MaxParents = *maxParents
	opts.MaxDistance = *maxDistance
	opts.BGSamples = *bgSamples
	opts.BGSigma = *bgSigma
	opts.Seed = *seed

	model, err := motif.Fit(ref, reader.RefNames(), records, opts)
	if err != nil {
		log.Panicf("fitting model: %v", err)
	}

	if err := motif.Save(ctx, model, *out); err != nil {
		log.Panicf("saving model to %s: %v", *out, err)
	}
	log.Debug.Printf("exiting")
}

// loadReference opens refPath (local or any github.com/grailbio/base/file
// scheme) and parses it as FASTA, whole-file-in-memory, gunzipping
// transparently when refPath ends in .gz.
func loadReference(ctx context.Context, refPath string) (fasta.Fasta, error) {
	f, err := file.Open(ctx, refPath)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx)
	return fasta.Open(f.Reader(ctx), strings.HasSuffix(refPath, ".gz"))
}
