package main

/*
seqbias-predict scores a genomic interval against a trained motif, printing
one bias value per line.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/motif"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	modelPath = flag.String("model", "", "Trained model path (YAML)")
	strandFlg = flag.String("strand", "+", "Strand to predict on: + or -")
)

func usage() {
	fmt.Printf("Usage: %s -model model.yaml ref.fasta seqname:start-end\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if flag.NArg() != 2 {
		log.Fatalf("expected exactly 2 positional arguments (ref.fasta seqname:start-end), got %d: %s", flag.NArg(), strings.Join(flag.Args(), " "))
	}
	if *modelPath == "" {
		log.Fatalf("-model is required")
	}
	refPath := flag.Arg(0)

	seqname, start, end, err := parseRegion(flag.Arg(1))
	if err != nil {
		log.Fatalf("parsing region %q: %v", flag.Arg(1), err)
	}
	strand, err := parseStrand(*strandFlg)
	if err != nil {
		log.Fatalf("parsing -strand %q: %v", *strandFlg, err)
	}

	ctx := vcontext.Background()

	ref, err := loadReference(ctx, refPath)
	if err != nil {
		log.Panicf("loading reference: %v", err)
	}

	model, err := motif.Load(ctx, *modelPath)
	if err != nil {
		log.Panicf("loading model %s: %v", *modelPath, err)
	}

	bias, err := motif.Predict(ref, seqname, start, end, strand, model)
	if err != nil {
		log.Panicf("predicting: %v", err)
	}
	for _, b := range bias {
		fmt.Println(b)
	}
	log.Debug.Printf("exiting")
}

func loadReference(ctx context.Context, refPath string) (fasta.Fasta, error) {
	f, err := file.Open(ctx, refPath)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx)
	return fasta.Open(f.Reader(ctx), strings.HasSuffix(refPath, ".gz"))
}

// parseRegion parses "seqname:start-end", with start and end given
// 1-based and inclusive on the command line, returning 0-based inclusive
// coordinates for the rest of the program.
func parseRegion(region string) (seqname string, start, end int, err error) {
	colon := strings.LastIndex(region, ":")
	if colon < 0 {
		return "", 0, 0, fmt.Errorf("expected seqname:start-end, got %q", region)
	}
	seqname = region[:colon]
	if seqname == "" {
		return "", 0, 0, fmt.Errorf("empty sequence name in %q", region)
	}
	rangeStr := region[colon+1:]
	dash := strings.Index(rangeStr, "-")
	if dash < 0 {
		return "", 0, 0, fmt.Errorf("expected start-end, got %q", rangeStr)
	}
	start1, err := strconv.Atoi(rangeStr[:dash])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid start %q: %v", rangeStr[:dash], err)
	}
	end1, err := strconv.Atoi(rangeStr[dash+1:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid end %q: %v", rangeStr[dash+1:], err)
	}
	if start1 < 1 || end1 < start1 {
		return "", 0, 0, fmt.Errorf("invalid range %d-%d", start1, end1)
	}
	return seqname, start1 - 1, end1 - 1, nil
}

func parseStrand(s string) (motif.Strand, error) {
	switch s {
	case "+":
		return motif.Forward, nil
	case "-":
		return motif.Reverse, nil
	default:
		return motif.Either, fmt.Errorf("strand must be + or -, got %q", s)
	}
}
