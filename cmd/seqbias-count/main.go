package main

/*
seqbias-count tallies aligned read 5' positions over one or more genomic
intervals, optionally bias-corrected against a trained motif. Multiple
-region flags are processed concurrently, one worker per interval; the core
count.Reads operation itself remains single-threaded and has no internal
worker pool, so the fan-out lives here at the command-line boundary rather
than inside the count/motif packages.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/bioc/seqbias/bamutil"
	"github.com/bioc/seqbias/count"
	"github.com/bioc/seqbias/fasta"
	"github.com/bioc/seqbias/motif"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
)

type regionList []string

func (r *regionList) String() string { return strings.Join(*r, ",") }
func (r *regionList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

var (
	refPath     = flag.String("ref", "", "Reference FASTA path (required when -model is set)")
	bamPath     = flag.String("bam", "", "Input BAM path")
	baiPath     = flag.String("bai", "", "Input BAM index path; defaults to bampath + .bai")
	modelPath   = flag.String("model", "", "Trained model path (YAML); omit for uncorrected counts")
	binary      = flag.Bool("binary", false, "Count a position's presence once regardless of how many reads start there")
	sumCounts   = flag.Bool("sum-counts", false, "Report one total per region instead of a per-position vector")
	parallelism = flag.Int("parallelism", 0, "Maximum number of regions processed concurrently; 0 = runtime.NumCPU()")
	regions     regionList
)

func init() {
	flag.Var(&regions, "region", "seqname:start-end[:strand], 1-based inclusive; may be repeated")
}

func usage() {
	fmt.Printf("Usage: %s -bam reads.bam -region chr1:1-1000 [-region ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	flag.Parse()
	if *bamPath == "" {
		log.Fatalf("-bam is required")
	}
	if len(regions) == 0 {
		log.Fatalf("at least one -region is required")
	}
	if *modelPath != "" && *refPath == "" {
		log.Fatalf("-ref is required when -model is set")
	}

	ctx := vcontext.Background()

	var model *motif.Model
	var ref fasta.Fasta
	if *modelPath != "" {
		var err error
		model, err = motif.Load(ctx, *modelPath)
		if err != nil {
			log.Panicf("loading model %s: %v", *modelPath, err)
		}
		ref, err = loadReference(ctx, *refPath)
		if err != nil {
			log.Panicf("loading reference: %v", err)
		}
	}

	reader, err := bamutil.OpenIndexed(ctx, *bamPath, *baiPath)
	if err != nil {
		log.Panicf("opening %s: %v", *bamPath, err)
	}
	defer reader.Close(ctx)

	intervals := make([]count.Interval, len(regions))
	for i, r := range regions {
		iv, err := parseRegionArg(r)
		if err != nil {
			log.Fatalf("parsing -region %q: %v", r, err)
		}
		intervals[i] = iv
	}

	results := make([][]float64, len(intervals))
	parallelism := *parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	err = traverse.Limit(parallelism).Each(len(intervals), func(i int) error {
		counts, err := count.Reads(ctx, reader, ref, intervals[i], model, *binary, *sumCounts)
		if err != nil {
			return fmt.Errorf("region %s: %w", regions[i], err)
		}
		results[i] = counts
		return nil
	})
	if err != nil {
		log.Panicf("%v", err)
	}

	for i, iv := range intervals {
		fmt.Printf("# %s\n", regions[i])
		for pos, c := range results[i] {
			if *sumCounts {
				fmt.Println(c)
			} else {
				pos1 := iv.Start + pos + 1
				if iv.Strand == motif.Reverse {
					// count.Reads returns reverse-strand counts end-first.
					pos1 = iv.End - pos + 1
				}
				fmt.Printf("%d\t%v\n", pos1, c)
			}
		}
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

// parseRegionArg parses "seqname:start-end[:strand]", with start and end
// given 1-based and inclusive, returning a count.Interval in 0-based
// inclusive coordinates. strand defaults to unrestricted when omitted.
func parseRegionArg(s string) (count.Interval, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return count.Interval{}, fmt.Errorf("expected seqname:start-end[:strand], got %q", s)
	}
	seqname := parts[0]
	if seqname == "" {
		return count.Interval{}, fmt.Errorf("empty sequence name in %q", s)
	}
	dash := strings.Index(parts[1], "-")
	if dash < 0 {
		return count.Interval{}, fmt.Errorf("expected start-end, got %q", parts[1])
	}
	start1, err := strconv.Atoi(parts[1][:dash])
	if err != nil {
		return count.Interval{}, fmt.Errorf("invalid start: %v", err)
	}
	end1, err := strconv.Atoi(parts[1][dash+1:])
	if err != nil {
		return count.Interval{}, fmt.Errorf("invalid end: %v", err)
	}
	if start1 < 1 || end1 < start1 {
		return count.Interval{}, fmt.Errorf("invalid range %d-%d", start1, end1)
	}

	strand := motif.Either
	if len(parts) == 3 {
		switch parts[2] {
		case "+":
			strand = motif.Forward
		case "-":
			strand = motif.Reverse
		default:
			return count.Interval{}, fmt.Errorf("strand must be + or -, got %q", parts[2])
		}
	}

	return count.Interval{Seqname: seqname, Start: start1 - 1, End: end1 - 1, Strand: strand}, nil
}
