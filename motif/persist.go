package motif

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/file"
	"github.com/minio/highwayhash"
	"gopkg.in/yaml.v3"
)

// checksumKey is a fixed 32-byte key for the model file's integrity
// checksum. It is not a secret: the checksum only guards against
// truncated/corrupted writes, not tampering.
var checksumKey = [32]byte{
	's', 'e', 'q', 'b', 'i', 'a', 's', '-', 'm', 'o', 't', 'i', 'f', '-', 'v', '1',
}

// motifDoc mirrors the model file's "motif" mapping: n (window length),
// k (alphabet cardinality, always 4), parents, fg, bg.
type motifDoc struct {
	N       int         `yaml:"n"`
	K       int         `yaml:"k"`
	Parents [][]int     `yaml:"parents"`
	FG      [][]float64 `yaml:"fg"`
	BG      [][]float64 `yaml:"bg"`
}

// modelDoc mirrors the top-level model file mapping.
type modelDoc struct {
	L        int      `yaml:"L"`
	R        int      `yaml:"R"`
	Motif    motifDoc `yaml:"motif"`
	Checksum string   `yaml:"checksum,omitempty"`
}

func toDoc(m *Model) modelDoc {
	return modelDoc{
		L: m.L,
		R: m.R,
		Motif: motifDoc{
			N:       m.N(),
			K:       4,
			Parents: m.Parents,
			FG:      m.FG,
			BG:      m.BG,
		},
	}
}

func fromDoc(d modelDoc) *Model {
	return &Model{L: d.L, R: d.R, Parents: d.Motif.Parents, FG: d.Motif.FG, BG: d.Motif.BG}
}

// checksum returns a hex-encoded HighwayHash-64 of the model body, used to
// detect a truncated or corrupted save rather than a semantic mismatch.
func checksum(body []byte) (string, error) {
	sum := highwayhash.Sum64(body, checksumKey[:])
	return fmt.Sprintf("%016x", sum), nil
}

// Save serializes m as YAML to path, with an L, R, and motif mapping as
// described by the model file format, plus an integrity checksum.
func Save(ctx context.Context, m *Model, path string) error {
	doc := toDoc(m)
	body, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	sum, err := checksum(body)
	if err != nil {
		return err
	}
	doc.Checksum = sum
	final, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	if _, err := f.Writer(ctx).Write(final); err != nil {
		f.Close(ctx)
		return err
	}
	return f.Close(ctx)
}

// Load reads a model file back from path, rejecting it if its checksum
// field is present and does not match the body. It does not bind a reference
// path; callers hold their own fasta.Fasta for scoring.
func Load(ctx context.Context, path string) (*Model, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx)

	buf, err := io.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, err
	}

	var doc modelDoc
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, err
	}
	if want := doc.Checksum; want != "" {
		doc.Checksum = ""
		body, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		if got, _ := checksum(body); got != want {
			return nil, fmt.Errorf("motif: %s: model checksum mismatch", path)
		}
	}
	return fromDoc(doc), nil
}
