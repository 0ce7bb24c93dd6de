package errs_test

import (
	"io"
	"testing"

	"github.com/bioc/seqbias/errs"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := errs.E(errs.MissingInput, "reference fasta", io.EOF)
	assert.Equal(t, errs.MissingInput, errs.KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, errs.Other, errs.KindOf(io.EOF))
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		k     errs.Kind
		fatal bool
	}{
		{errs.MissingInput, true},
		{errs.InvalidInput, true},
		{errs.InsufficientData, false},
		{errs.IOFailure, false},
		{errs.Other, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.fatal, errs.IsFatal(c.k), "IsFatal(%v)", c.k)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := errs.E(errs.InvalidInput, "strand must be + or -", nil)
	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
}
