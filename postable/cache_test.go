package postable_test

import (
	"bytes"
	"testing"

	"github.com/bioc/seqbias/postable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadCacheRoundTrip(t *testing.T) {
	records := []postable.ReadPos{
		{Key: postable.Key{Tid: 0, Pos: 10, Strand: postable.Forward}, Count: 3},
		{Key: postable.Key{Tid: 0, Pos: 20, Strand: postable.Reverse}, Count: 1},
		{Key: postable.Key{Tid: 2, Pos: 5, Strand: postable.Forward}, Count: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, postable.WriteCache(&buf, records))
	got, err := postable.ReadCache(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i], got[i], "record %d", i)
	}
}

func TestReadCacheEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, postable.WriteCache(&buf, nil))
	got, err := postable.ReadCache(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}
