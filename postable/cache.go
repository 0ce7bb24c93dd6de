package postable

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/grailbio/base/log"
)

// recordSize is the encoded size of one ReadPos: Tid (int32), Pos (uint32),
// Strand (1 byte), Count (uint64).
const recordSize = 4 + 4 + 1 + 8

// WriteCache snappy-compresses a dumped record set and writes it to w, so a
// repeated fit run against the same BAM can skip re-scanning it. The format
// is a raw concatenation of fixed-size records, snappy-framed as a single
// block (these tables are small enough post-sharding to not need streaming).
func WriteCache(w io.Writer, records []ReadPos) error {
	buf := make([]byte, len(records)*recordSize)
	for i, r := range records {
		off := i * recordSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(r.Tid))
		binary.LittleEndian.PutUint32(buf[off+4:], r.Pos)
		buf[off+8] = byte(r.Strand)
		binary.LittleEndian.PutUint64(buf[off+9:], r.Count)
	}
	compressed := snappy.Encode(nil, buf)
	var lenPrefix [8]byte
	binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(compressed)))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return err
	}
	_, err := w.Write(compressed)
	return err
}

// ReadCache reads back a cache written by WriteCache.
func ReadCache(r io.Reader) ([]ReadPos, error) {
	var lenPrefix [8]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return nil, err
	}
	compressed := make([]byte, binary.LittleEndian.Uint64(lenPrefix[:]))
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	buf, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, err
	}
	if len(buf)%recordSize != 0 {
		log.Error.Printf("postable: cache payload size %d is not a multiple of the record size %d", len(buf), recordSize)
		return nil, io.ErrUnexpectedEOF
	}
	n := len(buf) / recordSize
	records := make([]ReadPos, n)
	for i := range records {
		off := i * recordSize
		records[i] = ReadPos{
			Key: Key{
				Tid:    int32(binary.LittleEndian.Uint32(buf[off:])),
				Pos:    binary.LittleEndian.Uint32(buf[off+4:]),
				Strand: Strand(buf[off+8]),
			},
			Count: binary.LittleEndian.Uint64(buf[off+9:]),
		}
	}
	return records, nil
}
