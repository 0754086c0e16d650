package fasta

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/unsafe"
)

// Writer emits FASTA records. Each sequence body is written on a single
// unwrapped line. The writer tracks byte offsets so that a faidx-compatible
// index (http://www.htslib.org/doc/faidx.html) of the emitted records can be
// produced afterwards.
//
// Not thread-safe.
type Writer struct {
	w   io.Writer
	off int64
	idx []indexEntry
}

type indexEntry struct {
	name   string
	length int64
	offset int64
}

// NewWriter creates a Writer that emits records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write emits one FASTA record: a '>'+name header line followed by the
// sequence on one line.
func (w *Writer) Write(name string, seq []byte) error {
	if name == "" {
		return errors.E("fasta: empty sequence name")
	}
	for _, part := range [][]byte{{'>'}, unsafe.StringToBytes(name), {'\n'}} {
		if _, err := w.w.Write(part); err != nil {
			return err
		}
		w.off += int64(len(part))
	}
	w.idx = append(w.idx, indexEntry{name: name, length: int64(len(seq)), offset: w.off})
	for _, part := range [][]byte{seq, {'\n'}} {
		if _, err := w.w.Write(part); err != nil {
			return err
		}
		w.off += int64(len(part))
	}
	return nil
}

// WriteIndex writes a faidx-format index of the records emitted so far.  The
// format is one tab-separated line per sequence: "<name>\t<length>\t<byte
// offset>\t<bases per line>\t<bytes per line>".  Since Write never wraps
// sequence lines, bases per line equals the sequence length.
func (w *Writer) WriteIndex(out io.Writer) error {
	tsvOut := tsv.NewWriter(out)
	for _, ent := range w.idx {
		tsvOut.WriteString(ent.name)
		tsvOut.WriteInt64(ent.length)
		tsvOut.WriteInt64(ent.offset)
		tsvOut.WriteInt64(ent.length)
		tsvOut.WriteInt64(ent.length + 1)
		if err := tsvOut.EndLine(); err != nil {
			return err
		}
	}
	return tsvOut.Flush()
}
