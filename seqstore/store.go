// Package seqstore provides an id-addressed store of biological sequences
// loaded from FASTA files.  Sequence names are interned into dense integer
// ids through a NameTable that may be shared with other components (e.g. the
// overlap scanner), so that the same name resolves to the same id regardless
// of which file mentioned it first.
package seqstore

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/ctgbridge/encoding/fasta"
)

// ID identifies one sequence (a raw read or a contig) within a shared
// namespace.
type ID uint32

// NameTable interns sequence names to dense ids.  Thread-safe.
type NameTable struct {
	mu    sync.Mutex
	ids   map[string]ID
	names []string
}

// NewNameTable creates an empty table.
func NewNameTable() *NameTable {
	return &NameTable{ids: make(map[string]ID)}
}

// Intern returns the id for the given name, assigning the next free id on
// first sight.
func (t *NameTable) Intern(name string) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := ID(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id
}

// Name returns the name interned for id.
func (t *NameTable) Name(id ID) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.names[id]
}

// Len returns the number of interned names.
func (t *NameTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.names)
}

// Store holds sequences for random access by id.  Loading is single-threaded;
// lookups after loading are read-only and thread-safe.
type Store struct {
	table *NameTable
	seqs  map[ID][]byte
}

// NewStore creates an empty store interning names through table.
func NewStore(table *NameTable) *Store {
	return &Store{table: table, seqs: make(map[ID][]byte)}
}

// Table returns the name table the store interns through.
func (s *Store) Table() *NameTable { return s.table }

// Load reads all sequences of a FASTA file (transparently decompressed when
// the path indicates compression) into the store, skipping sequences shorter
// than minLength.  It returns the set of ids loaded from this file.
func (s *Store) Load(ctx context.Context, path string, minLength int) (map[ID]bool, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if ur := compress.NewReaderPath(r, in.Name()); ur != nil {
		r = ur
	}
	fa, err := fasta.New(r)
	if err != nil {
		err = errors.E(err, path)
	}
	once := errors.Once{}
	once.Set(err)
	once.Set(in.Close(ctx))
	if once.Err() != nil {
		return nil, once.Err()
	}

	loaded := make(map[ID]bool)
	for _, name := range fa.SeqNames() {
		n, err := fa.Len(name)
		if err != nil {
			return nil, err
		}
		if n == 0 || int(n) < minLength {
			continue
		}
		seq, err := fa.Get(name, 0, n)
		if err != nil {
			return nil, err
		}
		id := s.table.Intern(name)
		s.seqs[id] = []byte(strings.ToUpper(seq))
		loaded[id] = true
	}
	return loaded, nil
}

// Has reports whether the store holds a sequence for id.
func (s *Store) Has(id ID) bool {
	_, ok := s.seqs[id]
	return ok
}

// Length returns the length of the sequence with the given id.
func (s *Store) Length(id ID) int {
	return len(s.seqs[id])
}

// Name returns the name of the sequence with the given id.
func (s *Store) Name(id ID) string {
	return s.table.Name(id)
}

// Sequence returns the full body of the sequence with the given id.  The
// returned slice must not be modified.
func (s *Store) Sequence(id ID) []byte {
	return s.seqs[id]
}

// Subsequence returns seq[start:end] of the sequence with the given id.  The
// returned slice must not be modified.
func (s *Store) Subsequence(id ID, start, end int) []byte {
	return s.seqs[id][start:end]
}

// SequenceArea returns the subsequence described by the area.  When the area
// is on the reverse strand, the coordinates address the reverse-complemented
// sequence and the returned bytes are reverse-complemented accordingly.  The
// returned slice is freshly allocated for reverse areas and shared otherwise.
func (s *Store) SequenceArea(a Area) []byte {
	seq := s.seqs[a.Seq]
	if !a.Reverse {
		return seq[a.Start:a.End]
	}
	n := len(seq)
	return ReverseComplement(seq[n-a.End : n-a.Start])
}

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	complement['A'], complement['a'] = 'T', 'T'
	complement['C'], complement['c'] = 'G', 'G'
	complement['G'], complement['g'] = 'C', 'C'
	complement['T'], complement['t'] = 'A', 'A'
}

// ReverseComplement returns the reverse complement of seq in a new slice.
// Bases other than ACGT complement to N.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complement[b]
	}
	return out
}
