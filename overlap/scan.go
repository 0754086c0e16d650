package overlap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/ctgbridge/seqstore"
)

// VisitFunc inspects one overlap record.  Returning true instructs the store
// to retain the record for later retrieval through Records(); callers that
// only reduce over the stream return false so nothing is materialized.
type VisitFunc func(*Record) bool

// Store scans overlap files and retains the records its visitors asked for.
// Sequence names in the files are interned through the shared NameTable.
type Store struct {
	table *seqstore.NameTable

	mu   sync.Mutex
	recs []Record
}

// NewStore creates a store interning names through table.
func NewStore(table *seqstore.NameTable) *Store {
	return &Store{table: table}
}

// Records returns the records retained by previous Scan calls.
func (s *Store) Records() []Record { return s.recs }

const scanBatchSize = 512

// Scan streams the overlap file at path through parallelism workers.
// newVisit is invoked once per worker; each worker calls its own visit
// function once per record, so the function may carry worker-local state
// without locking.  Record order across workers is unspecified.
func (s *Store) Scan(ctx context.Context, path string, parallelism int, newVisit func() VisitFunc) error {
	if parallelism < 1 {
		parallelism = 1
	}
	parse, err := parserFor(path)
	if err != nil {
		return err
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	var r io.Reader = in.Reader(ctx)
	if ur := compress.NewReaderPath(r, in.Name()); ur != nil {
		r = ur
	}

	once := errors.Once{}
	lineCh := make(chan []string, parallelism*4)
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(nil, 1024*1024)
		batch := make([]string, 0, scanBatchSize)
		nLines := 0
		for sc.Scan() {
			line := sc.Text()
			if len(line) == 0 || line[0] == '#' {
				continue
			}
			batch = append(batch, line)
			if len(batch) == scanBatchSize {
				lineCh <- batch
				batch = make([]string, 0, scanBatchSize)
			}
			nLines++
			if nLines%(1024*1024) == 0 {
				log.Printf("%s: %dMi overlaps", path, nLines/(1024*1024))
			}
		}
		if len(batch) > 0 {
			lineCh <- batch
		}
		once.Set(sc.Err())
		close(lineCh)
	}()

	once.Set(traverse.Each(parallelism, func(_ int) error {
		visit := newVisit()
		var retained []Record
		for batch := range lineCh {
			for _, line := range batch {
				rec, err := parse(s.table, line)
				if err != nil {
					once.Set(err)
					continue
				}
				if visit(&rec) {
					retained = append(retained, rec)
				}
			}
		}
		if len(retained) > 0 {
			s.mu.Lock()
			s.recs = append(s.recs, retained...)
			s.mu.Unlock()
		}
		return nil
	}))
	once.Set(in.Close(ctx))
	return once.Err()
}

type parseFunc func(*seqstore.NameTable, string) (Record, error)

func parserFor(path string) (parseFunc, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".bz2")
	switch {
	case strings.HasSuffix(base, ".paf"):
		return parsePAF, nil
	case strings.HasSuffix(base, ".m4"), strings.HasSuffix(base, ".ovl"):
		return parseM4, nil
	}
	return nil, errors.E(fmt.Sprintf("%s: cannot determine overlap file format (want .paf, .m4 or .ovl)", path))
}

// parsePAF parses one minimap2 PAF line:
// qname qlen qstart qend strand tname tlen tstart tend matches blocklen mapq [tags...]
func parsePAF(table *seqstore.NameTable, line string) (Record, error) {
	f := strings.Fields(line)
	if len(f) < 11 {
		return Record{}, errors.E(fmt.Sprintf("malformed PAF line (%d fields): %.80s", len(f), line))
	}
	var (
		rec  Record
		err  error
		ints [8]int
	)
	for i, col := range []int{1, 2, 3, 6, 7, 8, 9, 10} {
		if ints[i], err = strconv.Atoi(f[col]); err != nil {
			return Record{}, errors.E(err, fmt.Sprintf("malformed PAF field %d: %.80s", col, line))
		}
	}
	rec.AID = table.Intern(f[0])
	rec.ALen, rec.AStart, rec.AEnd = ints[0], ints[1], ints[2]
	rec.BID = table.Intern(f[5])
	rec.BLen, rec.BStart, rec.BEnd = ints[3], ints[4], ints[5]
	switch f[4] {
	case "+":
		rec.SameStrand = true
	case "-":
		rec.SameStrand = false
	default:
		return Record{}, errors.E(fmt.Sprintf("malformed PAF strand %q: %.80s", f[4], line))
	}
	matches, blockLen := ints[6], ints[7]
	if blockLen > 0 {
		rec.Identity = 100 * float64(matches) / float64(blockLen)
	}
	return rec, nil
}

// parseM4 parses one blasr M4 line:
// qname tname score identity qstrand qstart qend qlen tstrand tstart tend tlen
// Coordinates of a reverse-strand side are given on that strand and are
// normalized onto the forward strand here.
func parseM4(table *seqstore.NameTable, line string) (Record, error) {
	f := strings.Fields(line)
	if len(f) < 12 {
		return Record{}, errors.E(fmt.Sprintf("malformed M4 line (%d fields): %.80s", len(f), line))
	}
	identity, err := strconv.ParseFloat(f[3], 64)
	if err != nil {
		return Record{}, errors.E(err, fmt.Sprintf("malformed M4 identity: %.80s", line))
	}
	var ints [8]int
	for i, col := range []int{4, 5, 6, 7, 8, 9, 10, 11} {
		if ints[i], err = strconv.Atoi(f[col]); err != nil {
			return Record{}, errors.E(err, fmt.Sprintf("malformed M4 field %d: %.80s", col, line))
		}
	}
	rec := Record{
		AID:      table.Intern(f[0]),
		BID:      table.Intern(f[1]),
		Identity: identity,
	}
	aStrand, bStrand := ints[0], ints[4]
	rec.AStart, rec.AEnd, rec.ALen = ints[1], ints[2], ints[3]
	rec.BStart, rec.BEnd, rec.BLen = ints[5], ints[6], ints[7]
	if aStrand == 1 {
		rec.AStart, rec.AEnd = rec.ALen-rec.AEnd, rec.ALen-rec.AStart
	}
	if bStrand == 1 {
		rec.BStart, rec.BEnd = rec.BLen-rec.BEnd, rec.BLen-rec.BStart
	}
	rec.SameStrand = aStrand == bStrand
	return rec, nil
}
