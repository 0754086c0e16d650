package bridge

import (
	"sort"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/ctgbridge/encoding/fasta"
	"github.com/grailbio/ctgbridge/seqstore"
)

// SequenceStore is the random-access sequence lookup the assembler reads
// from.
type SequenceStore interface {
	Length(id seqstore.ID) int
	Name(id seqstore.ID) string
	Sequence(id seqstore.ID) []byte
	SequenceArea(a seqstore.Area) []byte
}

// Edge carries the gap-fill metadata of one link between consecutive path
// nodes.
type Edge interface {
	// LinkLength is the estimated length from the start of the previous
	// anchor to the end of this edge's target anchor, through the patch.
	LinkLength() int
	// SeqAreas lists the subsequences to splice in between the two anchors,
	// in splice order.
	SeqAreas() []seqstore.Area
}

// PathGraph exposes the finalized bridging decisions of the link graph.
type PathGraph interface {
	// Paths returns the selected backbone node sequences, each of length >= 2.
	Paths() [][]seqstore.EndID
	// Edge returns the edge between two consecutive path nodes.
	Edge(from, to seqstore.EndID) Edge
	// Contained returns contig ids fully subsumed by another contig; they are
	// never output standalone.
	Contained() map[seqstore.ID]bool
}

// Assembler reconstructs the bridged output sequences.  Single-threaded: it
// runs once, after all concurrent aggregation has completed.
type Assembler struct {
	store     SequenceStore
	graph     PathGraph
	minLength int
}

// NewAssembler creates an assembler dropping output sequences shorter than
// minLength.
func NewAssembler(store SequenceStore, graph PathGraph, minLength int) *Assembler {
	return &Assembler{store: store, graph: graph, minLength: minLength}
}

// A record is either one bridged path or one standalone contig, carrying the
// pre-materialization length estimate used for sorting.
type contigRecord struct {
	bridged   bool
	id        seqstore.ID // unbridged only
	pathIndex int         // bridged only
	length    int
}

// Assemble classifies every contig in contigs as bridged, standalone or
// contained, and writes the surviving sequences to w, longest first.
func (a *Assembler) Assemble(w *fasta.Writer, contigs map[seqstore.ID]bool) error {
	var (
		records []contigRecord
		paths   = a.graph.Paths()
		covered = make(map[seqstore.ID]bool)
	)
	for pi, path := range paths {
		if len(path) < 2 {
			log.Panicf("path %d: bridging path must have at least two anchors, got %d", pi, len(path))
		}
		length := a.store.Length(path[0].SeqID())
		covered[path[0].SeqID()] = true
		for i := 1; i < len(path); i++ {
			e := a.graph.Edge(path[i-1], path[i])
			if e == nil {
				log.Panicf("path %d: no edge between consecutive anchors %v and %v", pi, path[i-1], path[i])
			}
			// LinkLength spans from the previous anchor's start, whose own
			// length is already counted; subtract it to avoid double counting.
			length += e.LinkLength() - a.store.Length(path[i-1].SeqID())
			covered[path[i].SeqID()] = true
		}
		records = append(records, contigRecord{bridged: true, pathIndex: pi, length: length})
	}

	contained := a.graph.Contained()
	standalone := make([]seqstore.ID, 0, len(contigs))
	for id := range contigs {
		if !covered[id] && !contained[id] {
			standalone = append(standalone, id)
		}
	}
	sort.Slice(standalone, func(i, j int) bool { return standalone[i] < standalone[j] })
	for _, id := range standalone {
		records = append(records, contigRecord{id: id, length: a.store.Length(id)})
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].length > records[j].length })

	nWritten := 0
	for _, rec := range records {
		name, seq := a.materialize(rec, paths)
		if len(seq) < a.minLength {
			continue
		}
		if err := w.Write(name, seq); err != nil {
			return err
		}
		nWritten++
	}
	log.Printf("Wrote %d bridged contigs (%d paths, %d standalone, %d contained, %d below %d bases)",
		nWritten, len(paths), len(standalone), len(contained), len(records)-nWritten, a.minLength)
	return nil
}

// materialize builds the output name and sequence of one record.  For a
// bridged path the first anchor contributes its whole (possibly
// reverse-complemented) body; every following anchor contributes only
// through its edge's seq-areas.
func (a *Assembler) materialize(rec contigRecord, paths [][]seqstore.EndID) (string, []byte) {
	if !rec.bridged {
		return a.store.Name(rec.id), a.store.Sequence(rec.id)
	}
	path := paths[rec.pathIndex]
	first := path[0]
	name := strings.Builder{}
	name.WriteString(a.store.Name(first.SeqID()))
	var seq []byte
	if first.Reverse {
		seq = seqstore.ReverseComplement(a.store.Sequence(first.SeqID()))
	} else {
		seq = append(seq, a.store.Sequence(first.SeqID())...)
	}
	for i := 1; i < len(path); i++ {
		e := a.graph.Edge(path[i-1], path[i])
		for _, area := range e.SeqAreas() {
			name.WriteByte('_')
			name.WriteString(a.store.Name(area.Seq))
			seq = append(seq, a.store.SequenceArea(area)...)
		}
	}
	return name.String(), seq
}
