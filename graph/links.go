// Package graph builds the link graph between strand-oriented contig ends
// from read-vs-contig overlap evidence and identifies the backbone paths
// that the bridge assembler stitches into output sequences.
package graph

import (
	"sort"

	"github.com/grailbio/ctgbridge/overlap"
	"github.com/grailbio/ctgbridge/seqstore"
)

// Options filter the overlap evidence the link builder accepts.
type Options struct {
	MinIdentity      float64
	MaxOverhang      int
	MinAlignedLength int
	ReadMinLength    int
	CtgMinLength     int
	// MinCoverage is the number of distinct supporting reads a link needs to
	// survive.
	MinCoverage int
}

// Link is one surviving connection between two oriented contig ends,
// represented by its median-gap supporting read.
type Link struct {
	From, To seqstore.EndID
	Support  int

	linkLen int
	areas   []seqstore.Area
}

// LinkLength is the estimated length from the start of the From contig to
// the end of the To contig, through the patch.
func (l *Link) LinkLength() int { return l.linkLen }

// SeqAreas lists the read patch (when the gap is positive) followed by the
// To contig's body, in splice order.
func (l *Link) SeqAreas() []seqstore.Area { return l.areas }

// candidate is one read's vote for a link, before support analysis.
type candidate struct {
	from, to seqstore.EndID
	read     seqstore.ID
	readLen  int
	// gap is the read distance between the two contig alignments; negative
	// when they abut closer than the contigs' estimated ends.
	gap              int
	gapStart, gapEnd int // read coordinates of the patch, on the forward strand
	fromLen, toLen   int
	// mirror marks the reversed rendition of a pair; its patch reads the
	// other strand.
	mirror bool
}

// Builder accumulates qualifying read-vs-contig overlaps and turns them into
// supported links.  In the overlap records the A side is the read and the B
// side the contig.
type Builder struct {
	opts Options
	// per read id, in arbitrary order until Build sorts them.
	byRead map[seqstore.ID][]overlap.Record
}

// NewBuilder creates a Builder with the given evidence filters.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, byRead: make(map[seqstore.ID][]overlap.Record)}
}

// Visitor returns the retention predicate for the overlap scan: an overlap
// qualifies as link evidence when it passes the identity, aligned-length and
// geometry filters and both sequences meet the length floors.  Qualifying
// records are retained by the overlap store; Add them afterwards.
func (b *Builder) Visitor() overlap.VisitFunc {
	return func(o *overlap.Record) bool {
		return o.Identity > b.opts.MinIdentity &&
			o.AlignedLength() >= b.opts.MinAlignedLength &&
			o.ALen >= b.opts.ReadMinLength &&
			o.BLen >= b.opts.CtgMinLength &&
			o.Location(b.opts.MaxOverhang) != overlap.LocAbnormal
	}
}

// Add registers retained overlap records.
func (b *Builder) Add(recs []overlap.Record) {
	for i := range recs {
		r := recs[i]
		b.byRead[r.AID] = append(b.byRead[r.AID], r)
	}
}

// Build derives candidates from every read aligned to two or more contigs,
// groups them by oriented end pair, and keeps groups supported by at least
// MinCoverage distinct reads.  Each surviving group is represented by its
// median-gap candidate.  Every link is emitted in both directions so the
// graph walk can extend paths either way.
func (b *Builder) Build() []*Link {
	groups := make(map[[2]seqstore.EndID][]candidate)
	for _, alns := range b.byRead {
		if len(alns) < 2 {
			continue
		}
		sort.Slice(alns, func(i, j int) bool {
			if alns[i].AStart != alns[j].AStart {
				return alns[i].AStart < alns[j].AStart
			}
			return alns[i].AEnd < alns[j].AEnd
		})
		for i := 1; i < len(alns); i++ {
			prev, next := &alns[i-1], &alns[i]
			for _, c := range pairCandidates(prev, next) {
				key := [2]seqstore.EndID{c.from, c.to}
				groups[key] = append(groups[key], c)
			}
		}
	}

	var links []*Link
	for _, cands := range groups {
		if countReads(cands) < b.opts.MinCoverage {
			continue
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].gap != cands[j].gap {
				return cands[i].gap < cands[j].gap
			}
			if cands[i].read != cands[j].read {
				return cands[i].read < cands[j].read
			}
			return cands[i].gapStart < cands[j].gapStart
		})
		links = append(links, newLink(cands[len(cands)/2], countReads(cands)))
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].From != links[j].From {
			return links[i].From.Less(links[j].From)
		}
		return links[i].To.Less(links[j].To)
	})
	return links
}

// pairCandidates derives the forward and mirrored link candidates of two
// alignments adjacent on the same read, or nothing if the pair cannot
// bridge.
func pairCandidates(prev, next *overlap.Record) []candidate {
	if prev.BID == next.BID {
		return nil
	}
	gap := next.AStart - prev.AEnd
	// A heavily negative gap means the second contig would be swallowed
	// entirely; such pairs carry no bridging signal.
	if -gap >= next.BLen || -gap >= prev.BLen {
		return nil
	}
	fwd := candidate{
		from:     seqstore.End(prev.BID, !prev.SameStrand),
		to:       seqstore.End(next.BID, !next.SameStrand),
		read:     prev.AID,
		readLen:  prev.ALen,
		gap:      gap,
		gapStart: prev.AEnd,
		gapEnd:   next.AStart,
		fromLen:  prev.BLen,
		toLen:    next.BLen,
	}
	mirror := candidate{
		from:     fwd.to.Flip(),
		to:       fwd.from.Flip(),
		read:     fwd.read,
		readLen:  fwd.readLen,
		gap:      gap,
		gapStart: fwd.gapStart,
		gapEnd:   fwd.gapEnd,
		fromLen:  fwd.toLen,
		toLen:    fwd.fromLen,
		mirror:   true,
	}
	return []candidate{fwd, mirror}
}

// newLink materializes the representative candidate: the optional read patch
// covering the gap, then the To contig's body trimmed by any negative gap on
// its entry side.
func newLink(c candidate, support int) *Link {
	l := &Link{
		From:    c.from,
		To:      c.to,
		Support: support,
		linkLen: c.fromLen + c.gap + c.toLen,
	}
	if c.gap > 0 {
		patch := seqstore.Area{Seq: c.read, Start: c.gapStart, End: c.gapEnd}
		if c.mirror {
			patch = seqstore.Area{Seq: c.read, Start: c.readLen - c.gapEnd, End: c.readLen - c.gapStart, Reverse: true}
		}
		l.areas = append(l.areas, patch)
	}
	trim := 0
	if c.gap < 0 {
		trim = -c.gap
	}
	l.areas = append(l.areas, seqstore.Area{Seq: c.to.Seq, Start: trim, End: c.toLen, Reverse: c.to.Reverse})
	return l
}

func countReads(cands []candidate) int {
	seen := make(map[seqstore.ID]bool, len(cands))
	for _, c := range cands {
		seen[c.read] = true
	}
	return len(seen)
}
