package bridge

import (
	"sync"

	"github.com/grailbio/ctgbridge/overlap"
)

const (
	// minStatAlignedLength is the aligned-length floor below which an overlap
	// carries no statistical weight.
	minStatAlignedLength = 2000
	// flushThreshold bounds a worker's private map before it is folded into
	// the shared result.
	flushThreshold = 50000
)

// Aggregator reduces an overlap stream into a StatMap.  Overlaps below the
// identity floor, shorter than minStatAlignedLength, or with abnormal
// geometry are ignored entirely.
//
// Each scan worker obtains its own visit function from Visitor() and
// accumulates into a privately owned slot; a slot is folded into the shared
// result under the mutex once it grows past flushThreshold, and once more
// during Finish().  The per-field merge rules are commutative and
// associative, so the result is independent of worker scheduling.
type Aggregator struct {
	identityTh float64
	overhangTh int

	mu     sync.Mutex
	slots  []*workArea
	result StatMap
}

type workArea struct {
	stats StatMap
}

// NewAggregator creates an aggregator filtering with the given identity
// floor and overhang tolerance.
func NewAggregator(identityTh float64, overhangTh int) *Aggregator {
	return &Aggregator{
		identityTh: identityTh,
		overhangTh: overhangTh,
		result:     make(StatMap),
	}
}

// claim registers a new work slot.  Slots are pointers held in a growable
// list, so a worker's cached slot stays valid while other workers claim
// theirs.
func (a *Aggregator) claim() *workArea {
	a.mu.Lock()
	defer a.mu.Unlock()
	w := &workArea{stats: make(StatMap)}
	a.slots = append(a.slots, w)
	return w
}

func (a *Aggregator) flush(w *workArea) {
	a.mu.Lock()
	a.result.mergeFrom(w.stats)
	a.mu.Unlock()
	w.stats = make(StatMap)
}

// Visitor returns a visit function for one scan worker.  The slot is claimed
// lazily on the first record so that idle workers cost nothing.  The
// function always reports "do not retain": this pass only needs aggregated
// statistics.
func (a *Aggregator) Visitor() overlap.VisitFunc {
	var w *workArea
	return func(o *overlap.Record) bool {
		if o.Identity <= a.identityTh || o.AlignedLength() < minStatAlignedLength ||
			o.Location(a.overhangTh) == overlap.LocAbnormal {
			return false
		}
		if w == nil {
			w = a.claim()
		}
		oh := o.Overhang()
		score := int(o.Identity * float64(o.AlignedLength()))
		w.stats.note(o.AID, o.ALen, o.Identity, score, o.AEnd-o.AStart, oh[0])
		w.stats.note(o.BID, o.BLen, o.Identity, score, o.BEnd-o.BStart, oh[1])
		if len(w.stats) >= flushThreshold {
			a.flush(w)
		}
		return false
	}
}

// Finish drains every remaining slot and returns the final map.  It must be
// called after the scan completed, with no visitors running.
func (a *Aggregator) Finish() StatMap {
	for _, w := range a.slots {
		if len(w.stats) > 0 {
			a.flush(w)
		}
	}
	a.slots = nil
	return a.result
}
