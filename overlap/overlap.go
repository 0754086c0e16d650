// Package overlap provides the pairwise-alignment record type shared by the
// bridging pipeline and a parallel scanner for overlap files (PAF, and the
// blasr-style M4 variant).
package overlap

import (
	"github.com/grailbio/ctgbridge/seqstore"
)

// Record describes one alignment between sequence A and sequence B.
// Coordinates are 0-based half-open on the forward strand of each sequence;
// SameStrand is false when B aligned reverse-complemented.  Identity is on
// the 0-100 scale.
type Record struct {
	AID          seqstore.ID
	ALen         int
	AStart, AEnd int
	BID          seqstore.ID
	BLen         int
	BStart, BEnd int
	SameStrand   bool
	Identity     float64
}

// Loc classifies the geometry of an overlap.
type Loc int

const (
	// LocAbnormal marks an internal match: neither sequence's alignment comes
	// close enough to its ends, which indicates a spurious or chimeric hit.
	LocAbnormal Loc = iota
	// LocEqual: both sequences are covered nearly end to end.
	LocEqual
	// LocContained: A lies within B.
	LocContained
	// LocContaining: B lies within A.
	LocContaining
	// LocLeft: A extends to the left of B (proper dovetail A->B).
	LocLeft
	// LocRight: B extends to the left of A (proper dovetail B->A).
	LocRight
)

// AlignedLength returns the length of the aligned region, the larger of the
// two per-sequence spans.
func (r *Record) AlignedLength() int {
	a := r.AEnd - r.AStart
	if b := r.BEnd - r.BStart; b > a {
		return b
	}
	return a
}

// flanks returns the unaligned flank lengths of both sequences, with B's
// flanks swapped onto A's coordinate direction when the strands differ.
func (r *Record) flanks() (lhA, rhA, lhB, rhB int) {
	lhA, rhA = r.AStart, r.ALen-r.AEnd
	lhB, rhB = r.BStart, r.BLen-r.BEnd
	if !r.SameStrand {
		lhB, rhB = rhB, lhB
	}
	return
}

// Location classifies the overlap geometry with flank tolerance th.
func (r *Record) Location(th int) Loc {
	lhA, rhA, lhB, rhB := r.flanks()
	aEnds := lhA <= th && rhA <= th
	bEnds := lhB <= th && rhB <= th
	switch {
	case aEnds && bEnds:
		return LocEqual
	case aEnds:
		return LocContained
	case bEnds:
		return LocContaining
	case rhA <= th && lhB <= th:
		return LocLeft
	case lhA <= th && rhB <= th:
		return LocRight
	}
	return LocAbnormal
}

// Overhang returns the unaligned hang of each side at the overlap junctions:
// for each junction the clipped sequence (the one whose flank ends inside
// the other) contributes its flank.  A side that is never clipped reports -1
// ("not computable"); ties clip A.
func (r *Record) Overhang() [2]int {
	lhA, rhA, lhB, rhB := r.flanks()
	oh := [2]int{-1, -1}
	note := func(side int, hang int) {
		if hang > oh[side] {
			oh[side] = hang
		}
	}
	if lhA <= lhB {
		note(0, lhA)
	} else {
		note(1, lhB)
	}
	if rhA <= rhB {
		note(0, rhA)
	} else {
		note(1, rhB)
	}
	return oh
}
