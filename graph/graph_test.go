package graph

import (
	"testing"

	"github.com/grailbio/ctgbridge/overlap"
	"github.com/grailbio/ctgbridge/seqstore"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func fwd(id seqstore.ID) seqstore.EndID { return seqstore.EndID{Seq: id} }
func rev(id seqstore.ID) seqstore.EndID { return seqstore.EndID{Seq: id, Reverse: true} }

// testLink creates a link and its mirror, the way Build emits them.
func testLink(from, to seqstore.EndID, support int) []*Link {
	return []*Link{
		{From: from, To: to, Support: support},
		{From: to.Flip(), To: from.Flip(), Support: support},
	}
}

func TestIdentifyPathsChain(t *testing.T) {
	var links []*Link
	links = append(links, testLink(fwd(1), fwd(2), 5)...)
	links = append(links, testLink(fwd(2), fwd(3), 4)...)
	g := New(links, nil)
	g.CalcBest()
	expect.EQ(t, g.IdentifyPaths("no"),
		[][]seqstore.EndID{{fwd(1), fwd(2), fwd(3)}})
	expect.EQ(t, g.IdentifyPaths("best"),
		[][]seqstore.EndID{{fwd(1), fwd(2), fwd(3)}})
}

func TestIdentifyPathsBackwardExtension(t *testing.T) {
	// The chain is 2 -> 1 -> 3.  The walk starts deterministically at
	// contig 1, in the middle, and must extend backward through the mirror
	// links to pick up contig 2.
	var links []*Link
	links = append(links, testLink(fwd(2), fwd(1), 5)...)
	links = append(links, testLink(fwd(1), fwd(3), 5)...)
	g := New(links, nil)
	g.CalcBest()
	expect.EQ(t, g.IdentifyPaths("no"),
		[][]seqstore.EndID{{fwd(2), fwd(1), fwd(3)}})
}

func TestIdentifyPathsBranch(t *testing.T) {
	var links []*Link
	links = append(links, testLink(fwd(1), fwd(2), 5)...)
	links = append(links, testLink(fwd(2), fwd(3), 5)...)
	links = append(links, testLink(fwd(2), fwd(4), 2)...)
	g := New(links, nil)
	g.CalcBest()

	// Policy "no" stops at the branch.
	expect.EQ(t, g.IdentifyPaths("no"),
		[][]seqstore.EndID{{fwd(1), fwd(2)}})

	// Policy "best" follows the better-supported branch; contig 4 is left
	// out since its only link lost.
	expect.EQ(t, g.IdentifyPaths("best"),
		[][]seqstore.EndID{{fwd(1), fwd(2), fwd(3)}})
}

func TestIdentifyPathsCycle(t *testing.T) {
	var links []*Link
	links = append(links, testLink(fwd(1), fwd(2), 5)...)
	links = append(links, testLink(fwd(2), fwd(1), 5)...)
	g := New(links, nil)
	g.CalcBest()
	// The walk stops when it would revisit a contig already in the path.
	paths := g.IdentifyPaths("no")
	assert.EQ(t, len(paths), 1)
	expect.EQ(t, len(paths[0]), 2)
}

func TestNewDropsContainedLinks(t *testing.T) {
	var links []*Link
	links = append(links, testLink(fwd(1), fwd(2), 5)...)
	links = append(links, testLink(fwd(2), fwd(3), 5)...)
	g := New(links, map[seqstore.ID]bool{3: true})
	g.CalcBest()
	expect.EQ(t, g.IdentifyPaths("no"),
		[][]seqstore.EndID{{fwd(1), fwd(2)}})
}

func TestEdgeLookup(t *testing.T) {
	links := testLink(fwd(1), fwd(2), 5)
	g := New(links, nil)
	expect.True(t, g.Edge(fwd(1), fwd(2)) != nil)
	expect.True(t, g.Edge(rev(2), rev(1)) != nil)
	expect.True(t, g.Edge(fwd(2), fwd(1)) == nil)
}

func TestFindContained(t *testing.T) {
	recs := []overlap.Record{
		// A contained in B.
		{AID: 1, ALen: 400, AStart: 0, AEnd: 400, BID: 2, BLen: 2000, BStart: 800, BEnd: 1200, SameStrand: true},
		// B contained in A.
		{AID: 3, ALen: 2000, AStart: 800, AEnd: 1200, BID: 4, BLen: 400, BStart: 0, BEnd: 400, SameStrand: true},
		// Near-equal cover: the shorter contig is contained.
		{AID: 5, ALen: 900, AStart: 0, AEnd: 900, BID: 6, BLen: 1000, BStart: 50, BEnd: 950, SameStrand: true},
		// Equal lengths: the larger id is contained.
		{AID: 8, ALen: 1000, AStart: 0, AEnd: 1000, BID: 7, BLen: 1000, BStart: 0, BEnd: 1000, SameStrand: true},
		// Dovetail: neither is contained.
		{AID: 9, ALen: 1000, AStart: 500, AEnd: 1000, BID: 10, BLen: 1000, BStart: 0, BEnd: 500, SameStrand: true},
	}
	expect.EQ(t, FindContained(recs, 100), map[seqstore.ID]bool{
		1: true, 4: true, 5: true, 8: true,
	})
}
