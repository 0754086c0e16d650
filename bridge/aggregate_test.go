package bridge

import (
	"testing"

	"github.com/grailbio/ctgbridge/overlap"
	"github.com/grailbio/testutil/expect"
)

func TestAggregator(t *testing.T) {
	a := NewAggregator(90, 100)
	visit := a.Visitor()

	// Qualifying dovetail: contributes to both sides.
	expect.EQ(t, visit(&overlap.Record{
		AID: 1, ALen: 5000, AStart: 2000, AEnd: 5000,
		BID: 2, BLen: 3000, BStart: 0, BEnd: 3000,
		SameStrand: true, Identity: 98,
	}), false)
	// Below the identity floor.
	visit(&overlap.Record{
		AID: 1, ALen: 5000, AStart: 2000, AEnd: 5000,
		BID: 3, BLen: 3000, BStart: 0, BEnd: 3000,
		SameStrand: true, Identity: 85,
	})
	// Aligned region too short.
	visit(&overlap.Record{
		AID: 1, ALen: 5000, AStart: 4000, AEnd: 5000,
		BID: 3, BLen: 3000, BStart: 0, BEnd: 1000,
		SameStrand: true, Identity: 98,
	})
	// Internal match.
	visit(&overlap.Record{
		AID: 1, ALen: 10000, AStart: 3000, AEnd: 6000,
		BID: 3, BLen: 10000, BStart: 3000, BEnd: 6000,
		SameStrand: true, Identity: 98,
	})

	stats := a.Finish()
	expect.EQ(t, len(stats), 2)
	expect.EQ(t, stats[1], Stat{Identity: 98, Score: 294000, Len: 5000, Aligned: 3000, Count: 1, Overhang: 0, OhCount: 1})
	expect.EQ(t, stats[2], Stat{Identity: 98, Score: 294000, Len: 3000, Aligned: 3000, Count: 1, Overhang: 0, OhCount: 1})
}

func TestAggregatorMergesWorkers(t *testing.T) {
	a := NewAggregator(90, 100)
	rec := overlap.Record{
		AID: 1, ALen: 5000, AStart: 2000, AEnd: 5000,
		BID: 2, BLen: 3000, BStart: 0, BEnd: 3000,
		SameStrand: true, Identity: 98,
	}
	// Two workers observing the same overlap fold into one map.
	v1, v2 := a.Visitor(), a.Visitor()
	v1(&rec)
	v2(&rec)
	stats := a.Finish()
	expect.EQ(t, stats[1].Count, 2)
	expect.EQ(t, stats[1].Aligned, 6000)
	expect.EQ(t, stats[2].Count, 2)
}

func TestAggregatorIdleWorker(t *testing.T) {
	a := NewAggregator(90, 100)
	a.Visitor() // never called
	expect.EQ(t, len(a.Finish()), 0)
}
