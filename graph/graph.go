package graph

import (
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/ctgbridge/bridge"
	"github.com/grailbio/ctgbridge/overlap"
	"github.com/grailbio/ctgbridge/seqstore"
)

// Graph holds the surviving links keyed by oriented contig end and selects
// the backbone paths.  It implements bridge.PathGraph.
type Graph struct {
	edges     map[[2]seqstore.EndID]*Link
	out       map[seqstore.EndID][]*Link
	in        map[seqstore.EndID][]*Link
	bestOut   map[seqstore.EndID]*Link
	bestIn    map[seqstore.EndID]*Link
	contained map[seqstore.ID]bool
	paths     [][]seqstore.EndID
}

// New builds the graph from links, dropping any link touching a contained
// contig.
func New(links []*Link, contained map[seqstore.ID]bool) *Graph {
	if contained == nil {
		contained = make(map[seqstore.ID]bool)
	}
	g := &Graph{
		edges:     make(map[[2]seqstore.EndID]*Link),
		out:       make(map[seqstore.EndID][]*Link),
		in:        make(map[seqstore.EndID][]*Link),
		bestOut:   make(map[seqstore.EndID]*Link),
		bestIn:    make(map[seqstore.EndID]*Link),
		contained: contained,
	}
	nDropped := 0
	for _, l := range links {
		if contained[l.From.Seq] || contained[l.To.Seq] {
			nDropped++
			continue
		}
		g.edges[[2]seqstore.EndID{l.From, l.To}] = l
		g.out[l.From] = append(g.out[l.From], l)
		g.in[l.To] = append(g.in[l.To], l)
	}
	log.Printf("Link graph: %d edges, %d nodes, %d links dropped at contained contigs",
		len(g.edges), len(g.out)+len(g.in), nDropped)
	return g
}

// betterLink orders links for best-edge selection: higher support first,
// then the deterministic From/To order as tie-break.
func betterLink(a, b *Link) bool {
	if a.Support != b.Support {
		return a.Support > b.Support
	}
	if a.From != b.From {
		return a.From.Less(b.From)
	}
	return a.To.Less(b.To)
}

// CalcBest marks the best-supported incoming and outgoing link of every
// node.
func (g *Graph) CalcBest() {
	for node, links := range g.out {
		best := links[0]
		for _, l := range links[1:] {
			if betterLink(l, best) {
				best = l
			}
		}
		g.bestOut[node] = best
	}
	for node, links := range g.in {
		best := links[0]
		for _, l := range links[1:] {
			if betterLink(l, best) {
				best = l
			}
		}
		g.bestIn[node] = best
	}
}

// next returns the link to follow out of node under the branch policy, or
// nil when the walk must stop.
func (g *Graph) next(node seqstore.EndID, policy string) *Link {
	switch policy {
	case "best":
		l := g.bestOut[node]
		if l != nil && g.bestIn[l.To] == l {
			return l
		}
	default: // "no": follow only unambiguous edges
		if len(g.out[node]) != 1 {
			return nil
		}
		l := g.out[node][0]
		if len(g.in[l.To]) == 1 {
			return l
		}
	}
	return nil
}

// IdentifyPaths walks the graph from every node in deterministic order and
// records each maximal chain of two or more contigs.  A contig joins at most
// one path.  Requires CalcBest when policy is "best".
func (g *Graph) IdentifyPaths(policy string) [][]seqstore.EndID {
	nodes := make([]seqstore.EndID, 0, len(g.out))
	seen := make(map[seqstore.EndID]bool)
	for node := range g.out {
		if !seen[node] {
			seen[node] = true
			nodes = append(nodes, node)
		}
	}
	for node := range g.in {
		if !seen[node] {
			seen[node] = true
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })

	used := make(map[seqstore.ID]bool)
	g.paths = nil
	for _, start := range nodes {
		if used[start.Seq] {
			continue
		}
		path := []seqstore.EndID{start}
		inPath := map[seqstore.ID]bool{start.Seq: true}
		// Extend forward.
		for cur := start; ; {
			l := g.next(cur, policy)
			if l == nil || used[l.To.Seq] || inPath[l.To.Seq] {
				break
			}
			path = append(path, l.To)
			inPath[l.To.Seq] = true
			cur = l.To
		}
		// Extend backward: a predecessor of node n is the flipped target of a
		// walk out of n's flipped end, since every link has a mirror.
		for cur := start; ; {
			l := g.next(cur.Flip(), policy)
			if l == nil {
				break
			}
			prev := l.To.Flip()
			if used[prev.Seq] || inPath[prev.Seq] {
				break
			}
			path = append([]seqstore.EndID{prev}, path...)
			inPath[prev.Seq] = true
			cur = prev
		}
		if len(path) < 2 {
			continue
		}
		for _, n := range path {
			used[n.Seq] = true
		}
		g.paths = append(g.paths, path)
	}
	log.Printf("Identified %d bridging paths (policy %q)", len(g.paths), policy)
	return g.paths
}

// Paths implements bridge.PathGraph.
func (g *Graph) Paths() [][]seqstore.EndID { return g.paths }

// Edge implements bridge.PathGraph.
func (g *Graph) Edge(from, to seqstore.EndID) bridge.Edge {
	l, ok := g.edges[[2]seqstore.EndID{from, to}]
	if !ok {
		return nil
	}
	return l
}

// Contained implements bridge.PathGraph.
func (g *Graph) Contained() map[seqstore.ID]bool { return g.contained }

// FindContained scans contig-vs-contig overlaps for contigs fully spanned by
// another, with flank tolerance th.  When two contigs cover each other end
// to end the shorter one is contained; equal lengths keep the smaller id.
func FindContained(recs []overlap.Record, th int) map[seqstore.ID]bool {
	contained := make(map[seqstore.ID]bool)
	for i := range recs {
		r := &recs[i]
		if r.AID == r.BID {
			continue
		}
		switch r.Location(th) {
		case overlap.LocContained:
			contained[r.AID] = true
		case overlap.LocContaining:
			contained[r.BID] = true
		case overlap.LocEqual:
			switch {
			case r.ALen < r.BLen:
				contained[r.AID] = true
			case r.BLen < r.ALen:
				contained[r.BID] = true
			case r.AID > r.BID:
				contained[r.AID] = true
			default:
				contained[r.BID] = true
			}
		}
	}
	return contained
}
