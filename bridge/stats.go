package bridge

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/ctgbridge/seqstore"
)

// Stat accumulates the overlap evidence seen for one sequence.  Identity and
// Score carry the single best-scoring overlap; Aligned and Count accumulate
// over all qualifying overlaps; Overhang is the maximum computable hang and
// OhCount the number of overlaps it was computable for.
type Stat struct {
	Identity float64
	Score    int
	Len      int
	Aligned  int
	Count    int
	Overhang int
	OhCount  int
}

// StatMap maps a sequence id to its accumulated evidence.
type StatMap map[seqstore.ID]Stat

// note folds one qualifying overlap side into the map.  seqLen must be the
// sequence's true length: observing two different lengths for the same id
// means the overlap file does not correspond to the sequence store, which is
// fatal.
func (m StatMap) note(id seqstore.ID, seqLen int, identity float64, score, span, overhang int) {
	s, ok := m[id]
	if !ok {
		s = Stat{
			Identity: identity,
			Score:    score,
			Len:      seqLen,
			Aligned:  span,
			Count:    1,
			Overhang: -1,
		}
		if overhang >= 0 {
			s.Overhang = overhang
			s.OhCount = 1
		}
		m[id] = s
		return
	}
	if s.Len != seqLen {
		log.Panicf("sequence %d: length changed across overlaps: %d vs %d", id, s.Len, seqLen)
	}
	if s.Score < score {
		s.Score = score
		s.Identity = identity
	}
	if overhang >= 0 {
		if overhang > s.Overhang {
			s.Overhang = overhang
		}
		s.OhCount++
	}
	s.Aligned += span
	s.Count++
	m[id] = s
}

// mergeFrom folds another map into m.  The rule is commutative and
// associative per field, so the final map does not depend on merge order.
func (m StatMap) mergeFrom(o StatMap) {
	for id, src := range o {
		dst, ok := m[id]
		if !ok {
			m[id] = src
			continue
		}
		if dst.Len != src.Len {
			log.Panicf("sequence %d: length changed across merges: %d vs %d", id, dst.Len, src.Len)
		}
		if dst.Score < src.Score {
			dst.Score = src.Score
			dst.Identity = src.Identity
		}
		dst.Count += src.Count
		dst.Aligned += src.Aligned
		if src.Overhang >= 0 {
			if dst.Overhang < src.Overhang {
				dst.Overhang = src.Overhang
			}
			dst.OhCount += src.OhCount
		}
		m[id] = dst
	}
}
