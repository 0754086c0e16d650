package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatMapNote(t *testing.T) {
	m := make(StatMap)
	m.note(1, 5000, 98, 294000, 3000, -1)
	assert.Equal(t, Stat{Identity: 98, Score: 294000, Len: 5000, Aligned: 3000, Count: 1, Overhang: -1}, m[1])

	// A lower-scoring overlap keeps the best identity/score but still
	// accumulates aligned length and count.
	m.note(1, 5000, 99, 200000, 2000, 10)
	assert.Equal(t, Stat{Identity: 98, Score: 294000, Len: 5000, Aligned: 5000, Count: 2, Overhang: 10, OhCount: 1}, m[1])

	// A higher-scoring overlap replaces identity and score together.
	m.note(1, 5000, 96, 300000, 3200, 5)
	s := m[1]
	assert.Equal(t, 96.0, s.Identity)
	assert.Equal(t, 300000, s.Score)
	assert.Equal(t, 8200, s.Aligned)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 10, s.Overhang)
	assert.Equal(t, 2, s.OhCount)
}

func TestStatMapMergeOrderIndependent(t *testing.T) {
	build := func(notes [][6]int) StatMap {
		m := make(StatMap)
		for _, n := range notes {
			m.note(1, n[0], float64(n[1]), n[2], n[3], n[4])
			m.note(2, n[5], float64(n[1]), n[2], n[3], -1)
		}
		return m
	}
	a := build([][6]int{{5000, 98, 294000, 3000, -1, 800}, {5000, 97, 100000, 2000, 30, 800}})
	b := build([][6]int{{5000, 99, 297000, 3000, 7, 800}})

	ab := build(nil)
	ab.mergeFrom(a)
	ab.mergeFrom(b)
	ba := build(nil)
	ba.mergeFrom(b)
	ba.mergeFrom(a)
	assert.Equal(t, ab, ba)

	assert.Equal(t, Stat{Identity: 99, Score: 297000, Len: 5000, Aligned: 8000, Count: 3, Overhang: 30, OhCount: 2}, ab[1])
	assert.Equal(t, Stat{Identity: 99, Score: 297000, Len: 800, Aligned: 8000, Count: 3, Overhang: -1}, ab[2])
}
