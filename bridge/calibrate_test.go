package bridge

import (
	"math"
	"testing"

	"github.com/grailbio/ctgbridge/seqstore"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func near(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMedianAbsoluteDeviation(t *testing.T) {
	_, _, err := MedianAbsoluteDeviation(nil)
	assert.HasSubstr(t, err.Error(), "at least one qualifying overlap")

	median, mad, err := MedianAbsoluteDeviation([]Sample{{X: 42, Weight: 1}})
	assert.NoError(t, err)
	near(t, median, 42)
	near(t, mad, 0)

	samples := []Sample{{X: 90}, {X: 98}, {X: 94}, {X: 96}, {X: 92}}
	median, mad, err = MedianAbsoluteDeviation(samples)
	assert.NoError(t, err)
	near(t, median, 94)
	near(t, mad, 2)

	// Even count: medians average the middle pair.
	median, mad, err = MedianAbsoluteDeviation([]Sample{{X: 1}, {X: 2}, {X: 3}, {X: 10}})
	assert.NoError(t, err)
	near(t, median, 2.5)
	near(t, mad, 1) // deviations 1.5, 0.5, 0.5, 7.5
}

func TestCalibrateMinIdentity(t *testing.T) {
	stats := StatMap{
		1: {Identity: 90, Score: 1000},
		2: {Identity: 92, Score: 1000},
		3: {Identity: 94, Score: 1000},
		4: {Identity: 96, Score: 1000},
		5: {Identity: 98, Score: 1000},
	}
	th, err := CalibrateMinIdentity(stats, 3, "read2ctg")
	assert.NoError(t, err)
	near(t, th, 94-3*madConsistency*2)

	// A wider multiplier only loosens the bound.
	th6, err := CalibrateMinIdentity(stats, 6, "ctg2ctg")
	assert.NoError(t, err)
	expect.True(t, th6 < th)

	// A constant distribution calibrates to its own value.
	th, err = CalibrateMinIdentity(StatMap{1: {Identity: 95}, 2: {Identity: 95}}, 3, "read2ctg")
	assert.NoError(t, err)
	near(t, th, 95)
}

func TestCalibrateMaxOverhang(t *testing.T) {
	stats := make(StatMap)
	for i, oh := range []int{10, 20, 30, 40, 50} {
		stats[seqstore.ID(i)] = Stat{Overhang: oh, Len: 1000}
	}
	th, err := CalibrateMaxOverhang(stats, 3, "read2ctg")
	assert.NoError(t, err)
	expect.EQ(t, th, 74) // int(30 + 3*1.4826*10)

	_, err = CalibrateMaxOverhang(nil, 3, "read2ctg")
	assert.HasSubstr(t, err.Error(), "read2ctg max overhang")
}

func TestOptsCalibration(t *testing.T) {
	stats := StatMap{
		1: {Identity: 94, Overhang: 100, Len: 1000},
		2: {Identity: 94, Overhang: 100, Len: 1000},
		3: {Identity: 94, Overhang: 100, Len: 1000},
	}

	opts := DefaultOpts
	expect.True(t, opts.NeedsRead2CtgCalibration())
	expect.True(t, opts.NeedsCtg2CtgCalibration())
	assert.NoError(t, opts.CalibrateRead2Ctg(stats))
	assert.NoError(t, opts.CalibrateCtg2Ctg(stats))
	expect.False(t, opts.NeedsRead2CtgCalibration())
	expect.False(t, opts.NeedsCtg2CtgCalibration())
	near(t, opts.Read2CtgMinIdentity, 94)
	near(t, opts.Ctg2CtgMinIdentity, 94)
	expect.EQ(t, opts.Read2CtgMaxOverhang, 100)
	expect.EQ(t, opts.Ctg2CtgMaxOverhang, 100)

	// Explicit settings are left alone.
	opts = DefaultOpts
	opts.Read2CtgMinIdentity = 80
	assert.NoError(t, opts.CalibrateRead2Ctg(stats))
	near(t, opts.Read2CtgMinIdentity, 80)
	expect.EQ(t, opts.Read2CtgMaxOverhang, 100)

	opts = DefaultOpts
	opts.Read2CtgMinIdentity = 80
	opts.Read2CtgMaxOverhang = 500
	expect.False(t, opts.NeedsRead2CtgCalibration())
}
