package bridge

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// madConsistency makes the MAD a consistent estimator of the standard
// deviation under normality.
const madConsistency = 1.4826

// Sample is one calibration observation.  Weight is accepted for symmetry
// with the statistics the callers carry around but does not enter the
// computation; the median and MAD are taken over X alone.
type Sample struct {
	X      float64
	Weight float64
}

// MedianAbsoluteDeviation returns the median of the samples' X values and
// the median of the absolute deviations from it.  An empty sample set is a
// configuration error: auto-calibration needs at least one qualifying
// overlap.
func MedianAbsoluteDeviation(samples []Sample) (median, mad float64, err error) {
	if len(samples) == 0 {
		return 0, 0, errors.E("calibration requires at least one qualifying overlap")
	}
	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.X
	}
	median = medianOf(xs)
	for i, x := range xs {
		if x >= median {
			xs[i] = x - median
		} else {
			xs[i] = median - x
		}
	}
	mad = medianOf(xs)
	return median, mad, nil
}

// medianOf sorts xs in place and returns its statistical median.
func medianOf(xs []float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

// CalibrateMinIdentity derives an identity lower bound from the per-sequence
// best identities: median - k*1.4826*MAD.
func CalibrateMinIdentity(stats StatMap, k float64, label string) (float64, error) {
	samples := make([]Sample, 0, len(stats))
	for _, s := range stats {
		// Weight is scaled down to keep the proxy in a small range.
		samples = append(samples, Sample{X: s.Identity, Weight: float64(s.Score) / 1000})
	}
	median, mad, err := MedianAbsoluteDeviation(samples)
	if err != nil {
		return 0, errors.E(err, fmt.Sprintf("calibrating %s min identity", label))
	}
	th := median - k*madConsistency*mad
	log.Printf("Auto select %s_min_identity = %.02f, median=%.02f, mad=%.02f", label, th, median, mad)
	return th, nil
}

// CalibrateMaxOverhang derives an overhang upper bound from the per-sequence
// max overhangs: median + k*1.4826*MAD, truncated to an integer.
func CalibrateMaxOverhang(stats StatMap, k float64, label string) (int, error) {
	samples := make([]Sample, 0, len(stats))
	for _, s := range stats {
		samples = append(samples, Sample{X: float64(s.Overhang), Weight: float64(s.Len) / 100})
	}
	median, mad, err := MedianAbsoluteDeviation(samples)
	if err != nil {
		return 0, errors.E(err, fmt.Sprintf("calibrating %s max overhang", label))
	}
	th := int(median + k*madConsistency*mad)
	log.Printf("Auto select %s_max_overhang = %d, median=%f, mad=%f", label, th, median, mad)
	return th, nil
}

// NeedsRead2CtgCalibration reports whether any read-vs-contig threshold was
// left at the sentinel.
func (o *Opts) NeedsRead2CtgCalibration() bool {
	return o.Read2CtgMinIdentity < 0 || o.Read2CtgMaxOverhang < 0
}

// NeedsCtg2CtgCalibration reports whether any contig-vs-contig threshold was
// left at the sentinel.
func (o *Opts) NeedsCtg2CtgCalibration() bool {
	return o.Ctg2CtgMinIdentity < 0 || o.Ctg2CtgMaxOverhang < 0
}

// NewRead2CtgAggregator creates the statistics aggregator for read-vs-contig
// calibration, filtering with the bootstrap floors.
func NewRead2CtgAggregator() *Aggregator {
	return NewAggregator(read2CtgBootstrapIdentity, read2CtgBootstrapOverhang)
}

// NewCtg2CtgAggregator creates the statistics aggregator for
// contig-vs-contig calibration.
func NewCtg2CtgAggregator() *Aggregator {
	return NewAggregator(ctg2CtgBootstrapIdentity, ctg2CtgBootstrapOverhang)
}

// CalibrateRead2Ctg fills the unset read-vs-contig thresholds from the
// aggregated statistics.
func (o *Opts) CalibrateRead2Ctg(stats StatMap) error {
	var err error
	if o.Read2CtgMinIdentity < 0 {
		if o.Read2CtgMinIdentity, err = CalibrateMinIdentity(stats, read2CtgMADScale, "read2ctg"); err != nil {
			return err
		}
	}
	if o.Read2CtgMaxOverhang < 0 {
		if o.Read2CtgMaxOverhang, err = CalibrateMaxOverhang(stats, read2CtgMADScale, "read2ctg"); err != nil {
			return err
		}
	}
	return nil
}

// CalibrateCtg2Ctg fills the unset contig-vs-contig thresholds from the
// aggregated statistics.
func (o *Opts) CalibrateCtg2Ctg(stats StatMap) error {
	var err error
	if o.Ctg2CtgMinIdentity < 0 {
		if o.Ctg2CtgMinIdentity, err = CalibrateMinIdentity(stats, ctg2CtgMADScale, "ctg2ctg"); err != nil {
			return err
		}
	}
	if o.Ctg2CtgMaxOverhang < 0 {
		if o.Ctg2CtgMaxOverhang, err = CalibrateMaxOverhang(stats, ctg2CtgMADScale, "ctg2ctg"); err != nil {
			return err
		}
	}
	return nil
}
