// Package bridge closes gaps between assembly contigs using long-read
// overlap evidence.  It derives alignment-quality thresholds from the
// observed overlap distribution, reduces overlap streams into per-sequence
// statistics, and stitches selected graph paths into bridged output
// sequences.
package bridge

type Opts struct {
	// Read2CtgMinIdentity and Ctg2CtgMinIdentity are the minimum alignment
	// identities (0-100) for read-vs-contig and contig-vs-contig overlaps.
	// Negative means "derive from the data" (see Calibrate*).
	Read2CtgMinIdentity float64
	Ctg2CtgMinIdentity  float64
	// Read2CtgMaxOverhang and Ctg2CtgMaxOverhang bound the unaligned hang an
	// overlap may leave at a junction.  Negative means "derive from the data".
	Read2CtgMaxOverhang int
	Ctg2CtgMaxOverhang  int
	// ReadMinLength and CtgMinLength drop short raw reads / contigs on load.
	ReadMinLength int
	CtgMinLength  int
	// Read2CtgMinAlignedLength and Ctg2CtgMinAlignedLength drop short
	// alignments when building links.
	Read2CtgMinAlignedLength int
	Ctg2CtgMinAlignedLength  int
	// Read2CtgMinCoverage is the minimum number of reads that must support a
	// link between two contig ends.
	Read2CtgMinCoverage int
	// MinContigLength drops bridged output sequences shorter than this.
	MinContigLength int
	// SelectBranch picks the policy at graph branches: "no" follows only
	// unambiguous edges, "best" follows the best-supported edge.
	SelectBranch string
	// Threads is the worker count for overlap scans.
	Threads int
}

// DefaultOpts is the default set of bridging parameters.
var DefaultOpts = Opts{
	Read2CtgMinIdentity:      -1, // auto-calibrated
	Ctg2CtgMinIdentity:       -1, // auto-calibrated
	Read2CtgMaxOverhang:      -1, // auto-calibrated
	Ctg2CtgMaxOverhang:       -1, // auto-calibrated
	ReadMinLength:            5000,
	CtgMinLength:             500,
	Read2CtgMinAlignedLength: 5000,
	Ctg2CtgMinAlignedLength:  2000,
	Read2CtgMinCoverage:      3,
	MinContigLength:          500,
	SelectBranch:             "no",
	Threads:                  4,
}

// Calibration bootstrap filters: before thresholds exist, the statistics
// pass accepts overlaps above these floors.
const (
	read2CtgBootstrapIdentity = 75
	read2CtgBootstrapOverhang = 500
	ctg2CtgBootstrapIdentity  = 95
	ctg2CtgBootstrapOverhang  = 250
)

// MAD multipliers: contig-vs-contig evidence is cleaner, so its bound sits
// further from the median.
const (
	read2CtgMADScale = 3
	ctg2CtgMADScale  = 6
)
