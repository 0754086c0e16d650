package main

/*
bio-ctg-bridge joins assembly contigs whose adjacency is supported by long
raw reads.  It scans read-vs-contig overlaps (deriving quality thresholds
from the data when none are given), links contig ends bridged by enough
reads, walks the link graph for backbone paths, and writes the bridged
sequences as FASTA, longest first.

Usage:

    bio-ctg-bridge [flags] rawreads.fasta contigs.fasta read2ctg.paf bridged.fasta
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/ctgbridge/bridge"
	"github.com/grailbio/ctgbridge/encoding/fasta"
	"github.com/grailbio/ctgbridge/graph"
	"github.com/grailbio/ctgbridge/overlap"
	"github.com/grailbio/ctgbridge/seqstore"
)

var (
	ctg2ctgFile = flag.String("ctg2ctg-file", "", "File containing overlaps between contigs; used to detect contained contigs")

	read2ctgMinIdentity = flag.Float64("read2ctg-min-identity", bridge.DefaultOpts.Read2CtgMinIdentity,
		"Minimum identity of overlaps between raw reads and contigs; negative = derive from the data")
	ctg2ctgMinIdentity = flag.Float64("ctg2ctg-min-identity", bridge.DefaultOpts.Ctg2CtgMinIdentity,
		"Minimum identity of overlaps between contigs; negative = derive from the data")
	read2ctgMaxOverhang = flag.Int("read2ctg-max-overhang", bridge.DefaultOpts.Read2CtgMaxOverhang,
		"Maximum overhang of overlaps between raw reads and contigs; negative = derive from the data")
	ctg2ctgMaxOverhang = flag.Int("ctg2ctg-max-overhang", bridge.DefaultOpts.Ctg2CtgMaxOverhang,
		"Maximum overhang of overlaps between contigs; negative = derive from the data")
	readMinLength            = flag.Int("read-min-length", bridge.DefaultOpts.ReadMinLength, "Minimum raw read length")
	ctgMinLength             = flag.Int("ctg-min-length", bridge.DefaultOpts.CtgMinLength, "Minimum contig length")
	read2ctgMinAlignedLength = flag.Int("read2ctg-min-aligned-length", bridge.DefaultOpts.Read2CtgMinAlignedLength,
		"Minimum aligned length of overlaps between raw reads and contigs")
	ctg2ctgMinAlignedLength = flag.Int("ctg2ctg-min-aligned-length", bridge.DefaultOpts.Ctg2CtgMinAlignedLength,
		"Minimum aligned length of overlaps between contigs")
	read2ctgMinCoverage = flag.Int("read2ctg-min-coverage", bridge.DefaultOpts.Read2CtgMinCoverage,
		"Minimum number of reads supporting a link between contigs")
	minContigLength = flag.Int("min-contig-length", bridge.DefaultOpts.MinContigLength, "Minimum length of bridged output contigs")
	selectBranch    = flag.String("select-branch", bridge.DefaultOpts.SelectBranch,
		`Method for branches in the link graph: "no" = do not select any branch, "best" = select the most probable branch`)
	outputDir = flag.String("output-dir", ".", "Directory for dump files")
	dumpFlag  = flag.Bool("dump", false, "For testing: dump intermediate files to -output-dir")
	threads   = flag.Int("threads", bridge.DefaultOpts.Threads, "Number of overlap scan workers")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] rawreads contigs read2ctg output\n", os.Args[0])
	fmt.Fprintf(os.Stderr, `
  Required positional arguments:
    rawreads     raw read FASTA file
    contigs      contig FASTA file
    read2ctg     file of overlaps between raw reads and contigs (.paf or .m4)
    output       bridged contig FASTA output file

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()
	if flag.NArg() != 4 {
		flag.Usage()
		log.Fatalf("expected 4 positional arguments, got %d", flag.NArg())
	}
	readFile, contigFile, read2ctgFile, outFile := flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)

	opts := bridge.Opts{
		Read2CtgMinIdentity:      *read2ctgMinIdentity,
		Ctg2CtgMinIdentity:       *ctg2ctgMinIdentity,
		Read2CtgMaxOverhang:      *read2ctgMaxOverhang,
		Ctg2CtgMaxOverhang:       *ctg2ctgMaxOverhang,
		ReadMinLength:            *readMinLength,
		CtgMinLength:             *ctgMinLength,
		Read2CtgMinAlignedLength: *read2ctgMinAlignedLength,
		Ctg2CtgMinAlignedLength:  *ctg2ctgMinAlignedLength,
		Read2CtgMinCoverage:      *read2ctgMinCoverage,
		MinContigLength:          *minContigLength,
		SelectBranch:             *selectBranch,
		Threads:                  *threads,
	}
	if opts.SelectBranch != "no" && opts.SelectBranch != "best" {
		log.Fatalf("-select-branch must be \"no\" or \"best\", got %q", opts.SelectBranch)
	}
	if err := run(opts, readFile, contigFile, read2ctgFile, *ctg2ctgFile, outFile); err != nil {
		log.Fatalf("bio-ctg-bridge: %v", err)
	}
	log.Printf("All done")
}

func run(opts bridge.Opts, readFile, contigFile, read2ctgFile, ctg2ctgFile, outFile string) error {
	ctx := vcontext.Background()
	table := seqstore.NewNameTable()

	if opts.NeedsRead2CtgCalibration() {
		log.Printf("Auto selecting read2ctg parameters")
		agg := bridge.NewRead2CtgAggregator()
		if err := overlap.NewStore(table).Scan(ctx, read2ctgFile, opts.Threads, func() overlap.VisitFunc {
			return agg.Visitor()
		}); err != nil {
			return err
		}
		if err := opts.CalibrateRead2Ctg(agg.Finish()); err != nil {
			return err
		}
	}
	if ctg2ctgFile != "" && opts.NeedsCtg2CtgCalibration() {
		log.Printf("Auto selecting ctg2ctg parameters")
		agg := bridge.NewCtg2CtgAggregator()
		if err := overlap.NewStore(table).Scan(ctx, ctg2ctgFile, opts.Threads, func() overlap.VisitFunc {
			return agg.Visitor()
		}); err != nil {
			return err
		}
		if err := opts.CalibrateCtg2Ctg(agg.Finish()); err != nil {
			return err
		}
	}

	log.Printf("Loading read2ctg overlap file %s", read2ctgFile)
	builder := graph.NewBuilder(graph.Options{
		MinIdentity:      opts.Read2CtgMinIdentity,
		MaxOverhang:      opts.Read2CtgMaxOverhang,
		MinAlignedLength: opts.Read2CtgMinAlignedLength,
		ReadMinLength:    opts.ReadMinLength,
		CtgMinLength:     opts.CtgMinLength,
		MinCoverage:      opts.Read2CtgMinCoverage,
	})
	r2cStore := overlap.NewStore(table)
	if err := r2cStore.Scan(ctx, read2ctgFile, opts.Threads, func() overlap.VisitFunc {
		return builder.Visitor()
	}); err != nil {
		return err
	}
	builder.Add(r2cStore.Records())

	var contained map[seqstore.ID]bool
	if ctg2ctgFile != "" {
		log.Printf("Loading ctg2ctg overlap file %s", ctg2ctgFile)
		c2cStore := overlap.NewStore(table)
		if err := c2cStore.Scan(ctx, ctg2ctgFile, opts.Threads, func() overlap.VisitFunc {
			return func(o *overlap.Record) bool {
				return o.Identity > opts.Ctg2CtgMinIdentity &&
					o.AlignedLength() >= opts.Ctg2CtgMinAlignedLength
			}
		}); err != nil {
			return err
		}
		contained = graph.FindContained(c2cStore.Records(), opts.Ctg2CtgMaxOverhang)
		log.Printf("Found %d contained contigs", len(contained))
	}

	log.Printf("Selecting best links")
	links := builder.Build()
	g := graph.New(links, contained)
	g.CalcBest()
	g.IdentifyPaths(opts.SelectBranch)

	log.Printf("Loading read file %s", readFile)
	store := seqstore.NewStore(table)
	if _, err := store.Load(ctx, readFile, opts.ReadMinLength); err != nil {
		return err
	}
	log.Printf("Loading contig file %s", contigFile)
	contigs, err := store.Load(ctx, contigFile, 0)
	if err != nil {
		return err
	}

	log.Printf("Saving bridged contigs to %s", outFile)
	out, err := file.Create(ctx, outFile)
	if err != nil {
		return errors.E(err, fmt.Sprintf("creating bridged contig file %s", outFile))
	}
	w := fasta.NewWriter(out.Writer(ctx))
	asm := bridge.NewAssembler(store, g, opts.MinContigLength)
	once := errors.Once{}
	once.Set(asm.Assemble(w, contigs))
	once.Set(out.Close(ctx))
	if once.Err() != nil {
		return once.Err()
	}

	if *dumpFlag {
		log.Printf("Dumping internal state to %s", *outputDir)
		if err := dump(ctx, table, links, w); err != nil {
			return err
		}
	}
	return nil
}

// dump writes the intermediate tables used while debugging runs: the
// name-to-id mapping, the surviving links, and a faidx index of the output.
func dump(ctx context.Context, table *seqstore.NameTable, links []*graph.Link, w *fasta.Writer) error {
	write := func(name string, fn func(out *tsv.Writer) error) error {
		f, err := file.Create(ctx, filepath.Join(*outputDir, name))
		if err != nil {
			return err
		}
		out := tsv.NewWriter(f.Writer(ctx))
		once := errors.Once{}
		once.Set(fn(out))
		once.Set(out.Flush())
		once.Set(f.Close(ctx))
		return once.Err()
	}
	if err := write("id2name.txt", func(out *tsv.Writer) error {
		for i, n := 0, table.Len(); i < n; i++ {
			out.WriteInt64(int64(i))
			out.WriteString(table.Name(seqstore.ID(i)))
			if err := out.EndLine(); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if err := write("links.txt", func(out *tsv.Writer) error {
		for _, l := range links {
			out.WriteString(endName(table, l.From))
			out.WriteString(endName(table, l.To))
			out.WriteInt64(int64(l.Support))
			out.WriteInt64(int64(l.LinkLength()))
			if err := out.EndLine(); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	f, err := file.Create(ctx, filepath.Join(*outputDir, "bridged.fasta.fai"))
	if err != nil {
		return err
	}
	once := errors.Once{}
	once.Set(w.WriteIndex(f.Writer(ctx)))
	once.Set(f.Close(ctx))
	return once.Err()
}

func endName(table *seqstore.NameTable, e seqstore.EndID) string {
	strand := "+"
	if e.Reverse {
		strand = "-"
	}
	return table.Name(e.Seq) + strand
}
