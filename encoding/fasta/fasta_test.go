package fasta_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/ctgbridge/encoding/fasta"
	"github.com/grailbio/testutil/expect"
)

var fastaData = ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + ">seq2 a bridged contig\n" + "ACGT\n" + "ACGT\n"

func TestGet(t *testing.T) {
	tests := []struct {
		seq     string
		start   uint64
		end     uint64
		want    string
		wantErr bool
	}{
		{"seq1", 1, 2, "C", false},
		{"seq1", 1, 6, "CGTAC", false},
		{"seq1", 0, 12, "ACGTACGTACGT", false},
		{"seq1", 10, 12, "GT", false},
		{"seq2", 0, 8, "ACGTACGT", false},
		{"seq2", 2, 5, "GTA", false},
		{"seq0", 0, 1, "", true},
		{"seq1", 10, 13, "", true},
		{"seq1", 4, 3, "", true},
	}
	fa, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Fatalf("couldn't create Fasta: %v", err)
	}
	for _, tt := range tests {
		got, err := fa.Get(tt.seq, tt.start, tt.end)
		if (err != nil) != tt.wantErr {
			t.Errorf("Get(%s, %d, %d): unexpected error state: %v", tt.seq, tt.start, tt.end, err)
		}
		if got != tt.want {
			t.Errorf("unexpected sequence: want %s, got %s", tt.want, got)
		}
	}
}

func TestLength(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Fatalf("couldn't create Fasta: %v", err)
	}
	got, err := fa.Len("seq1")
	expect.NoError(t, err)
	expect.EQ(t, got, uint64(12))
	got, err = fa.Len("seq2")
	expect.NoError(t, err)
	expect.EQ(t, got, uint64(8))
	if _, err = fa.Len("seq0"); err == nil {
		t.Errorf("expected error for missing sequence")
	}
}

func TestSeqNames(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(fastaData))
	expect.NoError(t, err)
	expect.EQ(t, fa.SeqNames(), []string{"seq1", "seq2"})
}

func TestMalformed(t *testing.T) {
	if _, err := fasta.New(strings.NewReader("ACGT\n>seq1\nACGT\n")); err == nil {
		t.Errorf("expected error for data before first header")
	}
	if _, err := fasta.New(strings.NewReader("> broken\nACGT\n")); err == nil {
		t.Errorf("expected error for empty sequence name")
	}
}

func TestWriter(t *testing.T) {
	out := bytes.Buffer{}
	w := fasta.NewWriter(&out)
	expect.NoError(t, w.Write("ctg1_read5_ctg2", []byte("ACGTACGT")))
	expect.NoError(t, w.Write("ctg3", []byte("GATTACA")))
	expect.EQ(t, out.String(), ">ctg1_read5_ctg2\nACGTACGT\n>ctg3\nGATTACA\n")

	// The emitted index must round-trip through the reader's coordinates.
	idx := bytes.Buffer{}
	expect.NoError(t, w.WriteIndex(&idx))
	expect.EQ(t, idx.String(), "ctg1_read5_ctg2\t8\t17\t8\t9\nctg3\t7\t32\t7\t8\n")

	fa, err := fasta.New(bytes.NewReader(out.Bytes()))
	expect.NoError(t, err)
	got, err := fa.Get("ctg3", 0, 7)
	expect.NoError(t, err)
	expect.EQ(t, got, "GATTACA")
}
