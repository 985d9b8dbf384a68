// affinityprep loads a binding-affinity measurement CSV (columns: allele,
// peptide, measurement_value), combines redundant measurements, and writes
// the deduplicated allele/peptide/ic50 table along with per-allele counts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/mhcbind/mhcbind/dataset"
)

func main() {
	var dataFile, outFile string
	var maxIC50 float64
	var kmerSize int
	var combine bool

	flag.StringVar(&dataFile, "data", "", "Path to measurement CSV (delimiter is auto-detected; columns: allele, peptide, measurement_value)")
	flag.StringVar(&outFile, "out", "", "Path for the combined allele/peptide/ic50 CSV. If empty, writes to stdout.")
	flag.Float64Var(&maxIC50, "maxic50", 50000, "IC50 ceiling for the affinity rescaling")
	flag.IntVar(&kmerSize, "kmer", 9, "Fixed peptide length for encoding")
	flag.BoolVar(&combine, "combine", true, "Combine repeated measurements of a peptide into their geometric mean")

	flag.Parse()

	if dataFile == "" {
		log.Fatalln("Please provide -data")
	}

	if err := run(dataFile, outFile, maxIC50, kmerSize, combine); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}

func run(dataFile, outFile string, maxIC50 float64, kmerSize int, combine bool) error {
	f, err := os.Open(dataFile)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := dataset.LoadCSV(f, dataset.Config{
		MaxIC50:                      maxIC50,
		KmerSize:                     kmerSize,
		CombineRedundantMeasurements: combine,
	})
	if err != nil {
		return err
	}

	log.Println("Loaded measurements for", m.Len(), "alleles")
	for _, count := range m.Counts() {
		log.Printf("%s: %d measurements\n", count.Allele, count.Count)
	}

	// Encoding now surfaces bad peptides before anything is written.
	if _, err := m.EncodeAll(false); err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}

	out := os.Stdout
	if outFile != "" {
		out, err = os.Create(outFile)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	return m.WriteCSV(out)
}
