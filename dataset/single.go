// Package dataset assembles binding-affinity measurements into the encoded
// arrays a regression model trains on. A SingleAlleleDataset owns one
// allele's measurements, raw and combined; a MultiAlleleDataset is a keyed,
// sorted collection of them with aggregate queries.
package dataset

import (
	"fmt"
	"sync"

	"github.com/mhcbind/mhcbind/affinity"
	"github.com/mhcbind/mhcbind/allele"
	"github.com/mhcbind/mhcbind/measurement"
	"github.com/mhcbind/mhcbind/pepencode"
)

// Config carries the dataset-wide constants. The zero value is completed by
// defaults: MaxIC50 50000, KmerSize 9. CombineRedundantMeasurements is off by
// default; when off, duplicate peptide rows are kept but weighted 1/count so
// each peptide's total influence is still 1.
type Config struct {
	MaxIC50                      float64
	KmerSize                     int
	CombineRedundantMeasurements bool
}

func (c Config) withDefaults() Config {
	if c.MaxIC50 == 0 {
		c.MaxIC50 = affinity.DefaultMaxIC50
	}
	if c.KmerSize == 0 {
		c.KmerSize = 9
	}
	return c
}

// Encoded is the model-ready view of one allele's measurements. Each combined
// measurement expands into one row per extracted k-mer. Exactly one of XIndex
// and XBinary is populated, depending on the encoding requested.
type Encoded struct {
	XIndex  [][]int     // (rows, kmerSize) integer codes
	XBinary [][]float64 // (rows, kmerSize*20) one-hot
	Y       []float64   // rescaled affinity per row
	IC50    []float64   // combined ic50 per row

	Peptides         []string  // the k-mer each row encodes
	OriginalPeptides []string  // the measurement peptide each row came from
	OriginalLengths  []int     // len(OriginalPeptides[i])
	SubstringCounts  []int     // k-mers extracted from that measurement peptide
	Weights          []float64 // measurement weight / substring count
}

// SingleAlleleDataset holds one allele's peptide/IC50 measurements. The raw
// inputs are retained untouched alongside the combined view; encodings are
// computed lazily and cached. Datasets are immutable after construction, so
// they are safe for concurrent readers.
type SingleAlleleDataset struct {
	alleleName string
	maxIC50    float64
	kmerSize   int

	originalPeptides []string
	originalIC50     []float64

	peptides []string
	ic50     []float64
	weights  []float64

	onceIndex  sync.Once
	encIndex   *Encoded
	errIndex   error
	onceBinary sync.Once
	encBinary  *Encoded
	errBinary  error
}

// New validates and assembles a SingleAlleleDataset from parallel peptide and
// IC50 slices. weights may be nil, in which case per-row weights are derived
// from duplicate counts; explicit weights are only meaningful when redundant
// measurements are kept, so combining with externally supplied weights is an
// error.
func New(alleleName string, peptides []string, ic50 []float64, weights []float64, cfg Config) (*SingleAlleleDataset, error) {
	cfg = cfg.withDefaults()

	name, err := allele.Normalize(alleleName)
	if err != nil {
		return nil, err
	}

	if len(peptides) != len(ic50) {
		return nil, fmt.Errorf("allele %s: got %d peptides but %d ic50 values", name, len(peptides), len(ic50))
	}
	if weights != nil && len(weights) != len(peptides) {
		return nil, fmt.Errorf("allele %s: got %d peptides but %d weights", name, len(peptides), len(weights))
	}
	for i, v := range ic50 {
		if v <= 0 {
			return nil, fmt.Errorf("allele %s: ic50 value %f for peptide %q is not positive", name, v, peptides[i])
		}
	}

	d := &SingleAlleleDataset{
		alleleName:       name,
		maxIC50:          cfg.MaxIC50,
		kmerSize:         cfg.KmerSize,
		originalPeptides: append([]string(nil), peptides...),
		originalIC50:     append([]float64(nil), ic50...),
	}

	if cfg.CombineRedundantMeasurements {
		if weights != nil {
			return nil, fmt.Errorf("allele %s: cannot combine redundant measurements when explicit weights are provided", name)
		}

		combined, err := measurement.Combine(d.originalPeptides, d.originalIC50)
		if err != nil {
			return nil, fmt.Errorf("allele %s: %v", name, err)
		}
		d.peptides = combined.Peptides
		d.ic50 = combined.IC50
		d.weights = combined.Weights

		return d, nil
	}

	// Keep every raw row, but normalize each peptide's total influence to 1.
	d.peptides = d.originalPeptides
	d.ic50 = d.originalIC50
	if weights != nil {
		for i, w := range weights {
			if w <= 0 {
				return nil, fmt.Errorf("allele %s: weight %f for peptide %q is not positive", name, w, peptides[i])
			}
		}
		d.weights = append([]float64(nil), weights...)
	} else {
		d.weights = measurement.RawWeights(d.peptides)
	}

	return d, nil
}

// Len returns the number of measurement rows: distinct peptides when
// redundant measurements were combined, raw rows otherwise.
func (d *SingleAlleleDataset) Len() int {
	return len(d.peptides)
}

// AlleleName returns the normalized allele name.
func (d *SingleAlleleDataset) AlleleName() string { return d.alleleName }

// MaxIC50 returns the rescaling ceiling fixed at construction.
func (d *SingleAlleleDataset) MaxIC50() float64 { return d.maxIC50 }

// KmerSize returns the k-mer length fixed at construction.
func (d *SingleAlleleDataset) KmerSize() int { return d.kmerSize }

// Peptides returns the combined peptide list. Callers must not modify it.
func (d *SingleAlleleDataset) Peptides() []string { return d.peptides }

// IC50Values returns the combined IC50 list, parallel to Peptides. Callers
// must not modify it.
func (d *SingleAlleleDataset) IC50Values() []float64 { return d.ic50 }

// Weights returns the per-measurement weights, parallel to Peptides. Callers
// must not modify it.
func (d *SingleAlleleDataset) Weights() []float64 { return d.weights }

// OriginalPeptides returns the raw peptide list as passed to New.
func (d *SingleAlleleDataset) OriginalPeptides() []string { return d.originalPeptides }

// OriginalIC50Values returns the raw IC50 list as passed to New.
func (d *SingleAlleleDataset) OriginalIC50Values() []float64 { return d.originalIC50 }

// PeptideToIC50Dict maps each peptide to its combined IC50 value. On a
// dataset built without combination, a duplicated peptide keeps the value of
// its last raw row.
func (d *SingleAlleleDataset) PeptideToIC50Dict() map[string]float64 {
	out := make(map[string]float64, len(d.peptides))
	for i, pep := range d.peptides {
		out[pep] = d.ic50[i]
	}
	return out
}

// PeptideToRescaledAffinityDict maps each peptide to its rescaled affinity in
// [0, 1].
func (d *SingleAlleleDataset) PeptideToRescaledAffinityDict() (map[string]float64, error) {
	out := make(map[string]float64, len(d.peptides))
	for i, pep := range d.peptides {
		y, err := affinity.Transform(d.ic50[i], d.maxIC50)
		if err != nil {
			return nil, err
		}
		out[pep] = y
	}
	return out, nil
}

// BinderLabels returns the per-measurement binder labels (combined IC50 at or
// below 500 nM), parallel to Peptides.
func (d *SingleAlleleDataset) BinderLabels() []bool {
	return affinity.BinderLabels(d.ic50)
}

// Encode produces the model-ready arrays for this allele: X from k-mer
// extraction (one-hot when binary is true, integer codes otherwise), Y from
// the affinity transform, and the combined IC50 per row. Results are cached;
// repeated calls return the same value. Any peptide shorter than the k-mer
// size makes the whole encoding fail.
func (d *SingleAlleleDataset) Encode(binary bool) (*Encoded, error) {
	if binary {
		d.onceBinary.Do(func() {
			d.encBinary, d.errBinary = d.encode(true)
		})
		return d.encBinary, d.errBinary
	}

	d.onceIndex.Do(func() {
		d.encIndex, d.errIndex = d.encode(false)
	})
	return d.encIndex, d.errIndex
}

func (d *SingleAlleleDataset) encode(binary bool) (*Encoded, error) {
	ext, err := pepencode.ExtractKmers(d.peptides, d.kmerSize)
	if err != nil {
		return nil, fmt.Errorf("allele %s: %v", d.alleleName, err)
	}

	enc := &Encoded{
		Peptides:         ext.Kmers,
		OriginalPeptides: make([]string, len(ext.Kmers)),
		OriginalLengths:  make([]int, len(ext.Kmers)),
		SubstringCounts:  make([]int, len(ext.Kmers)),
		IC50:             make([]float64, len(ext.Kmers)),
		Y:                make([]float64, len(ext.Kmers)),
		Weights:          make([]float64, len(ext.Kmers)),
	}

	for row, src := range ext.SourceIndex {
		count := ext.SubstringCounts[src]

		enc.OriginalPeptides[row] = d.peptides[src]
		enc.OriginalLengths[row] = len(d.peptides[src])
		enc.SubstringCounts[row] = count
		enc.IC50[row] = d.ic50[src]

		y, err := affinity.Transform(d.ic50[src], d.maxIC50)
		if err != nil {
			return nil, fmt.Errorf("allele %s: %v", d.alleleName, err)
		}
		enc.Y[row] = y

		// Splitting a measurement into several k-mer rows must not multiply
		// its influence.
		enc.Weights[row] = d.weights[src] / float64(count)
	}

	if binary {
		enc.XBinary, err = pepencode.EncodeOneHot(ext.Kmers, d.kmerSize)
	} else {
		enc.XIndex, err = pepencode.EncodeIndex(ext.Kmers, d.kmerSize)
	}
	if err != nil {
		return nil, fmt.Errorf("allele %s: %v", d.alleleName, err)
	}

	return enc, nil
}
