package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mhcbind/mhcbind/allele"
	"github.com/mhcbind/mhcbind/measurement"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknownAllele is returned by Get for an allele name absent from the
// collection.
var ErrUnknownAllele = errors.New("unknown allele")

// MultiAlleleDataset maps normalized allele names to their datasets. It is
// read-only after construction; every filtering or imputation operation
// returns a new collection.
type MultiAlleleDataset struct {
	names  []string // sorted
	byName map[string]*SingleAlleleDataset
}

// Item pairs an allele name with its dataset.
type Item struct {
	Allele  string
	Dataset *SingleAlleleDataset
}

// AlleleCount pairs an allele name with its measurement count.
type AlleleCount struct {
	Allele string
	Count  int
}

// Row is one flattened (allele, peptide, ic50) measurement, as exported to a
// table.
type Row struct {
	Allele  string  `csv:"allele"`
	Peptide string  `csv:"peptide"`
	IC50    float64 `csv:"ic50"`
}

// AlleleEncoded pairs an allele name with its encoded arrays.
type AlleleEncoded struct {
	Allele  string
	Encoded *Encoded
}

// NewMulti builds a MultiAlleleDataset from a mapping of allele names to
// datasets. Keys are normalized; two distinct spellings that normalize to the
// same allele are a collision error, never silently merged.
func NewMulti(datasets map[string]*SingleAlleleDataset) (*MultiAlleleDataset, error) {
	out := &MultiAlleleDataset{
		byName: make(map[string]*SingleAlleleDataset, len(datasets)),
	}

	for rawName, d := range datasets {
		name, err := allele.Normalize(rawName)
		if err != nil {
			return nil, err
		}
		if _, dup := out.byName[name]; dup {
			return nil, fmt.Errorf("two input alleles normalize to %s", name)
		}
		out.byName[name] = d
		out.names = append(out.names, name)
	}

	sort.Strings(out.names)

	return out, nil
}

// AlleleNames returns the sorted normalized allele names.
func (m *MultiAlleleDataset) AlleleNames() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of alleles.
func (m *MultiAlleleDataset) Len() int {
	return len(m.names)
}

// Get looks up an allele's dataset by name, normalizing first. A missing
// allele returns an error wrapping ErrUnknownAllele.
func (m *MultiAlleleDataset) Get(alleleName string) (*SingleAlleleDataset, error) {
	name, err := allele.Normalize(alleleName)
	if err != nil {
		return nil, err
	}

	d, exists := m.byName[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAllele, name)
	}

	return d, nil
}

// GetOrDefault looks up an allele's dataset, returning def when the name is
// absent or unparseable.
func (m *MultiAlleleDataset) GetOrDefault(alleleName string, def *SingleAlleleDataset) *SingleAlleleDataset {
	d, err := m.Get(alleleName)
	if err != nil {
		return def
	}
	return d
}

// Items returns (allele, dataset) pairs in sorted-name order. The returned
// slice is freshly built, so re-iterating always yields the same sequence.
func (m *MultiAlleleDataset) Items() []Item {
	items := make([]Item, 0, len(m.names))
	for _, name := range m.names {
		items = append(items, Item{Allele: name, Dataset: m.byName[name]})
	}
	return items
}

// Counts returns the measurement count per allele, ordered like Items.
func (m *MultiAlleleDataset) Counts() []AlleleCount {
	counts := make([]AlleleCount, 0, len(m.names))
	for _, item := range m.Items() {
		counts = append(counts, AlleleCount{Allele: item.Allele, Count: item.Dataset.Len()})
	}
	return counts
}

// Rows flattens every allele's combined measurements into one table: allele
// order follows AlleleNames, peptide order within an allele follows its
// combined order.
func (m *MultiAlleleDataset) Rows() []Row {
	var rows []Row
	for _, item := range m.Items() {
		peptides := item.Dataset.Peptides()
		ic50 := item.Dataset.IC50Values()
		for i := range peptides {
			rows = append(rows, Row{Allele: item.Allele, Peptide: peptides[i], IC50: ic50[i]})
		}
	}
	return rows
}

// FilterByAllele returns a new collection containing only the alleles whose
// normalized name satisfies keep. The receiver is unchanged.
func (m *MultiAlleleDataset) FilterByAllele(keep func(alleleName string) bool) *MultiAlleleDataset {
	out := &MultiAlleleDataset{
		byName: make(map[string]*SingleAlleleDataset),
	}
	for _, name := range m.names {
		if keep(name) {
			out.names = append(out.names, name)
			out.byName[name] = m.byName[name]
		}
	}
	return out
}

// EncodeAll encodes every allele's dataset, in AlleleNames order. Each entry
// carries X (index or one-hot per the binary flag), Y, and the combined IC50
// values.
func (m *MultiAlleleDataset) EncodeAll(binary bool) ([]AlleleEncoded, error) {
	out := make([]AlleleEncoded, 0, len(m.names))
	for _, item := range m.Items() {
		enc, err := item.Dataset.Encode(binary)
		if err != nil {
			return nil, err
		}
		out = append(out, AlleleEncoded{Allele: item.Allele, Encoded: enc})
	}
	return out, nil
}

// PeptideUnion returns the sorted union of combined peptides across all
// alleles.
func (m *MultiAlleleDataset) PeptideUnion() []string {
	seen := make(map[string]struct{})
	for _, item := range m.Items() {
		for _, pep := range item.Dataset.Peptides() {
			seen[pep] = struct{}{}
		}
	}

	union := make([]string, 0, len(seen))
	for pep := range seen {
		union = append(union, pep)
	}
	sort.Strings(union)

	return union
}

// DenseMatrix lays the collection out as a (peptide, allele) matrix of
// rescaled affinities: rows follow PeptideUnion, columns follow AlleleNames,
// and cells with no measurement hold NaN.
func (m *MultiAlleleDataset) DenseMatrix() (*mat.Dense, []string, []string, error) {
	peptides := m.PeptideUnion()
	alleles := m.AlleleNames()

	if len(peptides) == 0 || len(alleles) == 0 {
		return nil, nil, nil, fmt.Errorf("cannot build a dense matrix from an empty dataset")
	}

	data := make([]float64, len(peptides)*len(alleles))
	for i := range data {
		data[i] = math.NaN()
	}

	rowOf := make(map[string]int, len(peptides))
	for i, pep := range peptides {
		rowOf[pep] = i
	}

	for col, item := range m.Items() {
		affinities, err := item.Dataset.PeptideToRescaledAffinityDict()
		if err != nil {
			return nil, nil, nil, err
		}
		for pep, y := range affinities {
			data[rowOf[pep]*len(alleles)+col] = y
		}
	}

	return mat.NewDense(len(peptides), len(alleles), data), peptides, alleles, nil
}

// MissingMaskDict maps each allele to a boolean mask over PeptideUnion, true
// where that allele has no measurement for the peptide.
func (m *MultiAlleleDataset) MissingMaskDict() map[string][]bool {
	peptides := m.PeptideUnion()

	out := make(map[string][]bool, len(m.names))
	for _, item := range m.Items() {
		measured := item.Dataset.PeptideToIC50Dict()
		mask := make([]bool, len(peptides))
		for i, pep := range peptides {
			_, ok := measured[pep]
			mask[i] = !ok
		}
		out[item.Allele] = mask
	}

	return out
}

// ImputeMissingValues returns a new collection in which every missing
// (allele, peptide) cell is filled with the geometric mean of that peptide's
// observed IC50 values across the other alleles. Existing measurements are
// untouched; the receiver is unchanged.
func (m *MultiAlleleDataset) ImputeMissingValues(cfg Config) (*MultiAlleleDataset, error) {
	peptides := m.PeptideUnion()

	// Pool each peptide's observed values across alleles.
	observed := make(map[string][]float64, len(peptides))
	for _, item := range m.Items() {
		for pep, v := range item.Dataset.PeptideToIC50Dict() {
			observed[pep] = append(observed[pep], v)
		}
	}

	imputed := make(map[string]float64, len(peptides))
	for pep, vals := range observed {
		gm, err := measurement.GeometricMean(vals)
		if err != nil {
			return nil, fmt.Errorf("imputing peptide %q: %v", pep, err)
		}
		imputed[pep] = gm
	}

	rebuilt := make(map[string]*SingleAlleleDataset, len(m.names))
	for _, item := range m.Items() {
		measured := item.Dataset.PeptideToIC50Dict()

		peps := append([]string(nil), item.Dataset.Peptides()...)
		vals := append([]float64(nil), item.Dataset.IC50Values()...)
		for _, pep := range peptides {
			if _, ok := measured[pep]; ok {
				continue
			}
			peps = append(peps, pep)
			vals = append(vals, imputed[pep])
		}

		d, err := New(item.Allele, peps, vals, nil, cfg)
		if err != nil {
			return nil, err
		}
		rebuilt[item.Allele] = d
	}

	return NewMulti(rebuilt)
}
