package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/csimplestring/go-csv/detector"
	"github.com/gocarina/gocsv"
	"github.com/mhcbind/mhcbind/allele"
)

// measurementRow matches the training-data layout: one measurement per line
// with columns allele, peptide, measurement_value.
type measurementRow struct {
	Allele           string  `csv:"allele"`
	Peptide          string  `csv:"peptide"`
	MeasurementValue float64 `csv:"measurement_value"`
}

// DetermineDelimiter sniffs which rune separates the columns of a measurement
// table, since affinity data circulates as both comma- and tab-delimited
// files. It falls back to a comma when detection is inconclusive.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// LoadCSV reads a measurement table with columns allele, peptide, and
// measurement_value, sniffing the delimiter, and builds one
// SingleAlleleDataset per allele under cfg. Rows for different spellings of
// the same allele are pooled after normalization.
func LoadCSV(r io.Reader, cfg Config) (*MultiAlleleDataset, error) {
	fileBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	delimiter := DetermineDelimiter(bytes.NewReader(fileBytes))

	// SetCSVReader swaps gocsv's process-global reader factory, so put the
	// default back once this table is parsed.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delimiter
		r.LazyQuotes = true
		return r
	})
	defer gocsv.SetCSVReader(gocsv.DefaultCSVReader)

	records := []*measurementRow{}
	if err := gocsv.UnmarshalBytes(fileBytes, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no measurement rows found")
	}

	type group struct {
		peptides []string
		ic50     []float64
	}

	groups := make(map[string]*group) // normalized allele => measurements
	for _, record := range records {
		if record.MeasurementValue <= 0 {
			return nil, fmt.Errorf("measurement value %f for peptide %q is not positive", record.MeasurementValue, record.Peptide)
		}

		// Pooling on the normalized name here is what lets "HLA-A*02:01" and
		// "A0201" rows land in the same dataset instead of colliding in
		// NewMulti.
		name, err := allele.Normalize(record.Allele)
		if err != nil {
			return nil, err
		}

		g, exists := groups[name]
		if !exists {
			g = &group{}
			groups[name] = g
		}
		g.peptides = append(g.peptides, record.Peptide)
		g.ic50 = append(g.ic50, record.MeasurementValue)
	}

	datasets := make(map[string]*SingleAlleleDataset, len(groups))
	for name, g := range groups {
		d, err := New(name, g.peptides, g.ic50, nil, cfg)
		if err != nil {
			return nil, err
		}
		datasets[name] = d
	}

	return NewMulti(datasets)
}

// WriteCSV writes the flattened allele/peptide/ic50 table, in Rows order.
func (m *MultiAlleleDataset) WriteCSV(w io.Writer) error {
	rows := m.Rows()
	return gocsv.Marshal(&rows, w)
}
