package dataset

import (
	"math"
	"testing"

	"github.com/mhcbind/mhcbind/pepencode"
)

func TestSingleAlleleCombines(t *testing.T) {
	d, err := New(
		"HLA-A*02:01",
		[]string{"SIINFEKL", "SIINFEKL", "AAAAAAAAA"},
		[]float64{100, 300, 40000},
		nil,
		Config{CombineRedundantMeasurements: true},
	)
	if err != nil {
		t.Fatal(err)
	}

	if d.AlleleName() != "A0201" {
		t.Fatalf("allele name = %q, expected A0201", d.AlleleName())
	}
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, expected 2", d.Len())
	}
	if len(d.OriginalPeptides()) != 3 {
		t.Fatalf("raw view has %d rows, expected 3", len(d.OriginalPeptides()))
	}

	byPeptide := d.PeptideToIC50Dict()
	if got, want := byPeptide["SIINFEKL"], math.Sqrt(100*300); math.Abs(got-want) > 0.1 {
		t.Fatalf("combined ic50 for SIINFEKL = %f, expected %f", got, want)
	}
	if got := byPeptide["AAAAAAAAA"]; got != 40000 {
		t.Fatalf("combined ic50 for AAAAAAAAA = %f, expected 40000", got)
	}

	weights := d.Weights()
	if math.Abs(weights[0]-0.5) > 1e-12 || weights[1] != 1 {
		t.Fatalf("weights = %v, expected [0.5, 1]", weights)
	}
}

func TestSingleAlleleUncombined(t *testing.T) {
	d, err := New(
		"A0201",
		[]string{"SIINFEKL", "SIINFEKL", "AAAAAAAAA"},
		[]float64{100, 300, 40000},
		nil,
		Config{},
	)
	if err != nil {
		t.Fatal(err)
	}

	// All raw rows are kept, but the duplicated peptide's rows each weigh
	// 1/2 so the peptide still counts once in aggregate.
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", d.Len())
	}
	weights := d.Weights()
	want := []float64{0.5, 0.5, 1}
	for i := range want {
		if math.Abs(weights[i]-want[i]) > 1e-12 {
			t.Fatalf("weights = %v, expected %v", weights, want)
		}
	}
}

func TestSingleAlleleValidation(t *testing.T) {
	if _, err := New("A0201", []string{"SIINFEKL"}, []float64{100, 200}, nil, Config{}); err == nil {
		t.Fatalf("expected a length-mismatch error")
	}
	if _, err := New("A0201", []string{"SIINFEKL"}, []float64{-1}, nil, Config{}); err == nil {
		t.Fatalf("expected an error for a non-positive ic50")
	}
	if _, err := New("A0201", []string{"SIINFEKL"}, []float64{100}, []float64{1, 2}, Config{}); err == nil {
		t.Fatalf("expected an error for mismatched weights")
	}
	if _, err := New("A0201", []string{"SIINFEKL"}, []float64{100}, []float64{0.5}, Config{CombineRedundantMeasurements: true}); err == nil {
		t.Fatalf("expected an error for explicit weights with combination enabled")
	}
}

func TestPeptideToRescaledAffinityDict(t *testing.T) {
	d, err := New("A0201", []string{"SIINFEKLL"}, []float64{50000}, nil, Config{})
	if err != nil {
		t.Fatal(err)
	}

	affinities, err := d.PeptideToRescaledAffinityDict()
	if err != nil {
		t.Fatal(err)
	}
	if y := affinities["SIINFEKLL"]; y != 0 {
		t.Fatalf("rescaled affinity at maxIC50 = %f, expected 0", y)
	}
}

func TestEncodeIndexShapes(t *testing.T) {
	// One 9-mer and one 11-mer: 1 + 3 = 4 encoded rows.
	d, err := New(
		"A0201",
		[]string{"SIINFEKLL", "SIINFEKLLAA"},
		[]float64{100, 40000},
		nil,
		Config{CombineRedundantMeasurements: true},
	)
	if err != nil {
		t.Fatal(err)
	}

	enc, err := d.Encode(false)
	if err != nil {
		t.Fatal(err)
	}

	if len(enc.XIndex) != 4 {
		t.Fatalf("got %d encoded rows, expected 4", len(enc.XIndex))
	}
	if enc.XBinary != nil {
		t.Fatalf("index encoding must not populate XBinary")
	}
	for i, row := range enc.XIndex {
		if len(row) != 9 {
			t.Fatalf("row %d has %d columns, expected 9", i, len(row))
		}
	}

	// The 11-mer's 3 rows share its combined ic50 and split its weight.
	for row := 1; row < 4; row++ {
		if enc.OriginalPeptides[row] != "SIINFEKLLAA" {
			t.Fatalf("row %d source = %q, expected SIINFEKLLAA", row, enc.OriginalPeptides[row])
		}
		if enc.OriginalLengths[row] != 11 || enc.SubstringCounts[row] != 3 {
			t.Fatalf("row %d: length %d, substrings %d, expected 11 and 3", row, enc.OriginalLengths[row], enc.SubstringCounts[row])
		}
		if enc.IC50[row] != 40000 {
			t.Fatalf("row %d ic50 = %f, expected 40000", row, enc.IC50[row])
		}
		if math.Abs(enc.Weights[row]-1.0/3.0) > 1e-12 {
			t.Fatalf("row %d weight = %f, expected 1/3", row, enc.Weights[row])
		}
	}

	// Y is the transform of the per-row ic50, so rows 1..3 agree.
	if enc.Y[1] != enc.Y[2] || enc.Y[2] != enc.Y[3] {
		t.Fatalf("expected identical Y for rows from the same measurement: %v", enc.Y)
	}
}

func TestEncodeBinaryShapes(t *testing.T) {
	d, err := New("A0201", []string{"SIINFEKLL"}, []float64{100}, nil, Config{})
	if err != nil {
		t.Fatal(err)
	}

	enc, err := d.Encode(true)
	if err != nil {
		t.Fatal(err)
	}

	if len(enc.XBinary) != 1 || len(enc.XBinary[0]) != 9*pepencode.AlphabetSize {
		t.Fatalf("got shape (%d, %d), expected (1, 180)", len(enc.XBinary), len(enc.XBinary[0]))
	}
	if enc.XIndex != nil {
		t.Fatalf("one-hot encoding must not populate XIndex")
	}
}

func TestEncodeIsCached(t *testing.T) {
	d, err := New("A0201", []string{"SIINFEKLL"}, []float64{100}, nil, Config{})
	if err != nil {
		t.Fatal(err)
	}

	first, err := d.Encode(false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Encode(false)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected repeated Encode calls to return the cached value")
	}
}

func TestEncodeShortPeptide(t *testing.T) {
	// SIINFEKL is 8 residues; with the default k-mer size of 9 it cannot be
	// encoded and must fail loudly.
	d, err := New("A0201", []string{"SIINFEKL"}, []float64{100}, nil, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Encode(false); err == nil {
		t.Fatalf("expected an error encoding a peptide shorter than the k-mer size")
	}
}

func TestBinderLabelView(t *testing.T) {
	d, err := New("A0201", []string{"SIINFEKLL", "AAAAAAAAA"}, []float64{100, 40000}, nil, Config{})
	if err != nil {
		t.Fatal(err)
	}

	labels := d.BinderLabels()
	if !labels[0] || labels[1] {
		t.Fatalf("labels = %v, expected [true, false]", labels)
	}
}
