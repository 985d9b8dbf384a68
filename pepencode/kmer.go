package pepencode

import "fmt"

// Extraction is the result of slicing a set of peptides into fixed-length
// k-mers. Kmers holds every extracted k-mer in input order; SourceIndex[i] is
// the position in the original peptide slice that Kmers[i] came from;
// SubstringCounts[j] is how many k-mers peptide j produced.
type Extraction struct {
	Kmers           []string
	SourceIndex     []int
	SubstringCounts []int
}

// ExtractKmers slices each peptide into its len(peptide)-k+1 overlapping
// k-mers. A peptide of exactly length k yields itself. A peptide shorter than
// k is invalid and produces an error rather than being silently dropped, so a
// caller can never lose measurements without noticing.
func ExtractKmers(peptides []string, k int) (*Extraction, error) {
	if k < 1 {
		return nil, fmt.Errorf("k-mer size must be positive, got %d", k)
	}

	out := &Extraction{
		SubstringCounts: make([]int, len(peptides)),
	}

	for i, pep := range peptides {
		if len(pep) < k {
			return nil, fmt.Errorf("peptide %q (length %d) is shorter than k-mer size %d", pep, len(pep), k)
		}

		n := len(pep) - k + 1
		out.SubstringCounts[i] = n
		for j := 0; j < n; j++ {
			out.Kmers = append(out.Kmers, pep[j:j+k])
			out.SourceIndex = append(out.SourceIndex, i)
		}
	}

	return out, nil
}

// EncodeIndex maps each k-mer to a row of integer codes, one per residue,
// producing a (len(kmers), k) matrix. Every k-mer must have length k and
// consist only of standard amino-acid letters.
func EncodeIndex(kmers []string, k int) ([][]int, error) {
	X := make([][]int, len(kmers))

	for i, kmer := range kmers {
		if len(kmer) != k {
			return nil, fmt.Errorf("k-mer %q has length %d, expected %d", kmer, len(kmer), k)
		}

		row := make([]int, k)
		for j := 0; j < k; j++ {
			idx, err := Index(kmer[j])
			if err != nil {
				return nil, fmt.Errorf("%v in k-mer %q", err, kmer)
			}
			row[j] = idx
		}
		X[i] = row
	}

	return X, nil
}

// EncodeOneHot maps each k-mer to a flattened one-hot row of length k*20: the
// residue at position j sets element j*20+code to 1. The unflattened
// (len(kmers), k, 20) view is row[j*20 : (j+1)*20] per position.
func EncodeOneHot(kmers []string, k int) ([][]float64, error) {
	indexed, err := EncodeIndex(kmers, k)
	if err != nil {
		return nil, err
	}

	X := make([][]float64, len(indexed))
	for i, codes := range indexed {
		row := make([]float64, k*AlphabetSize)
		for j, code := range codes {
			row[j*AlphabetSize+code] = 1
		}
		X[i] = row
	}

	return X, nil
}
