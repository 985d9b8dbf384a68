// Package pepencode converts variable-length peptide strings into fixed-length
// numeric representations suitable for model input: overlapping k-mers, index
// encodings over the 20-letter amino-acid alphabet, and one-hot expansions.
package pepencode

import "fmt"

// Letters is the canonical ordering of the 20 standard amino acids. Index i of
// this string is the integer code for that residue in every encoding produced
// by this package.
const Letters = "ACDEFGHIKLMNPQRSTVWY"

// AlphabetSize is the number of standard amino acids.
const AlphabetSize = len(Letters)

var letterToIndex [256]int8

func init() {
	for i := range letterToIndex {
		letterToIndex[i] = -1
	}
	for i := 0; i < len(Letters); i++ {
		letterToIndex[Letters[i]] = int8(i)
	}
}

// Index returns the integer code in [0, 20) for an amino-acid letter.
func Index(aa byte) (int, error) {
	idx := letterToIndex[aa]
	if idx < 0 {
		return 0, fmt.Errorf("unrecognized amino acid %q", string(aa))
	}
	return int(idx), nil
}
