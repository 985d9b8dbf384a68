// Package measurement combines repeated binding-affinity measurements. IC50
// values are log-normally distributed, so duplicates of the same peptide are
// collapsed with the geometric mean, and each combined row carries a weight of
// 1/count so that a heavily re-measured peptide does not dominate training.
package measurement

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// GeometricMean combines measurements by averaging in log space:
// exp(mean(log(values))). A running product of raw IC50 values overflows
// float64 after a few dozen weak binders, so the logs are averaged instead.
// Every value must be positive.
func GeometricMean(values []float64) (float64, error) {
	logs := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return 0, fmt.Errorf("geometric mean requires positive values, got %f", v)
		}
		logs[i] = math.Log(v)
	}

	mean, err := stats.Mean(logs)
	if err != nil {
		return 0, err
	}

	return math.Exp(mean), nil
}

// Combined holds the deduplicated view of a set of raw measurements. The
// slices are parallel; ordering follows the first occurrence of each peptide
// in the raw input.
type Combined struct {
	Peptides []string
	IC50     []float64
	Weights  []float64
	Counts   []int
}

// Combine groups the raw (peptide, ic50) rows by peptide and collapses each
// group to the geometric mean of its IC50 values. The two inputs must have
// the same length, and every IC50 value must be positive.
func Combine(peptides []string, ic50 []float64) (*Combined, error) {
	if len(peptides) != len(ic50) {
		return nil, fmt.Errorf("got %d peptides but %d ic50 values", len(peptides), len(ic50))
	}

	grouped := make(map[string][]float64) // peptide => all raw measurements
	order := make([]string, 0, len(peptides))

	for i, pep := range peptides {
		if ic50[i] <= 0 {
			return nil, fmt.Errorf("ic50 value %f for peptide %q is not positive", ic50[i], pep)
		}

		vals, seen := grouped[pep]
		if !seen {
			order = append(order, pep)
		}
		grouped[pep] = append(vals, ic50[i])
	}

	out := &Combined{
		Peptides: order,
		IC50:     make([]float64, len(order)),
		Weights:  make([]float64, len(order)),
		Counts:   make([]int, len(order)),
	}

	for i, pep := range order {
		vals := grouped[pep]

		gm, err := GeometricMean(vals)
		if err != nil {
			return nil, fmt.Errorf("combining %d measurements for peptide %q: %v", len(vals), pep, err)
		}

		out.IC50[i] = gm
		out.Counts[i] = len(vals)
		out.Weights[i] = 1.0 / float64(len(vals))
	}

	return out, nil
}

// RawWeights returns a weight per raw row of 1/count, where count is how many
// times that row's peptide appears in the input. This is the weighting used
// when duplicate rows are kept instead of combined: each peptide's rows still
// sum to a total influence of 1.
func RawWeights(peptides []string) []float64 {
	counts := make(map[string]int)
	for _, pep := range peptides {
		counts[pep]++
	}

	weights := make([]float64, len(peptides))
	for i, pep := range peptides {
		weights[i] = 1.0 / float64(counts[pep])
	}

	return weights
}
