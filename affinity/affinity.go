// Package affinity maps raw IC50 binding measurements (nM) onto the bounded
// regression target used for model fitting, and back. The transform is
// y = 1 - min(1, log(ic50)/log(maxIC50)): tight binders land near 1, anything
// at or above maxIC50 lands at exactly 0.
package affinity

import (
	"fmt"
	"math"
)

// DefaultMaxIC50 is the ceiling above which all measurements are treated as
// complete non-binders.
const DefaultMaxIC50 = 50000.0

// BinderThreshold is the conventional IC50 cutoff (nM) below which a peptide
// is called a binder. It is fixed by immunology convention, not configurable.
const BinderThreshold = 500.0

// Transform rescales an IC50 value into [0, 1]. It is strictly decreasing in
// ic50 up to maxIC50 and exactly 0 from maxIC50 onward. ic50 must be positive
// and maxIC50 must exceed 1.
func Transform(ic50, maxIC50 float64) (float64, error) {
	if ic50 <= 0 {
		return 0, fmt.Errorf("ic50 must be positive, got %f", ic50)
	}
	if maxIC50 <= 1 {
		return 0, fmt.Errorf("maxIC50 must exceed 1, got %f", maxIC50)
	}

	y := 1.0 - math.Min(1.0, math.Log(ic50)/math.Log(maxIC50))

	// log of a sub-1 ic50 is negative, which would push y above 1.
	if y > 1 {
		y = 1
	}

	return y, nil
}

// TransformSlice applies Transform element-wise.
func TransformSlice(ic50 []float64, maxIC50 float64) ([]float64, error) {
	Y := make([]float64, len(ic50))
	for i, v := range ic50 {
		y, err := Transform(v, maxIC50)
		if err != nil {
			return nil, err
		}
		Y[i] = y
	}
	return Y, nil
}

// Inverse maps a regression output back to an IC50 estimate: maxIC50^(1-y).
// It inverts Transform exactly for any ic50 in (1, maxIC50].
func Inverse(y, maxIC50 float64) float64 {
	return math.Pow(maxIC50, 1.0-y)
}

// IsBinder reports whether an IC50 value is at or below the 500 nM binder
// threshold.
func IsBinder(ic50 float64) bool {
	return ic50 <= BinderThreshold
}

// BinderLabels applies IsBinder element-wise.
func BinderLabels(ic50 []float64) []bool {
	labels := make([]bool, len(ic50))
	for i, v := range ic50 {
		labels[i] = IsBinder(v)
	}
	return labels
}
