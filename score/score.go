// Package score evaluates regression predictions as a binder/non-binder
// classifier: AUC over the continuous outputs, plus accuracy and F1 after
// inverting predictions to IC50 and applying the 500 nM threshold.
package score

import (
	"fmt"
	"math"

	"github.com/mhcbind/mhcbind/affinity"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Metrics holds the classification scores for one set of predictions.
//
// AUCDefined is false when the truth labels are all one class; ROC is
// meaningless there, so AUC is NaN and the condition is reported rather than
// raised. F1 follows the usual zero conventions: precision or recall with a
// zero denominator is 0, and F1 with precision+recall == 0 is 0, never NaN.
type Metrics struct {
	AUC        float64
	AUCDefined bool
	Accuracy   float64

	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
}

// Predictions scores continuous regression outputs in [0, 1] against binary
// binder truth labels. maxIC50 must match the value the predictions were
// trained against, since it drives the inverse transform.
func Predictions(yPred []float64, truth []bool, maxIC50 float64) (Metrics, error) {
	if len(yPred) != len(truth) {
		return Metrics{}, fmt.Errorf("got %d predictions but %d truth labels", len(yPred), len(truth))
	}
	if len(yPred) == 0 {
		return Metrics{}, fmt.Errorf("no predictions to score")
	}

	m := Metrics{
		AUC: math.NaN(),
	}

	if mixed(truth) {
		// ROC wants ascending y with aligned classes.
		y := append([]float64(nil), yPred...)
		classes := append([]bool(nil), truth...)
		stat.SortWeightedLabeled(y, classes, nil)

		tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
		m.AUC = integrate.Trapezoidal(fpr, tpr)
		m.AUCDefined = true
	}

	labelPred := make([]bool, len(yPred))
	for i, y := range yPred {
		labelPred[i] = affinity.IsBinder(affinity.Inverse(y, maxIC50))
	}

	agree := 0
	for i := range truth {
		switch {
		case truth[i] && labelPred[i]:
			m.TruePositives++
		case !truth[i] && labelPred[i]:
			m.FalsePositives++
		case truth[i] && !labelPred[i]:
			m.FalseNegatives++
		}
		if truth[i] == labelPred[i] {
			agree++
		}
	}
	m.Accuracy = float64(agree) / float64(len(truth))

	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m, nil
}

// mixed reports whether both classes occur in the labels.
func mixed(labels []bool) bool {
	var sawTrue, sawFalse bool
	for _, l := range labels {
		if l {
			sawTrue = true
		} else {
			sawFalse = true
		}
	}
	return sawTrue && sawFalse
}
