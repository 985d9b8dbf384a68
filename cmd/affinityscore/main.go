// affinityscore evaluates model predictions against measured affinities. It
// expects a CSV with columns prediction (regression output in [0,1]) and
// measurement_value (measured IC50, nM); truth labels come from the 500 nM
// binder threshold.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/mhcbind/mhcbind/affinity"
	"github.com/mhcbind/mhcbind/score"
)

type predictionRow struct {
	Prediction       float64 `csv:"prediction"`
	MeasurementValue float64 `csv:"measurement_value"`
}

func main() {
	var predFile string
	var maxIC50 float64

	flag.StringVar(&predFile, "predictions", "", "Path to CSV with columns prediction, measurement_value")
	flag.Float64Var(&maxIC50, "maxic50", 50000, "IC50 ceiling the model was trained against")

	flag.Parse()

	if predFile == "" {
		log.Fatalln("Please provide -predictions")
	}

	if err := run(predFile, maxIC50); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}

func run(predFile string, maxIC50 float64) error {
	f, err := os.Open(predFile)
	if err != nil {
		return err
	}
	defer f.Close()

	records := []*predictionRow{}
	if err := gocsv.Unmarshal(f, &records); err != nil {
		return err
	}

	yPred := make([]float64, len(records))
	measured := make([]float64, len(records))
	for i, record := range records {
		yPred[i] = record.Prediction
		measured[i] = record.MeasurementValue
	}

	m, err := score.Predictions(yPred, affinity.BinderLabels(measured), maxIC50)
	if err != nil {
		return err
	}

	if m.AUCDefined {
		fmt.Printf("auc: %.4f\n", m.AUC)
	} else {
		fmt.Println("auc: undefined (truth labels are all one class)")
	}
	fmt.Printf("accuracy: %.4f\n", m.Accuracy)
	fmt.Printf("f1: %.4f (precision %.4f, recall %.4f)\n", m.F1, m.Precision, m.Recall)
	fmt.Printf("tp=%d fp=%d fn=%d\n", m.TruePositives, m.FalsePositives, m.FalseNegatives)

	return nil
}
