package service

import (
	"fmt"

	"github.com/okian/cardio/internal/domain/forest"
)

// Evaluation holds classification quality on a labeled sample.
type Evaluation struct {
	Samples   int     `json:"samples"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// Evaluate scores f on rows that are already encoded and scaled.
// Precision and recall are for the positive class and stay 0 when undefined.
func Evaluate(f *forest.Forest, rows [][]float64, labels []int) (Evaluation, error) {
	ev := Evaluation{Samples: len(rows)}
	if len(rows) == 0 {
		return ev, nil
	}
	var correct, truePositive, predictedPositive, actualPositive int
	for i, row := range rows {
		label, _, err := f.Predict(row)
		if err != nil {
			return Evaluation{}, fmt.Errorf("evaluate row %d: %w", i, err)
		}
		if label == labels[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if labels[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}
	ev.Accuracy = float64(correct) / float64(len(rows))
	if predictedPositive > 0 {
		ev.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		ev.Recall = float64(truePositive) / float64(actualPositive)
	}
	return ev, nil
}
