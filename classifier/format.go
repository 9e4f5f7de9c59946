package classifier

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationMessage is shown when the label typed for training is unusable
const ValidationMessage = "Enter a label 0-9 to train."

// Ranked is one class with its probability
type Ranked struct {
	Class int
	Prob  float64
}

// TopK returns the k most probable classes, most probable first. Ties keep
// class order.
func TopK(probs []float64, k int) []Ranked {
	ranked := make([]Ranked, len(probs))
	for i, p := range probs {
		ranked[i] = Ranked{Class: i, Prob: p}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Prob > ranked[j].Prob })
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatPrediction renders a prediction for the result line.
func FormatPrediction(p *Prediction) string {
	if p.Probs == nil {
		return fmt.Sprintf("Prediction: %d  (confidence: %s)", p.Digit, percent(p.Confidence))
	}

	top := TopK(p.Probs, 3)
	parts := make([]string, len(top))
	for i, r := range top {
		parts[i] = fmt.Sprintf("%d:%s", r.Class, percent(r.Prob))
	}
	return fmt.Sprintf("Prediction: %d  (%s)  |  top-3 %s", p.Digit, percent(p.Confidence), strings.Join(parts, "  "))
}

// FormatTrain renders a train acknowledgement.
func FormatTrain(a *TrainAck) string {
	var b strings.Builder
	if a.Message != "" {
		b.WriteString(a.Message)
	} else {
		b.WriteString("Training sample stored.")
	}
	if a.Loss != nil {
		fmt.Fprintf(&b, "  loss=%.3f", *a.Loss)
	}
	if a.Count != nil {
		fmt.Fprintf(&b, "  samples=%d", *a.Count)
	}
	return b.String()
}

// FormatTrainAll renders a batch training report.
func FormatTrainAll(a *TrainAllAck) string {
	return fmt.Sprintf("%s  epochs=%d  avgLoss=%.3f  samples=%d", a.Message, a.Epochs, a.AvgEpochLoss, a.Samples)
}

// FormatError renders any failure for the result line.
func FormatError(err error) string {
	return "Error: " + err.Error()
}
