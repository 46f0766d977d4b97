package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is a fitted binary logistic model.
type LogisticRegression struct {
	ModelVersion string    `json:"version"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
}

func (m *LogisticRegression) validate() error {
	if len(m.Coef) == 0 {
		return fmt.Errorf("ml: logistic regression has no coefficients")
	}
	for i, c := range m.Coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("ml: coefficient %d is not finite", i)
		}
	}
	return nil
}

// PredictProba returns sigmoid(w.x + b).
func (m *LogisticRegression) PredictProba(features []float64) (float64, error) {
	if err := checkWidth(features, len(m.Coef)); err != nil {
		return 0, err
	}
	z := m.Intercept
	for i, w := range m.Coef {
		z += w * features[i]
	}
	return sigmoid(z), nil
}

func (m *LogisticRegression) Version() string  { return m.ModelVersion }
func (m *LogisticRegression) NumFeatures() int { return len(m.Coef) }

// sigmoid is evaluated in the form that cannot overflow for large |z|.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
