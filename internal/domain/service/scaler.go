package service

import "fmt"

// StandardScaler standardises numeric columns as (x - mean) / scale.
type StandardScaler struct {
	Columns []string
	Mean    []float64
	Scale   []float64
}

// NewStandardScaler checks that the three slices line up.
func NewStandardScaler(columns []string, mean, scale []float64) (*StandardScaler, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("scaler has no columns")
	}
	if len(mean) != len(columns) || len(scale) != len(columns) {
		return nil, fmt.Errorf("scaler shape mismatch: %d columns, %d means, %d scales",
			len(columns), len(mean), len(scale))
	}
	return &StandardScaler{Columns: columns, Mean: mean, Scale: scale}, nil
}

// Transform scales every scaler column found in values. A missing column is
// an error. Zero scale leaves the centred value unscaled.
func (s *StandardScaler) Transform(values map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(s.Columns))
	for i, c := range s.Columns {
		x, ok := values[c]
		if !ok {
			return nil, fmt.Errorf("scaler column %q missing from input", c)
		}
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[c] = (x - s.Mean[i]) / scale
	}
	return out, nil
}
