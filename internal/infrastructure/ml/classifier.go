// Package ml holds classifiers decoded from exported model artifacts.
package ml

import (
	"encoding/json"
	"fmt"

	"github.com/streamwise/churn/internal/domain/port"
)

// Model types understood by Decode.
const (
	TypeLogisticRegression = "logistic_regression"
	TypeTreeEnsemble       = "tree_ensemble"
	TypeRandomForest       = "random_forest"
)

type envelope struct {
	Type string `json:"type"`
}

// Decode builds a classifier from a model.json document, dispatching on its
// "type" field.
func Decode(data []byte) (port.Classifier, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ml: decode model envelope: %w", err)
	}

	switch env.Type {
	case TypeLogisticRegression:
		var m LogisticRegression
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("ml: decode logistic regression: %w", err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return &m, nil
	case TypeTreeEnsemble, TypeRandomForest:
		var m TreeEnsemble
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("ml: decode tree ensemble: %w", err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return &m, nil
	case "":
		return nil, fmt.Errorf("ml: model type is missing")
	default:
		return nil, fmt.Errorf("ml: unsupported model type %q", env.Type)
	}
}

// TypeOf reports the model type name of a decoded classifier.
func TypeOf(c port.Classifier) string {
	switch c.(type) {
	case *LogisticRegression:
		return TypeLogisticRegression
	case *TreeEnsemble:
		return TypeTreeEnsemble
	default:
		return fmt.Sprintf("%T", c)
	}
}

func checkWidth(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("ml: expected %d features, got %d", want, len(features))
	}
	return nil
}
