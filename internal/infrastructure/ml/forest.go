package ml

import (
	"fmt"
)

const leaf = -1

// Tree is one flattened decision tree in the layout scikit-learn exposes on
// tree_: node i splits on Feature[i] at Threshold[i], x <= threshold goes
// to ChildrenLeft[i]. Value[i] holds the class-1 probability at leaves.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// TreeEnsemble averages the leaf probabilities of its trees, like a random
// forest's predict_proba.
type TreeEnsemble struct {
	ModelVersion string `json:"version"`
	Features     int    `json:"n_features"`
	Trees        []Tree `json:"trees"`
}

func (m *TreeEnsemble) validate() error {
	if m.Features <= 0 {
		return fmt.Errorf("ml: tree ensemble n_features must be positive")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("ml: tree ensemble has no trees")
	}
	for i, t := range m.Trees {
		if err := t.validate(m.Features); err != nil {
			return fmt.Errorf("ml: tree %d: %w", i, err)
		}
	}
	return nil
}

func (t Tree) validate(features int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := range n {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf || r == leaf {
			if l != r {
				return fmt.Errorf("node %d has a single child", i)
			}
			if v := t.Value[i]; v < 0 || v > 1 {
				return fmt.Errorf("leaf %d value %v outside [0,1]", i, v)
			}
			continue
		}
		// Children always come after their parent in sklearn's layout,
		// which also rules out cycles.
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= features {
			return fmt.Errorf("node %d splits on feature %d of %d", i, f, features)
		}
	}
	return nil
}

func (t Tree) predict(features []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if features[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// PredictProba returns the mean class-1 leaf probability over all trees.
func (m *TreeEnsemble) PredictProba(features []float64) (float64, error) {
	if err := checkWidth(features, m.Features); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range m.Trees {
		sum += t.predict(features)
	}
	return sum / float64(len(m.Trees)), nil
}

func (m *TreeEnsemble) Version() string  { return m.ModelVersion }
func (m *TreeEnsemble) NumFeatures() int { return m.Features }
