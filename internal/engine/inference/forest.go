package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

// Forest is a tree-ensemble classifier evaluated in pure Go. Each tree uses
// the flat node arrays of a fitted decision tree: node i splits on
// Feature[i] at Threshold[i], or is a leaf when ChildrenLeft[i] == -1.
type Forest struct {
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

// Tree is a single fitted decision tree.
type Tree struct {
	ChildrenLeft  []int        `json:"children_left"`
	ChildrenRight []int        `json:"children_right"`
	Feature       []int        `json:"feature"`
	Threshold     []float64    `json:"threshold"`
	Value         [][2]float64 `json:"value"`
}

const leaf = -1

// LoadForest reads a JSON tree ensemble from path.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forest: %w", err)
	}
	return ParseForest(data)
}

// ParseForest decodes and validates a JSON tree ensemble.
func ParseForest(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("forest: decoding: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Forest) validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("forest: n_features must be positive, got %d", f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest: no trees")
	}
	for ti, t := range f.Trees {
		n := len(t.ChildrenLeft)
		if n == 0 {
			return fmt.Errorf("forest: tree %d is empty", ti)
		}
		if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
			return fmt.Errorf("forest: tree %d has mismatched node arrays", ti)
		}
		for i := 0; i < n; i++ {
			l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
			if l == leaf {
				if r != leaf {
					return fmt.Errorf("forest: tree %d node %d has only one child", ti, i)
				}
				if t.Value[i][0] < 0 || t.Value[i][1] < 0 {
					return fmt.Errorf("forest: tree %d node %d has negative class weight", ti, i)
				}
				continue
			}
			// Children always come after their parent, so traversal terminates.
			if l <= i || l >= n || r <= i || r >= n {
				return fmt.Errorf("forest: tree %d node %d has invalid children (%d, %d)", ti, i, l, r)
			}
			if t.Feature[i] < 0 || t.Feature[i] >= f.NFeatures {
				return fmt.Errorf("forest: tree %d node %d splits on feature %d outside [0, %d)", ti, i, t.Feature[i], f.NFeatures)
			}
		}
	}
	return nil
}

// InputDim returns the number of features the forest was fitted on.
func (f *Forest) InputDim() int {
	return f.NFeatures
}

// PredictProba averages the normalized positive-class weight of the leaf each
// tree routes vec to. Split tests compare in float32, matching how the
// thresholds were fitted.
func (f *Forest) PredictProba(vec []float64) (float64, error) {
	if len(vec) != f.NFeatures {
		return 0, fmt.Errorf("forest: input length %d != n_features %d", len(vec), f.NFeatures)
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.leafProba(vec)
	}
	return sum / float64(len(f.Trees)), nil
}

func (t *Tree) leafProba(vec []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if float64(float32(vec[t.Feature[node]])) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	v := t.Value[node]
	total := v[0] + v[1]
	if total == 0 {
		return 0
	}
	return v[1] / total
}

// Close is a no-op.
func (f *Forest) Close() error {
	return nil
}
