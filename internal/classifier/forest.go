package classifier

import "fmt"

// Tree is one decision tree of a forest export. Node 0 is the root; a node
// is a leaf when its left child is -1. Value holds the per-class sample counts
// (or fractions) of each node, flattened from the exporter's
// (n_nodes, 1, n_classes) layout.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type RandomForest struct {
	NFeatures int    `json:"n_features"`
	Classes   []int  `json:"classes"`
	Trees     []Tree `json:"trees"`
}

func (f *RandomForest) Name() string            { return VariantRandomForest }
func (f *RandomForest) RequiresEmbedding() bool { return true }
func (f *RandomForest) NumFeatures() int        { return f.NFeatures }

// Predict averages the normalized leaf distributions of all trees.
func (f *RandomForest) Predict(in Input) (Prediction, error) {
	if err := checkDimension(in.Embedding, f.NFeatures); err != nil {
		return Prediction{}, err
	}

	probs := make([]float64, len(f.Classes))
	for t := range f.Trees {
		leaf := f.Trees[t].leafFor(in.Embedding)
		total := 0.0
		for _, v := range leaf {
			total += v
		}
		for i, v := range leaf {
			probs[i] += v / total
		}
	}
	for i := range probs {
		probs[i] /= float64(len(f.Trees))
	}

	return Prediction{Label: labelFor(f.Classes, probs), Probabilities: probs}, nil
}

func (t *Tree) leafFor(x []float32) []float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if float64(x[t.Feature[node]]) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Validate checks the structural invariants Predict relies on: consistent
// array lengths, in-range features, children that always point forward and
// leaves with a positive class distribution.
func (f *RandomForest) Validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("%w: n_features must be positive", ErrInvalidModel)
	}
	if err := validateClasses(f.Classes); err != nil {
		return err
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: forest has no trees", ErrInvalidModel)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("%w: empty tree", ErrInvalidModel)
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("%w: node arrays differ in length", ErrInvalidModel)
	}

	for node := 0; node < n; node++ {
		left, right := t.ChildrenLeft[node], t.ChildrenRight[node]
		if left == -1 {
			if right != -1 {
				return fmt.Errorf("%w: node %d has only one child", ErrInvalidModel, node)
			}
			if err := validateLeaf(t.Value[node], nClasses); err != nil {
				return fmt.Errorf("node %d: %w", node, err)
			}
			continue
		}
		if left <= node || left >= n || right <= node || right >= n {
			return fmt.Errorf("%w: node %d has out-of-order children", ErrInvalidModel, node)
		}
		if f := t.Feature[node]; f < 0 || f >= nFeatures {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrInvalidModel, node, f)
		}
		if !isFinite(t.Threshold[node]) {
			return fmt.Errorf("%w: node %d has a non-finite threshold", ErrInvalidModel, node)
		}
	}
	return nil
}

func validateLeaf(value []float64, nClasses int) error {
	if len(value) != nClasses {
		return fmt.Errorf("%w: leaf has %d class values, want %d", ErrInvalidModel, len(value), nClasses)
	}
	total := 0.0
	for _, v := range value {
		if v < 0 || !isFinite(v) {
			return fmt.Errorf("%w: leaf value %v", ErrInvalidModel, v)
		}
		total += v
	}
	if total <= 0 {
		return fmt.Errorf("%w: leaf has no samples", ErrInvalidModel)
	}
	return nil
}
