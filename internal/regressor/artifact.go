package regressor

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// Estimator types
const (
	TypeLinear   = "linear"
	TypeForest   = "forest"
	TypeBoosting = "boosting"
	TypeXGBoost  = "xgboost"
)

// Artifact is the serialized form of a fitted pipeline:
// optional imputer, optional scaler, then the estimator.
type Artifact struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Kind      string    `json:"kind"`
	NFeatures int       `json:"n_features"`
	Imputer   *Imputer  `json:"imputer,omitempty"`
	Scaler    *Scaler   `json:"scaler,omitempty"`
	Estimator Estimator `json:"estimator"`
}

// Imputer replaces missing values with per-column statistics
type Imputer struct {
	Statistics []float64 `json:"statistics"`
}

// Scaler standardizes each column as (x - mean) / scale
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Estimator holds the parameters of the final step. Which fields are
// meaningful depends on Type.
type Estimator struct {
	Type               string    `json:"type"`
	Intercept          float64   `json:"intercept"`
	Coef               []float64 `json:"coef,omitempty"`
	Init               float64   `json:"init"`
	LearningRate       float64   `json:"learning_rate"`
	BaseScore          float64   `json:"base_score"`
	Trees              []Tree    `json:"trees,omitempty"`
	FeatureImportances []float64 `json:"feature_importances,omitempty"`
}

// Tree is a flat array of nodes rooted at index 0.
// Strict trees send x < threshold left; otherwise x <= threshold goes left.
type Tree struct {
	Strict bool   `json:"strict"`
	Nodes  []Node `json:"nodes"`
}

// Node is a split or, when Left and Right are -1, a leaf
type Node struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	Left        int     `json:"left"`
	Right       int     `json:"right"`
	DefaultLeft bool    `json:"default_left"`
	Value       float64 `json:"value"`
}

// IsLeaf reports whether the node terminates the walk
func (n Node) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// Load reads and decodes an artifact file
func Load(path string) (*Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read model artifact %s", path)
	}
	r, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load model artifact %s", path)
	}
	return r, nil
}

// Decode validates data against the artifact schema, decodes it and checks
// that every vector and index is consistent with n_features.
func Decode(data []byte) (*Regressor, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, errors.Wrap(err, "decode artifact")
	}
	if err := art.check(); err != nil {
		return nil, err
	}
	return &Regressor{art: art}, nil
}

func (a *Artifact) check() error {
	n := a.NFeatures
	if a.Imputer != nil && len(a.Imputer.Statistics) != n {
		return errors.Newf("imputer has %d statistics, want %d", len(a.Imputer.Statistics), n)
	}
	if a.Scaler != nil {
		if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
			return errors.Newf("scaler has %d means and %d scales, want %d", len(a.Scaler.Mean), len(a.Scaler.Scale), n)
		}
	}

	est := a.Estimator
	if est.Type == TypeLinear {
		if len(est.Coef) != n {
			return errors.Newf("linear estimator has %d coefficients, want %d", len(est.Coef), n)
		}
		return nil
	}

	if len(est.FeatureImportances) != n {
		return errors.Newf("estimator has %d feature importances, want %d", len(est.FeatureImportances), n)
	}
	for i, tree := range est.Trees {
		if err := tree.check(n); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
	}
	return nil
}

// check requires children to come after their parent, which also rules out cycles
func (t Tree) check(nFeatures int) error {
	for i, node := range t.Nodes {
		if node.IsLeaf() {
			continue
		}
		if node.Feature < 0 || node.Feature >= nFeatures {
			return errors.Newf("node %d splits on feature %d, have %d", i, node.Feature, nFeatures)
		}
		for _, child := range []int{node.Left, node.Right} {
			if child <= i || child >= len(t.Nodes) {
				return errors.Newf("node %d has child %d out of range", i, child)
			}
		}
	}
	return nil
}
