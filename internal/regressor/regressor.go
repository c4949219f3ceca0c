package regressor

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ErrFeatureCount is returned when an input row has the wrong width
var ErrFeatureCount = errors.New("feature count mismatch")

// Regressor evaluates a decoded artifact. It is immutable and safe for
// concurrent use.
type Regressor struct {
	art Artifact
}

// Kind returns the model kind slug recorded in the artifact
func (r *Regressor) Kind() string { return r.art.Kind }

// Type returns the estimator type, e.g. "xgboost"
func (r *Regressor) Type() string { return r.art.Estimator.Type }

// NumFeatures returns the row width the pipeline was fitted on
func (r *Regressor) NumFeatures() int { return r.art.NFeatures }

// FeatureImportances returns the fitted global importances, aligned with the
// input columns. Linear estimators have none.
func (r *Regressor) FeatureImportances() ([]float64, bool) {
	fi := r.art.Estimator.FeatureImportances
	if r.art.Estimator.Type == TypeLinear || len(fi) == 0 {
		return nil, false
	}
	return append([]float64(nil), fi...), true
}

// Predict runs one row through the pipeline. NaN marks a missing value;
// it is imputed when the pipeline has an imputer and otherwise follows the
// split default in trees. The row is not modified.
func (r *Regressor) Predict(x []float64) (float64, error) {
	if len(x) != r.art.NFeatures {
		return 0, errors.Wrapf(ErrFeatureCount, "got %d values, want %d", len(x), r.art.NFeatures)
	}

	row := append([]float64(nil), x...)
	if imp := r.art.Imputer; imp != nil {
		for i, v := range row {
			if math.IsNaN(v) {
				row[i] = imp.Statistics[i]
			}
		}
	}
	if sc := r.art.Scaler; sc != nil {
		for i := range row {
			row[i] = (row[i] - sc.Mean[i]) / sc.Scale[i]
		}
	}

	est := r.art.Estimator
	switch est.Type {
	case TypeLinear:
		y := est.Intercept
		for i, c := range est.Coef {
			y += c * row[i]
		}
		return y, nil
	case TypeForest:
		var sum float64
		for _, t := range est.Trees {
			sum += t.eval(row)
		}
		return sum / float64(len(est.Trees)), nil
	case TypeBoosting:
		var sum float64
		for _, t := range est.Trees {
			sum += t.eval(row)
		}
		return est.Init + est.LearningRate*sum, nil
	case TypeXGBoost:
		y := est.BaseScore
		for _, t := range est.Trees {
			y += t.eval(row)
		}
		return y, nil
	default:
		return 0, errors.Newf("unsupported estimator type %q", est.Type)
	}
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.IsLeaf() {
			return node.Value
		}
		v := x[node.Feature]
		var left bool
		switch {
		case math.IsNaN(v):
			left = node.DefaultLeft
		case t.Strict:
			left = v < node.Threshold
		default:
			left = v <= node.Threshold
		}
		if left {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}
