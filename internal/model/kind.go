package model

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind identifies one of the supported regression algorithms
type Kind int

const (
	KindElasticNet Kind = iota
	KindRandomForest
	KindGradientBoosting
	KindXGBoost
)

// ErrUnknownKind is returned when a model name matches no supported kind
var ErrUnknownKind = errors.New("unknown model kind")

// Metrics are the hold-out scores recorded when the models were trained.
// RMSE is expressed in the prediction unit (100,000 INR).
type Metrics struct {
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

type kindSpec struct {
	name               string
	slug               string
	supportsImportance bool
	metrics            Metrics
}

var kindSpecs = [...]kindSpec{
	KindElasticNet:       {name: "ElasticNet", slug: "elasticnet", supportsImportance: false, metrics: Metrics{RMSE: 36.35, R2: 0.7733}},
	KindRandomForest:     {name: "Random Forest", slug: "random_forest", supportsImportance: true, metrics: Metrics{RMSE: 35.48, R2: 0.7840}},
	KindGradientBoosting: {name: "Gradient Boosting", slug: "gradient_boosting", supportsImportance: true, metrics: Metrics{RMSE: 31.07, R2: 0.8344}},
	KindXGBoost:          {name: "XGBoost", slug: "xgboost", supportsImportance: true, metrics: Metrics{RMSE: 30.30, R2: 0.8425}},
}

// AllKinds returns every supported kind in display order
func AllKinds() []Kind {
	return []Kind{KindElasticNet, KindRandomForest, KindGradientBoosting, KindXGBoost}
}

func (k Kind) spec() kindSpec {
	if k < 0 || int(k) >= len(kindSpecs) {
		return kindSpec{name: "Unknown", slug: "unknown"}
	}
	return kindSpecs[k]
}

// Name returns the display name, e.g. "Random Forest"
func (k Kind) Name() string { return k.spec().name }

// Slug returns the identifier used in artifact file names and config keys
func (k Kind) Slug() string { return k.spec().slug }

// SupportsImportance reports whether the kind exposes built-in feature importances.
// Linear models never do; coefficient-based explanations are not offered.
func (k Kind) SupportsImportance() bool { return k.spec().supportsImportance }

// Metrics returns the static quality metrics of the kind
func (k Kind) Metrics() Metrics { return k.spec().metrics }

func (k Kind) String() string { return k.Name() }

// ParseKind resolves a display name or slug, case-insensitively
func ParseKind(s string) (Kind, error) {
	needle := normalizeKindName(s)
	for _, k := range AllKinds() {
		if needle == normalizeKindName(k.Name()) || needle == normalizeKindName(k.Slug()) {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

func normalizeKindName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// MarshalText encodes the kind as its display name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.Name()), nil
}

// UnmarshalText accepts a display name or slug
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
