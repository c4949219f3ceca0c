package model

import "encoding/json"

// ImportanceEntry is one row of the global feature-importance report
type ImportanceEntry struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureValue is one aligned model input; Value is nil when the column was not produced
type FeatureValue struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// MetricsView presents the static quality metrics of the selected model
type MetricsView struct {
	RMSE          float64 `json:"rmse"` // 100,000 INR units
	RMSEFormatted string  `json:"rmse_formatted"`
	R2            float64 `json:"r2"`
	R2Formatted   string  `json:"r2_formatted"`
}

// PredictionResponse is returned for every successful valuation
type PredictionResponse struct {
	ID             string            `json:"id"`
	Model          Kind              `json:"model"`
	Prediction     float64           `json:"prediction"` // 100,000 INR units
	PriceINR       float64           `json:"price_inr"`
	PriceFormatted string            `json:"price_formatted"`
	Metrics        MetricsView       `json:"metrics"`
	Location       Resolution        `json:"location"`
	Features       []FeatureValue    `json:"features"`
	Importances    []ImportanceEntry `json:"importances,omitempty"`
	Took           int64             `json:"took_ms"` // Response time in milliseconds
}

// BatchPredictRequest is the body of POST /api/v1/predict/batch.
// Each item is a partial PropertyInput; omitted fields take the form defaults.
type BatchPredictRequest struct {
	Items []json.RawMessage `json:"items" binding:"required,min=1"`
}

// BatchPredictResponse carries one valuation per request item, in order
type BatchPredictResponse struct {
	Predictions []*PredictionResponse `json:"predictions"`
	Total       int                   `json:"total"`
	Took        int64                 `json:"took_ms"`
}

// ModelInfo describes one loaded model
type ModelInfo struct {
	Name               string  `json:"name"`
	Slug               string  `json:"slug"`
	SupportsImportance bool    `json:"supports_importance"`
	Metrics            Metrics `json:"metrics"`
	Columns            int     `json:"columns"`
}

// GeocodeResponse is returned by the standalone address lookup
type GeocodeResponse struct {
	Address  string     `json:"address"`
	Location Resolution `json:"location"`
}

// LabeledValue is one option of a categorical field and its numeric code
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// AmenityOption is one boolean amenity flag and whether it is checked by default
type AmenityOption struct {
	Feature string `json:"feature"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Range is an inclusive numeric bound of an input field
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// OptionsResponse describes the form: enumerations, bounds and defaults
type OptionsResponse struct {
	Models            []ModelInfo      `json:"models"`
	PropertyAge       []LabeledValue   `json:"property_age"`
	AreaType          []LabeledValue   `json:"area_type"`
	Furnishing        []LabeledValue   `json:"furnishing"`
	Amenities         []AmenityOption  `json:"amenities"`
	PremiumFacilities []string         `json:"premium_facilities"`
	BHK               []int            `json:"bhk"`
	Bathrooms         []int            `json:"bathrooms"`
	Balcony           []int            `json:"balcony"`
	Bounds            map[string]Range `json:"bounds"`
	Defaults          PropertyInput    `json:"defaults"`
}
