package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pgvector/pgvector-go"
)

// PredictionRecord is one stored valuation in the prediction history
type PredictionRecord struct {
	ID             string          `json:"id" db:"id"`
	ModelKind      string          `json:"model" db:"model_kind"` // kind slug
	Input          JSONMap         `json:"input" db:"input"`
	Latitude       float64         `json:"latitude" db:"latitude"`
	Longitude      float64         `json:"longitude" db:"longitude"`
	Geohash        string          `json:"geohash" db:"geohash"`
	GeocodeOutcome string          `json:"geocode_outcome" db:"geocode_outcome"`
	Prediction     float64         `json:"prediction" db:"prediction"`
	Features       pgvector.Vector `json:"-" db:"features"`
	Feedback       *string         `json:"feedback,omitempty" db:"feedback"`
	ActualPrice    *float64        `json:"actual_price,omitempty" db:"actual_price"` // 100,000 INR units
	Distance       *float64        `json:"distance,omitempty" db:"distance"`         // only set by similarity queries
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Feedback verdicts a user can leave on a prediction
const (
	FeedbackAccurate = "accurate"
	FeedbackTooHigh  = "too_high"
	FeedbackTooLow   = "too_low"
)

// FeedbackRequest is the body of POST /api/v1/feedback
type FeedbackRequest struct {
	PredictionID string   `json:"prediction_id" binding:"required,uuid"`
	Verdict      string   `json:"verdict" binding:"required,oneof=accurate too_high too_low"`
	ActualPrice  *float64 `json:"actual_price,omitempty" binding:"omitempty,gt=0"` // 100,000 INR units
}

// FeedbackResponse acknowledges stored feedback
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HistoryResponse lists stored predictions
type HistoryResponse struct {
	Predictions []PredictionRecord `json:"predictions"`
	Total       int                `json:"total"`
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.Newf("unsupported JSONMap source type %T", value)
	}
}

// ToJSONMap converts any JSON-encodable value into a JSONMap
func ToJSONMap(v interface{}) (JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal input")
	}
	var m JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal input")
	}
	return m, nil
}
