package features

import (
	"math"

	"urbannest/internal/model"
)

// Vector is a single feature row aligned with a model's expected columns.
// Columns that the assembler did not produce hold NaN.
type Vector struct {
	Columns []string
	Values  []float64
}

// Reindex aligns m with columns: order follows columns, absent columns become
// NaN and fields not listed in columns are dropped.
func (m FeatureMap) Reindex(columns []string) Vector {
	v := Vector{
		Columns: append([]string(nil), columns...),
		Values:  make([]float64, len(columns)),
	}
	for i, col := range columns {
		value, ok := m[col]
		if !ok {
			value = math.NaN()
		}
		v.Values[i] = value
	}
	return v
}

// get returns the value of column and whether the column is present in the vector
func (v Vector) get(column string) (float64, bool) {
	for i, col := range v.Columns {
		if col == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Missing lists the columns holding placeholders
func (v Vector) Missing() []string {
	var missing []string
	for i, value := range v.Values {
		if math.IsNaN(value) {
			missing = append(missing, v.Columns[i])
		}
	}
	return missing
}

// View renders the vector for JSON output; placeholders become null
func (v Vector) View() []model.FeatureValue {
	out := make([]model.FeatureValue, len(v.Columns))
	for i, col := range v.Columns {
		out[i] = model.FeatureValue{Name: col}
		if !math.IsNaN(v.Values[i]) {
			value := v.Values[i]
			out[i].Value = &value
		}
	}
	return out
}

// Float32 converts the values for vector storage; placeholders become 0
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v.Values))
	for i, value := range v.Values {
		if !math.IsNaN(value) {
			out[i] = float32(value)
		}
	}
	return out
}
