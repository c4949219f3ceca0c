package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbannest/internal/model"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.PropertyInput)
		field  string
	}{
		{"defaults", func(*model.PropertyInput) {}, ""},
		{"bhk too large", func(in *model.PropertyInput) { in.BHK = 7 }, "bhk"},
		{"area below minimum", func(in *model.PropertyInput) { in.Area = 349 }, "area"},
		{"area at maximum", func(in *model.PropertyInput) { in.Area = 6000 }, ""},
		{"single bathroom", func(in *model.PropertyInput) { in.Bathrooms = 1 }, "bathrooms"},
		{"four balconies", func(in *model.PropertyInput) { in.Balcony = 4 }, "balcony"},
		{"single storey", func(in *model.PropertyInput) { in.TotalFloors = 1; in.Floor = 1 }, "total_floors"},
		{"floor above total", func(in *model.PropertyInput) { in.Floor = 5 }, "floor"},
		{"floor zero", func(in *model.PropertyInput) { in.Floor = 0 }, "floor"},
		{"top floor", func(in *model.PropertyInput) { in.Floor = 4 }, ""},
		{"unknown age", func(in *model.PropertyInput) { in.PropertyAge = "ancient" }, "property_age"},
		{"unknown area type", func(in *model.PropertyInput) { in.AreaType = "Plot Area" }, "area_type"},
		{"unknown furnishing", func(in *model.PropertyInput) { in.Furnishing = "" }, "furnishing"},
		{"unknown amenity", func(in *model.PropertyInput) { in.Amenities["Helipad"] = true }, "amenities"},
		{"unknown facility", func(in *model.PropertyInput) { in.PremiumFacilities = []string{"Helipad"} }, "premium_facilities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInput()
			tt.mutate(&in)

			err := Validate(&in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_CanonicalizesFacilities(t *testing.T) {
	in := DefaultInput()
	in.PremiumFacilities = []string{"swimming pool", "Pool", "wifi", "Club house / Community Center"}

	require.NoError(t, Validate(&in))
	assert.Equal(t, []string{"Swimming Pool", "Internet/wi-fi connectivity", "Club house / Community Center"}, in.PremiumFacilities)
}
