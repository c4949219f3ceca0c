package features

import (
	"slices"

	"github.com/cockroachdb/errors"

	"urbannest/internal/model"
)

// FeatureMap is a flat mapping from feature column name to value
type FeatureMap map[string]float64

// Assemble turns raw inputs and resolved coordinates into the flat numeric
// feature mapping the models were trained on. It performs no I/O.
// Bounds are not checked here; callers run Validate first.
func Assemble(in model.PropertyInput, coords model.Coordinates) (FeatureMap, error) {
	ageYears, ok := lookup(PropertyAgeOptions, in.PropertyAge)
	if !ok {
		return nil, errors.Newf("unknown property age %q", in.PropertyAge)
	}
	areaType, ok := lookup(AreaTypeOptions, in.AreaType)
	if !ok {
		return nil, errors.Newf("unknown area type %q", in.AreaType)
	}
	furnishing, ok := lookup(FurnishingOptions, in.Furnishing)
	if !ok {
		return nil, errors.Newf("unknown furnishing level %q", in.Furnishing)
	}

	m := FeatureMap{
		ColBHK:                 float64(in.BHK),
		ColArea:                float64(in.Area),
		ColBathrooms:           float64(in.Bathrooms),
		ColBalcony:             float64(in.Balcony),
		ColFloor:               float64(in.Floor),
		ColTotalFloors:         float64(in.TotalFloors),
		ColPropertyAgeYears:    ageYears,
		ColAreaTypeEncoded:     areaType,
		ColFurnishingLevelCode: furnishing,
		ColFacilityPremium:     float64(PremiumCount(in.PremiumFacilities)),
		ColLatitude:            coords.Latitude,
		ColLongitude:           coords.Longitude,
		ColFloorRatio:          FloorRatio(in.Floor, in.TotalFloors),
	}
	for _, flag := range AmenityFlags {
		m[flag] = boolToFloat(in.Amenities[flag])
	}
	return m, nil
}

// FloorRatio is floor / total floors; within (0, 1] for valid inputs
func FloorRatio(floor, totalFloors int) float64 {
	return float64(floor) / float64(totalFloors)
}

// PremiumCount counts the distinct selected items that belong to the premium facility list
func PremiumCount(selected []string) int {
	seen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		if slices.Contains(PremiumFacilities, s) {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
