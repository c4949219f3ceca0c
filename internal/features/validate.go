package features

import (
	"fmt"
	"slices"

	"urbannest/internal/model"
	"urbannest/internal/utils"
)

// ValidationError reports an input field outside the accepted domain
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks in against the bounds and enumerations of the form and
// canonicalizes PremiumFacilities in place (aliases resolved, duplicates removed).
// It returns a *ValidationError for the first offending field.
func Validate(in *model.PropertyInput) error {
	if !slices.Contains(BHKOptions, in.BHK) {
		return invalid("bhk", "must be one of %v, got %d", BHKOptions, in.BHK)
	}
	if in.Area < AreaRange.Min || in.Area > AreaRange.Max {
		return invalid("area", "must be within %d..%d sq.ft, got %d", AreaRange.Min, AreaRange.Max, in.Area)
	}
	if !slices.Contains(BathroomOptions, in.Bathrooms) {
		return invalid("bathrooms", "must be one of %v, got %d", BathroomOptions, in.Bathrooms)
	}
	if !slices.Contains(BalconyOptions, in.Balcony) {
		return invalid("balcony", "must be one of %v, got %d", BalconyOptions, in.Balcony)
	}
	if in.TotalFloors < TotalFloorsRange.Min || in.TotalFloors > TotalFloorsRange.Max {
		return invalid("total_floors", "must be within %d..%d, got %d", TotalFloorsRange.Min, TotalFloorsRange.Max, in.TotalFloors)
	}
	if in.Floor < 1 || in.Floor > in.TotalFloors {
		return invalid("floor", "must be within 1..%d, got %d", in.TotalFloors, in.Floor)
	}
	if _, ok := lookup(PropertyAgeOptions, in.PropertyAge); !ok {
		return invalid("property_age", "unknown label %q", in.PropertyAge)
	}
	if _, ok := lookup(AreaTypeOptions, in.AreaType); !ok {
		return invalid("area_type", "unknown label %q", in.AreaType)
	}
	if _, ok := lookup(FurnishingOptions, in.Furnishing); !ok {
		return invalid("furnishing", "unknown label %q", in.Furnishing)
	}
	for name := range in.Amenities {
		if !slices.Contains(AmenityFlags, name) {
			return invalid("amenities", "unknown amenity %q", name)
		}
	}

	facilities, err := NormalizeFacilities(in.PremiumFacilities)
	if err != nil {
		return err
	}
	in.PremiumFacilities = facilities
	return nil
}

// NormalizeFacilities maps each entry to its canonical premium facility label,
// preserving first-seen order and dropping duplicates.
func NormalizeFacilities(selected []string) ([]string, error) {
	out := make([]string, 0, len(selected))
	for _, term := range selected {
		canonical, ok := utils.MatchFacility(term, PremiumFacilities)
		if !ok {
			return nil, invalid("premium_facilities", "unknown facility %q", term)
		}
		if !slices.Contains(out, canonical) {
			out = append(out, canonical)
		}
	}
	return out, nil
}
