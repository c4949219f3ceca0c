package features

import (
	"strings"

	"urbannest/internal/model"
)

// Feature column names produced by the assembler
const (
	ColBHK                 = "BHK"
	ColArea                = "Area"
	ColBathrooms           = "Bathrooms"
	ColBalcony             = "Balcony"
	ColFloor               = "Floor"
	ColTotalFloors         = "Total_Floors"
	ColPropertyAgeYears    = "Property_Age_Years"
	ColAreaTypeEncoded     = "Area_Type_Encoded"
	ColFurnishingLevelCode = "Furnishing_Level_Code"
	ColFacilityPremium     = "Facility_Premium"
	ColLatitude            = "Latitude"
	ColLongitude           = "Longitude"
	ColFloorRatio          = "Floor_Ratio"
)

// PropertyAgeOptions maps the age bucket to a "years" proxy.
// Pre-construction states are negative.
var PropertyAgeOptions = []model.LabeledValue{
	{Label: "0 to 1 Year Old", Value: 0.5},
	{Label: "1 to 5 Year Old", Value: 3},
	{Label: "5 to 10 Year Old", Value: 7.5},
	{Label: "10+ Year Old", Value: 12.5},
	{Label: "Within 3 months", Value: -0.25},
	{Label: "Within 6 months", Value: -0.5},
	{Label: "Under Construction", Value: -1.0},
}

// AreaTypeOptions maps the measured area type to an ordinal code
var AreaTypeOptions = []model.LabeledValue{
	{Label: "Carpet Area", Value: 0},
	{Label: "Built-up Area", Value: 1},
	{Label: "Super Built-up Area", Value: 2},
}

// FurnishingOptions maps the furnishing level to an ordinal code
var FurnishingOptions = []model.LabeledValue{
	{Label: "Unfurnished", Value: 0},
	{Label: "Semi-Furnished", Value: 1},
	{Label: "Fully-Furnished", Value: 2},
}

// AmenityFlags are the boolean amenity features, in form order
var AmenityFlags = []string{
	"Store_Room", "Study_Room", "Pooja_Room", "Servant_Room", "Lift",
	"Maintenance", "WaterStorage", "VaastuCompliant", "FireSecurity",
	"VisitorParking", "Intercom", "Park", "AiryRooms", "Gym",
}

var defaultAmenities = map[string]bool{
	"Lift":           true,
	"Maintenance":    true,
	"WaterStorage":   true,
	"VisitorParking": true,
	"Park":           true,
	"AiryRooms":      true,
}

// PremiumFacilities is the multi-select list counted into Facility_Premium
var PremiumFacilities = []string{
	"Swimming Pool", "Club house / Community Center", "Security Personnel",
	"Power Back-up", "High Ceiling Height", "Spacious Interiors",
	"Water softening plant", "Low Density Society", "Shopping Centre",
	"Private Garden / Terrace", "Internet/wi-fi connectivity",
	"Centrally Air Conditioned",
}

// Discrete choices and bounds of the numeric inputs
var (
	BHKOptions       = []int{1, 2, 3, 4, 5, 6}
	BathroomOptions  = []int{2, 3, 4, 5}
	BalconyOptions   = []int{0, 1, 2, 3}
	AreaRange        = model.Range{Min: 350, Max: 6000}
	TotalFloorsRange = model.Range{Min: 2, Max: 27}
)

// DefaultAddress is the locality pre-filled in the form
const DefaultAddress = "Lake Gardens, Kolkata"

// DefaultInput returns the form defaults. Each call returns a fresh amenity map.
func DefaultInput() model.PropertyInput {
	amenities := make(map[string]bool, len(AmenityFlags))
	for _, flag := range AmenityFlags {
		amenities[flag] = defaultAmenities[flag]
	}
	totalFloors := 4
	return model.PropertyInput{
		Model:             model.KindElasticNet,
		BHK:               2,
		Area:              1000,
		Bathrooms:         2,
		Balcony:           1,
		TotalFloors:       totalFloors,
		Floor:             DefaultFloor(totalFloors),
		PropertyAge:       "1 to 5 Year Old",
		AreaType:          "Super Built-up Area",
		Furnishing:        "Unfurnished",
		Amenities:         amenities,
		PremiumFacilities: []string{},
		Address:           DefaultAddress,
	}
}

// DefaultFloor is the floor pre-filled for a building of totalFloors floors
func DefaultFloor(totalFloors int) int {
	return min(3, totalFloors)
}

// AmenityOptions describes every amenity flag with its label and default
func AmenityOptions() []model.AmenityOption {
	options := make([]model.AmenityOption, 0, len(AmenityFlags))
	for _, flag := range AmenityFlags {
		options = append(options, model.AmenityOption{
			Feature: flag,
			Label:   AmenityLabel(flag),
			Default: defaultAmenities[flag],
		})
	}
	return options
}

// AmenityLabel turns a feature name into its form label, e.g. "Store_Room" -> "Store Room"
func AmenityLabel(flag string) string {
	return strings.ReplaceAll(flag, "_", " ")
}

func lookup(options []model.LabeledValue, label string) (float64, bool) {
	for _, o := range options {
		if o.Label == label {
			return o.Value, true
		}
	}
	return 0, false
}
