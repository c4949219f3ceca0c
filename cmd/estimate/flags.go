package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"urbannest/internal/features"
	"urbannest/internal/model"
)

type estimateOptions struct {
	model       string
	bhk         int
	area        int
	bathrooms   int
	balcony     int
	floor       int
	totalFloors int
	propertyAge string
	areaType    string
	furnishing  string
	amenities   []string
	facilities  []string
	address     string
	lat         float64
	lon         float64
	all         bool
	modelsDir   string
	verbose     bool
}

func newEstimateOptions() *estimateOptions {
	def := features.DefaultInput()
	enabled := make([]string, 0, len(features.AmenityFlags))
	for _, flag := range features.AmenityFlags {
		if def.Amenities[flag] {
			enabled = append(enabled, flag)
		}
	}
	return &estimateOptions{
		model:       def.Model.Slug(),
		bhk:         def.BHK,
		area:        def.Area,
		bathrooms:   def.Bathrooms,
		balcony:     def.Balcony,
		floor:       def.Floor,
		totalFloors: def.TotalFloors,
		propertyAge: def.PropertyAge,
		areaType:    def.AreaType,
		furnishing:  def.Furnishing,
		amenities:   enabled,
		facilities:  def.PremiumFacilities,
		address:     def.Address,
	}
}

func (o *estimateOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.model, "model", "m", o.model, "Model name or slug (elasticnet, random_forest, gradient_boosting, xgboost)")
	f.IntVar(&o.bhk, "bhk", o.bhk, "Bedrooms, one of 1-6")
	f.IntVar(&o.area, "area", o.area, "Area in sq.ft (350-6000)")
	f.IntVar(&o.bathrooms, "bathrooms", o.bathrooms, "Bathrooms, one of 2-5")
	f.IntVar(&o.balcony, "balcony", o.balcony, "Balconies, one of 0-3")
	f.IntVar(&o.floor, "floor", o.floor, "Floor number, 1 to --total-floors")
	f.IntVar(&o.totalFloors, "total-floors", o.totalFloors, "Floors in the building (2-27)")
	f.StringVar(&o.propertyAge, "property-age", o.propertyAge, "Property age bucket, e.g. \"5 to 10 Year Old\"")
	f.StringVar(&o.areaType, "area-type", o.areaType, "Carpet Area, Built-up Area or Super Built-up Area")
	f.StringVar(&o.furnishing, "furnishing", o.furnishing, "Unfurnished, Semi-Furnished or Fully-Furnished")
	f.StringSliceVar(&o.amenities, "amenities", o.amenities, "Amenities present; replaces the default set (e.g. Lift,Gym,\"Store Room\")")
	f.StringSliceVar(&o.facilities, "facilities", o.facilities, "Premium facilities (e.g. \"Swimming Pool\",wifi)")
	f.StringVarP(&o.address, "address", "a", o.address, "Locality to geocode")
	f.Float64Var(&o.lat, "lat", 0, "Latitude; skips geocoding when set with --lon")
	f.Float64Var(&o.lon, "lon", 0, "Longitude; skips geocoding when set with --lat")
	f.BoolVar(&o.all, "all", false, "Run every model and compare")
	f.StringVar(&o.modelsDir, "models-dir", "", "Directory holding the model artifacts (overrides MODELS_DIR)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")
}

// defaultModel applies the configured model unless --model was given
func (o *estimateOptions) defaultModel(slug string, changed func(name string) bool) {
	if !changed("model") {
		o.model = slug
	}
}

// input builds the property input from the flags. changed reports whether
// a flag was given explicitly.
func (o *estimateOptions) input(changed func(name string) bool) (model.PropertyInput, error) {
	in := features.DefaultInput()

	kind, err := model.ParseKind(o.model)
	if err != nil {
		return in, err
	}
	in.Model = kind
	in.BHK = o.bhk
	in.Area = o.area
	in.Bathrooms = o.bathrooms
	in.Balcony = o.balcony
	in.TotalFloors = o.totalFloors
	in.Floor = o.floor
	if !changed("floor") {
		in.Floor = features.DefaultFloor(in.TotalFloors)
	}
	in.PropertyAge = o.propertyAge
	in.AreaType = o.areaType
	in.Furnishing = o.furnishing
	in.Address = strings.TrimSpace(o.address)

	if changed("amenities") {
		for flag := range in.Amenities {
			in.Amenities[flag] = false
		}
		for _, name := range o.amenities {
			flag, ok := amenityFlag(name)
			if !ok {
				return in, errors.Newf("unknown amenity %q", name)
			}
			in.Amenities[flag] = true
		}
	}
	in.PremiumFacilities = append([]string{}, o.facilities...)

	return in, nil
}

// amenityFlag accepts a feature name or its label, case-insensitively
func amenityFlag(name string) (string, bool) {
	needle := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	for _, flag := range features.AmenityFlags {
		if strings.EqualFold(flag, needle) {
			return flag, true
		}
	}
	return "", false
}
