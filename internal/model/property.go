package model

// PropertyInput is the raw set of attributes a user supplies for one valuation.
// Categorical fields carry the human-readable labels shown in the form.
type PropertyInput struct {
	Model             Kind            `json:"model"`
	BHK               int             `json:"bhk"`
	Area              int             `json:"area"` // sq.ft
	Bathrooms         int             `json:"bathrooms"`
	Balcony           int             `json:"balcony"`
	Floor             int             `json:"floor"`
	TotalFloors       int             `json:"total_floors"`
	PropertyAge       string          `json:"property_age"`
	AreaType          string          `json:"area_type"`
	Furnishing        string          `json:"furnishing"`
	Amenities         map[string]bool `json:"amenities"`          // keyed by feature name, e.g. "Store_Room"
	PremiumFacilities []string        `json:"premium_facilities"` // labels from the premium facility list
	Address           string          `json:"address"`
}

// Coordinates is a latitude/longitude pair in degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocodeOutcome tells whether coordinates came from the lookup or the fallback
type GeocodeOutcome string

const (
	GeocodeResolved GeocodeOutcome = "resolved"
	GeocodeFallback GeocodeOutcome = "fallback"
)

// Resolution is the result of resolving an address
type Resolution struct {
	Coordinates
	Outcome GeocodeOutcome `json:"outcome"`
	Geohash string         `json:"geohash,omitempty"`
}
