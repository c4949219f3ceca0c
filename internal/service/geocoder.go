package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mmcloughlin/geohash"
	"golang.org/x/time/rate"

	"urbannest/internal/config"
	"urbannest/internal/model"
)

// FallbackCoordinates is used whenever an address cannot be resolved (central Kolkata)
var FallbackCoordinates = model.Coordinates{Latitude: 22.5959, Longitude: 88.4026}

// Geocoder resolves a free-text address to coordinates. Implementations
// never fail: unresolvable addresses yield the fallback outcome.
type Geocoder interface {
	Resolve(ctx context.Context, address string) model.Resolution
}

// NominatimClient resolves addresses with the OpenStreetMap Nominatim search API
type NominatimClient struct {
	config           *config.GeocoderConfig
	httpClient       *http.Client
	limiter          *rate.Limiter // nil when unlimited
	geohashPrecision uint
	logger           *slog.Logger
}

// NewNominatimClient creates a geocoder client. A zero timeout disables the client deadline.
// Lookups are throttled to cfg.RequestsPerMinute; Nominatim's public instance allows one per second.
func NewNominatimClient(cfg *config.GeocoderConfig, geohashPrecision uint, logger *slog.Logger) *NominatimClient {
	c := &NominatimClient{
		config:           cfg,
		geohashPrecision: geohashPrecision,
		logger:           logger.With("component", "geocoder"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}
	return c
}

// nominatimPlace is one search hit; coordinates arrive as strings
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve looks the address up and falls back to FallbackCoordinates on any failure
func (c *NominatimClient) Resolve(ctx context.Context, address string) model.Resolution {
	coords, err := c.lookup(ctx, address)
	if err != nil {
		c.logger.Debug("geocoding fell back to default coordinates", "address", address, "error", err)
		return c.resolution(FallbackCoordinates, model.GeocodeFallback)
	}
	return c.resolution(coords, model.GeocodeResolved)
}

func (c *NominatimClient) resolution(coords model.Coordinates, outcome model.GeocodeOutcome) model.Resolution {
	return model.Resolution{
		Coordinates: coords,
		Outcome:     outcome,
		Geohash:     geohash.EncodeWithPrecision(coords.Latitude, coords.Longitude, c.geohashPrecision),
	}
}

func (c *NominatimClient) lookup(ctx context.Context, address string) (model.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return model.Coordinates{}, errors.New("empty address")
	}
	if c.limiter != nil {
		// Fails fast when the wait would outlive ctx
		if err := c.limiter.Wait(ctx); err != nil {
			return model.Coordinates{}, errors.Wrap(err, "rate limit")
		}
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/search?%s", c.config.BaseURL, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Coordinates{}, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.Coordinates{}, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Coordinates{}, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return model.Coordinates{}, errors.Newf("geocoding request failed with status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return model.Coordinates{}, errors.Wrap(err, "failed to unmarshal response")
	}
	if len(places) == 0 {
		return model.Coordinates{}, errors.New("no match")
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return model.Coordinates{}, errors.Wrapf(err, "invalid latitude %q", places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return model.Coordinates{}, errors.Wrapf(err, "invalid longitude %q", places[0].Lon)
	}
	return model.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// StaticGeocoder always resolves to fixed coordinates. The CLI uses it
// when latitude and longitude are supplied directly.
type StaticGeocoder struct {
	Coordinates      model.Coordinates
	GeohashPrecision uint
}

// Resolve implements Geocoder
func (g StaticGeocoder) Resolve(_ context.Context, _ string) model.Resolution {
	return model.Resolution{
		Coordinates: g.Coordinates,
		Outcome:     model.GeocodeResolved,
		Geohash:     geohash.EncodeWithPrecision(g.Coordinates.Latitude, g.Coordinates.Longitude, g.GeohashPrecision),
	}
}
