package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"urbannest/internal/model"
	"urbannest/internal/service"
)

func TestLocationLine_SameForFallback(t *testing.T) {
	resolved := model.Resolution{Coordinates: service.FallbackCoordinates, Outcome: model.GeocodeResolved, Geohash: "tun5k3q"}
	fallback := resolved
	fallback.Outcome = model.GeocodeFallback

	assert.Equal(t, "Location: 22.5959, 88.4026 (geohash tun5k3q)", locationLine(resolved))
	assert.Equal(t, locationLine(resolved), locationLine(fallback))
}
