package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbannest/internal/features"
	"urbannest/internal/model"
)

func parseFlags(t *testing.T, args ...string) (*estimateOptions, *cobra.Command) {
	t.Helper()
	o := newEstimateOptions()
	cmd := &cobra.Command{Use: "estimate"}
	o.register(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return o, cmd
}

func TestInputDefaults(t *testing.T) {
	o, cmd := parseFlags(t)

	in, err := o.input(cmd.Flags().Changed)
	require.NoError(t, err)
	assert.Equal(t, features.DefaultInput(), in)
}

func TestInputOverrides(t *testing.T) {
	o, cmd := parseFlags(t,
		"--model", "XGBoost",
		"--bhk", "3",
		"--area", "1450",
		"--furnishing", "Semi-Furnished",
		"--amenities", "Gym,store room",
		"--facilities", "pool,wifi",
		"--address", "  Salt Lake, Kolkata ",
	)

	in, err := o.input(cmd.Flags().Changed)
	require.NoError(t, err)

	assert.Equal(t, model.KindXGBoost, in.Model)
	assert.Equal(t, 3, in.BHK)
	assert.Equal(t, 1450, in.Area)
	assert.Equal(t, "Semi-Furnished", in.Furnishing)
	assert.Equal(t, "Salt Lake, Kolkata", in.Address)
	assert.Equal(t, []string{"pool", "wifi"}, in.PremiumFacilities)

	for _, flag := range features.AmenityFlags {
		want := flag == "Gym" || flag == "Store_Room"
		assert.Equal(t, want, in.Amenities[flag], flag)
	}

	require.NoError(t, features.Validate(&in))
	assert.Equal(t, []string{"Swimming Pool", "Internet/wi-fi connectivity"}, in.PremiumFacilities)
}

func TestInputClampsFloor(t *testing.T) {
	o, cmd := parseFlags(t, "--total-floors", "2")
	in, err := o.input(cmd.Flags().Changed)
	require.NoError(t, err)
	assert.Equal(t, 2, in.Floor)

	o, cmd = parseFlags(t, "--total-floors", "2", "--floor", "5")
	in, err = o.input(cmd.Flags().Changed)
	require.NoError(t, err)
	assert.Equal(t, 5, in.Floor)
	assert.Error(t, features.Validate(&in))
}

func TestInputDefaultModel(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want model.Kind
	}{
		{"configured default", nil, model.KindXGBoost},
		{"flag wins", []string{"--model", "elasticnet"}, model.KindElasticNet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, cmd := parseFlags(t, tt.args...)
			o.defaultModel("xgboost", cmd.Flags().Changed)

			in, err := o.input(cmd.Flags().Changed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Model)
		})
	}
}

func TestInputErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown model", []string{"--model", "svm"}},
		{"unknown amenity", []string{"--amenities", "Helipad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, cmd := parseFlags(t, tt.args...)
			_, err := o.input(cmd.Flags().Changed)
			assert.Error(t, err)
		})
	}
}

func TestAmenityFlag(t *testing.T) {
	flag, ok := amenityFlag("visitorparking")
	assert.True(t, ok)
	assert.Equal(t, "VisitorParking", flag)

	flag, ok = amenityFlag(" Pooja Room ")
	assert.True(t, ok)
	assert.Equal(t, "Pooja_Room", flag)

	_, ok = amenityFlag("Moat")
	assert.False(t, ok)
}
