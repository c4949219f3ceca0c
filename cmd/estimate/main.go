package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"urbannest/internal/config"
	"urbannest/internal/features"
	"urbannest/internal/logging"
	"urbannest/internal/model"
	"urbannest/internal/registry"
	"urbannest/internal/service"
)

var opts = newEstimateOptions()

var rootCmd = &cobra.Command{
	Use:   "estimate",
	Short: "UrbanNest - estimate the price of a Kolkata flat",
	Long: `UrbanNest - estimate the price of a Kolkata flat from the command line.

Every flag defaults to the value pre-filled in the web form, so only the
attributes that differ need to be given. The address is resolved through
Nominatim unless --lat and --lon are both set.

Examples:
  estimate                                   # form defaults, ElasticNet
  estimate --model xgboost --bhk 3 --area 1450
  estimate --all --address "Salt Lake, Kolkata"
  estimate --amenities Lift,Gym --facilities pool,wifi
  estimate --lat 22.5726 --lon 88.3639 --model "Random Forest"`,
	SilenceUsage: true,
	RunE:         runEstimate,
}

func init() {
	opts.register(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if opts.modelsDir != "" {
		cfg.Models.Dir = opts.modelsDir
	}
	if !opts.verbose {
		cfg.Logging.Level = "warn"
	}

	logger, err := logging.New(cfg.Logging, cfg.Fluent, os.Stderr)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logging")
	}
	defer logger.Close()

	opts.defaultModel(cfg.Models.DefaultKindSlug, cmd.Flags().Changed)
	in, err := opts.input(cmd.Flags().Changed)
	if err != nil {
		return err
	}
	if err := features.Validate(&in); err != nil {
		return errors.Wrap(err, "invalid input")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	models, err := registry.Load(ctx, cfg.Models, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to load models")
	}

	var geocoder service.Geocoder
	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
		geocoder = service.StaticGeocoder{
			Coordinates:      model.Coordinates{Latitude: opts.lat, Longitude: opts.lon},
			GeohashPrecision: cfg.History.GeohashPrecision,
		}
	} else {
		geocoder = service.NewNominatimClient(&cfg.Geocoder, cfg.History.GeohashPrecision, logger.Logger)
	}
	predictionService := service.NewPredictionService(models, geocoder, nil, cfg.History, logger.Logger)

	kinds := []model.Kind{in.Model}
	if opts.all {
		kinds = model.AllKinds()
	}

	// Resolve once so every kind sees the same coordinates
	loc := geocoder.Resolve(ctx, in.Address)
	renderLocation(loc)

	results := make([]*model.PredictionResponse, 0, len(kinds))
	for _, kind := range kinds {
		in.Model = kind
		resp, err := predictionService.PredictAt(in, loc)
		if err != nil {
			return errors.Wrapf(err, "%s", kind.Name())
		}
		results = append(results, resp)
	}

	if len(results) == 1 {
		return renderPrediction(results[0])
	}
	if err := renderComparison(results); err != nil {
		return err
	}
	for _, resp := range results {
		if err := renderImportances(resp); err != nil {
			return err
		}
	}
	return nil
}

func renderLocation(loc model.Resolution) {
	pterm.Info.Println(locationLine(loc))
}

// locationLine reads the same whether the address resolved or fell back
func locationLine(loc model.Resolution) string {
	return fmt.Sprintf("Location: %.4f, %.4f (geohash %s)", loc.Latitude, loc.Longitude, loc.Geohash)
}
