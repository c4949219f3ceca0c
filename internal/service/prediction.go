package service

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"urbannest/internal/config"
	"urbannest/internal/features"
	"urbannest/internal/model"
	"urbannest/internal/registry"
	"urbannest/internal/utils"
)

// TopImportanceCount is the length of the importance report
const TopImportanceCount = 10

var (
	// ErrModelUnavailable is returned when the registry holds no entry for the requested kind
	ErrModelUnavailable = errors.New("model not loaded")
	// ErrNonFinitePrediction is returned when a model produces NaN or an infinity
	ErrNonFinitePrediction = errors.New("model produced a non-finite prediction")
	// ErrHistoryDisabled is returned by history operations when no database is configured
	ErrHistoryDisabled = errors.New("prediction history is disabled")
)

// HistoryStore persists predictions. *repository.PostgresRepository implements it.
type HistoryStore interface {
	LogPrediction(ctx context.Context, rec *model.PredictionRecord) error
	LogPredictions(ctx context.Context, recs []*model.PredictionRecord) (int, []string)
	RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error)
	SimilarPredictions(ctx context.Context, id string, limit int) ([]model.PredictionRecord, error)
	LogFeedback(ctx context.Context, id, verdict string, actualPrice *float64) error
}

// PredictionService handles valuation business logic
type PredictionService struct {
	registry *registry.Registry
	geocoder Geocoder
	history  HistoryStore
	limits   config.HistoryConfig
	logger   *slog.Logger

	defaultKind model.Kind

	pending sync.WaitGroup
}

// NewPredictionService creates a new prediction service. history may be nil,
// in which case predictions are not stored.
func NewPredictionService(
	reg *registry.Registry,
	geocoder Geocoder,
	history HistoryStore,
	limits config.HistoryConfig,
	logger *slog.Logger,
) *PredictionService {
	return &PredictionService{
		registry: reg,
		geocoder: geocoder,
		history:  history,
		limits:   limits,
		logger:   logger.With("component", "prediction"),
	}
}

// SetDefaultModel selects the model pre-filled in the form and used when a
// request names none. Call it before serving requests.
func (s *PredictionService) SetDefaultModel(kind model.Kind) {
	s.defaultKind = kind
}

// Defaults returns the form defaults with the configured default model.
// Each call returns a fresh amenity map.
func (s *PredictionService) Defaults() model.PropertyInput {
	in := features.DefaultInput()
	in.Model = s.defaultKind
	return in
}

// HistoryEnabled reports whether predictions are being stored
func (s *PredictionService) HistoryEnabled() bool {
	return s.history != nil
}

// Predict resolves the address, assembles features and runs the selected model.
// The input must already have passed features.Validate.
func (s *PredictionService) Predict(ctx context.Context, in model.PropertyInput) (*model.PredictionResponse, error) {
	startTime := time.Now()

	loc := s.geocoder.Resolve(ctx, in.Address)
	resp, rec, err := s.estimate(in, loc)
	if err != nil {
		return nil, err
	}
	resp.Took = time.Since(startTime).Milliseconds()

	// Log prediction (non-blocking)
	if s.history != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			if err := s.history.LogPrediction(context.Background(), rec); err != nil {
				s.logger.Warn("failed to store prediction", "id", rec.ID, "error", err)
			}
		}()
	}

	return resp, nil
}

// PredictBatch values several inputs, resolving each distinct address once.
// Results keep the input order; the whole batch fails on the first error.
func (s *PredictionService) PredictBatch(ctx context.Context, inputs []model.PropertyInput) ([]*model.PredictionResponse, error) {
	startTime := time.Now()

	locations := make(map[string]model.Resolution)
	responses := make([]*model.PredictionResponse, 0, len(inputs))
	records := make([]*model.PredictionRecord, 0, len(inputs))
	for i, in := range inputs {
		loc, ok := locations[in.Address]
		if !ok {
			loc = s.geocoder.Resolve(ctx, in.Address)
			locations[in.Address] = loc
		}
		resp, rec, err := s.estimate(in, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		responses = append(responses, resp)
		records = append(records, rec)
	}

	took := time.Since(startTime).Milliseconds()
	for _, resp := range responses {
		resp.Took = took
	}

	if s.history != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			stored, failures := s.history.LogPredictions(context.Background(), records)
			if len(failures) > 0 {
				s.logger.Warn("failed to store part of a batch", "stored", stored, "failures", failures)
			}
		}()
	}

	return responses, nil
}

// PredictAt runs the selected model with already resolved coordinates.
// Nothing is stored.
func (s *PredictionService) PredictAt(in model.PropertyInput, loc model.Resolution) (*model.PredictionResponse, error) {
	resp, _, err := s.estimate(in, loc)
	return resp, err
}

func (s *PredictionService) estimate(in model.PropertyInput, loc model.Resolution) (*model.PredictionResponse, *model.PredictionRecord, error) {
	entry, ok := s.registry.Get(in.Model)
	if !ok {
		return nil, nil, errors.Wrapf(ErrModelUnavailable, "%s", in.Model)
	}

	fm, err := features.Assemble(in, loc.Coordinates)
	if err != nil {
		return nil, nil, err
	}
	vec := fm.Reindex(entry.Columns())
	if missing := vec.Missing(); len(missing) > 0 {
		s.logger.Debug("model expects columns the assembler does not produce", "model", in.Model.Name(), "missing", missing)
	}

	prediction, err := entry.Regressor.Predict(vec.Values)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s inference", in.Model.Name())
	}
	if math.IsNaN(prediction) || math.IsInf(prediction, 0) {
		return nil, nil, errors.Wrapf(ErrNonFinitePrediction, "%s returned %v", in.Model.Name(), prediction)
	}

	metrics := in.Model.Metrics()
	resp := &model.PredictionResponse{
		ID:             uuid.NewString(),
		Model:          in.Model,
		Prediction:     prediction,
		PriceINR:       prediction * utils.LakhINR,
		PriceFormatted: utils.FormatLakhs(prediction),
		Metrics: model.MetricsView{
			RMSE:          metrics.RMSE,
			RMSEFormatted: utils.FormatLakhs(metrics.RMSE),
			R2:            metrics.R2,
			R2Formatted:   utils.FormatR2(metrics.R2),
		},
		Location: loc,
		Features: vec.View(),
	}
	if in.Model.SupportsImportance() {
		resp.Importances = TopImportances(entry, TopImportanceCount)
	}

	rec, err := s.record(resp, in, vec)
	if err != nil {
		return nil, nil, err
	}
	return resp, rec, nil
}

func (s *PredictionService) record(resp *model.PredictionResponse, in model.PropertyInput, vec features.Vector) (*model.PredictionRecord, error) {
	input, err := model.ToJSONMap(in)
	if err != nil {
		return nil, err
	}
	return &model.PredictionRecord{
		ID:             resp.ID,
		ModelKind:      in.Model.Slug(),
		Input:          input,
		Latitude:       resp.Location.Latitude,
		Longitude:      resp.Location.Longitude,
		Geohash:        resp.Location.Geohash,
		GeocodeOutcome: string(resp.Location.Outcome),
		Prediction:     resp.Prediction,
		Features:       pgvector.NewVector(vec.Float32()),
	}, nil
}

// TopImportances zips the entry's importances with its columns and returns
// the n largest, highest first. Ties keep column order. Kinds without
// importances yield nil.
func TopImportances(entry *registry.Entry, n int) []model.ImportanceEntry {
	if !entry.Kind.SupportsImportance() {
		return nil
	}
	scores, ok := entry.Regressor.FeatureImportances()
	if !ok {
		return nil
	}

	columns := entry.Columns()
	report := make([]model.ImportanceEntry, 0, len(columns))
	for i, col := range columns {
		if i >= len(scores) {
			break
		}
		report = append(report, model.ImportanceEntry{Feature: col, Importance: scores[i]})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Importance > report[j].Importance
	})
	if len(report) > n {
		report = report[:n]
	}
	return report
}

// Geocode resolves an address without predicting
func (s *PredictionService) Geocode(ctx context.Context, address string) model.GeocodeResponse {
	return model.GeocodeResponse{Address: address, Location: s.geocoder.Resolve(ctx, address)}
}

// Models describes every loaded model in display order
func (s *PredictionService) Models() []model.ModelInfo {
	entries := s.registry.Entries()
	infos := make([]model.ModelInfo, len(entries))
	for i, e := range entries {
		infos[i] = e.Info()
	}
	return infos
}

// Options describes the input form: enumerations, bounds and defaults
func (s *PredictionService) Options() model.OptionsResponse {
	return model.OptionsResponse{
		Models:            s.Models(),
		PropertyAge:       features.PropertyAgeOptions,
		AreaType:          features.AreaTypeOptions,
		Furnishing:        features.FurnishingOptions,
		Amenities:         features.AmenityOptions(),
		PremiumFacilities: features.PremiumFacilities,
		BHK:               features.BHKOptions,
		Bathrooms:         features.BathroomOptions,
		Balcony:           features.BalconyOptions,
		Bounds: map[string]model.Range{
			"area":         features.AreaRange,
			"total_floors": features.TotalFloorsRange,
		},
		Defaults: s.Defaults(),
	}
}

// clampLimit applies the configured default and maximum page size
func (s *PredictionService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.DefaultLimit
	}
	return min(limit, s.limits.MaxLimit)
}

// RecentPredictions lists stored predictions, newest first
func (s *PredictionService) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.RecentPredictions(ctx, s.clampLimit(limit))
}

// SimilarPredictions lists stored predictions closest to the given one
func (s *PredictionService) SimilarPredictions(ctx context.Context, id string, limit int) ([]model.PredictionRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.SimilarPredictions(ctx, id, s.clampLimit(limit))
}

// LogFeedback records a user verdict on a stored prediction
func (s *PredictionService) LogFeedback(ctx context.Context, req model.FeedbackRequest) error {
	if s.history == nil {
		return ErrHistoryDisabled
	}
	return s.history.LogFeedback(ctx, req.PredictionID, req.Verdict, req.ActualPrice)
}

// Wait blocks until background history writes have finished
func (s *PredictionService) Wait() {
	s.pending.Wait()
}
