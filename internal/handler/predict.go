package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"urbannest/internal/features"
	"urbannest/internal/model"
	"urbannest/internal/service"
)

// PredictionHandler handles valuation HTTP requests
type PredictionHandler struct {
	predictionService *service.PredictionService
	maxBatchSize      int
	logger            *slog.Logger
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService *service.PredictionService, maxBatchSize int, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		maxBatchSize:      maxBatchSize,
		logger:            logger.With("component", "handler"),
	}
}

// Predict handles POST /api/v1/predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	req, err := decodeInput(raw, h.predictionService.Defaults())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !h.validate(c, &req) {
		return
	}

	response, err := h.predictionService.Predict(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("prediction failed", "model", req.Model.Name(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// PredictBatch handles POST /api/v1/predict/batch
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	startTime := time.Now()

	var req model.BatchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Items) > h.maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Too many items: %d, max %d", len(req.Items), h.maxBatchSize)})
		return
	}

	inputs := make([]model.PropertyInput, len(req.Items))
	for i, raw := range req.Items {
		in, err := decodeInput(raw, h.predictionService.Defaults())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid item %d: %v", i, err)})
			return
		}
		inputs[i] = in
		if err := features.Validate(&inputs[i]); err != nil {
			body := gin.H{"error": fmt.Sprintf("Invalid item %d: %v", i, err), "item": i}
			var verr *features.ValidationError
			if errors.As(err, &verr) {
				body["field"] = verr.Field
			}
			c.JSON(http.StatusBadRequest, body)
			return
		}
	}

	predictions, err := h.predictionService.PredictBatch(c.Request.Context(), inputs)
	if err != nil {
		h.logger.Error("batch prediction failed", "items", len(inputs), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.BatchPredictResponse{
		Predictions: predictions,
		Total:       len(predictions),
		Took:        time.Since(startTime).Milliseconds(),
	})
}

// decodeInput reads a partial PropertyInput over defaults. Amenities in the
// body are merged over the default set. Without an explicit floor, the
// default floor follows total_floors as the form does.
func decodeInput(raw []byte, defaults model.PropertyInput) (model.PropertyInput, error) {
	in := defaults
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, err
	}
	var given struct {
		Floor *int `json:"floor"`
	}
	if err := json.Unmarshal(raw, &given); err != nil {
		return in, err
	}
	if given.Floor == nil {
		in.Floor = features.DefaultFloor(in.TotalFloors)
	}
	return in, nil
}

func (h *PredictionHandler) validate(c *gin.Context, in *model.PropertyInput) bool {
	err := features.Validate(in)
	if err == nil {
		return true
	}
	var verr *features.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error(), "field": verr.Field})
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
	}
	return false
}

// Models handles GET /api/v1/models
func (h *PredictionHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.predictionService.Models()})
}

// Options handles GET /api/v1/options
func (h *PredictionHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictionService.Options())
}

// Geocode handles GET /api/v1/geocode?q=
func (h *PredictionHandler) Geocode(c *gin.Context) {
	address := c.DefaultQuery("q", features.DefaultAddress)
	c.JSON(http.StatusOK, h.predictionService.Geocode(c.Request.Context(), address))
}
