package handler

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"urbannest/internal/model"
	"urbannest/internal/repository"
	"urbannest/internal/service"
)

// HistoryHandler handles prediction history and feedback requests
type HistoryHandler struct {
	predictionService *service.PredictionService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(predictionService *service.PredictionService) *HistoryHandler {
	return &HistoryHandler{
		predictionService: predictionService,
	}
}

// Recent handles GET /api/v1/predictions
func (h *HistoryHandler) Recent(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	records, err := h.predictionService.RecentPredictions(c.Request.Context(), limit)
	if err != nil {
		writeHistoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.HistoryResponse{Predictions: records, Total: len(records)})
}

// Similar handles GET /api/v1/predictions/:id/similar
func (h *HistoryHandler) Similar(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prediction id"})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	records, err := h.predictionService.SimilarPredictions(c.Request.Context(), id, limit)
	if err != nil {
		writeHistoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.HistoryResponse{Predictions: records, Total: len(records)})
}

// Feedback handles POST /api/v1/feedback
func (h *HistoryHandler) Feedback(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.predictionService.LogFeedback(c.Request.Context(), req); err != nil {
		writeHistoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return 0, false
	}
	return limit, true
}

func writeHistoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "History request failed: " + err.Error()})
	}
}
