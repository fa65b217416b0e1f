package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/repairdesk/backend/internal/service"
)

type DiagnosisRequest struct {
	Issue string `json:"issue" validate:"required"`
}

// @Summary Predicted duration for one repair
// @Tags stats
// @Produce json
// @Param id path string true "repair id"
// @Success 200 {object} models.DurationPrediction
// @Failure 404 {object} map[string]any
// @Router /api/repairs/{id}/prediction [get]
func (h *Handler) RepairPrediction(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()
	job, ok := h.loadRepair(c, ctx)
	if !ok {
		return
	}
	catalog, err := h.Store.ListProducts(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list products", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"repair_job_id": job.ID,
		"prediction":    service.PredictDuration(job),
		"component":     service.InferComponentType(job.Issue),
		"availability":  service.CheckAvailability(job, catalog),
	})
}

// @Summary Duration statistics per device model
// @Tags stats
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/stats/duration [get]
func (h *Handler) DurationStats(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, err := h.Store.ListRepairJobs(ctx, strings.TrimSpace(c.Query("stage")), 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list repairs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": service.EstimateDurationStatistics(jobs)})
}

func (h *Handler) SymptomStats(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, err := h.Store.ListRepairJobs(ctx, "", 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list repairs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"symptoms": service.CorrelateSymptoms(jobs)})
}

// @Summary Suggest likely symptoms for an issue description
// @Tags stats
// @Accept json
// @Produce json
// @Param body body DiagnosisRequest true "issue text"
// @Success 200 {object} map[string]any
// @Router /api/diagnosis/suggest [post]
func (h *Handler) DiagnosisSuggest(c *gin.Context) {
	var req DiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, err := h.Store.ListRepairJobs(ctx, "", 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list repairs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"issue":       req.Issue,
		"suggestions": service.SuggestDiagnosis(req.Issue, jobs),
	})
}

// @Summary Train the duration model
// @Description Placeholder: reports the sample count and learns nothing
// @Tags model
// @Produce json
// @Success 200 {object} models.TrainingResult
// @Router /api/model/train [post]
func (h *Handler) ModelTrain(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, err := h.Store.ListRepairJobs(ctx, "", 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list repairs", err.Error())
		return
	}
	res, err := h.Trainer.Train(ctx, jobs)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "TRAINING_ERROR", "Training failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}
