package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/repairdesk/backend/internal/models"
)

type ScoreRequest struct {
	Jobs    []models.RepairJob     `json:"jobs" validate:"required,min=1,dive"`
	Config  *models.PriorityConfig `json:"config"`
	Catalog []models.ProductStock  `json:"catalog"`
}

type RankedResponse struct {
	Config models.PriorityConfig `json:"config"`
	Jobs   []models.ScoredJob    `json:"jobs"`
}

// @Summary Effective priority configuration
// @Tags priority
// @Produce json
// @Success 200 {object} models.PriorityConfig
// @Router /api/priority/config [get]
func (h *Handler) PriorityConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Priority)
}

// @Summary Ranked repair queue
// @Description Scores open repairs with the configured weights, rules and current parts stock
// @Tags priority
// @Produce json
// @Param stage query string false "pipeline stage"
// @Param limit query int false "max repairs"
// @Success 200 {object} RankedResponse
// @Router /api/repairs/ranked [get]
func (h *Handler) RepairsRanked(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, catalog, err := h.snapshot(ctx, strings.TrimSpace(c.Query("stage")), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}

	ranked := h.Scorer.RankWithInventory(jobs, h.Priority, catalog)
	h.recordRanking(ranked, "ranked queue")
	h.Logger.Debug().Int("jobs", len(ranked)).Int("products", len(catalog)).Msg("ranked repairs")
	c.JSON(http.StatusOK, RankedResponse{Config: h.Priority, Jobs: ranked})
}

// @Summary Score a supplied batch
// @Description Ranks the given jobs; uses the server config unless one is supplied
// @Tags priority
// @Accept json
// @Produce json
// @Param body body ScoreRequest true "jobs, optional config and catalog"
// @Success 200 {object} RankedResponse
// @Failure 400 {object} map[string]any
// @Router /api/priority/score [post]
func (h *Handler) PriorityScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	cfg := h.Priority
	if req.Config != nil {
		cfg = *req.Config
	}

	var ranked []models.ScoredJob
	if req.Catalog != nil {
		ranked = h.Scorer.RankWithInventory(req.Jobs, cfg, req.Catalog)
	} else {
		ranked = h.Scorer.RankByPriority(req.Jobs, cfg)
	}
	h.recordRanking(ranked, "ad-hoc score")
	c.JSON(http.StatusOK, RankedResponse{Config: cfg, Jobs: ranked})
}

func (h *Handler) RepairPriorityLog(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"repair_job_id": id, "entries": h.AuditLog.ForJob(id)})
}

func (h *Handler) PriorityLog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.AuditLog.All()})
}

// recordRanking writes one audit entry per scored job. Scoring itself stays
// free of side effects; the log is the caller's concern.
func (h *Handler) recordRanking(ranked []models.ScoredJob, source string) {
	now := time.Now().UTC()
	for i, sj := range ranked {
		score := sj.Score
		note := fmt.Sprintf("%s: position %d of %d", source, i+1, len(ranked))
		if sj.Penalty > 0 {
			note += fmt.Sprintf(", parts penalty %.2f", sj.Penalty)
		}
		h.AuditLog.Record(models.PriorityLogEntry{
			RepairJobID: sj.Job.ID,
			Timestamp:   now,
			Score:       &score,
			Note:        note,
		})
	}
}
