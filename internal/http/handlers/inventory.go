package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/repairdesk/backend/internal/db"
	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"
)

type ReservationsResponse struct {
	service.ReservationPlan
	Costs models.CostReport `json:"costs"`
}

// @Summary Suggested part reservations
// @Description Proposes one reservation per open repair against current stock. Nothing is reserved until committed.
// @Tags inventory
// @Produce json
// @Param stage query string false "pipeline stage"
// @Success 200 {object} ReservationsResponse
// @Router /api/inventory/reservations [get]
func (h *Handler) ReservationsSuggest(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, catalog, err := h.snapshot(ctx, strings.TrimSpace(c.Query("stage")), 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}

	plan := h.Planner.SuggestReservations(jobs, catalog)
	c.JSON(http.StatusOK, ReservationsResponse{
		ReservationPlan: plan,
		Costs:           service.BuildCostReport(plan.Reservations, catalog, jobs),
	})
}

// @Summary Commit suggested reservations
// @Description Recomputes the plan and decrements stock once per reservation in one transaction. Repairs that need no specific part are skipped and already committed reservations are not taken again.
// @Tags inventory
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/inventory/reservations/commit [post]
func (h *Handler) ReservationsCommit(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()
	jobs, catalog, err := h.snapshot(ctx, strings.TrimSpace(c.Query("stage")), 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load snapshot", err.Error())
		return
	}

	plan := h.Planner.SuggestReservations(jobs, catalog)
	reservations := service.CommittableReservations(plan.Reservations, jobs)
	committed, err := h.Store.CommitReservations(ctx, reservations)
	if err != nil {
		if errors.Is(err, db.ErrOutOfStock) {
			writeError(c, http.StatusConflict, "OUT_OF_STOCK", "Stock changed while committing, nothing was reserved", err.Error())
			return
		}
		h.Logger.Error().Err(err).Msg("failed to commit reservations")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to commit reservations", err.Error())
		return
	}

	h.Logger.Info().Int("committed", committed).Int("alerts", len(plan.Alerts)).Msg("reservations committed")
	c.JSON(http.StatusOK, gin.H{
		"committed":    committed,
		"reservations": reservations,
		"alerts":       plan.Alerts,
	})
}

// @Summary Reorder alerts
// @Tags inventory
// @Produce json
// @Param threshold query int false "stock threshold, defaults to server setting"
// @Success 200 {object} map[string]any
// @Router /api/inventory/reorder-alerts [get]
func (h *Handler) ReorderAlerts(c *gin.Context) {
	threshold, err := queryInt(c, "threshold", h.ReorderThreshold)
	if err != nil || threshold < 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "threshold must be a non-negative integer", nil)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	catalog, err := h.Store.ListProducts(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list products", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threshold": threshold,
		"alerts":    h.Planner.GenerateReorderAlerts(catalog, threshold),
	})
}
