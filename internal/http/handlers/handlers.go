package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairdesk/backend/internal/ai"
	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"
)

// Store is the read side of the repair and parts data source.
type Store interface {
	Ping(ctx context.Context) error
	ListRepairJobs(ctx context.Context, stage string, limit int) ([]models.RepairJob, error)
	GetRepairJob(ctx context.Context, id string) (models.RepairJob, error)
	ListProducts(ctx context.Context) ([]models.ProductStock, error)
	CommitReservations(ctx context.Context, reservations []models.InventoryReservation) (int, error)
}

type Handler struct {
	Store            Store
	Trainer          ai.Trainer
	Scorer           *service.PriorityScorer
	Planner          *service.ReservationPlanner
	AuditLog         *service.PriorityAuditLog
	Priority         models.PriorityConfig
	Validator        *validator.Validate
	Logger           zerolog.Logger
	RequestTimeout   time.Duration
	ReorderThreshold int
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// snapshot loads the jobs and catalog one request works on.
func (h *Handler) snapshot(ctx context.Context, stage string, limit int) ([]models.RepairJob, []models.ProductStock, error) {
	jobs, err := h.Store.ListRepairJobs(ctx, stage, limit)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := h.Store.ListProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return jobs, catalog, nil
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

// loadRepair writes the error response itself and reports whether to go on.
func (h *Handler) loadRepair(c *gin.Context, ctx context.Context) (models.RepairJob, bool) {
	id := strings.TrimSpace(c.Param("id"))
	job, err := h.Store.GetRepairJob(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Repair not found", nil)
			return models.RepairJob{}, false
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load repair", err.Error())
		return models.RepairJob{}, false
	}
	return job, true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
