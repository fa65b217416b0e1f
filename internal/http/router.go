package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/repairdesk/backend/internal/ai"
	"github.com/repairdesk/backend/internal/config"
	"github.com/repairdesk/backend/internal/http/handlers"
	"github.com/repairdesk/backend/internal/http/middleware"
	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"

	_ "github.com/repairdesk/backend/docs"
)

func Router(cfg config.Config, store handlers.Store, trainer ai.Trainer, priority models.PriorityConfig, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:            store,
		Trainer:          trainer,
		Scorer:           service.NewPriorityScorer(),
		Planner:          service.NewReservationPlanner(),
		AuditLog:         service.NewPriorityAuditLog(),
		Priority:         priority,
		Validator:        validator.New(),
		Logger:           logger,
		RequestTimeout:   cfg.RequestTimeout,
		ReorderThreshold: cfg.ReorderThreshold,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/priority/config", h.PriorityConfig)
		api.POST("/priority/score", h.PriorityScore)
		api.GET("/priority-log", h.PriorityLog)
		api.GET("/repairs/ranked", h.RepairsRanked)
		api.GET("/repairs/:id/prediction", h.RepairPrediction)
		api.GET("/repairs/:id/priority-log", h.RepairPriorityLog)
		api.GET("/stats/duration", h.DurationStats)
		api.GET("/stats/symptoms", h.SymptomStats)
		api.POST("/diagnosis/suggest", h.DiagnosisSuggest)
		api.GET("/inventory/reservations", h.ReservationsSuggest)
		api.GET("/inventory/reorder-alerts", h.ReorderAlerts)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/inventory/reservations/commit", h.ReservationsCommit)
		admin.POST("/model/train", h.ModelTrain)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
