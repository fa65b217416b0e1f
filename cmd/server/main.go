package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/repairdesk/backend/internal/ai"
	"github.com/repairdesk/backend/internal/config"
	"github.com/repairdesk/backend/internal/db"
	httpapi "github.com/repairdesk/backend/internal/http"
	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "repair-triage").Logger()

	priority, err := service.LoadPriorityConfig(cfg.PriorityRulesFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.PriorityRulesFile).Msg("failed to load priority rules")
	}
	for _, rule := range priority.Rules {
		if rule.When == (models.RuleCondition{}) {
			logger.Warn().Str("rule", rule.ID).Msg("rule has no condition and applies to every repair")
		}
	}
	logger.Info().Int("rules", len(priority.Rules)).Msg("priority config loaded")

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	trainer := ai.PlaceholderTrainer{ModelVersion: cfg.ModelVersion}
	router := httpapi.Router(cfg, store, trainer, priority, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
