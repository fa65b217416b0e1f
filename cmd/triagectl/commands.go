package main

import (
	"github.com/spf13/cobra"

	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"
)

var reorderThreshold int

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank repairs by priority",
	Long: `Rank repairs by priority, best first.

With --catalog the ranking is inventory aware: predicted effort nudges the
score up and a missing or out-of-stock part pulls it down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadPriority(); err != nil {
			return err
		}
		jobs, err := loadJobs()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(false)
		if err != nil {
			return err
		}

		scorer := service.NewPriorityScorer()
		var ranked []models.ScoredJob
		if catalog != nil {
			ranked = scorer.RankWithInventory(jobs, priority, catalog)
		} else {
			ranked = scorer.RankByPriority(jobs, priority)
		}
		return writeJSON(cmd.OutOrStdout(), ranked)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict repair duration per job",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := loadJobs()
		if err != nil {
			return err
		}
		out := make(map[string]models.DurationPrediction, len(jobs))
		for _, j := range jobs {
			out[j.ID] = service.PredictDuration(j)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Duration statistics per device model and symptom frequencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := loadJobs()
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"models":   service.EstimateDurationStatistics(jobs),
			"symptoms": service.CorrelateSymptoms(jobs),
		})
	},
}

var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "Suggest part reservations and report their cost",
	Long: `Suggest one part reservation per job.

The plan does not decrement stock between jobs, so two jobs may both be
offered the last unit of a part.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := loadJobs()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(true)
		if err != nil {
			return err
		}
		plan := service.NewReservationPlanner().SuggestReservations(jobs, catalog)
		if len(plan.Alerts) > 0 {
			logger.Warn().Int("alerts", len(plan.Alerts)).Msg("some repairs have no part available")
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"reservations": plan.Reservations,
			"alerts":       plan.Alerts,
			"costs":        service.BuildCostReport(plan.Reservations, catalog, jobs),
		})
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "List products at or below the reorder threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(true)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), service.NewReservationPlanner().GenerateReorderAlerts(catalog, reorderThreshold))
	},
}

func init() {
	reorderCmd.Flags().IntVar(&reorderThreshold, "threshold", service.DefaultReorderThreshold, "Stock level at or below which to reorder")

	rootCmd.AddCommand(rankCmd, predictCmd, statsCmd, reserveCmd, reorderCmd)
}
