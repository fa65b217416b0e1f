package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"
)

var (
	jobsFile    string
	catalogFile string
	rulesFile   string
	verbose     bool

	priority models.PriorityConfig

	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "triagectl").Logger()
)

var rootCmd = &cobra.Command{
	Use:   "triagectl",
	Short: "Rank repairs and plan parts from snapshot files",
	Long: `triagectl runs the repair triage engine offline.

Snapshots are YAML files, or JSON when the file name ends in .json:
  --jobs     a list of repair jobs
  --catalog  a list of products with stock
  --rules    a priority config (weights and ordered rules)

Examples:
  triagectl rank --jobs jobs.yaml --catalog parts.yaml --rules priority.yaml
  triagectl reserve --jobs jobs.yaml --catalog parts.yaml
  triagectl reorder --catalog parts.yaml --threshold 5`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = logger.Level(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&jobsFile, "jobs", "", "Repair jobs snapshot file")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "Parts catalog snapshot file")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "Priority config file (defaults when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

func loadPriority() error {
	cfg, err := service.LoadPriorityConfig(rulesFile)
	if err != nil {
		return err
	}
	priority = cfg
	logger.Debug().Int("rules", len(cfg.Rules)).Msg("priority config loaded")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
