package ai

import (
	"context"

	"github.com/repairdesk/backend/internal/models"
)

// PlaceholderTrainer accepts training data and learns nothing. It reports
// "ok" with the sample count so callers can wire the endpoint today without
// depending on learned behaviour.
type PlaceholderTrainer struct {
	ModelVersion string
}

func (p PlaceholderTrainer) Train(ctx context.Context, jobs []models.RepairJob) (models.TrainingResult, error) {
	if err := ctx.Err(); err != nil {
		return models.TrainingResult{}, err
	}
	version := p.ModelVersion
	if version == "" {
		version = "placeholder-v0"
	}
	return models.TrainingResult{
		Status:       "ok",
		Samples:      len(jobs),
		ModelVersion: version,
	}, nil
}
