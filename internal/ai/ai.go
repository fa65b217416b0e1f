package ai

import (
	"context"

	"github.com/repairdesk/backend/internal/models"
)

// Trainer is the hook for a learned duration model. Nothing in the scoring
// path depends on it.
type Trainer interface {
	Train(ctx context.Context, jobs []models.RepairJob) (models.TrainingResult, error)
}
