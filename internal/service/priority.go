package service

import (
	"math"
	"sort"
	"time"

	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/utils"
)

const (
	maxWaitHours       = 240.0
	maxHistoricalValue = 10000.0

	durationBumpCap      = 0.15
	missingPartPenalty   = 0.1
	outOfStockPenalty    = 0.3
	hoursPerDurationUnit = 24.0
)

// DefaultPriorityConfig returns a fresh config each call; callers may mutate it.
func DefaultPriorityConfig() models.PriorityConfig {
	return models.PriorityConfig{
		Weights: models.PriorityWeights{
			Urgency:             0.4,
			WaitTime:            0.3,
			HistoricalValue:     0.2,
			TechnicalComplexity: 0.1,
		},
		Rules: []models.PriorityRule{},
	}
}

// PriorityScorer ranks repair jobs. Scores are only comparable between jobs
// scored with the same PriorityConfig.
type PriorityScorer struct {
	Now func() time.Time
}

func NewPriorityScorer() *PriorityScorer {
	return &PriorityScorer{Now: time.Now}
}

func (s *PriorityScorer) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *PriorityScorer) CalculateScore(job models.RepairJob, cfg models.PriorityConfig) float64 {
	return s.calculateScoreAt(job, cfg, s.now())
}

func (s *PriorityScorer) calculateScoreAt(job models.RepairJob, cfg models.PriorityConfig, now time.Time) float64 {
	waitHours := math.Max(0, now.Sub(job.CreatedAt).Hours())
	complexity, _ := complexityOf(job)

	w := cfg.Weights
	score := w.Urgency*utils.Normalize(float64(urgencyOf(job)), 1, 5) +
		w.WaitTime*utils.Normalize(waitHours, 0, maxWaitHours) +
		w.HistoricalValue*utils.Normalize(job.HistoricalValue, 0, maxHistoricalValue) +
		w.TechnicalComplexity*utils.Normalize(float64(complexity), 1, 5)

	return applyRules(score, cfg.Rules, job)
}

// SortByPriority returns a new slice ordered by descending score. Equal scores
// go to the job created first, then to the lower ID.
func (s *PriorityScorer) SortByPriority(jobs []models.RepairJob, cfg models.PriorityConfig) []models.RepairJob {
	ranked := s.RankByPriority(jobs, cfg)
	out := make([]models.RepairJob, 0, len(ranked))
	for _, sj := range ranked {
		out = append(out, sj.Job)
	}
	return out
}

// RankByPriority orders jobs like SortByPriority and keeps the score each one
// was sorted by. All jobs are scored against a single clock reading.
func (s *PriorityScorer) RankByPriority(jobs []models.RepairJob, cfg models.PriorityConfig) []models.ScoredJob {
	now := s.now()
	scored := make([]models.ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		score := s.calculateScoreAt(j, cfg, now)
		scored = append(scored, models.ScoredJob{Job: j, Score: score, BaseScore: score})
	}
	sortScored(scored)
	return scored
}

func (s *PriorityScorer) CalculateScoreWithInventory(job models.RepairJob, cfg models.PriorityConfig, catalog []models.ProductStock) float64 {
	return s.scoreWithInventoryAt(job, cfg, catalog, s.now()).Score
}

// RankWithInventory scores every job with CalculateScoreWithInventory and
// returns them best first, keeping the breakdown of each score.
func (s *PriorityScorer) RankWithInventory(jobs []models.RepairJob, cfg models.PriorityConfig, catalog []models.ProductStock) []models.ScoredJob {
	now := s.now()
	out := make([]models.ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, s.scoreWithInventoryAt(j, cfg, catalog, now))
	}
	sortScored(out)
	return out
}

func (s *PriorityScorer) scoreWithInventoryAt(job models.RepairJob, cfg models.PriorityConfig, catalog []models.ProductStock, now time.Time) models.ScoredJob {
	base := s.calculateScoreAt(job, cfg, now)
	prediction := PredictDuration(job)
	bump := math.Min(prediction.Hours/hoursPerDurationUnit, 1) * durationBumpCap
	penalty := availabilityPenalty(job, catalog)

	return models.ScoredJob{
		Job:          job,
		Score:        utils.RoundTo(base+bump-penalty, 4),
		BaseScore:    base,
		DurationBump: bump,
		Penalty:      penalty,
		Prediction:   prediction,
		Component:    InferComponentType(job.Issue),
	}
}

func availabilityPenalty(job models.RepairJob, catalog []models.ProductStock) float64 {
	avail := CheckAvailability(job, catalog)
	switch {
	case avail.Available:
		return 0
	case avail.Product == nil:
		return missingPartPenalty
	default:
		return outOfStockPenalty
	}
}

func sortScored(scored []models.ScoredJob) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Job.CreatedAt.Equal(b.Job.CreatedAt) {
			return a.Job.CreatedAt.Before(b.Job.CreatedAt)
		}
		return a.Job.ID < b.Job.ID
	})
}
