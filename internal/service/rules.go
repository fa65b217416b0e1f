package service

import (
	"strings"

	"github.com/repairdesk/backend/internal/models"
)

type jobPredicate func(models.RepairJob) bool

// compileCondition turns a rule condition into the list of checks it implies.
// An empty condition compiles to no checks and therefore matches every job.
func compileCondition(c models.RuleCondition) []jobPredicate {
	var preds []jobPredicate
	if c.Stage != "" {
		stage := c.Stage
		preds = append(preds, func(j models.RepairJob) bool {
			return j.Stage == stage
		})
	}
	if c.ModelContains != "" {
		needle := strings.ToLower(c.ModelContains)
		preds = append(preds, func(j models.RepairJob) bool {
			return strings.Contains(strings.ToLower(j.DeviceModel), needle)
		})
	}
	if c.IssueContains != "" {
		needle := strings.ToLower(c.IssueContains)
		preds = append(preds, func(j models.RepairJob) bool {
			return strings.Contains(strings.ToLower(j.Issue), needle)
		})
	}
	if c.MinUrgency > 0 {
		threshold := c.MinUrgency
		preds = append(preds, func(j models.RepairJob) bool {
			return urgencyOf(j) >= threshold
		})
	}
	return preds
}

func allOf(preds []jobPredicate, job models.RepairJob) bool {
	for _, p := range preds {
		if !p(job) {
			return false
		}
	}
	return true
}

func RuleMatches(rule models.PriorityRule, job models.RepairJob) bool {
	return allOf(compileCondition(rule.When), job)
}

// applyRules runs rules in order. Each matching rule adds its bonus and then
// applies its multiplier before the next rule is evaluated.
func applyRules(score float64, rules []models.PriorityRule, job models.RepairJob) float64 {
	for _, r := range rules {
		if !RuleMatches(r, job) {
			continue
		}
		score += r.Effect.Bonus
		if r.Effect.Multiplier != nil {
			score *= *r.Effect.Multiplier
		}
	}
	return score
}
