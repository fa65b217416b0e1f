package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/utils"
)

const (
	baseRepairHours     = 4.0
	hoursPerComplexity  = 0.5
	confidenceZScore    = 1.96
	unknownDeviceModel  = "unknown"
	suggestionsFallback = 3
)

// PredictionConfidence is a fixed placeholder. It does not adapt to the input
// and must not be read as a calibrated probability.
const PredictionConfidence = 0.6

type durationFactor struct {
	component ComponentFamily
	hours     float64
	label     string
}

var durationFactors = []durationFactor{
	{component: screenFamily, hours: 2, label: "screen damage"},
	{component: batteryFamily, hours: 1.5, label: "battery fault"},
	{component: portFamily, hours: 2.5, label: "port repair"},
}

var symptomVocabulary = []string{"pantalla", "batería", "puerto", "no enciende", "agua"}

func PredictDuration(job models.RepairJob) models.DurationPrediction {
	issue := strings.ToLower(job.Issue)
	hours := baseRepairHours
	rationale := []string{}

	for _, f := range durationFactors {
		if f.component.matches(issue) {
			hours += f.hours
			rationale = append(rationale, fmt.Sprintf("%s detected (+%gh)", f.label, f.hours))
		}
	}

	complexity, explicit := complexityOf(job)
	extra := hoursPerComplexity * float64(complexity)
	hours += extra
	if explicit {
		rationale = append(rationale, fmt.Sprintf("technical complexity %d (+%gh)", complexity, extra))
	}

	return models.DurationPrediction{
		Hours:      utils.RoundTo(hours, 1),
		Confidence: PredictionConfidence,
		Rationale:  rationale,
	}
}

func EstimateDurationStatistics(jobs []models.RepairJob) []models.DeviceModelStatistics {
	samples := map[string][]float64{}
	for _, j := range jobs {
		model := strings.TrimSpace(j.DeviceModel)
		if model == "" {
			model = unknownDeviceModel
		}
		hours := PredictDuration(j).Hours
		if j.EstimatedHours != nil {
			hours = *j.EstimatedHours
		}
		samples[model] = append(samples[model], hours)
	}

	out := make([]models.DeviceModelStatistics, 0, len(samples))
	for model, hs := range samples {
		mean, std := meanStdDev(hs)
		out = append(out, models.DeviceModelStatistics{
			DeviceModel: model,
			Samples:     len(hs),
			MeanHours:   utils.RoundTo(mean, 2),
			StdDevHours: utils.RoundTo(std, 2),
			Interval: [2]float64{
				utils.RoundTo(math.Max(0, mean-confidenceZScore*std), 2),
				utils.RoundTo(mean+confidenceZScore*std, 2),
			},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DeviceModel < out[j].DeviceModel
	})
	return out
}

func CorrelateSymptoms(jobs []models.RepairJob) []models.SymptomCorrelation {
	out := make([]models.SymptomCorrelation, 0, len(symptomVocabulary))
	for _, symptom := range symptomVocabulary {
		hits := 0
		for _, j := range jobs {
			if strings.Contains(strings.ToLower(j.Issue), symptom) {
				hits++
			}
		}
		corr := 0.0
		if len(jobs) > 0 {
			corr = utils.RoundTo(float64(hits)/float64(len(jobs)), 2)
		}
		out = append(out, models.SymptomCorrelation{Symptom: symptom, Correlation: corr})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Correlation > out[j].Correlation
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// SuggestDiagnosis prefers symptoms present in issue. Without any textual match
// it falls back to the strongest population symptoms at half weight, which is a
// heuristic and not a statistical estimate.
func SuggestDiagnosis(issue string, jobs []models.RepairJob) []models.SymptomCorrelation {
	population := CorrelateSymptoms(jobs)
	text := strings.ToLower(issue)

	matched := []models.SymptomCorrelation{}
	for _, s := range population {
		if strings.Contains(text, s.Symptom) {
			matched = append(matched, s)
		}
	}
	if len(matched) > 0 {
		return matched
	}

	n := suggestionsFallback
	if len(population) < n {
		n = len(population)
	}
	out := make([]models.SymptomCorrelation, 0, n)
	for _, s := range population[:n] {
		out = append(out, models.SymptomCorrelation{
			Symptom:     s.Symptom,
			Correlation: utils.RoundTo(s.Correlation/2, 2),
		})
	}
	return out
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}

// urgencyOf and complexityOf default only absent values. Out-of-range values
// are kept; the scorer clamps them when normalising.
func urgencyOf(job models.RepairJob) int {
	if job.Urgency == nil {
		return 1
	}
	return *job.Urgency
}

// complexityOf reports the effective complexity and whether the job set it.
func complexityOf(job models.RepairJob) (int, bool) {
	if job.TechnicalComplexity == nil {
		return 1, false
	}
	return *job.TechnicalComplexity, true
}
