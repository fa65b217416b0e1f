package service

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/repairdesk/backend/internal/models"
)

type priorityFile struct {
	Weights *models.PriorityWeights `yaml:"weights"`
	Rules   []models.PriorityRule   `yaml:"rules"`
}

// LoadPriorityConfig reads weights and rules from a YAML file. An empty path
// yields the defaults, and any weight the file leaves out keeps its default
// value. Rules keep the order they have in the file.
func LoadPriorityConfig(path string) (models.PriorityConfig, error) {
	if path == "" {
		return DefaultPriorityConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return models.PriorityConfig{}, fmt.Errorf("read priority config: %w", err)
	}
	return ParsePriorityConfig(b)
}

func ParsePriorityConfig(b []byte) (models.PriorityConfig, error) {
	cfg := DefaultPriorityConfig()
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, nil
	}
	// Fields missing from the weights block keep these values.
	defaults := cfg.Weights
	f := priorityFile{Weights: &defaults}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return models.PriorityConfig{}, fmt.Errorf("parse priority config: %w", err)
	}
	if f.Weights != nil {
		cfg.Weights = *f.Weights
	}
	if f.Rules != nil {
		cfg.Rules = f.Rules
	}
	return cfg, nil
}
