package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/repairdesk/backend/internal/models"
)

func readSnapshot(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, out)
	} else {
		err = yaml.Unmarshal(b, out)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadJobs() ([]models.RepairJob, error) {
	if jobsFile == "" {
		return nil, fmt.Errorf("--jobs is required")
	}
	var jobs []models.RepairJob
	if err := readSnapshot(jobsFile, &jobs); err != nil {
		return nil, err
	}
	logger.Debug().Int("jobs", len(jobs)).Str("file", jobsFile).Msg("jobs loaded")
	return jobs, nil
}

// loadCatalog returns nil without --catalog so callers can tell "no catalog"
// from "empty catalog".
func loadCatalog(required bool) ([]models.ProductStock, error) {
	if catalogFile == "" {
		if required {
			return nil, fmt.Errorf("--catalog is required")
		}
		return nil, nil
	}
	catalog := []models.ProductStock{}
	if err := readSnapshot(catalogFile, &catalog); err != nil {
		return nil, err
	}
	logger.Debug().Int("products", len(catalog)).Str("file", catalogFile).Msg("catalog loaded")
	return catalog, nil
}
