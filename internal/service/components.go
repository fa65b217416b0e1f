package service

import (
	"strings"

	"github.com/repairdesk/backend/internal/models"
)

// ComponentFamily is a spare-part category and the issue keywords that imply it.
// Matching is raw substring search, so a keyword embedded in a longer word
// ("puertorriqueño") also matches.
type ComponentFamily struct {
	Type     models.ComponentType
	Keywords []string
}

var (
	screenFamily  = ComponentFamily{Type: models.ComponentScreen, Keywords: []string{"pantalla", "screen", "display"}}
	batteryFamily = ComponentFamily{Type: models.ComponentBattery, Keywords: []string{"batería", "bateria", "battery"}}
	portFamily    = ComponentFamily{Type: models.ComponentPort, Keywords: []string{"puerto", "charging port", "usb port"}}
)

// componentFamilies is checked in order; the first family that matches wins.
var componentFamilies = []ComponentFamily{screenFamily, batteryFamily, portFamily}

// matches expects text already lower-cased.
func (f ComponentFamily) matches(text string) bool {
	for _, kw := range f.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func InferComponentType(issue string) models.ComponentType {
	text := strings.ToLower(issue)
	for _, f := range componentFamilies {
		if f.matches(text) {
			return f.Type
		}
	}
	return models.ComponentNone
}

type Availability struct {
	Available bool                 `json:"available"`
	Product   *models.ProductStock `json:"product,omitempty"`
}

// CheckAvailability reports whether the part implied by the job's issue is in
// stock. A job that needs no specific part is always available.
func CheckAvailability(job models.RepairJob, catalog []models.ProductStock) Availability {
	needed := InferComponentType(job.Issue)
	if needed == models.ComponentNone {
		return Availability{Available: true}
	}
	for i := range catalog {
		if productMatches(catalog[i], needed) {
			p := catalog[i]
			return Availability{Available: p.Stock > 0, Product: &p}
		}
	}
	return Availability{Available: false}
}

// productMatches treats an untagged product as fitting any category.
func productMatches(p models.ProductStock, needed models.ComponentType) bool {
	if needed == models.ComponentNone || p.ComponentType == models.ComponentNone {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(string(p.ComponentType)), string(needed))
}
