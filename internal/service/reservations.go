package service

import (
	"fmt"
	"time"

	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/utils"
)

const (
	DefaultReorderThreshold = 3

	genericSupplierName  = "generic supplier"
	genericLeadTimeDays  = 3
	fallbackLeadTimeDays = 7
	otherFailureBucket   = "other"
)

// ReservationPlanner proposes part reservations for a batch of jobs. It never
// decrements stock: two jobs competing for the last unit both get a
// reservation, and committing the plan atomically is up to the caller.
type ReservationPlanner struct {
	Now func() time.Time
}

type ReservationPlan struct {
	Reservations []models.InventoryReservation `json:"reservations"`
	Alerts       []models.InventoryAlert       `json:"alerts"`
}

func NewReservationPlanner() *ReservationPlanner {
	return &ReservationPlanner{Now: time.Now}
}

func (p *ReservationPlanner) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

func (p *ReservationPlanner) SuggestReservations(jobs []models.RepairJob, catalog []models.ProductStock) ReservationPlan {
	now := p.now()
	plan := ReservationPlan{
		Reservations: []models.InventoryReservation{},
		Alerts:       []models.InventoryAlert{},
	}

	for _, j := range jobs {
		needed := InferComponentType(j.Issue)
		best, ok := bestCandidate(catalog, needed)
		if !ok {
			plan.Alerts = append(plan.Alerts, models.InventoryAlert{
				ID:        utils.StableID("alt", j.ID, models.UnknownProductID),
				ProductID: models.UnknownProductID,
				Severity:  models.SeverityWarning,
				Message:   fmt.Sprintf("No catalog part matches repair %s (%s)", j.ID, componentLabel(needed)),
				CreatedAt: now,
				Supplier:  &models.SupplierSuggestion{Name: genericSupplierName, LeadTimeDays: genericLeadTimeDays},
			})
			continue
		}
		if best.Stock <= 0 {
			supplier := best.SupplierName
			if supplier == "" {
				supplier = genericSupplierName
			}
			plan.Alerts = append(plan.Alerts, models.InventoryAlert{
				ID:        utils.StableID("alt", j.ID, best.ID),
				ProductID: best.ID,
				Severity:  models.SeverityCritical,
				Message:   fmt.Sprintf("Product %s is out of stock for repair %s", best.ID, j.ID),
				CreatedAt: now,
				Supplier:  &models.SupplierSuggestion{Name: supplier, LeadTimeDays: fallbackLeadTimeDays},
			})
			continue
		}
		plan.Reservations = append(plan.Reservations, models.InventoryReservation{
			ID:          utils.StableID("rsv", j.ID, best.ID),
			RepairJobID: j.ID,
			ProductID:   best.ID,
			Quantity:    1,
			ReservedAt:  now,
			Status:      models.ReservationReserved,
		})
	}
	return plan
}

// CommittableReservations keeps the reservations whose job needs a specific
// part. Jobs with no inferred component get a planning suggestion only and are
// never allowed to take stock.
func CommittableReservations(reservations []models.InventoryReservation, jobs []models.RepairJob) []models.InventoryReservation {
	needs := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		needs[j.ID] = InferComponentType(j.Issue) != models.ComponentNone
	}
	out := []models.InventoryReservation{}
	for _, r := range reservations {
		if needs[r.RepairJobID] {
			out = append(out, r)
		}
	}
	return out
}

// GenerateReorderAlerts flags every product at or below threshold, independent
// of any job batch.
func (p *ReservationPlanner) GenerateReorderAlerts(catalog []models.ProductStock, threshold int) []models.InventoryAlert {
	now := p.now()
	out := []models.InventoryAlert{}
	for _, prod := range catalog {
		if prod.Stock > threshold {
			continue
		}
		severity := models.SeverityWarning
		msg := fmt.Sprintf("Product %s is low on stock (%d left)", prod.ID, prod.Stock)
		if prod.Stock <= 0 {
			severity = models.SeverityCritical
			msg = fmt.Sprintf("Product %s is out of stock", prod.ID)
		}
		alert := models.InventoryAlert{
			ID:        utils.StableID("reo", prod.ID),
			ProductID: prod.ID,
			Severity:  severity,
			Message:   msg,
			CreatedAt: now,
		}
		if prod.SupplierName != "" {
			alert.Supplier = &models.SupplierSuggestion{Name: prod.SupplierName, LeadTimeDays: genericLeadTimeDays}
		}
		out = append(out, alert)
	}
	return out
}

// BuildCostReport sums reserved part prices by device model and by inferred
// failure category. Reservations whose job or product is gone are skipped.
func BuildCostReport(reservations []models.InventoryReservation, catalog []models.ProductStock, jobs []models.RepairJob) models.CostReport {
	report := models.CostReport{
		ByModel:   map[string]float64{},
		ByFailure: map[string]float64{},
	}
	products := make(map[string]models.ProductStock, len(catalog))
	for _, p := range catalog {
		products[p.ID] = p
	}
	jobsByID := make(map[string]models.RepairJob, len(jobs))
	for _, j := range jobs {
		jobsByID[j.ID] = j
	}

	for _, r := range reservations {
		job, ok := jobsByID[r.RepairJobID]
		if !ok {
			continue
		}
		prod, ok := products[r.ProductID]
		if !ok {
			continue
		}
		failure := string(InferComponentType(job.Issue))
		if failure == "" {
			failure = otherFailureBucket
		}
		report.ByModel[job.DeviceModel] += prod.Price
		report.ByFailure[failure] += prod.Price
	}
	return report
}

// bestCandidate picks the matching product with the most stock, preferring the
// cheaper one on a tie and catalog order after that.
func bestCandidate(catalog []models.ProductStock, needed models.ComponentType) (models.ProductStock, bool) {
	var (
		best  models.ProductStock
		found bool
	)
	for _, p := range catalog {
		if !productMatches(p, needed) {
			continue
		}
		if !found || p.Stock > best.Stock || (p.Stock == best.Stock && p.Price < best.Price) {
			best = p
			found = true
		}
	}
	return best, found
}

func componentLabel(c models.ComponentType) string {
	if c == models.ComponentNone {
		return "no specific part"
	}
	return string(c)
}
