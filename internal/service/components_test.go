package service

import (
	"testing"

	"github.com/repairdesk/backend/internal/models"
)

func TestInferComponentType(t *testing.T) {
	cases := []struct {
		issue string
		want  models.ComponentType
	}{
		{"pantalla rota", models.ComponentScreen},
		{"no enciende", models.ComponentNone},
		{"BATERÍA hinchada", models.ComponentBattery},
		{"puerto de carga flojo", models.ComponentPort},
		{"pantalla y batería", models.ComponentScreen},
		{"", models.ComponentNone},
		{"USB port loose", models.ComponentPort},
		{"cable usb suelto", models.ComponentNone},
		// raw substring matching is an accepted limitation
		{"cliente puertorriqueño", models.ComponentPort},
	}
	for _, tc := range cases {
		if got := InferComponentType(tc.issue); got != tc.want {
			t.Fatalf("InferComponentType(%q) = %q, want %q", tc.issue, got, tc.want)
		}
	}
}

func TestCheckAvailability(t *testing.T) {
	catalog := []models.ProductStock{
		{ID: "bat-1", ComponentType: models.ComponentBattery, Stock: 0},
		{ID: "scr-1", ComponentType: models.ComponentScreen, Stock: 2},
	}

	res := CheckAvailability(models.RepairJob{Issue: "no enciende"}, catalog)
	if !res.Available || res.Product != nil {
		t.Fatalf("expected available with no product, got %+v", res)
	}

	res = CheckAvailability(models.RepairJob{Issue: "pantalla rota"}, catalog)
	if !res.Available || res.Product == nil || res.Product.ID != "scr-1" {
		t.Fatalf("expected scr-1 available, got %+v", res)
	}

	res = CheckAvailability(models.RepairJob{Issue: "batería"}, catalog)
	if res.Available || res.Product == nil || res.Product.ID != "bat-1" {
		t.Fatalf("expected bat-1 unavailable, got %+v", res)
	}

	res = CheckAvailability(models.RepairJob{Issue: "puerto"}, catalog)
	if res.Available || res.Product != nil {
		t.Fatalf("expected unavailable with no product, got %+v", res)
	}
}

func TestCheckAvailabilityUntaggedProductMatchesAnything(t *testing.T) {
	catalog := []models.ProductStock{{ID: "kit", Stock: 1}}
	res := CheckAvailability(models.RepairJob{Issue: "puerto"}, catalog)
	if !res.Available || res.Product == nil || res.Product.ID != "kit" {
		t.Fatalf("expected untagged kit to match, got %+v", res)
	}
}
