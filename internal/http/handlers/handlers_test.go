package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/repairdesk/backend/internal/ai"
	"github.com/repairdesk/backend/internal/db"
	"github.com/repairdesk/backend/internal/models"
	"github.com/repairdesk/backend/internal/service"
)

var testNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fakeStore struct {
	jobs      []models.RepairJob
	products  []models.ProductStock
	pingErr   error
	commitErr error
	committed []models.InventoryReservation
	taken     map[string]int
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ListRepairJobs(ctx context.Context, stage string, limit int) ([]models.RepairJob, error) {
	out := []models.RepairJob{}
	for _, j := range f.jobs {
		if stage == "" || j.Stage == stage {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStore) GetRepairJob(ctx context.Context, id string) (models.RepairJob, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return models.RepairJob{}, pgx.ErrNoRows
}

func (f *fakeStore) ListProducts(ctx context.Context) ([]models.ProductStock, error) {
	return f.products, nil
}

func (f *fakeStore) CommitReservations(ctx context.Context, rs []models.InventoryReservation) (int, error) {
	if f.commitErr != nil {
		return 0, f.commitErr
	}
	n := 0
	for _, r := range rs {
		if f.hasCommitted(r.ID) {
			continue
		}
		f.committed = append(f.committed, r)
		if f.taken == nil {
			f.taken = map[string]int{}
		}
		f.taken[r.ProductID] += r.Quantity
		n++
	}
	return n, nil
}

func (f *fakeStore) hasCommitted(id string) bool {
	for _, r := range f.committed {
		if r.ID == id {
			return true
		}
	}
	return false
}

func intPtr(v int) *int { return &v }

func newTestHandler(store *fakeStore) *Handler {
	clock := func() time.Time { return testNow }
	return &Handler{
		Store:            store,
		Trainer:          ai.PlaceholderTrainer{ModelVersion: "test"},
		Scorer:           &service.PriorityScorer{Now: clock},
		Planner:          &service.ReservationPlanner{Now: clock},
		AuditLog:         service.NewPriorityAuditLog(),
		Priority:         service.DefaultPriorityConfig(),
		Validator:        validator.New(),
		Logger:           zerolog.Nop(),
		RequestTimeout:   time.Second,
		ReorderThreshold: service.DefaultReorderThreshold,
	}
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/priority/config", h.PriorityConfig)
	r.GET("/api/repairs/ranked", h.RepairsRanked)
	r.POST("/api/priority/score", h.PriorityScore)
	r.GET("/api/repairs/:id/prediction", h.RepairPrediction)
	r.GET("/api/repairs/:id/priority-log", h.RepairPriorityLog)
	r.GET("/api/inventory/reservations", h.ReservationsSuggest)
	r.POST("/api/inventory/reservations/commit", h.ReservationsCommit)
	r.GET("/api/inventory/reorder-alerts", h.ReorderAlerts)
	r.POST("/api/diagnosis/suggest", h.DiagnosisSuggest)
	r.POST("/api/model/train", h.ModelTrain)
	return r
}

func sampleStore() *fakeStore {
	return &fakeStore{
		jobs: []models.RepairJob{
			{ID: "r1", DeviceModel: "iPhone 12", Issue: "pantalla rota", Urgency: intPtr(2), CreatedAt: testNow.Add(-2 * time.Hour)},
			{ID: "r2", DeviceModel: "Moto G", Issue: "no enciende", Urgency: intPtr(5), CreatedAt: testNow.Add(-48 * time.Hour)},
			{ID: "r3", DeviceModel: "Galaxy A52", Issue: "batería hinchada", Urgency: intPtr(3), CreatedAt: testNow.Add(-5 * time.Hour)},
		},
		products: []models.ProductStock{
			{ID: "scr-1", ComponentType: models.ComponentScreen, Stock: 4, Price: 120},
			{ID: "bat-1", ComponentType: models.ComponentBattery, Stock: 0, SupplierName: "Baterías Sur", Price: 35},
		},
	}
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRepairsRankedRecordsAuditTrail(t *testing.T) {
	h := newTestHandler(sampleStore())
	w := doRequest(newTestRouter(h), http.MethodGet, "/api/repairs/ranked", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RankedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("expected 3 ranked jobs, got %d", len(resp.Jobs))
	}
	if resp.Jobs[0].Job.ID != "r2" {
		t.Fatalf("expected most urgent repair first, got %s", resp.Jobs[0].Job.ID)
	}
	for i := 1; i < len(resp.Jobs); i++ {
		if resp.Jobs[i].Score > resp.Jobs[i-1].Score {
			t.Fatalf("expected descending scores, got %+v", resp.Jobs)
		}
	}

	entries := h.AuditLog.ForJob("r3")
	if len(entries) != 1 || entries[0].Score == nil {
		t.Fatalf("expected one scored audit entry for r3, got %+v", entries)
	}

	w = doRequest(newTestRouter(h), http.MethodGet, "/api/repairs/r3/priority-log", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("parts penalty")) {
		t.Fatalf("expected r3 audit log with parts penalty, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPriorityScoreRejectsNegativeWeights(t *testing.T) {
	h := newTestHandler(sampleStore())
	body := map[string]any{
		"jobs":   []map[string]any{{"id": "x", "issue": "pantalla"}},
		"config": map[string]any{"weights": map[string]any{"urgency": -1}},
	}
	w := doRequest(newTestRouter(h), http.MethodPost, "/api/priority/score", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("VALIDATION_ERROR")) {
		t.Fatalf("expected VALIDATION_ERROR, got %s", w.Body.String())
	}
}

func TestPriorityScoreRequiresJobs(t *testing.T) {
	h := newTestHandler(sampleStore())
	w := doRequest(newTestRouter(h), http.MethodPost, "/api/priority/score", map[string]any{"jobs": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPriorityScoreWithCustomRules(t *testing.T) {
	h := newTestHandler(sampleStore())
	body := ScoreRequest{
		Jobs: []models.RepairJob{
			{ID: "low", Issue: "pantalla", DeviceModel: "iPhone", CreatedAt: testNow},
			{ID: "high", Issue: "no enciende", Urgency: intPtr(5), CreatedAt: testNow},
		},
		Config: &models.PriorityConfig{
			Weights: models.PriorityWeights{Urgency: 1},
			Rules: []models.PriorityRule{
				{ID: "iphone", When: models.RuleCondition{ModelContains: "IPHONE"}, Effect: models.RuleEffect{Bonus: 5}},
			},
		},
	}
	w := doRequest(newTestRouter(h), http.MethodPost, "/api/priority/score", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp RankedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Jobs[0].Job.ID != "low" || resp.Jobs[0].Score != 5 {
		t.Fatalf("expected rule bonus to lift iphone job to 5, got %+v", resp.Jobs[0])
	}
	if len(h.AuditLog.All()) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(h.AuditLog.All()))
	}
}

func TestRepairPredictionNotFound(t *testing.T) {
	h := newTestHandler(sampleStore())
	w := doRequest(newTestRouter(h), http.MethodGet, "/api/repairs/nope/prediction", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doRequest(newTestRouter(h), http.MethodGet, "/api/repairs/r1/prediction", nil)
	// pantalla rota: 4h base + 2h screen + 0.5h default complexity
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"hours":6.5`)) {
		t.Fatalf("unexpected prediction response %d: %s", w.Code, w.Body.String())
	}
}

func TestReservationsSuggestAndCommit(t *testing.T) {
	store := sampleStore()
	h := newTestHandler(store)
	r := newTestRouter(h)

	w := doRequest(r, http.MethodGet, "/api/inventory/reservations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp ReservationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// r1 gets the screen, r2 needs no part and takes the best-stocked product,
	// r3 hits the empty battery bin.
	if len(resp.Reservations) != 2 || len(resp.Alerts) != 1 {
		t.Fatalf("unexpected plan: %+v", resp.ReservationPlan)
	}
	if resp.Alerts[0].Severity != models.SeverityCritical || resp.Alerts[0].ProductID != "bat-1" {
		t.Fatalf("unexpected alert: %+v", resp.Alerts[0])
	}
	if resp.Costs.ByModel["iPhone 12"] != 120 {
		t.Fatalf("unexpected costs: %+v", resp.Costs)
	}

	var commit struct {
		Committed    int                           `json:"committed"`
		Reservations []models.InventoryReservation `json:"reservations"`
	}
	for attempt, want := range []int{1, 0} {
		w = doRequest(r, http.MethodPost, "/api/inventory/reservations/commit", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("commit %d: expected 200, got %d: %s", attempt, w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &commit); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if commit.Committed != want {
			t.Fatalf("commit %d: expected %d newly committed, got %d", attempt, want, commit.Committed)
		}
	}
	// r2 needs no specific part and must not take a screen.
	if len(commit.Reservations) != 1 || commit.Reservations[0].RepairJobID != "r1" {
		t.Fatalf("expected only r1 to be committable, got %+v", commit.Reservations)
	}
	if len(store.committed) != 1 || store.taken["scr-1"] != 1 {
		t.Fatalf("expected one screen taken once, got %+v", store.taken)
	}

	store.commitErr = fmt.Errorf("product scr-1: %w", db.ErrOutOfStock)
	w = doRequest(r, http.MethodPost, "/api/inventory/reservations/commit", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestReorderAlertsThreshold(t *testing.T) {
	h := newTestHandler(sampleStore())
	r := newTestRouter(h)

	w := doRequest(r, http.MethodGet, "/api/inventory/reorder-alerts", nil)
	var resp struct {
		Threshold int                     `json:"threshold"`
		Alerts    []models.InventoryAlert `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Threshold != 3 || len(resp.Alerts) != 1 || resp.Alerts[0].ProductID != "bat-1" {
		t.Fatalf("unexpected alerts: %+v", resp)
	}

	w = doRequest(r, http.MethodGet, "/api/inventory/reorder-alerts?threshold=10", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Alerts) != 2 {
		t.Fatalf("expected both products under threshold 10, got %+v", resp.Alerts)
	}

	w = doRequest(r, http.MethodGet, "/api/inventory/reorder-alerts?threshold=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDiagnosisSuggestAndTrain(t *testing.T) {
	h := newTestHandler(sampleStore())
	r := newTestRouter(h)

	w := doRequest(r, http.MethodPost, "/api/diagnosis/suggest", DiagnosisRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty issue, got %d", w.Code)
	}
	w = doRequest(r, http.MethodPost, "/api/diagnosis/suggest", DiagnosisRequest{Issue: "la pantalla parpadea"})
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("pantalla")) {
		t.Fatalf("unexpected diagnosis response %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodPost, "/api/model/train", nil)
	var res models.TrainingResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != "ok" || res.Samples != 3 {
		t.Fatalf("unexpected training result: %+v", res)
	}
}

func TestHealthzReportsStoreFailure(t *testing.T) {
	store := sampleStore()
	store.pingErr = fmt.Errorf("connection refused")
	w := doRequest(newTestRouter(newTestHandler(store)), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
