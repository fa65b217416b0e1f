package models

import "time"

type RepairJob struct {
	ID                  string    `json:"id" yaml:"id" validate:"required"`
	CustomerName        string    `json:"customer_name,omitempty" yaml:"customer_name,omitempty"`
	CustomerPhone       string    `json:"customer_phone,omitempty" yaml:"customer_phone,omitempty"`
	CustomerEmail       string    `json:"customer_email,omitempty" yaml:"customer_email,omitempty"`
	DeviceModel         string    `json:"device_model" yaml:"device_model"`
	DeviceType          string    `json:"device_type" yaml:"device_type"`
	Issue               string    `json:"issue" yaml:"issue"`
	Urgency             *int      `json:"urgency,omitempty" yaml:"urgency,omitempty"`
	HistoricalValue     float64   `json:"historical_value" yaml:"historical_value"`
	TechnicalComplexity *int      `json:"technical_complexity,omitempty" yaml:"technical_complexity,omitempty"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	Stage               string    `json:"stage,omitempty" yaml:"stage,omitempty"`
	EstimatedHours      *float64  `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	TechnicianID        string    `json:"technician_id,omitempty" yaml:"technician_id,omitempty"`
	TechnicianName      string    `json:"technician_name,omitempty" yaml:"technician_name,omitempty"`
}

type ComponentType string

const (
	ComponentNone    ComponentType = ""
	ComponentScreen  ComponentType = "screen"
	ComponentBattery ComponentType = "battery"
	ComponentPort    ComponentType = "port"
)

type ProductStock struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Stock         int           `json:"stock" yaml:"stock"`
	ComponentType ComponentType `json:"component_type,omitempty" yaml:"component_type,omitempty"`
	SupplierName  string        `json:"supplier_name,omitempty" yaml:"supplier_name,omitempty"`
	Price         float64       `json:"price" yaml:"price"`
}

type PriorityWeights struct {
	Urgency             float64 `json:"urgency" yaml:"urgency" validate:"gte=0"`
	WaitTime            float64 `json:"wait_time" yaml:"wait_time" validate:"gte=0"`
	HistoricalValue     float64 `json:"historical_value" yaml:"historical_value" validate:"gte=0"`
	TechnicalComplexity float64 `json:"technical_complexity" yaml:"technical_complexity" validate:"gte=0"`
}

// RuleCondition fields are ANDed; a zero field does not constrain the match.
type RuleCondition struct {
	Stage         string `json:"stage,omitempty" yaml:"stage,omitempty"`
	ModelContains string `json:"model_contains,omitempty" yaml:"model_contains,omitempty"`
	IssueContains string `json:"issue_contains,omitempty" yaml:"issue_contains,omitempty"`
	MinUrgency    int    `json:"min_urgency,omitempty" yaml:"min_urgency,omitempty"`
}

type RuleEffect struct {
	Bonus      float64  `json:"bonus,omitempty" yaml:"bonus,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

type PriorityRule struct {
	ID     string        `json:"id" yaml:"id" validate:"required"`
	Name   string        `json:"name" yaml:"name"`
	When   RuleCondition `json:"when" yaml:"when"`
	Effect RuleEffect    `json:"effect" yaml:"effect"`
}

type PriorityConfig struct {
	Weights PriorityWeights `json:"weights" yaml:"weights"`
	Rules   []PriorityRule  `json:"rules" yaml:"rules" validate:"dive"`
}

type DurationPrediction struct {
	Hours      float64  `json:"hours"`
	Confidence float64  `json:"confidence"`
	Rationale  []string `json:"rationale"`
}

type DeviceModelStatistics struct {
	DeviceModel string     `json:"device_model"`
	Samples     int        `json:"samples"`
	MeanHours   float64    `json:"mean_hours"`
	StdDevHours float64    `json:"std_dev_hours"`
	Interval    [2]float64 `json:"interval_95"`
}

type SymptomCorrelation struct {
	Symptom     string  `json:"symptom"`
	Correlation float64 `json:"correlation"`
}

const (
	ReservationReserved = "reserved"
	ReservationExpired  = "expired"
	ReservationConsumed = "consumed"
)

type InventoryReservation struct {
	ID          string    `json:"id"`
	RepairJobID string    `json:"repair_job_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	ReservedAt  time.Time `json:"reserved_at"`
	Status      string    `json:"status"`
}

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	UnknownProductID = "unknown"
)

type SupplierSuggestion struct {
	Name         string `json:"name"`
	LeadTimeDays int    `json:"lead_time_days"`
}

type InventoryAlert struct {
	ID        string              `json:"id"`
	ProductID string              `json:"product_id"`
	Severity  string              `json:"severity"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"created_at"`
	Supplier  *SupplierSuggestion `json:"supplier,omitempty"`
}

type CostReport struct {
	ByModel   map[string]float64 `json:"by_model"`
	ByFailure map[string]float64 `json:"by_failure"`
}

type PriorityLogEntry struct {
	RepairJobID string    `json:"repair_job_id"`
	Timestamp   time.Time `json:"timestamp"`
	Score       *float64  `json:"score,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// ScoredJob is one ranked job together with the parts of its score.
type ScoredJob struct {
	Job          RepairJob          `json:"job"`
	Score        float64            `json:"score"`
	BaseScore    float64            `json:"base_score"`
	DurationBump float64            `json:"duration_bump"`
	Penalty      float64            `json:"availability_penalty"`
	Prediction   DurationPrediction `json:"prediction"`
	Component    ComponentType      `json:"component,omitempty"`
}

type TrainingResult struct {
	Status       string `json:"status"`
	Samples      int    `json:"samples"`
	ModelVersion string `json:"model_version"`
}
