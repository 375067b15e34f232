package sustainability

import (
	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// =====================================================
// Request / Response Types
// =====================================================

// RecordEmissionRequest records one footprint for a warehouse
type RecordEmissionRequest struct {
	WarehouseID       string              `json:"warehouse_id" binding:"required"`
	RecordDate        string              `json:"record_date" binding:"required"`
	EmissionType      domain.EmissionType `json:"emission_type" binding:"required"`
	EmissionsBySource map[string]float64  `json:"emissions_by_source"`
	CalculationMethod string              `json:"calculation_method,omitempty"`
	Notes             string              `json:"notes,omitempty"`
}

// CreateInitiativeRequest creates a green initiative
type CreateInitiativeRequest struct {
	Name                  string  `json:"name" binding:"required"`
	Description           string  `json:"description"`
	StartDate             string  `json:"start_date" binding:"required"`
	TargetCompletionDate  string  `json:"target_completion_date" binding:"required"`
	TargetReductionCO2eKg float64 `json:"target_reduction_co2e_kg"`
	EstimatedCost         float64 `json:"estimated_cost"`
	Owner                 string  `json:"owner"`
}

// ActivityKind selects the calculator used for an activity
type ActivityKind string

const (
	ActivityKindFuel           ActivityKind = "fuel"
	ActivityKindElectricity    ActivityKind = "electricity"
	ActivityKindTransportation ActivityKind = "transportation"
	ActivityKindPackaging      ActivityKind = "packaging"
)

// CalculateEmissionRequest describes raw activity data to convert to CO2e
type CalculateEmissionRequest struct {
	ActivityType string       `json:"activity_type" binding:"required"`
	Kind         ActivityKind `json:"kind" binding:"required"`
	// Fuel type, vehicle type or material type depending on Kind
	Variant    string  `json:"variant,omitempty"`
	Quantity   float64 `json:"quantity"`
	DistanceKm float64 `json:"distance_km,omitempty"`
	LoadTons   float64 `json:"load_tons,omitempty"`
}

// CalculateEmissionResponse is the scope and mass computed for an activity
type CalculateEmissionResponse struct {
	ActivityType string              `json:"activity_type"`
	EmissionType domain.EmissionType `json:"emission_type"`
	CO2eKg       float64             `json:"co2e_kg"`
}

// ReportAssessment summarizes a report's qualitative performance
type ReportAssessment struct {
	ReportID        string                 `json:"report_id"`
	WarehouseID     string                 `json:"warehouse_id"`
	ReportMonth     domain.YearMonth       `json:"report_month"`
	TotalCO2eKg     float64                `json:"total_co2e_kg"`
	TotalCO2eTons   float64                `json:"total_co2e_tons"`
	Performance     domain.PerformanceTier `json:"performance"`
	OrdersProcessed int                    `json:"orders_processed"`
	CarbonIntensity float64                `json:"carbon_intensity_kg_per_order"`
}

// ReportListResponse is the list of reports for a warehouse and year
type ReportListResponse struct {
	WarehouseID string              `json:"warehouse_id"`
	Year        int                 `json:"year"`
	Reports     []*domain.ESGReport `json:"reports"`
	TotalCount  int                 `json:"total_count"`
}
