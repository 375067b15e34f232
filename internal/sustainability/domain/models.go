// Package domain holds the sustainability entities and their derived values.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// =====================================================
// Enums and Constants
// =====================================================

// EmissionType is the regulatory scope an emission is attributed to
type EmissionType string

const (
	EmissionTypeScope1Direct         EmissionType = "SCOPE1_DIRECT"         // owned vehicles, forklifts
	EmissionTypeScope2Energy         EmissionType = "SCOPE2_ENERGY"         // purchased electricity
	EmissionTypeScope3Transportation EmissionType = "SCOPE3_TRANSPORTATION" // third-party logistics
	EmissionTypeScope3SupplyChain    EmissionType = "SCOPE3_SUPPLY_CHAIN"   // supplier emissions
)

// EmissionTypes lists every scope in declaration order
var EmissionTypes = []EmissionType{
	EmissionTypeScope1Direct,
	EmissionTypeScope2Energy,
	EmissionTypeScope3Transportation,
	EmissionTypeScope3SupplyChain,
}

// IsValid reports whether t is one of the four known scopes
func (t EmissionType) IsValid() bool {
	for _, known := range EmissionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// InitiativeStatus represents the lifecycle state of a green initiative
type InitiativeStatus string

const (
	InitiativeStatusPlanned    InitiativeStatus = "PLANNED"
	InitiativeStatusInProgress InitiativeStatus = "IN_PROGRESS"
	InitiativeStatusCompleted  InitiativeStatus = "COMPLETED"
	InitiativeStatusCancelled  InitiativeStatus = "CANCELLED"
	InitiativeStatusOnHold     InitiativeStatus = "ON_HOLD"
)

// MetricUnit is the unit of a sustainability metric observation
type MetricUnit string

const (
	MetricUnitCO2eKg      MetricUnit = "CO2E_KG"
	MetricUnitKWh         MetricUnit = "KWH"
	MetricUnitLiters      MetricUnit = "LITERS"
	MetricUnitCubicMeters MetricUnit = "CUBIC_METERS"
	MetricUnitTons        MetricUnit = "TONS"
)

// Metric categories consumed by the ESG aggregator. Matching is exact and
// case-sensitive; a metric with any other category is ignored.
const (
	MetricCategoryEnergy          = "ENERGY"
	MetricCategoryRenewableEnergy = "RENEWABLE_ENERGY"
	MetricCategoryWater           = "WATER"
	MetricCategoryWasteTotal      = "WASTE_TOTAL"
	MetricCategoryWasteRecycled   = "WASTE_RECYCLED"
)

// ReportingPeriod is the kind of period an ESG report covers
type ReportingPeriod string

const (
	ReportingPeriodMonthly   ReportingPeriod = "MONTHLY"
	ReportingPeriodQuarterly ReportingPeriod = "QUARTERLY"
	ReportingPeriodAnnual    ReportingPeriod = "ANNUAL"
)

// PerformanceTier is the qualitative rating of a report's total emissions
type PerformanceTier string

const (
	PerformanceExcellent        PerformanceTier = "EXCELLENT"
	PerformanceGood             PerformanceTier = "GOOD"
	PerformanceAverage          PerformanceTier = "AVERAGE"
	PerformanceNeedsImprovement PerformanceTier = "NEEDS_IMPROVEMENT"
)

// CarbonPricePerTon is the carbon price, in currency units, used to value an
// initiative's actual reduction when computing ROI.
const CarbonPricePerTon = 50.0

// DateLayout is the wire layout for calendar dates
const DateLayout = "2006-01-02"

// =====================================================
// YearMonth
// =====================================================

// YearMonth is a calendar month, serialized as "2006-01"
type YearMonth struct {
	Year  int
	Month time.Month
}

const yearMonthLayout = "2006-01"

// ParseYearMonth parses a "YYYY-MM" string
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String formats the month as "YYYY-MM"
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// IsZero reports whether ym is unset
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// FirstDay returns midnight UTC of the first day of the month
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC of the last day of the month
func (ym YearMonth) LastDay() time.Time {
	return ym.FirstDay().AddDate(0, 1, -1)
}

// Previous returns the month before ym
func (ym YearMonth) Previous() YearMonth {
	return YearMonthOf(ym.FirstDay().AddDate(0, -1, 0))
}

// MarshalJSON implements json.Marshaler
func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(ym.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// MarshalBSONValue stores the month as a "YYYY-MM" string
func (ym YearMonth) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(ym.String())
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (ym *YearMonth) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// Value implements driver.Valuer
func (ym YearMonth) Value() (driver.Value, error) {
	return ym.String(), nil
}

// Scan implements sql.Scanner
func (ym *YearMonth) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*ym = YearMonth{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into YearMonth", value)
	}
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// =====================================================
// Entities
// =====================================================

// EmissionSource is reference data describing a configured emission factor
type EmissionSource struct {
	ID                        string       `json:"source_id" bson:"_id"`
	Name                      string       `json:"name" bson:"name"`
	Type                      EmissionType `json:"type" bson:"type"`
	Description               string       `json:"description" bson:"description"`
	EmissionFactorCO2ePerUnit float64      `json:"emission_factor_co2e_per_unit" bson:"emission_factor_co2e_per_unit"`
	Unit                      string       `json:"unit" bson:"unit"`
	Active                    bool         `json:"active" bson:"active"`
	CreatedAt                 time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt                 time.Time    `json:"updated_at" bson:"updated_at"`
}

// CalculateEmissions converts a quantity of the source's unit into kg CO2e
func (s *EmissionSource) CalculateEmissions(quantity float64) float64 {
	return quantity * s.EmissionFactorCO2ePerUnit
}

// CarbonFootprint holds the per-source emission breakdown of one warehouse on
// one date. TotalCO2eKg is derived from EmissionsBySource and is only ever
// updated by AddEmission.
type CarbonFootprint struct {
	ID                string             `json:"footprint_id" bson:"_id"`
	WarehouseID       string             `json:"warehouse_id" bson:"warehouse_id"`
	RecordDate        time.Time          `json:"record_date" bson:"record_date"`
	EmissionType      EmissionType       `json:"emission_type" bson:"emission_type"`
	EmissionsBySource map[string]float64 `json:"emissions_by_source" bson:"emissions_by_source"`
	TotalCO2eKg       float64            `json:"total_co2e_kg" bson:"total_co2e_kg"`
	CalculationMethod string             `json:"calculation_method,omitempty" bson:"calculation_method,omitempty"`
	Notes             string             `json:"notes,omitempty" bson:"notes,omitempty"`
}

// AddEmission sets the contribution of source, replacing any previous value,
// and recomputes the total.
func (f *CarbonFootprint) AddEmission(source string, co2eKg float64) {
	if f.EmissionsBySource == nil {
		f.EmissionsBySource = make(map[string]float64)
	}
	f.EmissionsBySource[source] = co2eKg
	f.recalculateTotal()
}

func (f *CarbonFootprint) recalculateTotal() {
	var total float64
	for _, v := range f.EmissionsBySource {
		total += v
	}
	f.TotalCO2eKg = total
}

// TotalCO2eTons returns the total in metric tons
func (f *CarbonFootprint) TotalCO2eTons() float64 {
	return f.TotalCO2eKg / 1000.0
}

// SustainabilityMetric is a category-tagged numeric observation
type SustainabilityMetric struct {
	ID          string     `json:"metric_id" bson:"_id"`
	WarehouseID string     `json:"warehouse_id" bson:"warehouse_id"`
	MetricName  string     `json:"metric_name" bson:"metric_name"`
	Unit        MetricUnit `json:"unit" bson:"unit"`
	Value       float64    `json:"value" bson:"value"`
	RecordDate  time.Time  `json:"record_date" bson:"record_date"`
	Category    string     `json:"category" bson:"category"`
	Source      string     `json:"source,omitempty" bson:"source,omitempty"`
	Notes       string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

// NormalizeToKgCO2e converts the metric value with the given factor
func (m *SustainabilityMetric) NormalizeToKgCO2e(conversionFactor float64) float64 {
	return m.Value * conversionFactor
}

// GreenInitiative is a tracked emission reduction project
type GreenInitiative struct {
	ID                    string           `json:"initiative_id" bson:"_id"`
	Name                  string           `json:"name" bson:"name"`
	Description           string           `json:"description" bson:"description"`
	Status                InitiativeStatus `json:"status" bson:"status"`
	StartDate             time.Time        `json:"start_date" bson:"start_date"`
	TargetCompletionDate  time.Time        `json:"target_completion_date" bson:"target_completion_date"`
	ActualCompletionDate  *time.Time       `json:"actual_completion_date,omitempty" bson:"actual_completion_date,omitempty"`
	TargetReductionCO2eKg float64          `json:"target_reduction_co2e_kg" bson:"target_reduction_co2e_kg"`
	ActualReductionCO2eKg float64          `json:"actual_reduction_co2e_kg" bson:"actual_reduction_co2e_kg"`
	EstimatedCost         float64          `json:"estimated_cost" bson:"estimated_cost"`
	ActualCost            float64          `json:"actual_cost" bson:"actual_cost"`
	Owner                 string           `json:"owner" bson:"owner"`
}

// AchievementPercentage is actual over target reduction, 0 when no target is set
func (g *GreenInitiative) AchievementPercentage() float64 {
	if g.TargetReductionCO2eKg <= 0 {
		return 0.0
	}
	return (g.ActualReductionCO2eKg / g.TargetReductionCO2eKg) * 100.0
}

// ROI is the return on actual cost in percent, 0 when nothing has been spent
func (g *GreenInitiative) ROI() float64 {
	if g.ActualCost <= 0 {
		return 0.0
	}
	savings := g.ActualReductionCO2eKg * CarbonPricePerTon
	return (savings - g.ActualCost) / g.ActualCost * 100.0
}

// ESGReport is a periodic environmental, social and governance summary
type ESGReport struct {
	ID          string          `json:"report_id" bson:"_id"`
	WarehouseID string          `json:"warehouse_id" bson:"warehouse_id"`
	Period      ReportingPeriod `json:"period" bson:"period"`
	ReportMonth YearMonth       `json:"report_month" bson:"report_month"`
	Year        int             `json:"year" bson:"year"`
	GeneratedAt time.Time       `json:"generated_at" bson:"generated_at"`

	// Environmental
	TotalCO2eScope1Kg         float64 `json:"total_co2e_scope1_kg" bson:"total_co2e_scope1_kg"`
	TotalCO2eScope2Kg         float64 `json:"total_co2e_scope2_kg" bson:"total_co2e_scope2_kg"`
	TotalCO2eScope3Kg         float64 `json:"total_co2e_scope3_kg" bson:"total_co2e_scope3_kg"`
	TotalEnergyKWh            float64 `json:"total_energy_kwh" bson:"total_energy_kwh"`
	RenewableEnergyPercentage float64 `json:"renewable_energy_percentage" bson:"renewable_energy_percentage"`
	WaterUsageCubicMeters     float64 `json:"water_usage_cubic_meters" bson:"water_usage_cubic_meters"`
	WasteGeneratedTons        float64 `json:"waste_generated_tons" bson:"waste_generated_tons"`
	WasteRecycledPercentage   float64 `json:"waste_recycled_percentage" bson:"waste_recycled_percentage"`

	// Social
	WorkforceCount           int     `json:"workforce_count" bson:"workforce_count"`
	WorkplaceSafetyScore     float64 `json:"workplace_safety_score" bson:"workplace_safety_score"`
	TrainingHoursPerEmployee int     `json:"training_hours_per_employee" bson:"training_hours_per_employee"`

	// Governance
	ComplianceCertified bool `json:"compliance_certified" bson:"compliance_certified"`
	AuditsPassed        int  `json:"audits_passed" bson:"audits_passed"`

	AdditionalMetrics map[string]interface{} `json:"additional_metrics" bson:"additional_metrics"`
}

// TotalCO2eKg is the sum of the three scope totals
func (r *ESGReport) TotalCO2eKg() float64 {
	return r.TotalCO2eScope1Kg + r.TotalCO2eScope2Kg + r.TotalCO2eScope3Kg
}

// TotalCO2eTons returns TotalCO2eKg in metric tons
func (r *ESGReport) TotalCO2eTons() float64 {
	return r.TotalCO2eKg() / 1000.0
}

// MarshalJSON adds the derived totals to the wire form
func (r ESGReport) MarshalJSON() ([]byte, error) {
	type alias ESGReport
	return json.Marshal(struct {
		alias
		TotalCO2eKg   float64 `json:"total_co2e_kg"`
		TotalCO2eTons float64 `json:"total_co2e_tons"`
	}{
		alias:         alias(r),
		TotalCO2eKg:   r.TotalCO2eKg(),
		TotalCO2eTons: r.TotalCO2eTons(),
	})
}

// MarshalJSON adds the derived KPIs to the wire form
func (g GreenInitiative) MarshalJSON() ([]byte, error) {
	type alias GreenInitiative
	return json.Marshal(struct {
		alias
		AchievementPercentage float64 `json:"achievement_percentage"`
		ROI                   float64 `json:"roi"`
	}{
		alias:                 alias(g),
		AchievementPercentage: g.AchievementPercentage(),
		ROI:                   g.ROI(),
	})
}
