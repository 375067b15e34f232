package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

var march2024 = domain.YearMonth{Year: 2024, Month: time.March}

func footprint(t domain.EmissionType, kg float64) *domain.CarbonFootprint {
	f := &domain.CarbonFootprint{WarehouseID: "WH-1", EmissionType: t}
	f.AddEmission("source", kg)
	return f
}

func metric(category string, value float64) *domain.SustainabilityMetric {
	return &domain.SustainabilityMetric{WarehouseID: "WH-1", Category: category, Value: value}
}

func TestGenerateReport_ScopeTotals(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	footprints := []*domain.CarbonFootprint{
		footprint(domain.EmissionTypeScope1Direct, 100),
		footprint(domain.EmissionTypeScope2Energy, 50),
		footprint(domain.EmissionTypeScope3Transportation, 20),
		footprint(domain.EmissionTypeScope3SupplyChain, 30),
	}

	report := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly, footprints, nil)

	require.NotNil(t, report)
	assert.Equal(t, 100.0, report.TotalCO2eScope1Kg)
	assert.Equal(t, 50.0, report.TotalCO2eScope2Kg)
	assert.Equal(t, 50.0, report.TotalCO2eScope3Kg)
	assert.Equal(t, 200.0, report.TotalCO2eKg())
	assert.Equal(t, 0.2, report.TotalCO2eTons())
}

func TestGenerateReport_Fields(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())
	fixed := time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC)
	aggregator.now = func() time.Time { return fixed }

	report := aggregator.GenerateReport("WH-9", march2024, domain.ReportingPeriodMonthly, nil, nil)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "WH-9", report.WarehouseID)
	assert.Equal(t, domain.ReportingPeriodMonthly, report.Period)
	assert.Equal(t, march2024, report.ReportMonth)
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, fixed, report.GeneratedAt)
	assert.True(t, report.ComplianceCertified)
	assert.Zero(t, report.AuditsPassed)
	assert.Zero(t, report.WorkforceCount)
	assert.Zero(t, report.WorkplaceSafetyScore)
	assert.Zero(t, report.TrainingHoursPerEmployee)
	assert.NotNil(t, report.AdditionalMetrics)
}

func TestGenerateReport_MultipleFootprintsPerScope(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	footprints := []*domain.CarbonFootprint{
		footprint(domain.EmissionTypeScope1Direct, 10),
		footprint(domain.EmissionTypeScope1Direct, 15),
		footprint(domain.EmissionTypeScope3SupplyChain, 5),
		nil,
		// Outside the closed set, contributes to no scope
		footprint(domain.EmissionType("SCOPE4"), 1000),
	}

	report := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly, footprints, nil)

	assert.Equal(t, 25.0, report.TotalCO2eScope1Kg)
	assert.Equal(t, 0.0, report.TotalCO2eScope2Kg)
	assert.Equal(t, 5.0, report.TotalCO2eScope3Kg)
	assert.Equal(t, 30.0, report.TotalCO2eKg())
}

func TestGenerateReport_Metrics(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	metrics := []*domain.SustainabilityMetric{
		metric(domain.MetricCategoryEnergy, 800),
		metric(domain.MetricCategoryEnergy, 200),
		metric(domain.MetricCategoryRenewableEnergy, 250),
		metric(domain.MetricCategoryWater, 42),
		metric(domain.MetricCategoryWasteTotal, 10),
		metric(domain.MetricCategoryWasteRecycled, 4),
		// Exact match only
		metric("energy", 5000),
		metric("WASTE_RECYCLE", 6),
	}

	report := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly, nil, metrics)

	assert.Equal(t, 1000.0, report.TotalEnergyKWh)
	assert.InDelta(t, 25.0, report.RenewableEnergyPercentage, 1e-9)
	assert.Equal(t, 42.0, report.WaterUsageCubicMeters)
	assert.Equal(t, 10.0, report.WasteGeneratedTons)
	assert.InDelta(t, 40.0, report.WasteRecycledPercentage, 1e-9)
}

func TestGenerateReport_EmptyMetrics(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	report := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly,
		nil, []*domain.SustainabilityMetric{})

	assert.Zero(t, report.TotalEnergyKWh)
	assert.Zero(t, report.RenewableEnergyPercentage)
	assert.Zero(t, report.WaterUsageCubicMeters)
	assert.Zero(t, report.WasteGeneratedTons)
	assert.Zero(t, report.WasteRecycledPercentage)
}

func TestGenerateReport_PercentagesGuardZeroDenominator(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	metrics := []*domain.SustainabilityMetric{
		metric(domain.MetricCategoryRenewableEnergy, 100),
		metric(domain.MetricCategoryWasteRecycled, 3),
	}

	report := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly, nil, metrics)

	assert.Zero(t, report.RenewableEnergyPercentage)
	assert.Zero(t, report.WasteRecycledPercentage)
}

func TestGenerateReport_RepeatedInputsGiveEqualFigures(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	footprints := []*domain.CarbonFootprint{
		footprint(domain.EmissionTypeScope1Direct, 12.34),
		footprint(domain.EmissionTypeScope2Energy, 0.1),
		footprint(domain.EmissionTypeScope3Transportation, 0.2),
	}
	metrics := []*domain.SustainabilityMetric{
		metric(domain.MetricCategoryEnergy, 3),
		metric(domain.MetricCategoryRenewableEnergy, 1),
	}

	first := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly, footprints, metrics)
	second := aggregator.GenerateReport("WH-1", march2024, domain.ReportingPeriodMonthly, footprints, metrics)

	assert.NotEqual(t, first.ID, second.ID)

	second.ID = first.ID
	second.GeneratedAt = first.GeneratedAt
	assert.Equal(t, first, second)
}

func TestCalculateCarbonIntensity(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())
	report := &domain.ESGReport{TotalCO2eScope1Kg: 600, TotalCO2eScope2Kg: 300, TotalCO2eScope3Kg: 100}

	assert.Equal(t, 2.0, aggregator.CalculateCarbonIntensity(report, 500))
	assert.Equal(t, 0.0, aggregator.CalculateCarbonIntensity(report, 0))
	assert.Equal(t, 0.0, aggregator.CalculateCarbonIntensity(report, -3))
}

func TestAssessPerformance(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())

	tests := []struct {
		totalKg  float64
		expected domain.PerformanceTier
	}{
		{0, domain.PerformanceExcellent},
		{49990, domain.PerformanceExcellent},
		{50000, domain.PerformanceGood},
		{99999, domain.PerformanceGood},
		{100000, domain.PerformanceAverage},
		{199999, domain.PerformanceAverage},
		{200000, domain.PerformanceNeedsImprovement},
		{1e9, domain.PerformanceNeedsImprovement},
	}

	for _, tt := range tests {
		report := &domain.ESGReport{TotalCO2eScope1Kg: tt.totalKg}
		assert.Equal(t, tt.expected, aggregator.AssessPerformance(report), "total %v kg", tt.totalKg)
	}
}

func TestAssessPerformance_SumsAllScopes(t *testing.T) {
	aggregator := NewAggregator(zap.NewNop())
	report := &domain.ESGReport{
		TotalCO2eScope1Kg: 20000,
		TotalCO2eScope2Kg: 20000,
		TotalCO2eScope3Kg: 10000,
	}

	assert.Equal(t, domain.PerformanceGood, aggregator.AssessPerformance(report))
}
