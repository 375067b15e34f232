package reporting

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// Performance tier thresholds in tons CO2e, upper bound exclusive
const (
	excellentBelowTons = 50.0
	goodBelowTons      = 100.0
	averageBelowTons   = 200.0
)

// Aggregator rolls footprints and metrics up into ESG reports
type Aggregator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates a new ESG report aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		logger: logger,
		now:    time.Now,
	}
}

// GenerateReport builds a new report for the warehouse and month from the
// given records. It does not check whether a report for the same warehouse,
// month and period already exists.
func (a *Aggregator) GenerateReport(
	warehouseID string,
	reportMonth domain.YearMonth,
	period domain.ReportingPeriod,
	footprints []*domain.CarbonFootprint,
	metrics []*domain.SustainabilityMetric,
) *domain.ESGReport {
	a.logger.Info("Generating ESG report",
		zap.String("warehouse_id", warehouseID),
		zap.String("report_month", reportMonth.String()),
		zap.String("period", string(period)),
		zap.Int("footprints", len(footprints)),
		zap.Int("metrics", len(metrics)))

	scope1 := sumFootprints(footprints, domain.EmissionTypeScope1Direct)
	scope2 := sumFootprints(footprints, domain.EmissionTypeScope2Energy)
	scope3 := sumFootprints(footprints,
		domain.EmissionTypeScope3Transportation,
		domain.EmissionTypeScope3SupplyChain)

	totalEnergy := sumMetrics(metrics, domain.MetricCategoryEnergy)
	renewableEnergy := sumMetrics(metrics, domain.MetricCategoryRenewableEnergy)

	waterUsage := sumMetrics(metrics, domain.MetricCategoryWater)

	wasteGenerated := sumMetrics(metrics, domain.MetricCategoryWasteTotal)
	wasteRecycled := sumMetrics(metrics, domain.MetricCategoryWasteRecycled)

	return &domain.ESGReport{
		ID:                        uuid.New().String(),
		WarehouseID:               warehouseID,
		Period:                    period,
		ReportMonth:               reportMonth,
		Year:                      reportMonth.Year,
		GeneratedAt:               a.now().UTC(),
		TotalCO2eScope1Kg:         scope1,
		TotalCO2eScope2Kg:         scope2,
		TotalCO2eScope3Kg:         scope3,
		TotalEnergyKWh:            totalEnergy,
		RenewableEnergyPercentage: percentage(renewableEnergy, totalEnergy),
		WaterUsageCubicMeters:     waterUsage,
		WasteGeneratedTons:        wasteGenerated,
		WasteRecycledPercentage:   percentage(wasteRecycled, wasteGenerated),
		// No compliance check exists yet; every generated report is marked certified.
		ComplianceCertified: true,
		AdditionalMetrics:   make(map[string]interface{}),
	}
}

// CalculateCarbonIntensity returns kg CO2e per processed order
func (a *Aggregator) CalculateCarbonIntensity(report *domain.ESGReport, ordersProcessed int) float64 {
	if ordersProcessed <= 0 {
		return 0.0
	}
	return report.TotalCO2eKg() / float64(ordersProcessed)
}

// AssessPerformance rates a report by its total emissions in tons
func (a *Aggregator) AssessPerformance(report *domain.ESGReport) domain.PerformanceTier {
	totalTons := report.TotalCO2eTons()

	switch {
	case totalTons < excellentBelowTons:
		return domain.PerformanceExcellent
	case totalTons < goodBelowTons:
		return domain.PerformanceGood
	case totalTons < averageBelowTons:
		return domain.PerformanceAverage
	default:
		return domain.PerformanceNeedsImprovement
	}
}

// sumFootprints totals footprints whose type is one of types
func sumFootprints(footprints []*domain.CarbonFootprint, types ...domain.EmissionType) float64 {
	var total float64
	for _, f := range footprints {
		if f == nil {
			continue
		}
		for _, t := range types {
			if f.EmissionType == t {
				total += f.TotalCO2eKg
				break
			}
		}
	}
	return total
}

// sumMetrics totals metrics whose category equals category exactly
func sumMetrics(metrics []*domain.SustainabilityMetric, category string) float64 {
	var total float64
	for _, m := range metrics {
		if m != nil && m.Category == category {
			total += m.Value
		}
	}
	return total
}

func percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
