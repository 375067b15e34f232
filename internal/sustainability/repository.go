package sustainability

import (
	"context"
	"time"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// FootprintRepository persists carbon footprint records
type FootprintRepository interface {
	SaveFootprint(ctx context.Context, footprint *domain.CarbonFootprint) (*domain.CarbonFootprint, error)
	// FindFootprintsByWarehouseAndDateRange returns footprints recorded on any
	// day from start through end, both inclusive.
	FindFootprintsByWarehouseAndDateRange(ctx context.Context, warehouseID string, start, end time.Time) ([]*domain.CarbonFootprint, error)
	FindFootprintsByEmissionType(ctx context.Context, emissionType domain.EmissionType) ([]*domain.CarbonFootprint, error)
}

// InitiativeRepository persists green initiatives
type InitiativeRepository interface {
	SaveInitiative(ctx context.Context, initiative *domain.GreenInitiative) (*domain.GreenInitiative, error)
	GetInitiative(ctx context.Context, id string) (*domain.GreenInitiative, error)
	FindInitiativesByStatus(ctx context.Context, status domain.InitiativeStatus) ([]*domain.GreenInitiative, error)
}

// ReportRepository persists ESG reports. Lookups that find nothing return
// nil without an error.
type ReportRepository interface {
	SaveReport(ctx context.Context, report *domain.ESGReport) (*domain.ESGReport, error)
	GetReport(ctx context.Context, id string) (*domain.ESGReport, error)
	// FindReportByWarehouseMonthAndPeriod returns the most recently generated
	// report when several exist.
	FindReportByWarehouseMonthAndPeriod(ctx context.Context, warehouseID string, month domain.YearMonth, period domain.ReportingPeriod) (*domain.ESGReport, error)
	FindReportsByWarehouseAndYear(ctx context.Context, warehouseID string, year int) ([]*domain.ESGReport, error)
}

// Repository is the full storage contract of the sustainability service
type Repository interface {
	FootprintRepository
	InitiativeRepository
	ReportRepository
}

// dayRange normalizes an inclusive calendar date range to [from, until)
func dayRange(start, end time.Time) (time.Time, time.Time) {
	from := truncateDay(start)
	until := truncateDay(end).AddDate(0, 0, 1)
	return from, until
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
