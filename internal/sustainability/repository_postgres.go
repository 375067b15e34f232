package sustainability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// =====================================================
// Table models
// =====================================================

type footprintRecord struct {
	ID                string         `gorm:"primaryKey;type:varchar(36)"`
	WarehouseID       string         `gorm:"index:idx_footprint_warehouse_date;not null"`
	RecordDate        time.Time      `gorm:"index:idx_footprint_warehouse_date;not null"`
	EmissionType      string         `gorm:"index;not null"`
	EmissionsBySource datatypes.JSON `gorm:"type:jsonb"`
	TotalCO2eKg       float64        `gorm:"column:total_co2e_kg"`
	CalculationMethod string
	Notes             string
}

func (footprintRecord) TableName() string { return "carbon_footprints" }

type initiativeRecord struct {
	ID                    string `gorm:"primaryKey;type:varchar(36)"`
	Name                  string `gorm:"not null"`
	Description           string
	Status                string `gorm:"index;not null"`
	StartDate             time.Time
	TargetCompletionDate  time.Time
	ActualCompletionDate  *time.Time
	TargetReductionCO2eKg float64 `gorm:"column:target_reduction_co2e_kg"`
	ActualReductionCO2eKg float64 `gorm:"column:actual_reduction_co2e_kg"`
	EstimatedCost         float64
	ActualCost            float64
	Owner                 string
}

func (initiativeRecord) TableName() string { return "green_initiatives" }

type reportRecord struct {
	ID                        string `gorm:"primaryKey;type:varchar(36)"`
	WarehouseID               string `gorm:"index:idx_report_warehouse_month;index:idx_report_warehouse_year;not null"`
	Period                    string `gorm:"index:idx_report_warehouse_month;not null"`
	ReportMonth               string `gorm:"index:idx_report_warehouse_month;type:varchar(7);not null"`
	Year                      int    `gorm:"index:idx_report_warehouse_year"`
	GeneratedAt               time.Time
	TotalCO2eScope1Kg         float64 `gorm:"column:total_co2e_scope1_kg"`
	TotalCO2eScope2Kg         float64 `gorm:"column:total_co2e_scope2_kg"`
	TotalCO2eScope3Kg         float64 `gorm:"column:total_co2e_scope3_kg"`
	TotalEnergyKWh            float64 `gorm:"column:total_energy_kwh"`
	RenewableEnergyPercentage float64
	WaterUsageCubicMeters     float64
	WasteGeneratedTons        float64
	WasteRecycledPercentage   float64
	WorkforceCount            int
	WorkplaceSafetyScore      float64
	TrainingHoursPerEmployee  int
	ComplianceCertified       bool
	AuditsPassed              int
	AdditionalMetrics         datatypes.JSON `gorm:"type:jsonb"`
}

func (reportRecord) TableName() string { return "esg_reports" }

// PostgresRepository implements Repository with GORM
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new GORM backed repository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates or updates the tables
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&footprintRecord{}, &initiativeRecord{}, &reportRecord{})
}

// =====================================================
// Footprints
// =====================================================

func (r *PostgresRepository) SaveFootprint(ctx context.Context, footprint *domain.CarbonFootprint) (*domain.CarbonFootprint, error) {
	sources, err := json.Marshal(footprint.EmissionsBySource)
	if err != nil {
		return nil, fmt.Errorf("failed to encode emission sources: %w", err)
	}

	record := &footprintRecord{
		ID:                footprint.ID,
		WarehouseID:       footprint.WarehouseID,
		RecordDate:        footprint.RecordDate.UTC(),
		EmissionType:      string(footprint.EmissionType),
		EmissionsBySource: datatypes.JSON(sources),
		TotalCO2eKg:       footprint.TotalCO2eKg,
		CalculationMethod: footprint.CalculationMethod,
		Notes:             footprint.Notes,
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save footprint: %w", err)
	}
	return footprint, nil
}

func (r *PostgresRepository) FindFootprintsByWarehouseAndDateRange(ctx context.Context, warehouseID string, start, end time.Time) ([]*domain.CarbonFootprint, error) {
	from, until := dayRange(start, end)

	var records []footprintRecord
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND record_date >= ? AND record_date < ?", warehouseID, from, until).
		Order("record_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query footprints: %w", err)
	}
	return toFootprints(records)
}

func (r *PostgresRepository) FindFootprintsByEmissionType(ctx context.Context, emissionType domain.EmissionType) ([]*domain.CarbonFootprint, error) {
	var records []footprintRecord
	err := r.db.WithContext(ctx).
		Where("emission_type = ?", string(emissionType)).
		Order("record_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query footprints: %w", err)
	}
	return toFootprints(records)
}

func toFootprints(records []footprintRecord) ([]*domain.CarbonFootprint, error) {
	footprints := make([]*domain.CarbonFootprint, 0, len(records))
	for _, rec := range records {
		sources := make(map[string]float64)
		if len(rec.EmissionsBySource) > 0 {
			if err := json.Unmarshal(rec.EmissionsBySource, &sources); err != nil {
				return nil, fmt.Errorf("failed to decode emission sources of %s: %w", rec.ID, err)
			}
		}
		footprints = append(footprints, &domain.CarbonFootprint{
			ID:                rec.ID,
			WarehouseID:       rec.WarehouseID,
			RecordDate:        rec.RecordDate.UTC(),
			EmissionType:      domain.EmissionType(rec.EmissionType),
			EmissionsBySource: sources,
			TotalCO2eKg:       rec.TotalCO2eKg,
			CalculationMethod: rec.CalculationMethod,
			Notes:             rec.Notes,
		})
	}
	return footprints, nil
}

// =====================================================
// Initiatives
// =====================================================

func (r *PostgresRepository) SaveInitiative(ctx context.Context, initiative *domain.GreenInitiative) (*domain.GreenInitiative, error) {
	record := &initiativeRecord{
		ID:                    initiative.ID,
		Name:                  initiative.Name,
		Description:           initiative.Description,
		Status:                string(initiative.Status),
		StartDate:             initiative.StartDate.UTC(),
		TargetCompletionDate:  initiative.TargetCompletionDate.UTC(),
		ActualCompletionDate:  initiative.ActualCompletionDate,
		TargetReductionCO2eKg: initiative.TargetReductionCO2eKg,
		ActualReductionCO2eKg: initiative.ActualReductionCO2eKg,
		EstimatedCost:         initiative.EstimatedCost,
		ActualCost:            initiative.ActualCost,
		Owner:                 initiative.Owner,
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save initiative: %w", err)
	}
	return initiative, nil
}

func (r *PostgresRepository) GetInitiative(ctx context.Context, id string) (*domain.GreenInitiative, error) {
	var record initiativeRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get initiative: %w", err)
	}
	return record.toDomain(), nil
}

func (r *PostgresRepository) FindInitiativesByStatus(ctx context.Context, status domain.InitiativeStatus) ([]*domain.GreenInitiative, error) {
	var records []initiativeRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("start_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query initiatives: %w", err)
	}

	initiatives := make([]*domain.GreenInitiative, 0, len(records))
	for i := range records {
		initiatives = append(initiatives, records[i].toDomain())
	}
	return initiatives, nil
}

func (rec *initiativeRecord) toDomain() *domain.GreenInitiative {
	return &domain.GreenInitiative{
		ID:                    rec.ID,
		Name:                  rec.Name,
		Description:           rec.Description,
		Status:                domain.InitiativeStatus(rec.Status),
		StartDate:             rec.StartDate.UTC(),
		TargetCompletionDate:  rec.TargetCompletionDate.UTC(),
		ActualCompletionDate:  rec.ActualCompletionDate,
		TargetReductionCO2eKg: rec.TargetReductionCO2eKg,
		ActualReductionCO2eKg: rec.ActualReductionCO2eKg,
		EstimatedCost:         rec.EstimatedCost,
		ActualCost:            rec.ActualCost,
		Owner:                 rec.Owner,
	}
}

// =====================================================
// Reports
// =====================================================

func (r *PostgresRepository) SaveReport(ctx context.Context, report *domain.ESGReport) (*domain.ESGReport, error) {
	additional, err := json.Marshal(report.AdditionalMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode additional metrics: %w", err)
	}

	record := &reportRecord{
		ID:                        report.ID,
		WarehouseID:               report.WarehouseID,
		Period:                    string(report.Period),
		ReportMonth:               report.ReportMonth.String(),
		Year:                      report.Year,
		GeneratedAt:               report.GeneratedAt.UTC(),
		TotalCO2eScope1Kg:         report.TotalCO2eScope1Kg,
		TotalCO2eScope2Kg:         report.TotalCO2eScope2Kg,
		TotalCO2eScope3Kg:         report.TotalCO2eScope3Kg,
		TotalEnergyKWh:            report.TotalEnergyKWh,
		RenewableEnergyPercentage: report.RenewableEnergyPercentage,
		WaterUsageCubicMeters:     report.WaterUsageCubicMeters,
		WasteGeneratedTons:        report.WasteGeneratedTons,
		WasteRecycledPercentage:   report.WasteRecycledPercentage,
		WorkforceCount:            report.WorkforceCount,
		WorkplaceSafetyScore:      report.WorkplaceSafetyScore,
		TrainingHoursPerEmployee:  report.TrainingHoursPerEmployee,
		ComplianceCertified:       report.ComplianceCertified,
		AuditsPassed:              report.AuditsPassed,
		AdditionalMetrics:         datatypes.JSON(additional),
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return report, nil
}

func (r *PostgresRepository) GetReport(ctx context.Context, id string) (*domain.ESGReport, error) {
	var record reportRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return record.toDomain()
}

func (r *PostgresRepository) FindReportByWarehouseMonthAndPeriod(ctx context.Context, warehouseID string, month domain.YearMonth, period domain.ReportingPeriod) (*domain.ESGReport, error) {
	var record reportRecord
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND report_month = ? AND period = ?", warehouseID, month.String(), string(period)).
		Order("generated_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return record.toDomain()
}

func (r *PostgresRepository) FindReportsByWarehouseAndYear(ctx context.Context, warehouseID string, year int) ([]*domain.ESGReport, error) {
	var records []reportRecord
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND year = ?", warehouseID, year).
		Order("report_month ASC, generated_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}

	reports := make([]*domain.ESGReport, 0, len(records))
	for i := range records {
		report, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (rec *reportRecord) toDomain() (*domain.ESGReport, error) {
	month, err := domain.ParseYearMonth(rec.ReportMonth)
	if err != nil {
		return nil, err
	}

	additional := make(map[string]interface{})
	if len(rec.AdditionalMetrics) > 0 {
		if err := json.Unmarshal(rec.AdditionalMetrics, &additional); err != nil {
			return nil, fmt.Errorf("failed to decode additional metrics of %s: %w", rec.ID, err)
		}
		if additional == nil {
			additional = make(map[string]interface{})
		}
	}

	return &domain.ESGReport{
		ID:                        rec.ID,
		WarehouseID:               rec.WarehouseID,
		Period:                    domain.ReportingPeriod(rec.Period),
		ReportMonth:               month,
		Year:                      rec.Year,
		GeneratedAt:               rec.GeneratedAt.UTC(),
		TotalCO2eScope1Kg:         rec.TotalCO2eScope1Kg,
		TotalCO2eScope2Kg:         rec.TotalCO2eScope2Kg,
		TotalCO2eScope3Kg:         rec.TotalCO2eScope3Kg,
		TotalEnergyKWh:            rec.TotalEnergyKWh,
		RenewableEnergyPercentage: rec.RenewableEnergyPercentage,
		WaterUsageCubicMeters:     rec.WaterUsageCubicMeters,
		WasteGeneratedTons:        rec.WasteGeneratedTons,
		WasteRecycledPercentage:   rec.WasteRecycledPercentage,
		WorkforceCount:            rec.WorkforceCount,
		WorkplaceSafetyScore:      rec.WorkplaceSafetyScore,
		TrainingHoursPerEmployee:  rec.TrainingHoursPerEmployee,
		ComplianceCertified:       rec.ComplianceCertified,
		AuditsPassed:              rec.AuditsPassed,
		AdditionalMetrics:         additional,
	}, nil
}
