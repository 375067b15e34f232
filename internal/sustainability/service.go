package sustainability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/metrics"
	"carbon-scribe/sustainability-backend/internal/sustainability/cache"
	"carbon-scribe/sustainability-backend/internal/sustainability/calculation"
	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
	"carbon-scribe/sustainability-backend/internal/sustainability/export"
	"carbon-scribe/sustainability-backend/pkg/storage"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest is returned for malformed input
	ErrInvalidRequest = errors.New("invalid request")
	// ErrReportExists is returned when duplicate reports are disabled and one
	// already exists for the warehouse and month
	ErrReportExists = errors.New("report already exists")
)

// ReportGenerator aggregates records into ESG reports
type ReportGenerator interface {
	GenerateReport(warehouseID string, reportMonth domain.YearMonth, period domain.ReportingPeriod,
		footprints []*domain.CarbonFootprint, metrics []*domain.SustainabilityMetric) *domain.ESGReport
	CalculateCarbonIntensity(report *domain.ESGReport, ordersProcessed int) float64
	AssessPerformance(report *domain.ESGReport) domain.PerformanceTier
}

// Service provides business logic for emission tracking and ESG reporting
type Service struct {
	repo       Repository
	engine     *calculation.Engine
	aggregator ReportGenerator
	logger     *zap.Logger

	reportCache       *cache.ReportCache
	archive           storage.Archive
	metrics           *metrics.Recorder
	preventDuplicates bool
}

// Option configures optional service collaborators
type Option func(*Service)

// WithReportCache enables cache-aside lookups for GetReport
func WithReportCache(c *cache.ReportCache) Option {
	return func(s *Service) { s.reportCache = c }
}

// WithArchive uploads every export to the archive
func WithArchive(a storage.Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithMetrics records domain counters
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDuplicateGuard rejects a second monthly report for the same warehouse
// and month
func WithDuplicateGuard(enabled bool) Option {
	return func(s *Service) { s.preventDuplicates = enabled }
}

// NewService creates a new sustainability service
func NewService(repo Repository, engine *calculation.Engine, aggregator ReportGenerator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:       repo,
		engine:     engine,
		aggregator: aggregator,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =====================================================
// Carbon Footprint Operations
// =====================================================

// RecordEmission stores a footprint for a warehouse and date
func (s *Service) RecordEmission(ctx context.Context, req *RecordEmissionRequest) (*domain.CarbonFootprint, error) {
	if strings.TrimSpace(req.WarehouseID) == "" {
		return nil, fmt.Errorf("%w: warehouse_id is required", ErrInvalidRequest)
	}
	if !req.EmissionType.IsValid() {
		return nil, fmt.Errorf("%w: unknown emission type %q", ErrInvalidRequest, req.EmissionType)
	}
	recordDate, err := parseDate(req.RecordDate)
	if err != nil {
		return nil, fmt.Errorf("%w: record_date: %v", ErrInvalidRequest, err)
	}

	footprint := &domain.CarbonFootprint{
		ID:                uuid.New().String(),
		WarehouseID:       req.WarehouseID,
		RecordDate:        recordDate,
		EmissionType:      req.EmissionType,
		EmissionsBySource: make(map[string]float64, len(req.EmissionsBySource)),
		CalculationMethod: req.CalculationMethod,
		Notes:             req.Notes,
	}
	for source, co2eKg := range req.EmissionsBySource {
		footprint.AddEmission(source, co2eKg)
	}

	saved, err := s.repo.SaveFootprint(ctx, footprint)
	if err != nil {
		return nil, fmt.Errorf("failed to save footprint: %w", err)
	}

	if s.reportCache != nil {
		s.reportCache.InvalidateWarehouse(ctx, saved.WarehouseID)
	}
	s.metrics.FootprintRecorded(string(saved.EmissionType), saved.TotalCO2eKg)

	s.logger.Info("Carbon footprint recorded",
		zap.String("footprint_id", saved.ID),
		zap.String("warehouse_id", saved.WarehouseID),
		zap.String("emission_type", string(saved.EmissionType)),
		zap.Float64("total_co2e_kg", saved.TotalCO2eKg))

	return saved, nil
}

// GetFootprints returns the footprints of a warehouse recorded from start
// through end inclusive
func (s *Service) GetFootprints(ctx context.Context, warehouseID string, start, end time.Time) ([]*domain.CarbonFootprint, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidRequest)
	}
	footprints, err := s.repo.FindFootprintsByWarehouseAndDateRange(ctx, warehouseID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list footprints: %w", err)
	}
	if footprints == nil {
		footprints = []*domain.CarbonFootprint{}
	}
	return footprints, nil
}

// GetFootprintsByEmissionType returns every footprint of one scope
func (s *Service) GetFootprintsByEmissionType(ctx context.Context, emissionType domain.EmissionType) ([]*domain.CarbonFootprint, error) {
	if !emissionType.IsValid() {
		return nil, fmt.Errorf("%w: unknown emission type %q", ErrInvalidRequest, emissionType)
	}
	footprints, err := s.repo.FindFootprintsByEmissionType(ctx, emissionType)
	if err != nil {
		return nil, fmt.Errorf("failed to list footprints: %w", err)
	}
	if footprints == nil {
		footprints = []*domain.CarbonFootprint{}
	}
	return footprints, nil
}

// CalculateActivityEmission converts raw activity data into a scope and kg CO2e
func (s *Service) CalculateActivityEmission(req *CalculateEmissionRequest) (*CalculateEmissionResponse, error) {
	if req.Quantity < 0 || req.DistanceKm < 0 || req.LoadTons < 0 {
		return nil, fmt.Errorf("%w: quantities must not be negative", ErrInvalidRequest)
	}

	var co2eKg float64
	switch ActivityKind(strings.ToLower(string(req.Kind))) {
	case ActivityKindFuel:
		co2eKg = s.engine.FuelEmissions(req.Variant, req.Quantity)
	case ActivityKindElectricity:
		co2eKg = s.engine.ElectricityEmissions(req.Quantity)
	case ActivityKindTransportation:
		co2eKg = s.engine.TransportationEmissions(req.DistanceKm, req.Variant, req.LoadTons)
	case ActivityKindPackaging:
		co2eKg = s.engine.PackagingEmissions(req.Variant, req.Quantity)
	default:
		return nil, fmt.Errorf("%w: unknown activity kind %q", ErrInvalidRequest, req.Kind)
	}

	return &CalculateEmissionResponse{
		ActivityType: req.ActivityType,
		EmissionType: s.engine.DetermineScope(req.ActivityType),
		CO2eKg:       co2eKg,
	}, nil
}

// =====================================================
// Green Initiative Operations
// =====================================================

// CreateInitiative creates a planned initiative with zeroed actuals
func (s *Service) CreateInitiative(ctx context.Context, req *CreateInitiativeRequest) (*domain.GreenInitiative, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidRequest, err)
	}
	targetDate, err := parseDate(req.TargetCompletionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: target_completion_date: %v", ErrInvalidRequest, err)
	}

	initiative := &domain.GreenInitiative{
		ID:                    uuid.New().String(),
		Name:                  req.Name,
		Description:           req.Description,
		Status:                domain.InitiativeStatusPlanned,
		StartDate:             startDate,
		TargetCompletionDate:  targetDate,
		TargetReductionCO2eKg: req.TargetReductionCO2eKg,
		ActualReductionCO2eKg: 0,
		EstimatedCost:         req.EstimatedCost,
		ActualCost:            0,
		Owner:                 req.Owner,
	}

	saved, err := s.repo.SaveInitiative(ctx, initiative)
	if err != nil {
		return nil, fmt.Errorf("failed to save initiative: %w", err)
	}

	s.metrics.InitiativeCreated()
	s.logger.Info("Green initiative created",
		zap.String("initiative_id", saved.ID),
		zap.String("name", saved.Name),
		zap.String("owner", saved.Owner))

	return saved, nil
}

// GetActiveInitiatives returns the initiatives currently in progress
func (s *Service) GetActiveInitiatives(ctx context.Context) ([]*domain.GreenInitiative, error) {
	initiatives, err := s.repo.FindInitiativesByStatus(ctx, domain.InitiativeStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list initiatives: %w", err)
	}
	if initiatives == nil {
		initiatives = []*domain.GreenInitiative{}
	}
	return initiatives, nil
}

// GetInitiative retrieves an initiative by ID
func (s *Service) GetInitiative(ctx context.Context, id string) (*domain.GreenInitiative, error) {
	initiative, err := s.repo.GetInitiative(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get initiative: %w", err)
	}
	if initiative == nil {
		return nil, fmt.Errorf("initiative %s: %w", id, ErrNotFound)
	}
	return initiative, nil
}

// =====================================================
// ESG Report Operations
// =====================================================

// GenerateMonthlyReport aggregates a warehouse's footprints for one calendar
// month into a new report and stores it
func (s *Service) GenerateMonthlyReport(ctx context.Context, warehouseID string, month domain.YearMonth) (*domain.ESGReport, error) {
	if strings.TrimSpace(warehouseID) == "" {
		return nil, fmt.Errorf("%w: warehouse_id is required", ErrInvalidRequest)
	}
	if month.IsZero() {
		return nil, fmt.Errorf("%w: report month is required", ErrInvalidRequest)
	}

	if s.preventDuplicates {
		existing, err := s.repo.FindReportByWarehouseMonthAndPeriod(ctx, warehouseID, month, domain.ReportingPeriodMonthly)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing report: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%s %s: %w", warehouseID, month, ErrReportExists)
		}
	}

	footprints, err := s.repo.FindFootprintsByWarehouseAndDateRange(ctx, warehouseID, month.FirstDay(), month.LastDay())
	if err != nil {
		return nil, fmt.Errorf("failed to load footprints: %w", err)
	}

	// No metrics store feeds the aggregation yet, so energy, water and waste
	// figures stay at zero.
	report := s.aggregator.GenerateReport(warehouseID, month, domain.ReportingPeriodMonthly,
		footprints, []*domain.SustainabilityMetric{})

	saved, err := s.repo.SaveReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	if s.reportCache != nil {
		s.reportCache.Put(ctx, saved)
	}
	tier := s.aggregator.AssessPerformance(saved)
	s.metrics.ReportGenerated(string(saved.Period), string(tier))

	s.logger.Info("ESG report generated",
		zap.String("report_id", saved.ID),
		zap.String("warehouse_id", warehouseID),
		zap.String("report_month", month.String()),
		zap.Int("footprints", len(footprints)),
		zap.Float64("total_co2e_kg", saved.TotalCO2eKg()),
		zap.String("performance", string(tier)))

	return saved, nil
}

// GetReport returns the latest monthly report of a warehouse and month
func (s *Service) GetReport(ctx context.Context, warehouseID string, month domain.YearMonth) (*domain.ESGReport, error) {
	if s.reportCache != nil {
		if report := s.reportCache.Get(ctx, warehouseID, month, domain.ReportingPeriodMonthly); report != nil {
			return report, nil
		}
	}

	report, err := s.repo.FindReportByWarehouseMonthAndPeriod(ctx, warehouseID, month, domain.ReportingPeriodMonthly)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("report for %s %s: %w", warehouseID, month, ErrNotFound)
	}

	if s.reportCache != nil {
		s.reportCache.Put(ctx, report)
	}
	return report, nil
}

// GetReportByID retrieves a report by ID
func (s *Service) GetReportByID(ctx context.Context, id string) (*domain.ESGReport, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report == nil {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return report, nil
}

// ListReportsByYear lists the reports of a warehouse for one year
func (s *Service) ListReportsByYear(ctx context.Context, warehouseID string, year int) (*ReportListResponse, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: invalid year %d", ErrInvalidRequest, year)
	}
	reports, err := s.repo.FindReportsByWarehouseAndYear(ctx, warehouseID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if reports == nil {
		reports = []*domain.ESGReport{}
	}
	return &ReportListResponse{
		WarehouseID: warehouseID,
		Year:        year,
		Reports:     reports,
		TotalCount:  len(reports),
	}, nil
}

// AssessReport grades a report and computes its carbon intensity for the
// given number of processed orders
func (s *Service) AssessReport(ctx context.Context, warehouseID string, month domain.YearMonth, ordersProcessed int) (*ReportAssessment, error) {
	if ordersProcessed < 0 {
		return nil, fmt.Errorf("%w: orders processed must not be negative", ErrInvalidRequest)
	}
	report, err := s.GetReport(ctx, warehouseID, month)
	if err != nil {
		return nil, err
	}

	return &ReportAssessment{
		ReportID:        report.ID,
		WarehouseID:     report.WarehouseID,
		ReportMonth:     report.ReportMonth,
		TotalCO2eKg:     report.TotalCO2eKg(),
		TotalCO2eTons:   report.TotalCO2eTons(),
		Performance:     s.aggregator.AssessPerformance(report),
		OrdersProcessed: ordersProcessed,
		CarbonIntensity: s.aggregator.CalculateCarbonIntensity(report, ordersProcessed),
	}, nil
}

// ExportReport renders a stored report and archives the file when an
// archive is configured. The returned location is empty without one.
func (s *Service) ExportReport(ctx context.Context, id string, format export.Format) (*export.Document, string, error) {
	report, err := s.GetReportByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	doc, err := export.Render(report, format)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var location string
	if s.archive != nil {
		key, err := archiveKey(report.WarehouseID, doc.Filename)
		if err != nil {
			return nil, "", err
		}
		location, err = s.archive.Upload(ctx, key, bytes.NewReader(doc.Data), doc.ContentType)
		if err != nil {
			return nil, "", fmt.Errorf("failed to archive export: %w", err)
		}
	}

	s.logger.Info("ESG report exported",
		zap.String("report_id", report.ID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(doc.Data)),
		zap.String("location", location))

	return doc, location, nil
}

// archiveKey places an export under its warehouse directory. IDs that could
// leave that directory are rejected.
func archiveKey(warehouseID, filename string) (string, error) {
	if warehouseID == "" || warehouseID == "." || warehouseID == ".." || strings.ContainsAny(warehouseID, `/\`) {
		return "", fmt.Errorf("%w: warehouse id %q cannot be used as an archive path", ErrInvalidRequest, warehouseID)
	}
	return warehouseID + "/" + filename, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, strings.TrimSpace(s), time.UTC)
}
