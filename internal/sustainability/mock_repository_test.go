package sustainability

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// MockRepository is a mock implementation of the Repository interface.
// Save methods echo their argument when no record is given to Return.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveFootprint(ctx context.Context, footprint *domain.CarbonFootprint) (*domain.CarbonFootprint, error) {
	args := m.Called(ctx, footprint)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return footprint, nil
	}
	return args.Get(0).(*domain.CarbonFootprint), args.Error(1)
}

func (m *MockRepository) FindFootprintsByWarehouseAndDateRange(ctx context.Context, warehouseID string, start, end time.Time) ([]*domain.CarbonFootprint, error) {
	args := m.Called(ctx, warehouseID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarbonFootprint), args.Error(1)
}

func (m *MockRepository) FindFootprintsByEmissionType(ctx context.Context, emissionType domain.EmissionType) ([]*domain.CarbonFootprint, error) {
	args := m.Called(ctx, emissionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarbonFootprint), args.Error(1)
}

func (m *MockRepository) SaveInitiative(ctx context.Context, initiative *domain.GreenInitiative) (*domain.GreenInitiative, error) {
	args := m.Called(ctx, initiative)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return initiative, nil
	}
	return args.Get(0).(*domain.GreenInitiative), args.Error(1)
}

func (m *MockRepository) GetInitiative(ctx context.Context, id string) (*domain.GreenInitiative, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GreenInitiative), args.Error(1)
}

func (m *MockRepository) FindInitiativesByStatus(ctx context.Context, status domain.InitiativeStatus) ([]*domain.GreenInitiative, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GreenInitiative), args.Error(1)
}

func (m *MockRepository) SaveReport(ctx context.Context, report *domain.ESGReport) (*domain.ESGReport, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return report, nil
	}
	return args.Get(0).(*domain.ESGReport), args.Error(1)
}

func (m *MockRepository) GetReport(ctx context.Context, id string) (*domain.ESGReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ESGReport), args.Error(1)
}

func (m *MockRepository) FindReportByWarehouseMonthAndPeriod(ctx context.Context, warehouseID string, month domain.YearMonth, period domain.ReportingPeriod) (*domain.ESGReport, error) {
	args := m.Called(ctx, warehouseID, month, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ESGReport), args.Error(1)
}

func (m *MockRepository) FindReportsByWarehouseAndYear(ctx context.Context, warehouseID string, year int) ([]*domain.ESGReport, error) {
	args := m.Called(ctx, warehouseID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ESGReport), args.Error(1)
}
