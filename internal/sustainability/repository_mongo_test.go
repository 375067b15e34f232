package sustainability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save footprint upserts", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		f := newFootprint("f-1", "WH-1", day(2024, time.March, 3), domain.EmissionTypeScope1Direct, map[string]float64{"forklift": 8})
		saved, err := repo.SaveFootprint(context.Background(), f)

		require.NoError(mt, err)
		assert.Same(mt, f, saved)
	})

	mt.Run("save surfaces write errors", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
		}))

		_, err := repo.SaveReport(context.Background(), &domain.ESGReport{ID: "r-1"})

		assert.Error(mt, err)
	})

	mt.Run("find footprints decodes documents", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + FootprintsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "f-1"},
				{Key: "warehouse_id", Value: "WH-1"},
				{Key: "record_date", Value: primitive.NewDateTimeFromTime(day(2024, time.March, 3))},
				{Key: "emission_type", Value: "SCOPE2_ENERGY"},
				{Key: "emissions_by_source", Value: bson.D{{Key: "electricity", Value: 12.5}}},
				{Key: "total_co2e_kg", Value: 12.5},
			},
		))

		found, err := repo.FindFootprintsByWarehouseAndDateRange(context.Background(), "WH-1",
			day(2024, time.March, 1), day(2024, time.March, 31))

		require.NoError(mt, err)
		require.Len(mt, found, 1)
		assert.Equal(mt, "f-1", found[0].ID)
		assert.Equal(mt, domain.EmissionTypeScope2Energy, found[0].EmissionType)
		assert.Equal(mt, 12.5, found[0].EmissionsBySource["electricity"])
		assert.Equal(mt, 12.5, found[0].TotalCO2eKg)
		assert.True(mt, found[0].RecordDate.Equal(day(2024, time.March, 3)))
	})

	mt.Run("find report returns nil when absent", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + ReportsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		report, err := repo.FindReportByWarehouseMonthAndPeriod(context.Background(), "WH-1",
			domain.YearMonth{Year: 2024, Month: time.March}, domain.ReportingPeriodMonthly)

		require.NoError(mt, err)
		assert.Nil(mt, report)
	})

	mt.Run("find report decodes month", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + ReportsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "r-1"},
				{Key: "warehouse_id", Value: "WH-1"},
				{Key: "period", Value: "MONTHLY"},
				{Key: "report_month", Value: "2024-03"},
				{Key: "year", Value: 2024},
				{Key: "total_co2e_scope1_kg", Value: 100.0},
				{Key: "total_co2e_scope3_kg", Value: 50.0},
				{Key: "compliance_certified", Value: true},
			},
		))

		report, err := repo.FindReportByWarehouseMonthAndPeriod(context.Background(), "WH-1",
			domain.YearMonth{Year: 2024, Month: time.March}, domain.ReportingPeriodMonthly)

		require.NoError(mt, err)
		require.NotNil(mt, report)
		assert.Equal(mt, "r-1", report.ID)
		assert.Equal(mt, domain.YearMonth{Year: 2024, Month: time.March}, report.ReportMonth)
		assert.Equal(mt, 150.0, report.TotalCO2eKg())
		assert.True(mt, report.ComplianceCertified)
	})

	mt.Run("find initiatives by status", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + InitiativesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "i-1"}, {Key: "name", Value: "Solar"}, {Key: "status", Value: "IN_PROGRESS"}},
			bson.D{{Key: "_id", Value: "i-2"}, {Key: "name", Value: "EV fleet"}, {Key: "status", Value: "IN_PROGRESS"}},
		))

		initiatives, err := repo.FindInitiativesByStatus(context.Background(), domain.InitiativeStatusInProgress)

		require.NoError(mt, err)
		require.Len(mt, initiatives, 2)
		assert.Equal(mt, "Solar", initiatives[0].Name)
		assert.Equal(mt, domain.InitiativeStatusInProgress, initiatives[1].Status)
	})
}
