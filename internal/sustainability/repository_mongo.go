package sustainability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// Collection names
const (
	FootprintsCollection  = "carbon_footprints"
	InitiativesCollection = "green_initiatives"
	ReportsCollection     = "esg_reports"
)

// MongoRepository implements Repository on MongoDB
type MongoRepository struct {
	footprints  *mongo.Collection
	initiatives *mongo.Collection
	reports     *mongo.Collection
}

// NewMongoRepository creates a new MongoDB repository
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		footprints:  db.Collection(FootprintsCollection),
		initiatives: db.Collection(InitiativesCollection),
		reports:     db.Collection(ReportsCollection),
	}
}

// EnsureIndexes creates the secondary indexes used by the finders. The
// report index is not unique, so regenerating a month adds a new report.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.footprints.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "warehouse_id", Value: 1}, {Key: "record_date", Value: 1}}},
		{Keys: bson.D{{Key: "emission_type", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create footprint indexes: %w", err)
	}

	if _, err := r.initiatives.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create initiative indexes: %w", err)
	}

	if _, err := r.reports.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "warehouse_id", Value: 1}, {Key: "report_month", Value: 1}, {Key: "period", Value: 1}}},
		{Keys: bson.D{{Key: "warehouse_id", Value: 1}, {Key: "year", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create report indexes: %w", err)
	}

	return nil
}

// =====================================================
// Footprints
// =====================================================

func (r *MongoRepository) SaveFootprint(ctx context.Context, footprint *domain.CarbonFootprint) (*domain.CarbonFootprint, error) {
	if err := upsert(ctx, r.footprints, footprint.ID, footprint); err != nil {
		return nil, err
	}
	return footprint, nil
}

func (r *MongoRepository) FindFootprintsByWarehouseAndDateRange(ctx context.Context, warehouseID string, start, end time.Time) ([]*domain.CarbonFootprint, error) {
	from, until := dayRange(start, end)
	filter := bson.M{
		"warehouse_id": warehouseID,
		"record_date":  bson.M{"$gte": from, "$lt": until},
	}

	var footprints []*domain.CarbonFootprint
	if err := findAll(ctx, r.footprints, filter, bson.D{{Key: "record_date", Value: 1}}, &footprints); err != nil {
		return nil, err
	}
	return footprints, nil
}

func (r *MongoRepository) FindFootprintsByEmissionType(ctx context.Context, emissionType domain.EmissionType) ([]*domain.CarbonFootprint, error) {
	var footprints []*domain.CarbonFootprint
	filter := bson.M{"emission_type": emissionType}
	if err := findAll(ctx, r.footprints, filter, bson.D{{Key: "record_date", Value: 1}}, &footprints); err != nil {
		return nil, err
	}
	return footprints, nil
}

// =====================================================
// Initiatives
// =====================================================

func (r *MongoRepository) SaveInitiative(ctx context.Context, initiative *domain.GreenInitiative) (*domain.GreenInitiative, error) {
	if err := upsert(ctx, r.initiatives, initiative.ID, initiative); err != nil {
		return nil, err
	}
	return initiative, nil
}

func (r *MongoRepository) GetInitiative(ctx context.Context, id string) (*domain.GreenInitiative, error) {
	var initiative domain.GreenInitiative
	found, err := findOne(ctx, r.initiatives, bson.M{"_id": id}, nil, &initiative)
	if err != nil || !found {
		return nil, err
	}
	return &initiative, nil
}

func (r *MongoRepository) FindInitiativesByStatus(ctx context.Context, status domain.InitiativeStatus) ([]*domain.GreenInitiative, error) {
	var initiatives []*domain.GreenInitiative
	filter := bson.M{"status": status}
	if err := findAll(ctx, r.initiatives, filter, bson.D{{Key: "start_date", Value: 1}}, &initiatives); err != nil {
		return nil, err
	}
	return initiatives, nil
}

// =====================================================
// Reports
// =====================================================

func (r *MongoRepository) SaveReport(ctx context.Context, report *domain.ESGReport) (*domain.ESGReport, error) {
	if err := upsert(ctx, r.reports, report.ID, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *MongoRepository) GetReport(ctx context.Context, id string) (*domain.ESGReport, error) {
	var report domain.ESGReport
	found, err := findOne(ctx, r.reports, bson.M{"_id": id}, nil, &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

func (r *MongoRepository) FindReportByWarehouseMonthAndPeriod(ctx context.Context, warehouseID string, month domain.YearMonth, period domain.ReportingPeriod) (*domain.ESGReport, error) {
	filter := bson.M{
		"warehouse_id": warehouseID,
		"report_month": month.String(),
		"period":       period,
	}

	var report domain.ESGReport
	found, err := findOne(ctx, r.reports, filter, bson.D{{Key: "generated_at", Value: -1}}, &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

func (r *MongoRepository) FindReportsByWarehouseAndYear(ctx context.Context, warehouseID string, year int) ([]*domain.ESGReport, error) {
	var reports []*domain.ESGReport
	filter := bson.M{"warehouse_id": warehouseID, "year": year}
	sort := bson.D{{Key: "report_month", Value: 1}, {Key: "generated_at", Value: 1}}
	if err := findAll(ctx, r.reports, filter, sort, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// =====================================================
// Helpers
// =====================================================

func upsert(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save to %s: %w", coll.Name(), err)
	}
	return nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, sort bson.D, results interface{}) error {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter interface{}, sort bson.D, result interface{}) (bool, error) {
	opts := options.FindOne()
	if sort != nil {
		opts.SetSort(sort)
	}

	err := coll.FindOne(ctx, filter, opts).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	return true, nil
}
