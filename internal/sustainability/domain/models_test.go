package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCarbonFootprint_AddEmission(t *testing.T) {
	f := &CarbonFootprint{}

	f.AddEmission("forklift", 12.5)
	f.AddEmission("generator", 7.5)
	assert.Equal(t, 20.0, f.TotalCO2eKg)

	// Overwrite replaces rather than accumulates
	f.AddEmission("forklift", 2.5)
	assert.Equal(t, 10.0, f.TotalCO2eKg)
	assert.Len(t, f.EmissionsBySource, 2)

	var sum float64
	for _, v := range f.EmissionsBySource {
		sum += v
	}
	assert.Equal(t, sum, f.TotalCO2eKg)
}

func TestCarbonFootprint_AddEmissionOnPrefilledMap(t *testing.T) {
	f := &CarbonFootprint{EmissionsBySource: map[string]float64{"a": 1, "b": 2}}

	f.AddEmission("c", 3)

	assert.Equal(t, 6.0, f.TotalCO2eKg)
}

func TestCarbonFootprint_TotalCO2eTons(t *testing.T) {
	f := &CarbonFootprint{}
	assert.Equal(t, 0.0, f.TotalCO2eTons())

	f.AddEmission("electricity", 2500)
	assert.Equal(t, 2.5, f.TotalCO2eTons())
}

func TestGreenInitiative_AchievementPercentage(t *testing.T) {
	g := &GreenInitiative{TargetReductionCO2eKg: 1000, ActualReductionCO2eKg: 250}
	assert.Equal(t, 25.0, g.AchievementPercentage())

	g.TargetReductionCO2eKg = 0
	assert.Equal(t, 0.0, g.AchievementPercentage())

	g.TargetReductionCO2eKg = -5
	assert.Equal(t, 0.0, g.AchievementPercentage())
}

func TestGreenInitiative_ROI(t *testing.T) {
	g := &GreenInitiative{ActualReductionCO2eKg: 10, ActualCost: 200}
	assert.Equal(t, 150.0, g.ROI())

	g.ActualCost = 0
	assert.Equal(t, 0.0, g.ROI())

	g.ActualCost = -1
	assert.Equal(t, 0.0, g.ROI())
}

func TestESGReport_Totals(t *testing.T) {
	r := &ESGReport{TotalCO2eScope1Kg: 100, TotalCO2eScope2Kg: 50, TotalCO2eScope3Kg: 50}

	assert.Equal(t, 200.0, r.TotalCO2eKg())
	assert.Equal(t, 0.2, r.TotalCO2eTons())
}

func TestESGReport_MarshalJSONIncludesDerivedTotals(t *testing.T) {
	r := ESGReport{
		ID:                "r-1",
		ReportMonth:       YearMonth{Year: 2024, Month: time.February},
		TotalCO2eScope1Kg: 1500,
		TotalCO2eScope3Kg: 500,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r-1", decoded["report_id"])
	assert.Equal(t, "2024-02", decoded["report_month"])
	assert.Equal(t, 2000.0, decoded["total_co2e_kg"])
	assert.Equal(t, 2.0, decoded["total_co2e_tons"])
}

func TestEmissionSource_CalculateEmissions(t *testing.T) {
	s := &EmissionSource{EmissionFactorCO2ePerUnit: 0.5}
	assert.Equal(t, 50.0, s.CalculateEmissions(100))
}

func TestSustainabilityMetric_NormalizeToKgCO2e(t *testing.T) {
	m := &SustainabilityMetric{Value: 40, Unit: MetricUnitKWh}
	assert.InDelta(t, 36.8, m.NormalizeToKgCO2e(0.92), 1e-9)
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-02")
	require.NoError(t, err)

	assert.Equal(t, 2024, ym.Year)
	assert.Equal(t, time.February, ym.Month)
	assert.Equal(t, "2024-02", ym.String())
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), ym.FirstDay())
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), ym.LastDay())
	assert.Equal(t, YearMonth{Year: 2024, Month: time.January}, ym.Previous())
	assert.Equal(t, YearMonth{Year: 2023, Month: time.December}, YearMonth{Year: 2024, Month: time.January}.Previous())

	_, err = ParseYearMonth("2024-13")
	assert.Error(t, err)
	_, err = ParseYearMonth("March")
	assert.Error(t, err)
}

func TestYearMonth_Codecs(t *testing.T) {
	ym := YearMonth{Year: 2023, Month: time.November}

	data, err := json.Marshal(ym)
	require.NoError(t, err)
	assert.JSONEq(t, `"2023-11"`, string(data))

	var fromJSON YearMonth
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, ym, fromJSON)

	doc, err := bson.Marshal(bson.M{"month": ym})
	require.NoError(t, err)
	var fromBSON struct {
		Month YearMonth `bson:"month"`
	}
	require.NoError(t, bson.Unmarshal(doc, &fromBSON))
	assert.Equal(t, ym, fromBSON.Month)

	var scanned YearMonth
	require.NoError(t, scanned.Scan([]byte("2023-11")))
	assert.Equal(t, ym, scanned)
	v, err := ym.Value()
	require.NoError(t, err)
	assert.Equal(t, "2023-11", v)
}

func TestEmissionType_IsValid(t *testing.T) {
	for _, et := range EmissionTypes {
		assert.True(t, et.IsValid())
	}
	assert.False(t, EmissionType("SCOPE4").IsValid())
	assert.False(t, EmissionType("scope1_direct").IsValid())
}
