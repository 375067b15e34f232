package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultFactors(), zap.NewNop())
}

func TestFuelEmissions(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name     string
		fuelType string
		liters   float64
		expected float64
	}{
		{"diesel", "DIESEL", 100, 268.0},
		{"diesel lower case", "diesel", 100, 268.0},
		{"gasoline", "GASOLINE", 10, 23.1},
		{"petrol alias", "Petrol", 10, 23.1},
		{"lpg", "LPG", 10, 15.1},
		{"unknown falls back to average", "HYDROGEN", 10, 25.0},
		{"zero liters", "DIESEL", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, engine.FuelEmissions(tt.fuelType, tt.liters), 1e-9)
		})
	}
}

func TestFuelEmissions_ConfiguredFactors(t *testing.T) {
	engine := NewEngine(Factors{
		DieselKgCO2ePerLiter:    3.0,
		GasolineKgCO2ePerLiter:  2.0,
		ElectricityKgCO2ePerKWh: 0.5,
	}, nil)

	assert.InDelta(t, 300.0, engine.FuelEmissions("diesel", 100), 1e-9)
	assert.InDelta(t, 200.0, engine.FuelEmissions("gasoline", 100), 1e-9)
	// LPG and the fallback are fixed
	assert.InDelta(t, 151.0, engine.FuelEmissions("lpg", 100), 1e-9)
	assert.InDelta(t, 250.0, engine.FuelEmissions("ethanol", 100), 1e-9)
	assert.InDelta(t, 50.0, engine.ElectricityEmissions(100), 1e-9)
}

func TestElectricityEmissions(t *testing.T) {
	engine := newTestEngine()

	assert.InDelta(t, 920.0, engine.ElectricityEmissions(1000), 1e-9)
	assert.Equal(t, 0.0, engine.ElectricityEmissions(0))
}

func TestTransportationEmissions(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		vehicle  string
		expected float64
	}{
		{"TRUCK_SMALL", 48.0},
		{"truck_medium", 31.0},
		{"TRUCK_LARGE", 24.5},
		{"RAIL", 11.0},
		{"AIR", 301.0},
		{"sea", 5.5},
		{"HOVERCRAFT", 31.0},
	}

	for _, tt := range tests {
		t.Run(tt.vehicle, func(t *testing.T) {
			assert.InDelta(t, tt.expected, engine.TransportationEmissions(100, tt.vehicle, 5), 1e-9)
		})
	}
}

func TestPackagingEmissions(t *testing.T) {
	engine := newTestEngine()

	assert.InDelta(t, 8.5, engine.PackagingEmissions("cardboard", 10), 1e-9)
	assert.InDelta(t, 35.0, engine.PackagingEmissions("PLASTIC", 10), 1e-9)
	assert.InDelta(t, 4.2, engine.PackagingEmissions("Wood", 10), 1e-9)
	assert.InDelta(t, 21.0, engine.PackagingEmissions("METAL", 10), 1e-9)
	assert.InDelta(t, 15.0, engine.PackagingEmissions("GLASS", 10), 1e-9)
}

func TestDetermineScope(t *testing.T) {
	engine := newTestEngine()

	tests := map[string]domain.EmissionType{
		"FORKLIFT_FUEL":   domain.EmissionTypeScope1Direct,
		"company_vehicle": domain.EmissionTypeScope1Direct,
		"Generator":       domain.EmissionTypeScope1Direct,
		"ELECTRICITY":     domain.EmissionTypeScope2Energy,
		"heating":         domain.EmissionTypeScope2Energy,
		"COOLING":         domain.EmissionTypeScope2Energy,
		"TRANSPORTATION":  domain.EmissionTypeScope3Transportation,
		"shipping":        domain.EmissionTypeScope3Transportation,
		"Logistics":       domain.EmissionTypeScope3Transportation,
		"PACKAGING":       domain.EmissionTypeScope3SupplyChain,
		"supplies":        domain.EmissionTypeScope3SupplyChain,
		"WASTE":           domain.EmissionTypeScope3SupplyChain,
		"":                domain.EmissionTypeScope3SupplyChain,
		"UNKNOWN_THING":   domain.EmissionTypeScope3SupplyChain,
	}

	for activity, expected := range tests {
		assert.Equal(t, expected, engine.DetermineScope(activity), "activity %q", activity)
	}
}
