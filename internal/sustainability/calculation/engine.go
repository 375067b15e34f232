package calculation

import (
	"strings"

	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// Default emission factors, kg CO2e per unit
const (
	DefaultDieselFactor      = 2.68 // per liter
	DefaultGasolineFactor    = 2.31 // per liter
	DefaultElectricityFactor = 0.92 // per kWh

	lpgFactor         = 1.51
	averageFuelFactor = 2.5
	averageMaterial   = 1.5
)

// transportFactors are kg CO2e per ton-km
var transportFactors = map[string]float64{
	"TRUCK_SMALL":  0.096,
	"TRUCK_MEDIUM": 0.062,
	"TRUCK_LARGE":  0.049,
	"RAIL":         0.022,
	"AIR":          0.602,
	"SEA":          0.011,
}

// packagingFactors are kg CO2e per kg of material
var packagingFactors = map[string]float64{
	"CARDBOARD": 0.85,
	"PLASTIC":   3.5,
	"WOOD":      0.42,
	"METAL":     2.1,
}

// Factors holds the configurable emission factors
type Factors struct {
	DieselKgCO2ePerLiter    float64 `json:"diesel_factor_kg_co2e_per_liter"`
	GasolineKgCO2ePerLiter  float64 `json:"gasoline_factor_kg_co2e_per_liter"`
	ElectricityKgCO2ePerKWh float64 `json:"electricity_factor_kg_co2e_per_kwh"`
}

// DefaultFactors returns the standard emission factors
func DefaultFactors() Factors {
	return Factors{
		DieselKgCO2ePerLiter:    DefaultDieselFactor,
		GasolineKgCO2ePerLiter:  DefaultGasolineFactor,
		ElectricityKgCO2ePerKWh: DefaultElectricityFactor,
	}
}

// Engine converts activity data into kg CO2e. Unknown labels fall back to
// average factors; none of its methods fail.
type Engine struct {
	factors Factors
	logger  *zap.Logger
}

// NewEngine creates a new emission calculation engine
func NewEngine(factors Factors, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		factors: factors,
		logger:  logger,
	}
}

// FuelEmissions returns the emissions of burning liters of fuelType
func (e *Engine) FuelEmissions(fuelType string, liters float64) float64 {
	var factor float64
	switch strings.ToUpper(fuelType) {
	case "DIESEL":
		factor = e.factors.DieselKgCO2ePerLiter
	case "GASOLINE", "PETROL":
		factor = e.factors.GasolineKgCO2ePerLiter
	case "LPG":
		factor = lpgFactor
	default:
		factor = averageFuelFactor
	}

	emissions := liters * factor
	e.logger.Debug("Fuel emissions",
		zap.String("fuel_type", fuelType),
		zap.Float64("liters", liters),
		zap.Float64("co2e_kg", emissions))
	return emissions
}

// ElectricityEmissions returns the emissions of consuming kwh of grid power
func (e *Engine) ElectricityEmissions(kwh float64) float64 {
	emissions := kwh * e.factors.ElectricityKgCO2ePerKWh
	e.logger.Debug("Electricity emissions",
		zap.Float64("kwh", kwh),
		zap.Float64("co2e_kg", emissions))
	return emissions
}

// TransportationEmissions returns the emissions of moving loadTons over
// distanceKm. Unknown vehicle types are treated as TRUCK_MEDIUM.
func (e *Engine) TransportationEmissions(distanceKm float64, vehicleType string, loadTons float64) float64 {
	factor, ok := transportFactors[strings.ToUpper(vehicleType)]
	if !ok {
		factor = transportFactors["TRUCK_MEDIUM"]
	}

	emissions := distanceKm * loadTons * factor
	e.logger.Debug("Transportation emissions",
		zap.Float64("distance_km", distanceKm),
		zap.Float64("load_tons", loadTons),
		zap.String("vehicle_type", vehicleType),
		zap.Float64("co2e_kg", emissions))
	return emissions
}

// PackagingEmissions returns the embodied emissions of weightKg of material
func (e *Engine) PackagingEmissions(materialType string, weightKg float64) float64 {
	factor, ok := packagingFactors[strings.ToUpper(materialType)]
	if !ok {
		factor = averageMaterial
	}
	return weightKg * factor
}

// DetermineScope classifies an activity label. Anything unrecognized is
// attributed to the supply chain.
func (e *Engine) DetermineScope(activityType string) domain.EmissionType {
	switch strings.ToUpper(activityType) {
	case "FORKLIFT_FUEL", "COMPANY_VEHICLE", "GENERATOR":
		return domain.EmissionTypeScope1Direct
	case "ELECTRICITY", "HEATING", "COOLING":
		return domain.EmissionTypeScope2Energy
	case "TRANSPORTATION", "SHIPPING", "LOGISTICS":
		return domain.EmissionTypeScope3Transportation
	case "PACKAGING", "SUPPLIES", "WASTE":
		return domain.EmissionTypeScope3SupplyChain
	default:
		return domain.EmissionTypeScope3SupplyChain
	}
}
