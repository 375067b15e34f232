package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-scribe/sustainability-backend/internal/sustainability/calculation"
)

func writeConfigFile(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageMongo, cfg.Storage.Driver)
	assert.Equal(t, 2.68, cfg.Emissions.DieselFactor)
	assert.Equal(t, 2.31, cfg.Emissions.GasolineFactor)
	assert.Equal(t, 0.92, cfg.Emissions.ElectricityFactor)
	assert.Equal(t, "0 0 2 1 * *", cfg.Reporting.Cron)
	assert.False(t, cfg.Reporting.PreventDuplicates)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
}

func TestDefault_EmissionFactorsMatchCalculator(t *testing.T) {
	factors := calculation.DefaultFactors()
	emissions := Default().Emissions

	assert.Equal(t, factors.DieselKgCO2ePerLiter, emissions.DieselFactor)
	assert.Equal(t, factors.GasolineKgCO2ePerLiter, emissions.GasolineFactor)
	assert.Equal(t, factors.ElectricityKgCO2ePerKWh, emissions.ElectricityFactor)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfigFile(t, `{
		"storage": {"driver": "postgres"},
		"database": {"host": "db", "port": 6543, "user": "esg", "password": "pw", "db_name": "esg", "ssl_mode": "require"},
		"emissions": {"diesel_factor": 2.7},
		"reporting": {"warehouses": ["WH-1", "WH-2"], "prevent_duplicates": true}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://esg:pw@db:6543/esg?sslmode=require", cfg.Database.GetDatabaseURL())
	assert.Equal(t, 2.7, cfg.Emissions.DieselFactor)
	assert.Equal(t, 2.31, cfg.Emissions.GasolineFactor)
	assert.Equal(t, []string{"WH-1", "WH-2"}, cfg.Reporting.Warehouses)
	assert.True(t, cfg.Reporting.PreventDuplicates)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CARBON_ELECTRICITY_FACTOR", "0.45")
	t.Setenv("REPORTING_WAREHOUSES", "WH-1, WH-3 ,")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REPORTING_PREVENT_DUPLICATES", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.45, cfg.Emissions.ElectricityFactor)
	assert.Equal(t, []string{"WH-1", "WH-3"}, cfg.Reporting.Warehouses)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Reporting.PreventDuplicates)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("CARBON_DIESEL_FACTOR", "lots")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	_, err := LoadConfig(writeConfigFile(t, "{not json"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Driver = "cassandra" }},
		{"redis without url", func(c *Config) { c.Cache.Driver = CacheRedis }},
		{"unknown cache", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"negative factor", func(c *Config) { c.Emissions.DieselFactor = -1 }},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true }},
		{"auth without secret", func(c *Config) { c.Security.AuthEnabled = true }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
