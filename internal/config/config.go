package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"carbon-scribe/sustainability-backend/internal/sustainability/calculation"
)

// Storage drivers
const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// Cache drivers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Storage   StorageConfig   `json:"storage"`
	Mongo     MongoConfig     `json:"mongo"`
	Database  DatabaseConfig  `json:"database"`
	Emissions EmissionsConfig `json:"emissions"`
	Reporting ReportingConfig `json:"reporting"`
	Cache     CacheConfig     `json:"cache"`
	Archive   ArchiveConfig   `json:"archive"`
	Security  SecurityConfig  `json:"security"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `json:"driver"` // mongo or postgres
}

// MongoConfig represents MongoDB configuration
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// DatabaseConfig represents PostgreSQL configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	AutoMigrate    bool          `json:"auto_migrate"`
}

// EmissionsConfig holds the configurable emission factors in kg CO2e per unit
type EmissionsConfig struct {
	DieselFactor      float64 `json:"diesel_factor"`
	GasolineFactor    float64 `json:"gasoline_factor"`
	ElectricityFactor float64 `json:"electricity_factor"`
}

// ReportingConfig configures scheduled report generation
type ReportingConfig struct {
	SchedulerEnabled  bool     `json:"scheduler_enabled"`
	Cron              string   `json:"cron"`
	Warehouses        []string `json:"warehouses"`
	PreventDuplicates bool     `json:"prevent_duplicates"`
}

// CacheConfig configures the report cache
type CacheConfig struct {
	Enabled  bool          `json:"enabled"`
	Driver   string        `json:"driver"` // memory or redis
	RedisURL string        `json:"redis_url"`
	TTL      time.Duration `json:"ttl"`
}

// ArchiveConfig configures archiving of report exports to S3
type ArchiveConfig struct {
	Enabled         bool   `json:"enabled"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// SecurityConfig
type SecurityConfig struct {
	AuthEnabled bool   `json:"auth_enabled"`
	JWTSecret   string `json:"jwt_secret"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Driver: StorageMongo,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "sustainability",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "sustainability",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    5 * time.Minute,
			AutoMigrate:    true,
		},
		Emissions: EmissionsConfig{
			DieselFactor:      calculation.DefaultDieselFactor,
			GasolineFactor:    calculation.DefaultGasolineFactor,
			ElectricityFactor: calculation.DefaultElectricityFactor,
		},
		Reporting: ReportingConfig{
			Cron: "0 0 2 1 * *",
		},
		Cache: CacheConfig{
			Enabled: true,
			Driver:  CacheMemory,
			TTL:     15 * time.Minute,
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
			Prefix: "esg-reports",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// Variables from a .env file in the working directory are loaded first and
// never override variables already set in the process environment.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := Default()

	// Load from file if exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	var errs []error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setString("SERVER_HOST", &config.Server.Host)
	setInt("SERVER_PORT", &config.Server.Port)

	setString("STORAGE_DRIVER", &config.Storage.Driver)
	setString("MONGO_URI", &config.Mongo.URI)
	setString("MONGO_DATABASE", &config.Mongo.Database)

	setString("DATABASE_HOST", &config.Database.Host)
	setInt("DATABASE_PORT", &config.Database.Port)
	setString("DATABASE_USER", &config.Database.User)
	setString("DATABASE_PASSWORD", &config.Database.Password)
	setString("DATABASE_DBNAME", &config.Database.DBName)
	setString("DATABASE_SSLMODE", &config.Database.SSLMode)

	setFloat("CARBON_DIESEL_FACTOR", &config.Emissions.DieselFactor)
	setFloat("CARBON_GASOLINE_FACTOR", &config.Emissions.GasolineFactor)
	setFloat("CARBON_ELECTRICITY_FACTOR", &config.Emissions.ElectricityFactor)

	setBool("REPORTING_SCHEDULER_ENABLED", &config.Reporting.SchedulerEnabled)
	setString("REPORTING_CRON", &config.Reporting.Cron)
	setBool("REPORTING_PREVENT_DUPLICATES", &config.Reporting.PreventDuplicates)
	if v := os.Getenv("REPORTING_WAREHOUSES"); v != "" {
		config.Reporting.Warehouses = splitList(v)
	}

	setBool("CACHE_ENABLED", &config.Cache.Enabled)
	setString("CACHE_DRIVER", &config.Cache.Driver)
	setString("REDIS_URL", &config.Cache.RedisURL)
	setDuration("CACHE_TTL", &config.Cache.TTL)

	setBool("ARCHIVE_ENABLED", &config.Archive.Enabled)
	setString("ARCHIVE_S3_BUCKET", &config.Archive.Bucket)
	setString("ARCHIVE_S3_PREFIX", &config.Archive.Prefix)
	setString("ARCHIVE_S3_ENDPOINT", &config.Archive.Endpoint)
	setString("AWS_REGION", &config.Archive.Region)
	setString("AWS_ACCESS_KEY_ID", &config.Archive.AccessKeyID)
	setString("AWS_SECRET_ACCESS_KEY", &config.Archive.SecretAccessKey)

	setBool("AUTH_ENABLED", &config.Security.AuthEnabled)
	setString("JWT_SECRET", &config.Security.JWTSecret)

	setString("LOG_LEVEL", &config.Logging.Level)

	return errors.Join(errs...)
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMongo, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case CacheMemory:
		case CacheRedis:
			if c.Cache.RedisURL == "" {
				return fmt.Errorf("redis cache requires redis_url")
			}
		default:
			return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
		}
	}
	if c.Emissions.DieselFactor < 0 || c.Emissions.GasolineFactor < 0 || c.Emissions.ElectricityFactor < 0 {
		return fmt.Errorf("emission factors must not be negative")
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive requires an S3 bucket")
	}
	if c.Security.AuthEnabled && c.Security.JWTSecret == "" {
		return fmt.Errorf("auth requires jwt_secret")
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
