// Package app wires configuration, storage and the sustainability service
// into runnable components.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"carbon-scribe/sustainability-backend/internal/config"
	"carbon-scribe/sustainability-backend/internal/database"
	"carbon-scribe/sustainability-backend/internal/metrics"
	"carbon-scribe/sustainability-backend/internal/sustainability"
	"carbon-scribe/sustainability-backend/internal/sustainability/cache"
	"carbon-scribe/sustainability-backend/internal/sustainability/calculation"
	"carbon-scribe/sustainability-backend/internal/sustainability/reporting"
	"carbon-scribe/sustainability-backend/internal/sustainability/scheduler"
	"carbon-scribe/sustainability-backend/pkg/storage"
)

// Checker reports whether a dependency is reachable
type Checker interface {
	Ping(ctx context.Context) error
}

type resource interface {
	Checker
	Close(ctx context.Context) error
}

// App holds the running components of the service
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Service   *sustainability.Service
	Metrics   *metrics.Recorder
	Scheduler *scheduler.Scheduler // nil when scheduling is disabled

	checks  map[string]Checker
	closers []func(ctx context.Context) error
}

// NewLogger builds a development logger for debug level and a production
// logger otherwise
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// New connects to the configured stores and builds the service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRecorder(),
		checks:  make(map[string]Checker),
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	opts := []sustainability.Option{
		sustainability.WithMetrics(a.Metrics),
		sustainability.WithDuplicateGuard(cfg.Reporting.PreventDuplicates),
	}

	if cfg.Cache.Enabled {
		reportCache, err := a.openCache(ctx)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		opts = append(opts, sustainability.WithReportCache(reportCache))
	}

	if cfg.Archive.Enabled {
		archive, err := storage.NewS3Archive(ctx, storage.S3Config{
			Region:          cfg.Archive.Region,
			Bucket:          cfg.Archive.Bucket,
			Prefix:          cfg.Archive.Prefix,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		})
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		opts = append(opts, sustainability.WithArchive(archive))
	}

	a.Service = NewService(repo, cfg.Emissions, logger, opts...)

	if cfg.Reporting.SchedulerEnabled {
		a.Scheduler, err = scheduler.New(a.Service, scheduler.Config{
			CronExpression: cfg.Reporting.Cron,
			Warehouses:     cfg.Reporting.Warehouses,
		}, logger.Named("scheduler"))
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	return a, nil
}

// NewService builds the sustainability service over repo
func NewService(repo sustainability.Repository, factors config.EmissionsConfig, logger *zap.Logger, opts ...sustainability.Option) *sustainability.Service {
	engine := calculation.NewEngine(calculation.Factors{
		DieselKgCO2ePerLiter:    factors.DieselFactor,
		GasolineKgCO2ePerLiter:  factors.GasolineFactor,
		ElectricityKgCO2ePerKWh: factors.ElectricityFactor,
	}, logger.Named("calculation"))

	return sustainability.NewService(repo, engine, reporting.NewAggregator(logger.Named("reporting")), logger, opts...)
}

func (a *App) openRepository(ctx context.Context) (sustainability.Repository, error) {
	switch a.Config.Storage.Driver {
	case config.StoragePostgres:
		pg, err := database.ConnectPostgres(ctx, a.Config.Database, a.Logger)
		if err != nil {
			return nil, err
		}
		a.track("postgres", pg)

		repo := sustainability.NewPostgresRepository(pg.Gorm)
		if a.Config.Database.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		return repo, nil

	case config.StorageMongo:
		mg, err := database.ConnectMongo(ctx, a.Config.Mongo, a.Logger)
		if err != nil {
			return nil, err
		}
		a.track("mongo", mg)

		repo := sustainability.NewMongoRepository(mg.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", a.Config.Storage.Driver)
}

func (a *App) openCache(ctx context.Context) (*cache.ReportCache, error) {
	var store cache.Store
	switch a.Config.Cache.Driver {
	case config.CacheRedis:
		redisStore, err := cache.NewRedisStore(ctx, a.Config.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		a.checks["redis"] = redisStore
		store = redisStore
	default:
		store = cache.NewMemoryStore(time.Minute)
	}

	reportCache := cache.NewReportCache(store, a.Config.Cache.TTL, a.Logger.Named("cache"))
	a.closers = append(a.closers, func(context.Context) error { return reportCache.Close() })
	return reportCache, nil
}

func (a *App) track(name string, r resource) {
	a.checks[name] = r
	a.closers = append(a.closers, r.Close)
}

// Health pings every dependency and returns the failures by name
func (a *App) Health(ctx context.Context) map[string]string {
	return checkAll(ctx, a.checks)
}

// Close stops the scheduler and releases every connection
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func checkAll(ctx context.Context, checks map[string]Checker) map[string]string {
	failures := make(map[string]string)
	for name, c := range checks {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := c.Ping(pingCtx); err != nil {
			failures[name] = err.Error()
		}
		cancel()
	}
	return failures
}
