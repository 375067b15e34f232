// Package scheduler generates the previous month's ESG report for each
// configured warehouse on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/sustainability"
	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// DefaultCronExpression runs at 02:00 on the first day of every month
const DefaultCronExpression = "0 0 2 1 * *"

// ReportGenerator produces a monthly report for one warehouse
type ReportGenerator interface {
	GenerateMonthlyReport(ctx context.Context, warehouseID string, month domain.YearMonth) (*domain.ESGReport, error)
}

// Config configures the monthly report scheduler
type Config struct {
	CronExpression string
	Warehouses     []string
	// Timeout bounds a whole run across all warehouses
	Timeout time.Duration
}

// RunResult summarizes one scheduled run
type RunResult struct {
	Month     domain.YearMonth
	Generated []string
	Skipped   []string
	Failed    map[string]error
}

// Scheduler triggers monthly report generation
type Scheduler struct {
	cron      *cron.Cron
	generator ReportGenerator
	config    Config
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
}

// New creates a scheduler and registers the monthly job
func New(generator ReportGenerator, config Config, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CronExpression == "" {
		config.CronExpression = DefaultCronExpression
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Minute
	}

	s := &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		generator: generator,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}

	entryID, err := s.cron.AddFunc(config.CronExpression, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", config.CronExpression, err)
	}
	s.entryID = entryID

	return s, nil
}

// Start starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("report scheduler already running")
	}
	s.running = true
	s.cron.Start()

	s.logger.Info("Report scheduler started",
		zap.String("cron", s.config.CronExpression),
		zap.Strings("warehouses", s.config.Warehouses),
		zap.Time("next_run", s.NextRun()))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Stopping report scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
}

// NextRun returns the next scheduled time, zero when not started
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce generates last month's report for every configured warehouse.
// A warehouse that already has a report is skipped; other failures do not
// stop the remaining warehouses.
func (s *Scheduler) RunOnce(ctx context.Context) *RunResult {
	result := &RunResult{
		Month:  domain.YearMonthOf(s.now().UTC()).Previous(),
		Failed: make(map[string]error),
	}

	for _, warehouseID := range s.config.Warehouses {
		if ctx.Err() != nil {
			result.Failed[warehouseID] = ctx.Err()
			continue
		}

		report, err := s.generator.GenerateMonthlyReport(ctx, warehouseID, result.Month)
		switch {
		case errors.Is(err, sustainability.ErrReportExists):
			result.Skipped = append(result.Skipped, warehouseID)
			s.logger.Info("Scheduled report already exists",
				zap.String("warehouse_id", warehouseID),
				zap.String("report_month", result.Month.String()))
		case err != nil:
			result.Failed[warehouseID] = err
			s.logger.Error("Scheduled report generation failed",
				zap.String("warehouse_id", warehouseID),
				zap.String("report_month", result.Month.String()),
				zap.Error(err))
		default:
			result.Generated = append(result.Generated, warehouseID)
			s.logger.Debug("Scheduled report generated",
				zap.String("warehouse_id", warehouseID),
				zap.String("report_id", report.ID))
		}
	}

	s.logger.Info("Scheduled report run finished",
		zap.String("report_month", result.Month.String()),
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)))

	return result
}
