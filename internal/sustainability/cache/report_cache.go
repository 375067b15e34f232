package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

const reportKeyPrefix = "esg_report:"

// ReportCache caches the latest ESG report per warehouse, month and period.
// Cache failures are logged and treated as misses.
type ReportCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewReportCache creates a new report cache
func NewReportCache(store Store, ttl time.Duration, logger *zap.Logger) *ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// ReportKey builds the cache key of a report
func ReportKey(warehouseID string, month domain.YearMonth, period domain.ReportingPeriod) string {
	return fmt.Sprintf("%s%s:%s:%s", reportKeyPrefix, warehouseID, month.String(), period)
}

// Get returns the cached report or nil
func (c *ReportCache) Get(ctx context.Context, warehouseID string, month domain.YearMonth, period domain.ReportingPeriod) *domain.ESGReport {
	key := ReportKey(warehouseID, month, period)
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var report domain.ESGReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Warn("Discarding undecodable cached report", zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(ctx, key)
		return nil
	}
	return &report
}

// Put stores report under its warehouse, month and period
func (c *ReportCache) Put(ctx context.Context, report *domain.ESGReport) {
	key := ReportKey(report.WarehouseID, report.ReportMonth, report.Period)
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("Report cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateWarehouse drops every cached report of a warehouse
func (c *ReportCache) InvalidateWarehouse(ctx context.Context, warehouseID string) {
	if err := c.store.DeleteByPrefix(ctx, reportKeyPrefix+warehouseID+":"); err != nil {
		c.logger.Warn("Report cache invalidation failed", zap.String("warehouse_id", warehouseID), zap.Error(err))
	}
}

// Close releases the underlying store
func (c *ReportCache) Close() error {
	return c.store.Close()
}
