package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// MarketDataProvider is the upstream market data capability.
type MarketDataProvider interface {
	GetBulkSnapshot(ctx context.Context) ([]models.SecurityRecord, error)
	GetValuationHistory(ctx context.Context, code string) ([]models.ValuationPoint, error)
	GetFinancialIndicators(ctx context.Context, code string) ([]models.FinancialIndicator, error)
	GetRecentNews(ctx context.Context, code string) ([]models.NewsItem, error)
}

// ReportPublisher hands finished reports to downstream consumers.
type ReportPublisher interface {
	Publish(ctx context.Context, r *models.Report) error
	Close() error
}

type Metrics interface {
	RecordFetchAttempt(source string)
	RecordFetchFailure(source string)
	RecordFetchLatency(source string, seconds float64)
	RecordCacheResult(source string, hit bool)
	RecordAbsence(category models.Category)
	RecordError(kind string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordFetchAttempt(string)          {}
func (NopMetrics) RecordFetchFailure(string)          {}
func (NopMetrics) RecordFetchLatency(string, float64) {}
func (NopMetrics) RecordCacheResult(string, bool)     {}
func (NopMetrics) RecordAbsence(models.Category)      {}
func (NopMetrics) RecordError(string)                 {}
