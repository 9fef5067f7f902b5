package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/util"
)

var errUpstream = errors.New("upstream unavailable")

// fakeProvider serves canned data. A non-zero delay blocks that call until it
// elapses or ctx is done.
type fakeProvider struct {
	snapshot    []models.SecurityRecord
	snapshotErr error
	valuation   []models.ValuationPoint
	valErr      error
	financials  []models.FinancialIndicator
	finErr      error
	news        []models.NewsItem
	newsErr     error
	newsDelay   time.Duration

	snapshotCalls int32
	valCalls      int32
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *fakeProvider) GetBulkSnapshot(ctx context.Context) ([]models.SecurityRecord, error) {
	atomic.AddInt32(&p.snapshotCalls, 1)
	if p.snapshotErr != nil {
		return nil, p.snapshotErr
	}
	return p.snapshot, nil
}

func (p *fakeProvider) GetValuationHistory(ctx context.Context, code string) ([]models.ValuationPoint, error) {
	atomic.AddInt32(&p.valCalls, 1)
	return p.valuation, p.valErr
}

func (p *fakeProvider) GetFinancialIndicators(ctx context.Context, code string) ([]models.FinancialIndicator, error) {
	return p.financials, p.finErr
}

func (p *fakeProvider) GetRecentNews(ctx context.Context, code string) ([]models.NewsItem, error) {
	if err := wait(ctx, p.newsDelay); err != nil {
		return nil, err
	}
	return p.news, p.newsErr
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, util.Shanghai)
}

func moutaiProvider() *fakeProvider {
	return &fakeProvider{
		snapshot: []models.SecurityRecord{
			{Code: "000001", Name: "平安银行", VolumeRatio: util.Float(0.9), TurnoverRate: util.Float(0.6), PEDynamic: util.Float(4.5)},
			{Code: "600519", Name: "贵州茅台", LastPrice: util.Float(1688), VolumeRatio: util.Float(1.2), TurnoverRate: util.Float(0.31), PEDynamic: util.Float(28.1)},
			{Code: "600600", Name: "青岛啤酒", VolumeRatio: util.Float(2.1), TurnoverRate: util.Float(6.3)},
		},
		valuation: []models.ValuationPoint{
			{Date: day(2024, 2, 28), PE: util.Float(27.0)},
			{Date: day(2024, 3, 1), PE: util.Float(28.4)},
			{Date: day(2024, 2, 29), PE: util.Float(27.9)},
		},
		financials: []models.FinancialIndicator{
			{ReportDate: day(2023, 9, 30), ROE: util.Float(24.1), NetProfitGrowth: util.Float(19.1)},
			{ReportDate: day(2023, 12, 31), ROE: util.Float(34.2), NetProfitGrowth: util.Float(19.2)},
		},
		news: []models.NewsItem{
			{Title: "n1", PublishedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, util.Shanghai)},
			{Title: "n2", PublishedAt: time.Date(2024, 3, 1, 15, 0, 0, 0, util.Shanghai)},
			{Title: "n3", PublishedAt: time.Date(2024, 2, 27, 9, 0, 0, 0, util.Shanghai)},
			{Title: "n4", PublishedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, util.Shanghai)},
			{Title: "n5", PublishedAt: time.Date(2024, 2, 20, 9, 0, 0, 0, util.Shanghai)},
			{Title: "n6", PublishedAt: time.Date(2024, 2, 29, 9, 0, 0, 0, util.Shanghai)},
			{Title: "n7", PublishedAt: time.Date(2024, 1, 5, 9, 0, 0, 0, util.Shanghai)},
		},
	}
}

type fakePublisher struct {
	reports []*models.Report
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, r *models.Report) error {
	p.reports = append(p.reports, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }
