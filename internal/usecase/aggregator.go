package usecase

import (
	"context"
	"errors"
	"sort"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/fetcher"
	"StockPulse/pkg/logger"
)

// Fetch source names, used for breakers, cache keys and metrics.
const (
	SourceSnapshot   = "snapshot"
	SourceValuation  = "valuation"
	SourceFinancials = "financials"
	SourceNews       = "news"
)

const (
	DefaultNewsLimit = 5

	reasonDeadline  = "deadline exceeded"
	reasonCancelled = "request cancelled"
	reasonEmpty     = "no data returned"
)

// Aggregator gathers the per-security categories concurrently.
type Aggregator struct {
	provider  domrepo.MarketDataProvider
	fetcher   *fetcher.Fetcher
	policy    fetcher.Policy
	newsLimit int
	metrics   domrepo.Metrics
	log       *logger.Logger
}

type AggregatorOption func(*Aggregator)

func WithAggregatorPolicy(p fetcher.Policy) AggregatorOption {
	return func(a *Aggregator) { a.policy = p }
}

func WithNewsLimit(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.newsLimit = n
		}
	}
}

func WithAggregatorMetrics(m domrepo.Metrics) AggregatorOption {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

func WithAggregatorLogger(l *logger.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAggregator(provider domrepo.MarketDataProvider, f *fetcher.Fetcher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		provider:  provider,
		fetcher:   f,
		policy:    fetcher.DefaultPolicy(),
		newsLimit: DefaultNewsLimit,
		metrics:   domrepo.NopMetrics{},
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate fills the spot category from record and fetches the rest in parallel.
// It returns when every fetch finished or ctx is done, whichever comes first;
// unfinished categories are then marked absent.
func (a *Aggregator) Aggregate(ctx context.Context, id models.NormalizedIdentifier, record models.SecurityRecord) models.MergedProfile {
	return a.aggregate(ctx, id, record, a.policy)
}

func (a *Aggregator) aggregate(ctx context.Context, id models.NormalizedIdentifier, record models.SecurityRecord, policy fetcher.Policy) models.MergedProfile {
	spot := record
	profile := models.MergedProfile{Code: record.Code, Spot: &spot}
	code := record.Code

	pending := []models.Category{models.CategoryValuation, models.CategoryFinancials, models.CategoryNews}
	// buffered so late senders never block once we stop listening
	ch := make(chan fetched, len(pending))

	go func() {
		v, err := fetcher.Fetch(ctx, a.fetcher, SourceValuation, code, policy, func(ctx context.Context) ([]models.ValuationPoint, error) {
			return a.provider.GetValuationHistory(ctx, code)
		})
		ch <- fetched{models.CategoryValuation, v, err}
	}()
	go func() {
		v, err := fetcher.Fetch(ctx, a.fetcher, SourceFinancials, code, policy, func(ctx context.Context) ([]models.FinancialIndicator, error) {
			return a.provider.GetFinancialIndicators(ctx, code)
		})
		ch <- fetched{models.CategoryFinancials, v, err}
	}()
	go func() {
		v, err := fetcher.Fetch(ctx, a.fetcher, SourceNews, code, policy, func(ctx context.Context) ([]models.NewsItem, error) {
			return a.provider.GetRecentNews(ctx, code)
		})
		ch <- fetched{models.CategoryNews, v, err}
	}()

	a.collect(ctx, id, &profile, pending, ch)
	return profile
}

type fetched struct {
	cat models.Category
	val interface{}
	err error
}

// collect applies results from ch until every pending category is settled or
// ctx is done. Results already delivered when ctx fires are still applied.
func (a *Aggregator) collect(ctx context.Context, id models.NormalizedIdentifier, profile *models.MergedProfile, pending []models.Category, ch <-chan fetched) {
	done := make(map[models.Category]bool, len(pending))
	apply := func(it fetched) {
		done[it.cat] = true
		if it.err != nil {
			a.absent(profile, id, it.cat, it.err.Error())
			return
		}
		switch it.cat {
		case models.CategoryValuation:
			profile.Valuation = latestValuation(it.val.([]models.ValuationPoint))
		case models.CategoryFinancials:
			profile.Financials = latestFinancials(it.val.([]models.FinancialIndicator))
		case models.CategoryNews:
			profile.News = recentNews(it.val.([]models.NewsItem), a.newsLimit)
		}
		if !profile.Has(it.cat) {
			a.absent(profile, id, it.cat, reasonEmpty)
		}
	}

	for len(done) < len(pending) {
		select {
		case it := <-ch:
			apply(it)
		case <-ctx.Done():
			reason := reasonCancelled
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				reason = reasonDeadline
			}
		drain:
			for len(done) < len(pending) {
				select {
				case it := <-ch:
					// aborted fetches get the request-level reason below
					if it.err != nil && errors.Is(it.err, ctx.Err()) {
						continue
					}
					apply(it)
				default:
					break drain
				}
			}
			for _, c := range pending {
				if !done[c] {
					a.absent(profile, id, c, reason)
				}
			}
			return
		}
	}
}

func (a *Aggregator) absent(p *models.MergedProfile, id models.NormalizedIdentifier, c models.Category, reason string) {
	p.MarkAbsent(c, reason)
	a.metrics.RecordAbsence(c)
	a.log.Warn("category unavailable",
		logger.String("query", id.Raw),
		logger.String("code", p.Code),
		logger.String("category", string(c)),
		logger.String("reason", reason),
	)
}

func latestValuation(points []models.ValuationPoint) *models.ValuationPoint {
	if len(points) == 0 {
		return nil
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Date.After(best.Date) {
			best = p
		}
	}
	return &best
}

func latestFinancials(rows []models.FinancialIndicator) *models.FinancialIndicator {
	if len(rows) == 0 {
		return nil
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.ReportDate.After(best.ReportDate) {
			best = r
		}
	}
	return &best
}

// recentNews returns at most limit items, newest first. The input is not modified.
func recentNews(items []models.NewsItem, limit int) []models.NewsItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.NewsItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
