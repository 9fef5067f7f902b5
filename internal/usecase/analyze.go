package usecase

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/fetcher"
	"StockPulse/internal/services/identifier"
	"StockPulse/internal/services/resolver"
	"StockPulse/internal/services/signals"
	"StockPulse/pkg/logger"
)

const (
	DefaultSnapshotTTL = 10 * time.Minute
	DefaultDeadline    = 15 * time.Second

	publishTimeout = 5 * time.Second
)

// AnalyzeOptions override the analyzer defaults for one request.
type AnalyzeOptions struct {
	Deadline time.Duration   // 0 uses the analyzer default
	Retry    *fetcher.Policy // nil uses the analyzer default
}

// Analyzer runs query → snapshot → resolve → aggregate → derive → assemble.
type Analyzer struct {
	provider    domrepo.MarketDataProvider
	fetcher     *fetcher.Fetcher
	aggregator  *Aggregator
	deriver     *signals.Deriver
	assembler   *Assembler
	publisher   domrepo.ReportPublisher
	policy      fetcher.Policy
	snapshotTTL time.Duration
	deadline    time.Duration
	newsLimit   int
	metrics     domrepo.Metrics
	log         *logger.Logger
}

type AnalyzerOption func(*Analyzer)

func WithRetryPolicy(p fetcher.Policy) AnalyzerOption {
	return func(a *Analyzer) { a.policy = p }
}

func WithSnapshotTTL(ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) { a.snapshotTTL = ttl }
}

func WithDefaultDeadline(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) { a.deadline = d }
}

func WithAnalyzerNewsLimit(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.newsLimit = n
		}
	}
}

func WithThresholds(t signals.Thresholds) AnalyzerOption {
	return func(a *Analyzer) { a.deriver = signals.NewDeriver(t) }
}

func WithAssembler(as *Assembler) AnalyzerOption {
	return func(a *Analyzer) {
		if as != nil {
			a.assembler = as
		}
	}
}

// WithPublisher hands every assembled report to p. A nil publisher disables publishing.
func WithPublisher(p domrepo.ReportPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.publisher = p }
}

func WithAnalyzerMetrics(m domrepo.Metrics) AnalyzerOption {
	return func(a *Analyzer) {
		if m != nil {
			a.metrics = m
		}
	}
}

func WithAnalyzerLogger(l *logger.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAnalyzer(provider domrepo.MarketDataProvider, f *fetcher.Fetcher, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		provider:    provider,
		fetcher:     f,
		deriver:     signals.NewDeriver(signals.DefaultThresholds()),
		assembler:   NewAssembler(),
		policy:      fetcher.DefaultPolicy(),
		snapshotTTL: DefaultSnapshotTTL,
		deadline:    DefaultDeadline,
		newsLimit:   DefaultNewsLimit,
		metrics:     domrepo.NopMetrics{},
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.aggregator = NewAggregator(provider, f,
		WithAggregatorPolicy(a.policy),
		WithNewsLimit(a.newsLimit),
		WithAggregatorMetrics(a.metrics),
		WithAggregatorLogger(a.log),
	)
	return a
}

// Analyze builds a report for query. Errors are ErrEmptyQuery, *NoMatchError,
// *NoDataError or *DeadlineExceededError.
func (a *Analyzer) Analyze(ctx context.Context, query string, opts AnalyzeOptions) (*models.Report, error) {
	id := identifier.Normalize(query)
	if id.Value == "" {
		a.metrics.RecordError("empty_query")
		return nil, ErrEmptyQuery
	}

	deadline := a.deadline
	if opts.Deadline > 0 {
		deadline = opts.Deadline
	}
	policy := a.policy
	if opts.Retry != nil {
		policy = *opts.Retry
	}
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	snapshot, err := fetcher.CachedFetch(ctx, a.fetcher, SourceSnapshot, "", a.snapshotTTL, policy, a.provider.GetBulkSnapshot)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			a.metrics.RecordError("deadline")
			return nil, &DeadlineExceededError{Stage: "snapshot", Err: err}
		}
		a.metrics.RecordError("no_data")
		a.log.Error("snapshot unavailable", logger.String("query", id.Raw), logger.Error(err))
		return nil, &NoDataError{Query: id.Raw, Err: err}
	}

	record, ok := resolver.Resolve(snapshot, id)
	if !ok {
		a.metrics.RecordError("no_match")
		a.log.Info("no security matched", logger.String("query", id.Raw), logger.Int("snapshot_rows", len(snapshot)))
		return nil, &NoMatchError{Query: id.Raw}
	}

	profile := a.aggregator.aggregate(ctx, id, record, policy)
	report, err := a.assembler.Assemble(id, profile, a.deriver.Derive(profile))
	if err != nil {
		a.metrics.RecordError("no_data")
		return nil, err
	}

	a.log.Info("report assembled",
		logger.String("report_id", report.ID),
		logger.String("code", record.Code),
		logger.String("name", record.Name),
		logger.Int("absent", len(report.Profile.Absent)),
		logger.Bool("partial", len(report.Profile.Absent) > 0),
	)
	a.publish(ctx, report)
	return report, nil
}

func (a *Analyzer) publish(ctx context.Context, r *models.Report) {
	if a.publisher == nil {
		return
	}
	// the request deadline may be nearly spent; publishing gets its own budget
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := a.publisher.Publish(pctx, r); err != nil {
		a.metrics.RecordError("publish")
		a.log.Warn("report publish failed", logger.String("report_id", r.ID), logger.Error(err))
	}
}
