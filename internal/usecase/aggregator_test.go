package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/fetcher"
	"StockPulse/internal/services/identifier"
)

func noRetry() fetcher.Policy {
	return fetcher.Policy{MaxAttempts: 1}
}

func newTestFetcher() *fetcher.Fetcher {
	return fetcher.New(
		fetcher.WithBreaker(fetcher.BreakerSettings{}),
		fetcher.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
}

func TestAggregate_AllCategories(t *testing.T) {
	p := moutaiProvider()
	agg := NewAggregator(p, newTestFetcher(), WithAggregatorPolicy(noRetry()))

	got := agg.Aggregate(context.Background(), identifier.Normalize("600519"), p.snapshot[1])

	assert.Equal(t, "600519", got.Code)
	require.NotNil(t, got.Spot)
	assert.Equal(t, "贵州茅台", got.Spot.Name)
	require.NotNil(t, got.Valuation)
	assert.Equal(t, day(2024, 3, 1), got.Valuation.Date)
	require.NotNil(t, got.Financials)
	assert.Equal(t, day(2023, 12, 31), got.Financials.ReportDate)
	require.Len(t, got.News, DefaultNewsLimit)
	titles := make([]string, 0, len(got.News))
	for _, n := range got.News {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"n4", "n2", "n1", "n6", "n3"}, titles)
	assert.Empty(t, got.Absent)
}

func TestAggregate_ValuationFailureIsolated(t *testing.T) {
	p := moutaiProvider()
	p.valErr = errUpstream
	agg := NewAggregator(p, newTestFetcher(), WithAggregatorPolicy(fetcher.Policy{MaxAttempts: 3}))

	got := agg.Aggregate(context.Background(), identifier.Normalize("600519"), p.snapshot[1])

	assert.Nil(t, got.Valuation)
	require.Contains(t, got.Absent, models.CategoryValuation)
	assert.Contains(t, got.Absent[models.CategoryValuation], errUpstream.Error())
	assert.EqualValues(t, 3, p.valCalls)
	assert.NotNil(t, got.Spot)
	assert.NotNil(t, got.Financials)
	assert.NotEmpty(t, got.News)
	assert.Len(t, got.Absent, 1)
}

func TestAggregate_EmptyResultsAreAbsent(t *testing.T) {
	p := moutaiProvider()
	p.valuation = nil
	p.news = []models.NewsItem{}
	agg := NewAggregator(p, newTestFetcher(), WithAggregatorPolicy(noRetry()))

	got := agg.Aggregate(context.Background(), identifier.Normalize("600519"), p.snapshot[1])

	assert.Equal(t, reasonEmpty, got.Absent[models.CategoryValuation])
	assert.Equal(t, reasonEmpty, got.Absent[models.CategoryNews])
	assert.NotContains(t, got.Absent, models.CategoryFinancials)
}

func TestAggregate_DeadlineMarksPendingAbsent(t *testing.T) {
	p := moutaiProvider()
	p.newsDelay = 2 * time.Second
	agg := NewAggregator(p, newTestFetcher(), WithAggregatorPolicy(noRetry()))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := agg.Aggregate(ctx, identifier.Normalize("600519"), p.snapshot[1])
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	assert.Nil(t, got.News)
	require.Contains(t, got.Absent, models.CategoryNews)
	assert.Contains(t, got.Absent[models.CategoryNews], "deadline exceeded")
	assert.NotNil(t, got.Valuation)
	assert.NotNil(t, got.Financials)
}

func TestAggregate_ResultsDeliveredBeforeDeadlineAreKept(t *testing.T) {
	p := moutaiProvider()
	agg := NewAggregator(p, newTestFetcher())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pending := []models.Category{models.CategoryValuation, models.CategoryFinancials, models.CategoryNews}
	ch := make(chan fetched, len(pending))
	ch <- fetched{models.CategoryValuation, p.valuation, nil}
	ch <- fetched{models.CategoryNews, nil, ctx.Err()}

	profile := models.MergedProfile{Code: "600519"}
	agg.collect(ctx, identifier.Normalize("600519"), &profile, pending, ch)

	require.NotNil(t, profile.Valuation)
	assert.Equal(t, day(2024, 3, 1), profile.Valuation.Date)
	assert.NotContains(t, profile.Absent, models.CategoryValuation)
	assert.Equal(t, reasonCancelled, profile.Absent[models.CategoryFinancials])
	assert.Equal(t, reasonCancelled, profile.Absent[models.CategoryNews])
}

func TestAggregate_CustomNewsLimit(t *testing.T) {
	p := moutaiProvider()
	agg := NewAggregator(p, newTestFetcher(), WithAggregatorPolicy(noRetry()), WithNewsLimit(2))

	got := agg.Aggregate(context.Background(), identifier.Normalize("600519"), p.snapshot[1])
	require.Len(t, got.News, 2)
	assert.Equal(t, "n4", got.News[0].Title)
}

func TestRecentNews_DoesNotMutateInput(t *testing.T) {
	items := moutaiProvider().news
	first := items[0].Title
	_ = recentNews(items, 3)
	assert.Equal(t, first, items[0].Title)
	assert.Nil(t, recentNews(nil, 3))
}
