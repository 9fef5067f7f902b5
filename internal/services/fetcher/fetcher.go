package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
)

// BreakerSettings configures the per-source circuit breaker.
// ConsecutiveFailures == 0 disables breaking.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// Fetcher runs upstream calls under a retry policy, one breaker per source.
type Fetcher struct {
	metrics  repository.Metrics
	log      *logger.Logger
	cache    cache.Cache
	breaker  BreakerSettings
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
	mu       sync.Mutex
	breakers map[string]*gobreaker.TwoStepCircuitBreaker
}

type Option func(*Fetcher)

func WithMetrics(m repository.Metrics) Option {
	return func(f *Fetcher) {
		if m != nil {
			f.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// WithCache enables the read-through cache used by CachedFetch.
func WithCache(c cache.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

func WithBreaker(s BreakerSettings) Option {
	return func(f *Fetcher) { f.breaker = s }
}

// WithSleep replaces the backoff wait. Tests use it to skip real time.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) {
		if fn != nil {
			f.sleep = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		metrics:  repository.NopMetrics{},
		log:      logger.NewNop(),
		breaker:  BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second},
		sleep:    sleepCtx,
		now:      time.Now,
		breakers: make(map[string]*gobreaker.TwoStepCircuitBreaker),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch calls fn until it succeeds or the policy is exhausted.
// A done ctx ends the loop at once; the returned *FetchError then wraps ctx.Err().
func Fetch[T any](ctx context.Context, f *Fetcher, source, params string, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	p := policy.normalized()
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, f.abort(source, params, attempt-1, err, lastErr)
		}

		v, err := runAttempt(ctx, f, source, p.AttemptTimeout, fn)
		if err == nil {
			if attempt > 1 {
				f.log.Debug("fetch recovered",
					logger.String("source", source),
					logger.String("params", params),
					logger.Int("attempt", attempt),
				)
			}
			return v, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, f.abort(source, params, attempt, ctxErr, lastErr)
		}
		if rejected(err) || attempt == p.MaxAttempts {
			return zero, &FetchError{Source: source, Params: params, Attempts: attempt, Err: lastErr}
		}

		delay := p.Delay(attempt)
		f.log.Warn("fetch attempt failed, retrying",
			logger.String("source", source),
			logger.String("params", params),
			logger.Int("attempt", attempt),
			logger.Duration("backoff", delay),
			logger.Error(err),
		)
		if err := f.sleep(ctx, delay); err != nil {
			return zero, f.abort(source, params, attempt, err, lastErr)
		}
	}

	return zero, &FetchError{Source: source, Params: params, Attempts: p.MaxAttempts, Err: lastErr}
}

func (f *Fetcher) abort(source, params string, attempts int, ctxErr, lastErr error) *FetchError {
	err := ctxErr
	if lastErr != nil && !errors.Is(lastErr, ctxErr) {
		err = fmt.Errorf("%w (last error: %v)", ctxErr, lastErr)
	}
	return &FetchError{Source: source, Params: params, Attempts: attempts, Err: err}
}

type result[T any] struct {
	v   T
	err error
}

// runAttempt bounds one call by timeout even when fn ignores its context.
func runAttempt[T any](ctx context.Context, f *Fetcher, source string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	f.metrics.RecordFetchAttempt(source)

	cb := f.breakerFor(source)
	var done func(success bool)
	if cb != nil {
		var err error
		if done, err = cb.Allow(); err != nil {
			f.metrics.RecordFetchFailure(source)
			return zero, err
		}
	}

	actx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := f.now()

	ch := make(chan result[T], 1)
	go func() {
		v, err := fn(actx)
		ch <- result[T]{v: v, err: err}
	}()

	var res result[T]
	select {
	case res = <-ch:
	case <-actx.Done():
		res = result[T]{err: actx.Err()}
	}

	f.metrics.RecordFetchLatency(source, f.now().Sub(start).Seconds())
	settle(cb, done, classify(ctx, res.err))
	if res.err != nil {
		f.metrics.RecordFetchFailure(source)
		return zero, res.err
	}
	return res.v, nil
}

type outcome uint8

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	// the caller gave up first; says nothing about the upstream
	outcomeAbandoned
)

// classify judges an attempt against the caller's ctx, not the error alone:
// a per-attempt timeout is an upstream failure, the caller's own deadline or
// cancellation is not.
func classify(ctx context.Context, err error) outcome {
	switch {
	case err == nil:
		return outcomeSuccess
	case ctx.Err() != nil:
		return outcomeAbandoned
	default:
		return outcomeFailure
	}
}

// settle reports the outcome to the breaker. Abandoned attempts leave the
// counts untouched, except that an abandoned half-open probe must release its
// slot; it proved nothing, so the breaker goes back to open.
func settle(cb *gobreaker.TwoStepCircuitBreaker, done func(success bool), o outcome) {
	if done == nil {
		return
	}
	switch o {
	case outcomeSuccess:
		done(true)
	case outcomeFailure:
		done(false)
	case outcomeAbandoned:
		if cb.State() == gobreaker.StateHalfOpen {
			done(false)
		}
	}
}

// rejected reports whether the breaker refused the call without running it.
func rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (f *Fetcher) breakerFor(source string) *gobreaker.TwoStepCircuitBreaker {
	if f.breaker.ConsecutiveFailures == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[source]; ok {
		return cb
	}
	threshold := f.breaker.ConsecutiveFailures
	cb := gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Timeout:     f.breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.log.Warn("circuit breaker state changed",
				logger.String("source", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	f.breakers[source] = cb
	return cb
}

// BreakerState reports the breaker state for source, "closed" when none exists yet.
func (f *Fetcher) BreakerState(source string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[source]; ok {
		return cb.State().String()
	}
	return gobreaker.StateClosed.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
