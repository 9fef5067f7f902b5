package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/services/fetcher"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

const endpointAnalyze = "analyze"

// Analyzer is the use case behind GET /api/analyze.
type Analyzer interface {
	Analyze(ctx context.Context, query string, opts usecase.AnalyzeOptions) (*models.Report, error)
}

// AnalyzeEchoHandler serves snapshot reports over Echo.
type AnalyzeEchoHandler struct {
	logger   *xlogger.Logger
	analyzer Analyzer
	metrics  *metrics.EndpointMetrics
	policy   fetcher.Policy
}

// NewAnalyzeEchoHandler builds the handler. policy is the base retry policy that
// the attempts query parameter overrides.
func NewAnalyzeEchoHandler(logger *xlogger.Logger, analyzer Analyzer, m *metrics.EndpointMetrics, policy fetcher.Policy) *AnalyzeEchoHandler {
	if m == nil {
		m = metrics.NewEndpointMetrics(nil)
	}
	return &AnalyzeEchoHandler{logger: logger, analyzer: analyzer, metrics: m, policy: policy}
}

func (h *AnalyzeEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
}

func (h *AnalyzeEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	defer func() {
		h.metrics.Latency.WithLabelValues(endpointAnalyze).Observe(time.Since(start).Seconds())
	}()

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.metrics.Errors.WithLabelValues(endpointAnalyze, "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	opts := usecase.AnalyzeOptions{Deadline: time.Duration(req.DeadlineMS) * time.Millisecond}
	if req.Attempts > 0 {
		p := h.policy
		p.MaxAttempts = req.Attempts
		opts.Retry = &p
	}

	report, err := h.analyzer.Analyze(c.Request().Context(), req.Query, opts)
	if err != nil {
		appErr := toAppError(err)
		h.metrics.Errors.WithLabelValues(endpointAnalyze, appErr.Code).Inc()
		if appErr.Status >= 500 {
			h.logger.Error("analyze usecase error", xlogger.String("q", req.Query), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr.WithParam("q", req.Query))
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, report)
}

func toAppError(err error) *xhttp.AppError {
	var (
		noMatch  *usecase.NoMatchError
		noData   *usecase.NoDataError
		deadline *usecase.DeadlineExceededError
	)
	switch {
	case errors.Is(err, usecase.ErrEmptyQuery):
		return xhttp.RequiredError("q").WithError(err)
	case errors.As(err, &noMatch):
		return xhttp.NotFoundErrorf("no security matches %q", noMatch.Query).WithError(err)
	case errors.As(err, &deadline):
		return xhttp.TryAgainError("market data did not arrive in time").WithError(err)
	case errors.As(err, &noData):
		return xhttp.NoDataError("no market data available").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.TryAgainError("market data did not arrive in time").WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
