package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/services/fetcher"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

type stubAnalyzer struct {
	report *models.Report
	err    error

	gotQuery string
	gotOpts  usecase.AnalyzeOptions
}

func (s *stubAnalyzer) Analyze(_ context.Context, query string, opts usecase.AnalyzeOptions) (*models.Report, error) {
	s.gotQuery, s.gotOpts = query, opts
	return s.report, s.err
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, a Analyzer, target string) (*httptest.ResponseRecorder, envelope, *metrics.EndpointMetrics) {
	t.Helper()
	m := metrics.NewEndpointMetrics(prometheus.NewRegistry())
	h := NewAnalyzeEchoHandler(xlogger.NewNop(), a, m, fetcher.DefaultPolicy())
	e := echo.New()
	h.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env, m
}

func TestAnalyze_OK(t *testing.T) {
	stub := &stubAnalyzer{report: &models.Report{
		ID:         "r-1",
		Identifier: models.NormalizedIdentifier{Raw: "600519", Value: "600519", IsCode: true},
		Profile:    models.MergedProfile{Code: "600519"},
		Signals:    []models.DerivedSignal{{Name: models.SignalActivityState, Label: "mild"}},
	}}

	rec, env, _ := serve(t, stub, "/api/analyze?q=600519&deadline_ms=1500&attempts=2")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)
	var got models.Report
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "r-1", got.ID)
	assert.Equal(t, "mild", got.Signals[0].Label)

	assert.Equal(t, "600519", stub.gotQuery)
	assert.Equal(t, 1500*time.Millisecond, stub.gotOpts.Deadline)
	require.NotNil(t, stub.gotOpts.Retry)
	assert.Equal(t, 2, stub.gotOpts.Retry.MaxAttempts)
	assert.Equal(t, fetcher.DefaultPolicy().Backoff, stub.gotOpts.Retry.Backoff)
}

func TestAnalyze_DefaultsLeaveOptionsUnset(t *testing.T) {
	stub := &stubAnalyzer{report: &models.Report{ID: "r-2"}}
	_, _, _ = serve(t, stub, "/api/analyze?q=%E8%8C%85%E5%8F%B0")

	assert.Equal(t, "茅台", stub.gotQuery)
	assert.Zero(t, stub.gotOpts.Deadline)
	assert.Nil(t, stub.gotOpts.Retry)
}

func TestAnalyze_Validation(t *testing.T) {
	for _, target := range []string{
		"/api/analyze",
		"/api/analyze?q=600519&attempts=99",
		"/api/analyze?q=600519&deadline_ms=-1",
	} {
		t.Run(target, func(t *testing.T) {
			stub := &stubAnalyzer{}
			rec, env, m := serve(t, stub, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, env.Status)
			assert.Empty(t, stub.gotQuery)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(endpointAnalyze, "ERR_VALIDATION")))
		})
	}
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty", usecase.ErrEmptyQuery, http.StatusBadRequest, "ERR_REQUIRED"},
		{"no match", &usecase.NoMatchError{Query: "xyz"}, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"no data", &usecase.NoDataError{Query: "600519", Err: errors.New("upstream down")}, http.StatusNotFound, "ERR_NO_DATA"},
		{"deadline", &usecase.DeadlineExceededError{Stage: "snapshot", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "ERR_TRY_AGAIN"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env, m := serve(t, &stubAnalyzer{err: tt.err}, "/api/analyze?q=xyz")
			assert.Equal(t, tt.status, rec.Code)

			var errs []xhttp.AppError
			require.NoError(t, json.Unmarshal(env.Data, &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, "xyz", errs[0].Params["q"])
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(endpointAnalyze, tt.code)))
		})
	}
}
