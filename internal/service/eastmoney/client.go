// Package eastmoney implements MarketDataProvider over the public Eastmoney web APIs.
package eastmoney

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/ratelimit"
	pkghttp "StockPulse/pkg/http"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const (
	DefaultSnapshotURL   = "https://82.push2.eastmoney.com/api/qt/clist/get"
	DefaultDatacenterURL = "https://datacenter-web.eastmoney.com/api/data/v1/get"
	DefaultNewsURL       = "https://np-listapi.eastmoney.com/comm/web/getListInfo"
	DefaultPageSize      = 6000

	// A-share boards: SZ main, SZ ChiNext, SH main, SH STAR, BJ.
	aShareFilter   = "m:0 t:6,m:0 t:80,m:1 t:2,m:1 t:23,m:0 t:81 s:2048"
	snapshotFields = "f2,f3,f6,f8,f9,f10,f12,f14,f20,f23,f33"

	reportValuation  = "RPT_VALUEANALYSIS_DET"
	reportFinance    = "RPT_F10_FINANCE_MAINFINADATA"
	datacenterNoData = 9201

	valuationPageSize = 30
	financePageSize   = 8
	newsPageSize      = 20

	endpointSnapshot   = "snapshot"
	endpointDatacenter = "datacenter"
	endpointNews       = "news"
)

var defaultHeaders = map[string]string{
	"Referer": "https://quote.eastmoney.com/",
}

type Client struct {
	http          *pkghttp.Client
	limiter       *ratelimit.Limiter
	log           *logger.Logger
	snapshotURL   string
	datacenterURL string
	newsURL       string
	pageSize      int
}

type Option func(*Client)

func WithSnapshotURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.snapshotURL = u
		}
	}
}

func WithDatacenterURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.datacenterURL = u
		}
	}
}

func WithNewsURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.newsURL = u
		}
	}
}

func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithHTTPClient(h *pkghttp.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit limits every endpoint to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = ratelimit.New(rps, burst)
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http:          pkghttp.NewClient(pkghttp.WithTimeout(8 * time.Second)),
		limiter:       ratelimit.New(2, 2),
		log:           logger.NewNop(),
		snapshotURL:   DefaultSnapshotURL,
		datacenterURL: DefaultDatacenterURL,
		newsURL:       DefaultNewsURL,
		pageSize:      DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, endpoint, url string, params map[string][]string, dest interface{}) error {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return fmt.Errorf("eastmoney %s: rate limit: %w", endpoint, err)
	}
	start := time.Now()
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         url,
		Headers:     defaultHeaders,
		QueryParams: params,
	}, dest)
	c.log.Debug("eastmoney request",
		logger.String("endpoint", endpoint),
		logger.Duration("elapsed", time.Since(start)),
		logger.Error(err),
	)
	if err != nil {
		return fmt.Errorf("eastmoney %s: %w", endpoint, err)
	}
	return nil
}

// GetBulkSnapshot returns every listed A-share in upstream order.
func (c *Client) GetBulkSnapshot(ctx context.Context) ([]models.SecurityRecord, error) {
	var resp snapshotResponse
	params := map[string][]string{
		"pn":     {"1"},
		"pz":     {strconv.Itoa(c.pageSize)},
		"po":     {"1"},
		"np":     {"1"},
		"fltt":   {"2"},
		"invt":   {"2"},
		"fid":    {"f12"},
		"fs":     {aShareFilter},
		"fields": {snapshotFields},
	}
	if err := c.get(ctx, endpointSnapshot, c.snapshotURL, params, &resp); err != nil {
		return nil, err
	}
	if resp.RC != 0 {
		return nil, fmt.Errorf("eastmoney snapshot: rc=%d", resp.RC)
	}
	if resp.Data == nil || len(resp.Data.Diff) == 0 {
		return nil, fmt.Errorf("eastmoney snapshot: empty response")
	}

	out := make([]models.SecurityRecord, 0, len(resp.Data.Diff))
	for _, r := range resp.Data.Diff {
		code := strings.TrimSpace(string(r.Code))
		if code == "" {
			continue
		}
		out = append(out, models.SecurityRecord{
			Code:           code,
			Name:           strings.TrimSpace(r.Name),
			LastPrice:      r.Price.Ptr(),
			ChangePercent:  r.ChangePercent.Ptr(),
			TurnoverRate:   r.TurnoverRate.Ptr(),
			VolumeRatio:    r.VolumeRatio.Ptr(),
			BidAskRatio:    r.BidAskRatio.Ptr(),
			TotalMarketCap: r.MarketCap.Ptr(),
			TradedValue:    r.TradedValue.Ptr(),
			PEDynamic:      r.PEDynamic.Ptr(),
			PB:             r.PB.Ptr(),
		})
	}
	return out, nil
}

// GetValuationHistory returns recent daily PE/PB points, newest first.
func (c *Client) GetValuationHistory(ctx context.Context, code string) ([]models.ValuationPoint, error) {
	rows, err := datacenterQuery[valuationRow](ctx, c, reportValuation,
		fmt.Sprintf(`(SECURITY_CODE="%s")`, code), "TRADE_DATE", valuationPageSize)
	if err != nil {
		return nil, err
	}
	out := make([]models.ValuationPoint, 0, len(rows))
	for _, r := range rows {
		t, ok := util.ParseTime(r.TradeDate)
		if !ok {
			continue
		}
		out = append(out, models.ValuationPoint{Date: t, PE: r.PETTM.Ptr(), PB: r.PBMRQ.Ptr()})
	}
	return out, nil
}

// GetFinancialIndicators returns recent reporting periods, newest first.
func (c *Client) GetFinancialIndicators(ctx context.Context, code string) ([]models.FinancialIndicator, error) {
	rows, err := datacenterQuery[financeRow](ctx, c, reportFinance,
		fmt.Sprintf(`(SECUCODE="%s")`, SecuCode(code)), "REPORT_DATE", financePageSize)
	if err != nil {
		return nil, err
	}
	out := make([]models.FinancialIndicator, 0, len(rows))
	for _, r := range rows {
		t, ok := util.ParseTime(r.ReportDate)
		if !ok {
			continue
		}
		out = append(out, models.FinancialIndicator{
			ReportDate:      t,
			ROE:             r.ROE.Ptr(),
			NetProfitGrowth: r.NetProfitGrowth.Ptr(),
		})
	}
	return out, nil
}

func datacenterQuery[T any](ctx context.Context, c *Client, report, filter, sortColumn string, pageSize int) ([]T, error) {
	var resp datacenterResponse[T]
	params := map[string][]string{
		"reportName":  {report},
		"columns":     {"ALL"},
		"filter":      {filter},
		"sortColumns": {sortColumn},
		"sortTypes":   {"-1"},
		"pageNumber":  {"1"},
		"pageSize":    {strconv.Itoa(pageSize)},
		"source":      {"WEB"},
		"client":      {"WEB"},
	}
	if err := c.get(ctx, endpointDatacenter, c.datacenterURL, params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Code == datacenterNoData {
			return nil, nil
		}
		return nil, fmt.Errorf("eastmoney %s: code=%d %s", report, resp.Code, resp.Message)
	}
	if resp.Result == nil {
		return nil, nil
	}
	return resp.Result.Data, nil
}

// GetRecentNews returns the latest headlines for code in upstream order.
func (c *Client) GetRecentNews(ctx context.Context, code string) ([]models.NewsItem, error) {
	var resp newsResponse
	params := map[string][]string{
		"cfh":          {"1"},
		"client":       {"web"},
		"type":         {"1"},
		"mTypeAndCode": {MarketID(code) + "." + code},
		"pageSize":     {strconv.Itoa(newsPageSize)},
	}
	if err := c.get(ctx, endpointNews, c.newsURL, params, &resp); err != nil {
		return nil, err
	}
	if rc := string(resp.Code); rc != "" && rc != "1" && rc != "0" {
		return nil, fmt.Errorf("eastmoney news: code=%s %s", rc, resp.Message)
	}
	if resp.Data == nil {
		return nil, nil
	}

	out := make([]models.NewsItem, 0, len(resp.Data.List))
	for _, r := range resp.Data.List {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		out = append(out, models.NewsItem{
			Title:       title,
			PublishedAt: util.ParseTimeDefault(r.ShowTime, time.Time{}),
			Source:      r.MediaName,
			URL:         r.URL,
		})
	}
	return out, nil
}

// MarketID is the upstream market prefix: 1 for Shanghai, 0 for Shenzhen and Beijing.
func MarketID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") || strings.HasPrefix(code, "5") {
		return "1"
	}
	return "0"
}

// SecuCode appends the exchange suffix used by the datacenter reports.
func SecuCode(code string) string {
	switch {
	case strings.HasPrefix(code, "6"), strings.HasPrefix(code, "9"), strings.HasPrefix(code, "5"):
		return code + ".SH"
	case strings.HasPrefix(code, "4"), strings.HasPrefix(code, "8"):
		return code + ".BJ"
	default:
		return code + ".SZ"
	}
}
