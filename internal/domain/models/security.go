package models

import "time"

// SecurityRecord is one row of the bulk market snapshot. Nil numeric fields were
// reported as missing by the upstream (suspended securities, new listings).
type SecurityRecord struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	LastPrice      *float64 `json:"last_price,omitempty"`
	ChangePercent  *float64 `json:"change_percent,omitempty"`
	TurnoverRate   *float64 `json:"turnover_rate,omitempty"` // percent
	VolumeRatio    *float64 `json:"volume_ratio,omitempty"`
	BidAskRatio    *float64 `json:"bid_ask_ratio,omitempty"` // percent
	TotalMarketCap *float64 `json:"total_market_cap,omitempty"`
	TradedValue    *float64 `json:"traded_value,omitempty"`
	PEDynamic      *float64 `json:"pe_dynamic,omitempty"`
	PB             *float64 `json:"pb,omitempty"`
}

// ValuationPoint is a dated PE/PB observation.
type ValuationPoint struct {
	Date time.Time `json:"date"`
	PE   *float64  `json:"pe,omitempty"`
	PB   *float64  `json:"pb,omitempty"`
}

// FinancialIndicator holds latest-period fundamentals, both in percent.
type FinancialIndicator struct {
	ReportDate      time.Time `json:"report_date"`
	NetProfitGrowth *float64  `json:"net_profit_growth,omitempty"`
	ROE             *float64  `json:"roe,omitempty"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
}
