package models

// Category names one independently fetched slice of a profile.
type Category string

const (
	CategorySpot       Category = "spot"
	CategoryValuation  Category = "valuation"
	CategoryFinancials Category = "financials"
	CategoryNews       Category = "news"
)

// Categories lists every category in report order.
var Categories = []Category{CategorySpot, CategoryValuation, CategoryFinancials, CategoryNews}

// MergedProfile aggregates everything known about one security. Any category may be
// missing; Absent records why.
type MergedProfile struct {
	Code       string              `json:"code"`
	Spot       *SecurityRecord     `json:"spot,omitempty"`
	Valuation  *ValuationPoint     `json:"valuation,omitempty"`
	Financials *FinancialIndicator `json:"financials,omitempty"`
	News       []NewsItem          `json:"news,omitempty"`
	Absent     map[Category]string `json:"absent,omitempty"`
}

// MarkAbsent records that category c could not be populated.
func (p *MergedProfile) MarkAbsent(c Category, reason string) {
	if p.Absent == nil {
		p.Absent = make(map[Category]string)
	}
	p.Absent[c] = reason
}

// Has reports whether category c carries data.
func (p *MergedProfile) Has(c Category) bool {
	switch c {
	case CategorySpot:
		return p.Spot != nil
	case CategoryValuation:
		return p.Valuation != nil
	case CategoryFinancials:
		return p.Financials != nil
	case CategoryNews:
		return len(p.News) > 0
	}
	return false
}

// IsEmpty is true when no category carries data.
func (p *MergedProfile) IsEmpty() bool {
	for _, c := range Categories {
		if p.Has(c) {
			return false
		}
	}
	return true
}
