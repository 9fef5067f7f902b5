package models

import "time"

// Signal names produced by the deriver, in report order.
const (
	SignalActivityState   = "activity_state"
	SignalValuationBand   = "valuation_band"
	SignalTurnoverRisk    = "turnover_risk"
	SignalFinancialHealth = "financial_health"
)

// LabelInsufficientData is emitted when a signal's inputs are missing.
const LabelInsufficientData = "insufficient data"

// DerivedSignal is a categorical label plus the number it was computed from.
type DerivedSignal struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Basis     *float64 `json:"basis,omitempty"`
	Threshold string   `json:"threshold,omitempty"`
}

// Report is the assembled analysis result. It is built once and not shared.
type Report struct {
	ID          string               `json:"id"`
	Identifier  NormalizedIdentifier `json:"identifier"`
	Profile     MergedProfile        `json:"profile"`
	Signals     []DerivedSignal      `json:"signals"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Signal returns the signal called name.
func (r *Report) Signal(name string) (DerivedSignal, bool) {
	for _, s := range r.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return DerivedSignal{}, false
}
