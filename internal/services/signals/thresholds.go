package signals

// Thresholds are the cut-offs the deriver compares against.
type Thresholds struct {
	ActiveVolumeRatio float64 // volume ratio above which trading is active
	LowValuationPE    float64 // PE below which a security is low-valuation
	HighTurnoverRate  float64 // percent
	LowTurnoverRate   float64 // percent
	HealthyROE        float64 // percent
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ActiveVolumeRatio: 1.5,
		LowValuationPE:    20,
		HighTurnoverRate:  5,
		LowTurnoverRate:   1,
		HealthyROE:        10,
	}
}

// Labels emitted by the deriver.
const (
	LabelActive           = "active"
	LabelMild             = "mild"
	LabelLowValuation     = "defensive/low-valuation"
	LabelAverageOrPremium = "average-or-premium"
	LabelHighTurnover     = "high-activity, elevated volatility risk"
	LabelLowTurnover      = "low-activity, consolidation"
	LabelNormalTurnover   = "normal"
	LabelHealthy          = "healthy"
	LabelWatch            = "watch"
)
