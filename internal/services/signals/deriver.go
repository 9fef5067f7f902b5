// Package signals turns a merged profile into categorical trading signals.
package signals

import (
	"fmt"

	"StockPulse/internal/domain/models"
)

type Deriver struct {
	t Thresholds
}

func NewDeriver(t Thresholds) *Deriver {
	return &Deriver{t: t}
}

// Derive labels the profile. It is pure: the same profile always yields the same
// signals, in the same order, one per signal name.
func (d *Deriver) Derive(p models.MergedProfile) []models.DerivedSignal {
	return []models.DerivedSignal{
		d.activity(p),
		d.valuation(p),
		d.turnover(p),
		d.financialHealth(p),
	}
}

// Derive uses the default thresholds.
func Derive(p models.MergedProfile) []models.DerivedSignal {
	return NewDeriver(DefaultThresholds()).Derive(p)
}

func (d *Deriver) activity(p models.MergedProfile) models.DerivedSignal {
	s := models.DerivedSignal{
		Name:      models.SignalActivityState,
		Threshold: fmt.Sprintf("volume_ratio > %g", d.t.ActiveVolumeRatio),
	}
	if p.Spot == nil || p.Spot.VolumeRatio == nil {
		s.Label = models.LabelInsufficientData
		return s
	}
	v := *p.Spot.VolumeRatio
	s.Basis = &v
	if v > d.t.ActiveVolumeRatio {
		s.Label = LabelActive
	} else {
		s.Label = LabelMild
	}
	return s
}

func (d *Deriver) valuation(p models.MergedProfile) models.DerivedSignal {
	s := models.DerivedSignal{
		Name:      models.SignalValuationBand,
		Threshold: fmt.Sprintf("pe < %g", d.t.LowValuationPE),
	}
	pe := peOf(p)
	if pe == nil {
		s.Label = models.LabelInsufficientData
		return s
	}
	v := *pe
	s.Basis = &v
	if v < d.t.LowValuationPE {
		s.Label = LabelLowValuation
	} else {
		s.Label = LabelAverageOrPremium
	}
	return s
}

// peOf prefers the valuation history and falls back to the snapshot's dynamic PE.
func peOf(p models.MergedProfile) *float64 {
	if p.Valuation != nil && p.Valuation.PE != nil {
		return p.Valuation.PE
	}
	if p.Spot != nil {
		return p.Spot.PEDynamic
	}
	return nil
}

func (d *Deriver) turnover(p models.MergedProfile) models.DerivedSignal {
	s := models.DerivedSignal{
		Name:      models.SignalTurnoverRisk,
		Threshold: fmt.Sprintf("turnover_rate > %g%% high, < %g%% low", d.t.HighTurnoverRate, d.t.LowTurnoverRate),
	}
	if p.Spot == nil || p.Spot.TurnoverRate == nil {
		s.Label = models.LabelInsufficientData
		return s
	}
	v := *p.Spot.TurnoverRate
	s.Basis = &v
	switch {
	case v > d.t.HighTurnoverRate:
		s.Label = LabelHighTurnover
	case v < d.t.LowTurnoverRate:
		s.Label = LabelLowTurnover
	default:
		s.Label = LabelNormalTurnover
	}
	return s
}

func (d *Deriver) financialHealth(p models.MergedProfile) models.DerivedSignal {
	s := models.DerivedSignal{
		Name:      models.SignalFinancialHealth,
		Threshold: fmt.Sprintf("roe >= %g%% and net_profit_growth >= 0", d.t.HealthyROE),
	}
	var roe, growth *float64
	if p.Financials != nil {
		roe, growth = p.Financials.ROE, p.Financials.NetProfitGrowth
	}
	if roe == nil && growth == nil {
		s.Label = models.LabelInsufficientData
		return s
	}
	if roe != nil {
		v := *roe
		s.Basis = &v
	}

	healthy := (roe == nil || *roe >= d.t.HealthyROE) && (growth == nil || *growth >= 0)
	if healthy {
		s.Label = LabelHealthy
	} else {
		s.Label = LabelWatch
	}
	return s
}
