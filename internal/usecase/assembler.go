package usecase

import (
	"time"

	"github.com/google/uuid"

	"StockPulse/internal/domain/models"
)

// Assembler composes the final report. It owns no state besides its clock and ID source.
type Assembler struct {
	now   func() time.Time
	newID func() string
}

type AssemblerOption func(*Assembler)

func WithAssemblerClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

func WithIDGenerator(fn func() string) AssemblerOption {
	return func(a *Assembler) {
		if fn != nil {
			a.newID = fn
		}
	}
}

func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble returns a report the caller owns outright. An empty profile yields *NoDataError.
func (a *Assembler) Assemble(id models.NormalizedIdentifier, profile models.MergedProfile, signals []models.DerivedSignal) (*models.Report, error) {
	if profile.IsEmpty() {
		return nil, &NoDataError{Query: id.Value}
	}
	return &models.Report{
		ID:          a.newID(),
		Identifier:  id,
		Profile:     copyProfile(profile),
		Signals:     append([]models.DerivedSignal(nil), signals...),
		GeneratedAt: a.now().UTC(),
	}, nil
}

func copyProfile(p models.MergedProfile) models.MergedProfile {
	out := models.MergedProfile{Code: p.Code}
	if p.Spot != nil {
		v := *p.Spot
		out.Spot = &v
	}
	if p.Valuation != nil {
		v := *p.Valuation
		out.Valuation = &v
	}
	if p.Financials != nil {
		v := *p.Financials
		out.Financials = &v
	}
	if len(p.News) > 0 {
		out.News = append([]models.NewsItem(nil), p.News...)
	}
	if len(p.Absent) > 0 {
		out.Absent = make(map[models.Category]string, len(p.Absent))
		for k, v := range p.Absent {
			out.Absent[k] = v
		}
	}
	return out
}
