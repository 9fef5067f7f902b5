package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/identifier"
	"StockPulse/internal/services/signals"
	"StockPulse/pkg/util"
)

func TestAssemble_EmptyProfile(t *testing.T) {
	p := models.MergedProfile{}
	for _, c := range models.Categories {
		p.MarkAbsent(c, "upstream down")
	}
	_, err := NewAssembler().Assemble(identifier.Normalize("600519"), p, nil)
	var nd *NoDataError
	require.ErrorAs(t, err, &nd)
	assert.Equal(t, "600519", nd.Query)
}

func TestAssemble_CopiesInputs(t *testing.T) {
	profile := models.MergedProfile{
		Code: "600519",
		Spot: &models.SecurityRecord{Code: "600519", VolumeRatio: util.Float(1.2)},
		News: []models.NewsItem{{Title: "a", PublishedAt: time.Now()}},
	}
	profile.MarkAbsent(models.CategoryValuation, "boom")
	sigs := signals.Derive(profile)

	r, err := NewAssembler().Assemble(identifier.Normalize("600519"), profile, sigs)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.GeneratedAt.IsZero())

	profile.News[0].Title = "changed"
	profile.Spot.Name = "changed"
	profile.Absent[models.CategoryValuation] = "changed"
	sigs[0].Label = "changed"

	assert.Equal(t, "a", r.Profile.News[0].Title)
	assert.Empty(t, r.Profile.Spot.Name)
	assert.Equal(t, "boom", r.Profile.Absent[models.CategoryValuation])
	assert.NotEqual(t, "changed", r.Signals[0].Label)
}

func TestAssemble_UniqueIDs(t *testing.T) {
	as := NewAssembler()
	p := models.MergedProfile{Spot: &models.SecurityRecord{Code: "000001"}}
	a, err := as.Assemble(identifier.Normalize("1"), p, nil)
	require.NoError(t, err)
	b, err := as.Assemble(identifier.Normalize("1"), p, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
