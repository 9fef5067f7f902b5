package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
)

type captured struct {
	topic string
	key   []byte
	value interface{}
}

type fakeProducer struct {
	sent   []captured
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.sent = append(f.sent, captured{topic, key, value})
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaReportPublisher_Publish(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaReportPublisher(fp, "stockpulse.reports")

	r := &models.Report{
		ID:          "r-1",
		Identifier:  models.NormalizedIdentifier{Raw: "茅台", Value: "茅台"},
		Profile:     models.MergedProfile{Code: "600519", Spot: &models.SecurityRecord{Code: "600519", Name: "贵州茅台"}},
		Signals:     []models.DerivedSignal{{Name: models.SignalActivityState, Label: "mild"}},
		GeneratedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	r.Profile.MarkAbsent(models.CategoryNews, "deadline exceeded")
	r.Profile.MarkAbsent(models.CategoryValuation, "upstream 502")

	require.NoError(t, pub.Publish(context.Background(), r))
	require.Len(t, fp.sent, 1)
	assert.Equal(t, "stockpulse.reports", fp.sent[0].topic)
	assert.Equal(t, []byte("600519"), fp.sent[0].key)

	b, err := json.Marshal(fp.sent[0].value)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "贵州茅台", got["name"])
	assert.Equal(t, "茅台", got["query"])
	assert.Equal(t, []interface{}{"valuation", "news"}, got["absent"])

	require.NoError(t, pub.Close())
	assert.True(t, fp.closed)
}
