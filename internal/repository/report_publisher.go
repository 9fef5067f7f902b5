package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
)

// MessagePublisher is the transport a report publisher writes to.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReportPublisher implements ReportPublisher over a Kafka topic, keyed by security code.
type KafkaReportPublisher struct {
	producer MessagePublisher
	topic    string
}

// NewKafkaReportPublisher creates a report publisher.
func NewKafkaReportPublisher(producer MessagePublisher, topic string) repository.ReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

// reportEvent is the published wire format.
type reportEvent struct {
	ID          string                 `json:"id"`
	Code        string                 `json:"code"`
	Name        string                 `json:"name,omitempty"`
	Query       string                 `json:"query"`
	Signals     []models.DerivedSignal `json:"signals"`
	Absent      []string               `json:"absent,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	Report      *models.Report         `json:"report"`
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, r *models.Report) error {
	ev := reportEvent{
		ID:          r.ID,
		Code:        r.Profile.Code,
		Query:       r.Identifier.Raw,
		Signals:     r.Signals,
		GeneratedAt: r.GeneratedAt,
		Report:      r,
	}
	if r.Profile.Spot != nil {
		ev.Name = r.Profile.Spot.Name
	}
	for _, c := range models.Categories {
		if _, ok := r.Profile.Absent[c]; ok {
			ev.Absent = append(ev.Absent, string(c))
		}
	}
	return p.producer.Publish(ctx, p.topic, []byte(r.Profile.Code), ev)
}

func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
