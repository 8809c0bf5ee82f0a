package repository

import (
	"context"
	"time"

	"StockAnalog/internal/domain/models"
	"StockAnalog/internal/domain/repository"
)

// MessageWriter is the subset of pkg/kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher implements ResultPublisher for Kafka.
type KafkaPublisher struct {
	producer MessageWriter
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer MessageWriter, topic string) repository.ResultPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// aftermathMessage is the wire shape of aftermath.results.
type aftermathMessage struct {
	EventID      string   `json:"event_id"`
	ReportID     string   `json:"report_id"`
	InstrumentID string   `json:"instrument_id"`
	EventDate    string   `json:"event_date"`
	ComputedAt   string   `json:"computed_at"`
	After1WPct   *float64 `json:"after_1w_pct"`
	After1MPct   *float64 `json:"after_1m_pct"`
	RecoveryDay  *int     `json:"recovery_day"`
	Available    bool     `json:"available"`
}

// PublishAftermath keys the message by report id so retries land on one partition.
func (p *KafkaPublisher) PublishAftermath(ctx context.Context, res *models.AftermathResult) error {
	msg := aftermathMessage{
		EventID:      res.EventID,
		ReportID:     res.ReportID,
		InstrumentID: res.InstrumentID,
		EventDate:    res.EventDate.UTC().Format(time.RFC3339),
		ComputedAt:   res.ComputedAt.UTC().Format(time.RFC3339),
	}
	if res.Summary != nil {
		msg.Available = true
		msg.After1WPct = res.Summary.After1WPct
		msg.After1MPct = res.Summary.After1MPct
		msg.RecoveryDay = res.Summary.RecoveryDay
	}
	return p.producer.Publish(ctx, p.topic, []byte(res.ReportID), msg)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
