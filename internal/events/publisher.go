package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types emitted by the stub server when chat state changes.
const (
	EventMessageSent    = "message.sent"
	EventOfferSent      = "offer.sent"
	EventOfferAccepted  = "offer.accepted"
	EventOfferRejected  = "offer.rejected"
	EventOfferCountered = "offer.countered"
)

type NegotiationEvent struct {
	Type      string    `json:"type"`
	MessageID int       `json:"message_id"`
	ThreadID  string    `json:"thread_id"`
	ProductID int       `json:"product_id,omitempty"`
	Price     float64   `json:"price,omitempty"`
	At        time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Producer{writer: w}
}

// Publish sends one event keyed by thread id. A nil producer is a no-op
// so callers can leave kafka unconfigured.
func (p *Producer) Publish(ctx context.Context, ev NegotiationEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(ev.ThreadID), Value: b, Time: ev.At}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
