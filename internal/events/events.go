// Package events publishes history entries to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "medication-history"

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HistoryEvent is the JSON payload published for each entry.
type HistoryEvent struct {
	ID             string            `json:"id"`
	PatientID      string            `json:"patient_id"`
	MedicationID   string            `json:"medication_id"`
	MedicationName string            `json:"medication_name"`
	ActionKind     domain.ActionKind `json:"action_kind"`
	Detail         string            `json:"detail"`
	Actor          string            `json:"actor"`
	Timestamp      time.Time         `json:"timestamp"`
	Grouped        bool              `json:"grouped"`
}

// FromEntry converts a stored entry into its event form.
func FromEntry(e *domain.HistoryEntry) HistoryEvent {
	return HistoryEvent{
		ID:             e.ID,
		PatientID:      e.PatientID,
		MedicationID:   e.MedicationID,
		MedicationName: e.MedicationName,
		ActionKind:     e.ActionKind,
		Detail:         e.Detail,
		Actor:          e.Actor,
		Timestamp:      e.Timestamp.UTC(),
		Grouped:        e.Grouped(),
	}
}

// KafkaPublisher writes history events keyed by patient id, so a patient's
// events stay ordered within one partition.
type KafkaPublisher struct {
	w Writer
}

// NewKafkaPublisher builds a publisher over a kafka-go writer for the given
// comma-separated broker list.
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	addrs := splitBrokers(brokers)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is empty")
	}
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{w: w}, nil
}

// NewPublisherWithWriter wraps a custom Writer.
func NewPublisherWithWriter(w Writer) *KafkaPublisher { return &KafkaPublisher{w: w} }

// Publish implements the cycle runner's publisher contract.
func (p *KafkaPublisher) Publish(ctx context.Context, e *domain.HistoryEntry) error {
	body, err := json.Marshal(FromEntry(e))
	if err != nil {
		return fmt.Errorf("encode history event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.PatientID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "action_kind", Value: []byte(e.ActionKind)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish history event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Noop discards every event. It is used when no brokers are configured.
type Noop struct{}

// Publish implements the publisher contract.
func (Noop) Publish(context.Context, *domain.HistoryEntry) error { return nil }

// Close implements io.Closer.
func (Noop) Close() error { return nil }

func splitBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
