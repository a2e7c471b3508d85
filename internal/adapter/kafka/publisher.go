// Package kafka publishes domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"blog/internal/domain"

	kgo "github.com/segmentio/kafka-go"
)

// Publisher writes each event as a JSON message keyed by post id, so that
// events for one post stay on one partition.
type Publisher struct {
	w *kgo.Writer
}

var _ domain.EventPublisher = (*Publisher)(nil)

// NewPublisher returns a Publisher for topic on the given brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{w: &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

// Publish writes ev synchronously.
func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	msg, err := message(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

// Close flushes pending writes.
func (p *Publisher) Close() error { return p.w.Close() }

func message(ev domain.Event) (kgo.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kgo.Message{}, err
	}
	return kgo.Message{
		Key:   []byte(strconv.FormatInt(ev.PostID, 10)),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kgo.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}, nil
}
