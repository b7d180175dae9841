package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"storefront/pkg/tracing"

	"github.com/segmentio/kafka-go"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

type Event struct {
	Type    string
	Key     string
	Payload any
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Writer struct {
	*kafka.Writer
}

func NewWriter(brokers []string) *Writer {
	return &Writer{
		Writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// 同じ注文のイベントは同じパーティションに入る（key=注文番号）
type KafkaPublisher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewKafkaPublisher(log *slog.Logger, producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{log: log, producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.Key),
		Value: payload,
		Headers: tracing.InjectKafkaHeaders(ctx, []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		}),
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.log.Info("event published", "type", ev.Type, "key", ev.Key)
	return nil
}

// Kafka未設定のとき
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
