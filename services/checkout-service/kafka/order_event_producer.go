package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventProducer publishes recorded orders keyed by payment intent id, so
// every event for one payment lands on the same partition.
type OrderEventProducer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

func NewOrderEventProducer(brokers []string, topic string, logger *zap.Logger) *OrderEventProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	logger.Info("Kafka order producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return newOrderEventProducer(w, topic, logger)
}

func newOrderEventProducer(w messageWriter, topic string, logger *zap.Logger) *OrderEventProducer {
	return &OrderEventProducer{writer: w, topic: topic, logger: logger}
}

func (p *OrderEventProducer) PublishOrderRecorded(ctx context.Context, event models.OrderRecordedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.PaymentIntentID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	p.logger.Debug("Order event sent",
		zap.String("topic", p.topic),
		zap.String("payment_intent_id", event.PaymentIntentID),
	)
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
