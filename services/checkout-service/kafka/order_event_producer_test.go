package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishOrderRecorded_KeysByPaymentIntent(t *testing.T) {
	w := &fakeWriter{}
	p := newOrderEventProducer(w, "orders", zap.NewNop())

	event := models.OrderRecordedEvent{
		EventID:         "e-1",
		Type:            models.EventOrderRecorded,
		TransactionID:   7,
		PaymentIntentID: "pi_123",
		UserID:          3,
		Amount:          2450,
		Lines:           []models.OrderRecordedLine{{VariantID: 1, Quantity: 2, Available: 3, Price: "10", Discount: "0"}},
	}
	require.NoError(t, p.PublishOrderRecorded(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "pi_123", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, models.EventOrderRecorded, string(msg.Headers[0].Value))

	var decoded models.OrderRecordedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, uint(7), decoded.TransactionID)
	assert.Equal(t, int64(2450), decoded.Amount)
}

func TestPublishOrderRecorded_WrapsWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newOrderEventProducer(w, "orders", zap.NewNop())

	err := p.PublishOrderRecorded(context.Background(), models.OrderRecordedEvent{Type: models.EventOrderRecorded})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
