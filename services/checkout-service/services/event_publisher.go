package services

import (
	"context"
	"encoding/json"
	"fmt"

	awspkg "github.com/AI-zik/shoe-store-backend/pkg/aws"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
)

// OrderEventPublisher announces recorded orders to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderRecorded(ctx context.Context, event models.OrderRecordedEvent) error
}

type snsOrderPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
}

func NewSNSOrderPublisher(sns awspkg.SNSPublisher, topicArn string) OrderEventPublisher {
	return &snsOrderPublisher{sns: sns, topicArn: topicArn}
}

func (p *snsOrderPublisher) PublishOrderRecorded(ctx context.Context, event models.OrderRecordedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return p.sns.Publish(ctx, p.topicArn, event.Type, payload)
}

type noopOrderPublisher struct{}

func NewNoopOrderPublisher() OrderEventPublisher { return noopOrderPublisher{} }

func (noopOrderPublisher) PublishOrderRecorded(context.Context, models.OrderRecordedEvent) error {
	return nil
}
