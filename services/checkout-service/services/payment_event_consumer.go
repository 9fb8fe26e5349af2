package services

import (
	"context"
	"errors"

	awspkg "github.com/AI-zik/shoe-store-backend/pkg/aws"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"go.uber.org/zap"
)

// MessagePoller is satisfied by awspkg.SQSConsumer.
type MessagePoller interface {
	StartPolling(ctx context.Context, handler awspkg.MessageHandler) error
}

// PaymentEventConsumer reconciles payment events forwarded to a queue
// (EventBridge -> SQS). The queue is trusted, so no signature is checked.
type PaymentEventConsumer struct {
	poller     MessagePoller
	parser     EventParser
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewPaymentEventConsumer(poller MessagePoller, parser EventParser, reconciler *Reconciler, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		poller:     poller,
		parser:     parser,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start blocks until ctx is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("Payment event consumer started")
	err := c.poller.StartPolling(ctx, c.HandleMessage)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleMessage drops bodies that can never be parsed and keeps the message
// on the queue when reconciliation fails.
func (c *PaymentEventConsumer) HandleMessage(ctx context.Context, body string) error {
	event, err := c.parser.ParseEvent([]byte(body))
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.logger.Error("Dropping unparseable payment event", zap.Error(err))
			return nil
		}
		return err
	}

	outcome, err := c.reconciler.Reconcile(ctx, event)
	if err != nil {
		return err
	}
	c.logger.Debug("Payment event handled",
		zap.String("event_id", event.ID),
		zap.String("outcome", string(outcome)),
	)
	return nil
}
