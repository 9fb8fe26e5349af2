package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

const (
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// SQSConsumer long-polls a queue and hands each message body to a handler.
type SQSConsumer struct {
	client     sqsAPI
	queueURL   string
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewSQSConsumer(cfg aws.Config, queueURL string, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:     sqs.NewFromConfig(cfg),
		queueURL:   queueURL,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

// MessageHandler processes one message body. A non-nil error leaves the message on
// the queue so it becomes visible again after the visibility timeout.
type MessageHandler func(ctx context.Context, body string) error

// StartPolling blocks until ctx is cancelled.
func (c *SQSConsumer) StartPolling(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Starting SQS polling", zap.String("queue_url", c.queueURL))

	var delay time.Duration
	for {
		if ctx.Err() != nil {
			c.logger.Info("SQS polling stopped")
			return ctx.Err()
		}

		err := c.pollOnce(ctx, handler)
		if err == nil || ctx.Err() != nil {
			delay = 0
			continue
		}
		delay = c.nextDelay(delay)
		c.logger.Error("Error polling SQS", zap.Duration("retry_in", delay), zap.Error(err))

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}
}

// nextDelay doubles the wait after each consecutive receive failure, up to maxRetryDelay.
func (c *SQSConsumer) nextDelay(prev time.Duration) time.Duration {
	base := c.retryDelay
	if base <= 0 {
		base = defaultRetryDelay
	}
	if prev <= 0 {
		return base
	}
	if next := prev * 2; next < maxRetryDelay {
		return next
	}
	return maxRetryDelay
}

func (c *SQSConsumer) pollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   60,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range result.Messages {
		if msg.Body == nil {
			continue
		}

		if err := handler(ctx, *msg.Body); err != nil {
			c.logger.Warn("Failed to process message, leaving it for redelivery",
				zap.String("message_id", aws.ToString(msg.MessageId)),
				zap.Error(err),
			)
			continue
		}

		if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			c.logger.Error("Failed to delete message", zap.String("message_id", aws.ToString(msg.MessageId)), zap.Error(err))
		}
	}

	return nil
}
