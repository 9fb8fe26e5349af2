package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessedEvents remembers payment intents that were already reconciled so
// redeliveries can be acknowledged without opening a database transaction.
// The ledger's unique payment id stays the source of truth.
type ProcessedEvents interface {
	Seen(ctx context.Context, paymentIntentID string) (bool, error)
	MarkProcessed(ctx context.Context, paymentIntentID string) error
}

const (
	processedKeyPrefix  = "checkout:processed:"
	DefaultProcessedTTL = 72 * time.Hour
)

type redisProcessedEvents struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProcessedEvents(client *redis.Client, ttl time.Duration) ProcessedEvents {
	if ttl <= 0 {
		ttl = DefaultProcessedTTL
	}
	return &redisProcessedEvents{client: client, ttl: ttl}
}

func (r *redisProcessedEvents) Seen(ctx context.Context, paymentIntentID string) (bool, error) {
	n, err := r.client.Exists(ctx, processedKeyPrefix+paymentIntentID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisProcessedEvents) MarkProcessed(ctx context.Context, paymentIntentID string) error {
	return r.client.Set(ctx, processedKeyPrefix+paymentIntentID, time.Now().UTC().Format(time.RFC3339), r.ttl).Err()
}

type noopProcessedEvents struct{}

// NewNoopProcessedEvents is used when Redis is not configured.
func NewNoopProcessedEvents() ProcessedEvents { return noopProcessedEvents{} }

func (noopProcessedEvents) Seen(context.Context, string) (bool, error)  { return false, nil }
func (noopProcessedEvents) MarkProcessed(context.Context, string) error { return nil }
