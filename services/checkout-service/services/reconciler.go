package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	awspkg "github.com/AI-zik/shoe-store-backend/pkg/aws"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome says what happened to a payment event. Every outcome except an
// error return means the event must be acknowledged to the provider.
type Outcome string

const (
	OutcomeRecorded  Outcome = "recorded"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeRejected  Outcome = "rejected"
)

// Reconciler turns confirmed payments into ledger rows, inventory decrements and cart updates.
type Reconciler struct {
	verifier  EventVerifier
	store     repository.Transactor
	processed ProcessedEvents
	publisher OrderEventPublisher
	metrics   awspkg.MetricsRecorder
	logger    *zap.Logger

	inflight sync.WaitGroup
}

func NewReconciler(
	verifier EventVerifier,
	store repository.Transactor,
	processed ProcessedEvents,
	publisher OrderEventPublisher,
	metrics awspkg.MetricsRecorder,
	logger *zap.Logger,
) *Reconciler {
	if processed == nil {
		processed = NewNoopProcessedEvents()
	}
	if publisher == nil {
		publisher = NewNoopOrderPublisher()
	}
	return &Reconciler{
		verifier:  verifier,
		store:     store,
		processed: processed,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleWebhook verifies the signature over the raw body and reconciles the event.
// A signature failure is returned as an error and nothing is touched.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (Outcome, error) {
	event, err := r.verifier.VerifyEvent(payload, signatureHeader)
	if err != nil {
		r.logger.Warn("Payment webhook verification failed", zap.Error(err))
		r.count(awspkg.MetricPaymentEventsDenied, "signature")
		return OutcomeRejected, err
	}
	return r.Reconcile(ctx, event)
}

// Reconcile applies a verified event. A non-nil error means the event was not
// applied and should be redelivered.
func (r *Reconciler) Reconcile(ctx context.Context, event *PaymentEvent) (Outcome, error) {
	log := r.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("payment_intent_id", event.PaymentIntentID),
	)

	if event.Type != EventPaymentSucceeded {
		log.Debug("Ignoring payment event type")
		return OutcomeIgnored, nil
	}
	if event.PaymentIntentID == "" {
		log.Error("Payment event carries no payment intent id")
		r.count(awspkg.MetricPaymentEventsDenied, "payload")
		return OutcomeRejected, nil
	}

	if seen, err := r.processed.Seen(ctx, event.PaymentIntentID); err != nil {
		log.Warn("Processed-event cache unavailable, relying on ledger", zap.Error(err))
	} else if seen {
		log.Info("Payment already reconciled")
		r.count(awspkg.MetricPaymentDuplicates, "cache")
		return OutcomeDuplicate, nil
	}

	intent, err := models.DecodeCheckoutMetadata(event.Metadata)
	if err != nil {
		log.Error("Payment metadata cannot be decoded, acknowledging without changes",
			zap.Any("metadata", event.Metadata),
			zap.Error(err),
		)
		r.count(awspkg.MetricPaymentEventsDenied, "metadata")
		return OutcomeRejected, nil
	}
	log = log.With(zap.Uint("user_id", intent.UserID), zap.String("product_source", intent.Source.String()))

	if _, err := r.store.Users().FindByID(ctx, intent.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("Paying user does not exist, acknowledging without changes")
			r.count(awspkg.MetricPaymentEventsDenied, "user")
			return OutcomeRejected, nil
		}
		return "", fmt.Errorf("load user %d: %w", intent.UserID, err)
	}

	start := time.Now()
	recorded, err := r.apply(ctx, event, intent, log)
	if errors.Is(err, repository.ErrAlreadyRecorded) {
		log.Info("Payment already recorded in ledger")
		r.markProcessed(ctx, event.PaymentIntentID, log)
		r.count(awspkg.MetricPaymentDuplicates, "ledger")
		return OutcomeDuplicate, nil
	}
	if err != nil {
		log.Error("Payment reconciliation rolled back", zap.Error(err))
		return "", fmt.Errorf("reconcile %s: %w", event.PaymentIntentID, err)
	}

	r.markProcessed(ctx, event.PaymentIntentID, log)
	r.count(awspkg.MetricPaymentsReconciled, intent.Source.String())
	r.latency(time.Since(start))
	log.Info("Payment reconciled",
		zap.Uint("transaction_id", recorded.TransactionID),
		zap.Int("lines", len(recorded.Lines)),
		zap.Int64("amount", recorded.Amount),
	)
	r.publish(recorded, log)
	return OutcomeRecorded, nil
}

// apply runs the whole transition in one database transaction. The ledger row
// goes in first so a concurrent or repeated delivery fails on the unique payment
// id before any stock moves.
func (r *Reconciler) apply(ctx context.Context, event *PaymentEvent, intent *models.CheckoutIntent, log *zap.Logger) (models.OrderRecordedEvent, error) {
	lines := mergeLines(intent.Lines)
	amount := event.Amount
	if amount == 0 {
		amount = intent.AmountMinorUnits()
	}

	recorded := models.OrderRecordedEvent{
		EventID:         uuid.NewString(),
		Type:            models.EventOrderRecorded,
		PaymentIntentID: event.PaymentIntentID,
		UserID:          intent.UserID,
		Amount:          amount,
		Source:          intent.Source.String(),
	}

	err := r.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		txn := &models.Transaction{
			PaymentIntentID: event.PaymentIntentID,
			UserID:          intent.UserID,
			Amount:          amount,
			Source:          int(intent.Source),
		}
		if err := tx.Ledger().RecordTransaction(ctx, txn); err != nil {
			return err
		}
		recorded.TransactionID = txn.ID

		for _, line := range lines {
			change, err := tx.Inventory().DecrementAvailable(ctx, line.VariantID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement variant %d: %w", line.VariantID, err)
			}
			if short := change.Shortfall(line.Quantity); short > 0 {
				log.Warn("Variant oversold, stock floored at zero",
					zap.Uint("variant_id", line.VariantID),
					zap.Int("requested", line.Quantity),
					zap.Int("in_stock", change.Previous),
					zap.Int("shortfall", short),
				)
				r.count(awspkg.MetricInventoryOversold, "")
			}

			if intent.Source == models.SourceCart {
				if _, err := tx.Carts().DeleteByUserAndVariant(ctx, intent.UserID, line.VariantID); err != nil {
					return fmt.Errorf("remove purchased cart line for variant %d: %w", line.VariantID, err)
				}
			}

			clamp, err := tx.Carts().ClampToAvailable(ctx, line.VariantID, change.Available)
			if err != nil {
				return fmt.Errorf("clamp carts for variant %d: %w", line.VariantID, err)
			}
			if clamp.Clamped > 0 || clamp.Removed > 0 {
				log.Info("Cart lines adjusted to remaining stock",
					zap.Uint("variant_id", line.VariantID),
					zap.Int("available", change.Available),
					zap.Int64("clamped", clamp.Clamped),
					zap.Int64("removed", clamp.Removed),
				)
				r.count(awspkg.MetricCartLinesClamped, "")
			}

			if err := tx.Ledger().AppendPurchase(ctx, &models.Purchase{
				TransactionID: txn.ID,
				VariantID:     line.VariantID,
				Name:          line.Name,
				Quantity:      line.Quantity,
				Price:         line.Price,
				Discount:      line.Discount,
			}); err != nil {
				return fmt.Errorf("append purchase for variant %d: %w", line.VariantID, err)
			}

			recorded.Lines = append(recorded.Lines, models.OrderRecordedLine{
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				Available: change.Available,
				Price:     line.Price.String(),
				Discount:  line.Discount.String(),
			})
		}
		return nil
	})
	recorded.Timestamp = time.Now().UTC()
	return recorded, err
}

// mergeLines folds repeated variants together and orders lines by variant id so
// concurrent transitions lock variant rows in the same order.
func mergeLines(in []models.PricedLine) []models.PricedLine {
	byVariant := make(map[uint]int, len(in))
	out := make([]models.PricedLine, 0, len(in))
	for _, l := range in {
		if i, ok := byVariant[l.VariantID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		byVariant[l.VariantID] = len(out)
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out
}

func (r *Reconciler) markProcessed(ctx context.Context, paymentIntentID string, log *zap.Logger) {
	if err := r.processed.MarkProcessed(ctx, paymentIntentID); err != nil {
		log.Warn("Failed to cache processed payment", zap.Error(err))
	}
}

// publish is best effort and off the acknowledgement path; the ledger already holds the order.
func (r *Reconciler) publish(event models.OrderRecordedEvent, log *zap.Logger) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.publisher.PublishOrderRecorded(ctx, event); err != nil {
			log.Error("Failed to publish order event", zap.String("event_type", event.Type), zap.Error(err))
		}
	}()
}

// Drain blocks until every order event handed to the publisher has been sent or
// has failed. Call it during shutdown, before closing the publisher.
func (r *Reconciler) Drain() {
	r.inflight.Wait()
}

func (r *Reconciler) count(metric, reason string) {
	dims := map[string]string{"Service": "checkout-service"}
	if reason != "" {
		dims["Reason"] = reason
	}
	recordAsync(r.metrics, metric, dims)
}

func (r *Reconciler) latency(d time.Duration) {
	if r.metrics == nil || !r.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.metrics.RecordLatency(ctx, awspkg.MetricReconcileLatency, d, map[string]string{"Service": "checkout-service"})
	}()
}
