package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	awspkg "github.com/AI-zik/shoe-store-backend/pkg/aws"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"go.uber.org/zap"
)

type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type CheckoutService interface {
	CreatePaymentIntent(ctx context.Context, userID uint, req *models.CheckoutRequest, idempotencyKey string) (*PaymentIntentResult, error)
	CreateCheckoutSession(ctx context.Context, userID uint, req *models.CheckoutRequest, idempotencyKey string) (*CheckoutSessionResult, error)
}

type checkoutServiceImpl struct {
	repos    repository.Repositories
	pricer   *Pricer
	provider PaymentProvider
	cfg      CheckoutConfig
	metrics  awspkg.MetricsRecorder
	logger   *zap.Logger
}

func NewCheckoutService(
	repos repository.Repositories,
	provider PaymentProvider,
	cfg CheckoutConfig,
	metrics awspkg.MetricsRecorder,
	logger *zap.Logger,
) CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &checkoutServiceImpl{
		repos:    repos,
		pricer:   NewPricer(repos),
		provider: provider,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *checkoutServiceImpl) CreatePaymentIntent(ctx context.Context, userID uint, req *models.CheckoutRequest, idempotencyKey string) (*PaymentIntentResult, error) {
	user, intent, metadata, err := s.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	amount := intent.AmountMinorUnits()
	result, err := s.provider.CreatePaymentIntent(ctx, PaymentIntentParams{
		AmountMinorUnits: amount,
		Currency:         s.cfg.Currency,
		Metadata:         metadata,
		CustomerRef:      user.StripeCustomerID,
		IdempotencyKey:   idempotencyKey,
	})
	if err != nil {
		s.logger.Error("Payment provider rejected payment intent",
			zap.Uint("user_id", userID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		s.count(awspkg.MetricCheckoutsFailed, "payment_intent")
		return nil, apperrors.ErrServiceUnavailable.Wrap(err)
	}

	s.logger.Info("Payment intent created",
		zap.Uint("user_id", userID),
		zap.String("payment_intent_id", result.ID),
		zap.Int64("amount", amount),
		zap.String("product_source", intent.Source.String()),
		zap.Int("lines", len(intent.Lines)),
	)
	s.count(awspkg.MetricCheckoutsCreated, "payment_intent")
	return result, nil
}

func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, userID uint, req *models.CheckoutRequest, idempotencyKey string) (*CheckoutSessionResult, error) {
	user, intent, metadata, err := s.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	lines := make([]CheckoutSessionLine, 0, len(intent.Lines))
	for _, l := range intent.Lines {
		lines = append(lines, CheckoutSessionLine{
			Name:                 l.Name,
			UnitAmountMinorUnits: l.UnitMinorUnits(),
			Quantity:             l.Quantity,
		})
	}

	result, err := s.provider.CreateCheckoutSession(ctx, CheckoutSessionParams{
		Lines:          lines,
		Currency:       s.cfg.Currency,
		SuccessURL:     s.cfg.SuccessURL,
		CancelURL:      s.cfg.CancelURL,
		Metadata:       metadata,
		CustomerRef:    user.StripeCustomerID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		s.logger.Error("Payment provider rejected checkout session", zap.Uint("user_id", userID), zap.Error(err))
		s.count(awspkg.MetricCheckoutsFailed, "checkout_session")
		return nil, apperrors.ErrServiceUnavailable.Wrap(err)
	}

	s.logger.Info("Checkout session created",
		zap.Uint("user_id", userID),
		zap.String("session_id", result.ID),
		zap.String("product_source", intent.Source.String()),
	)
	s.count(awspkg.MetricCheckoutsCreated, "checkout_session")
	return result, nil
}

// prepare prices the request and encodes the metadata the reconciler will read back.
func (s *checkoutServiceImpl) prepare(ctx context.Context, userID uint, req *models.CheckoutRequest) (*models.User, *models.CheckoutIntent, map[string]string, error) {
	if req == nil || !req.ProductSource.Valid() {
		return nil, nil, nil, apperrors.ErrValidation.WithDetails(map[string]any{
			"product_source": "must be 1 (cart) or 2 (buy now)",
		})
	}

	user, err := s.repos.Users().FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, nil, apperrors.ErrUnauthorized.Wrap(err)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	lines, err := s.pricer.Snapshot(ctx, userID, req.ProductSource, req.Products)
	if err != nil {
		return nil, nil, nil, err
	}

	intent := &models.CheckoutIntent{UserID: userID, Source: req.ProductSource, Lines: lines}
	metadata, err := intent.Metadata()
	if errors.Is(err, models.ErrMetadataTooLarge) {
		return nil, nil, nil, apperrors.ErrValidation.WithDetails(map[string]any{
			"products": "too many products for a single checkout",
		})
	}
	if err != nil {
		return nil, nil, nil, apperrors.ErrValidation.Wrap(err)
	}
	return user, intent, metadata, nil
}

func (s *checkoutServiceImpl) count(metric, flow string) {
	recordAsync(s.metrics, metric, map[string]string{"Flow": flow})
}

// recordAsync ships a counter without holding up the caller.
func recordAsync(metrics awspkg.MetricsRecorder, metric string, dims map[string]string) {
	if metrics == nil || !metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metrics.RecordCount(ctx, metric, dims)
	}()
}
