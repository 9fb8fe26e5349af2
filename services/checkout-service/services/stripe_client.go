package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeService talks to Stripe through its own client instead of the package-level stripe.Key.
type StripeService struct {
	api           *client.API
	webhookSecret string
}

// NewStripeService builds a client for secretKey. backends may be nil to use Stripe's defaults.
func NewStripeService(secretKey, webhookSecret string, backends *stripe.Backends) *StripeService {
	return &StripeService{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinorUnits),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if p.CustomerRef != "" {
		params.Customer = stripe.String(p.CustomerRef)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &PaymentIntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *StripeService) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSessionResult, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.Lines))
	for _, l := range p.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(l.UnitAmountMinorUnits),
			},
			Quantity: stripe.Int64(int64(l.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: p.Metadata,
		},
	}
	params.Context = ctx
	if p.CustomerRef != "" {
		params.Customer = stripe.String(p.CustomerRef)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return &CheckoutSessionResult{ID: sess.ID, URL: sess.URL}, nil
}

var signatureErrors = []error{
	webhook.ErrNotSigned,
	webhook.ErrInvalidHeader,
	webhook.ErrNoValidSignature,
	webhook.ErrTooOld,
}

// VerifyEvent checks the Stripe-Signature header against the untouched request body.
func (s *StripeService) VerifyEvent(payload []byte, signatureHeader string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret,
		webhook.ConstructEventOptions{Tolerance: webhook.DefaultTolerance, IgnoreAPIVersionMismatch: true})
	if err != nil {
		for _, sigErr := range signatureErrors {
			if errors.Is(err, sigErr) {
				return nil, apperrors.ErrSignatureInvalid.Wrap(err)
			}
		}
		return nil, apperrors.ErrValidation.Wrap(err)
	}
	return toPaymentEvent(event)
}

// ParseEvent accepts a bare Stripe event or an EventBridge envelope carrying one in "detail".
func (s *StripeService) ParseEvent(payload []byte) (*PaymentEvent, error) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, apperrors.ErrValidation.Wrap(err)
	}
	if len(envelope.Detail) > 0 {
		payload = envelope.Detail
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperrors.ErrValidation.Wrap(err)
	}
	if event.Type == "" {
		return nil, apperrors.ErrValidation.Wrap(errors.New("event has no type"))
	}
	return toPaymentEvent(event)
}

func toPaymentEvent(event stripe.Event) (*PaymentEvent, error) {
	out := &PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, apperrors.ErrValidation.Wrap(fmt.Errorf("decode payment intent: %w", err))
	}
	out.PaymentIntentID = pi.ID
	out.Amount = pi.Amount
	out.Metadata = pi.Metadata
	return out, nil
}

func (s *StripeService) CreateCustomer(ctx context.Context, user *models.User) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	if name := user.FullName(); name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatUint(uint64(user.ID), 10))
	params.SetIdempotencyKey("customer-create-" + strconv.FormatUint(uint64(user.ID), 10))

	cus, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return cus.ID, nil
}

func (s *StripeService) UpdateCustomerEmail(ctx context.Context, customerID, email string) error {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	if _, err := s.api.Customers.Update(customerID, params); err != nil {
		return fmt.Errorf("stripe update customer: %w", err)
	}
	return nil
}

// DeleteCustomer treats an already deleted customer as success.
func (s *StripeService) DeleteCustomer(_ context.Context, customerID string) error {
	_, err := s.api.Customers.Del(customerID, nil)
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stripe delete customer: %w", err)
	}
	return nil
}
