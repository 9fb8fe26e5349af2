package services

import (
	"context"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
)

// EventPaymentSucceeded is the only event type that changes local state.
// Hosted checkout sessions copy their metadata onto the payment intent, so
// both checkout flows settle through it.
const EventPaymentSucceeded = "payment_intent.succeeded"

// PaymentEvent is the provider event reduced to what reconciliation needs.
type PaymentEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	Amount          int64
	Metadata        map[string]string
}

type PaymentIntentParams struct {
	AmountMinorUnits int64
	Currency         string
	Metadata         map[string]string
	CustomerRef      string
	IdempotencyKey   string
}

type CheckoutSessionLine struct {
	Name                 string
	UnitAmountMinorUnits int64
	Quantity             int
}

type CheckoutSessionParams struct {
	Lines          []CheckoutSessionLine
	Currency       string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
	CustomerRef    string
	IdempotencyKey string
}

type PaymentIntentResult struct {
	ID           string
	ClientSecret string
}

type CheckoutSessionResult struct {
	ID  string
	URL string
}

// PaymentProvider is the payment processor capability.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntentResult, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSessionResult, error)
	EventVerifier
	EventParser
}

// EventVerifier checks the signature over the raw body before decoding it.
type EventVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*PaymentEvent, error)
}

// EventParser decodes events that arrive over a trusted channel such as an SQS queue.
type EventParser interface {
	ParseEvent(payload []byte) (*PaymentEvent, error)
}

// CustomerProvisioner manages the provider-side customer record of a user.
type CustomerProvisioner interface {
	CreateCustomer(ctx context.Context, user *models.User) (string, error)
	UpdateCustomerEmail(ctx context.Context, customerID, email string) error
	DeleteCustomer(ctx context.Context, customerID string) error
}
