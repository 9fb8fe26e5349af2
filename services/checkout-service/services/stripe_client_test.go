package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

const testWebhookSecret = "whsec_test"

func succeededPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   "payment_intent.succeeded",
		"data": map[string]any{
			"object": map[string]any{
				"id":     "pi_123",
				"object": "payment_intent",
				"amount": 2450,
				"metadata": map[string]string{
					models.MetadataUserID:        "7",
					models.MetadataProductSource: "1",
					models.MetadataProducts:      `[{"id":1,"quantity":2,"price":"10","discount":"0","name":"Runner - 42"}]`,
				},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestVerifyEvent_AcceptsSignedPayload(t *testing.T) {
	svc := NewStripeService("sk_test", testWebhookSecret, nil)
	payload := succeededPayload(t)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})

	event, err := svc.VerifyEvent(payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.PaymentIntentID)
	assert.Equal(t, int64(2450), event.Amount)

	intent, err := models.DecodeCheckoutMetadata(event.Metadata)
	require.NoError(t, err)
	assert.Equal(t, uint(7), intent.UserID)
}

func TestVerifyEvent_RejectsBadSignatures(t *testing.T) {
	svc := NewStripeService("sk_test", testWebhookSecret, nil)
	payload := succeededPayload(t)

	wrongSecret := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_other",
		Timestamp: time.Now(),
	})
	stale := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now().Add(-time.Hour),
	})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong secret": wrongSecret.Header,
		"too old":      stale.Header,
		"garbage":      "not-a-signature",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyEvent(payload, header)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrSignatureInvalid), "got %v", err)
		})
	}
}

func TestParseEvent_UnwrapsEventBridgeEnvelope(t *testing.T) {
	svc := NewStripeService("sk_test", testWebhookSecret, nil)
	payload := succeededPayload(t)

	wrapped, err := json.Marshal(map[string]any{
		"source":      "aws.partner/stripe.com",
		"detail-type": "payment_intent.succeeded",
		"detail":      json.RawMessage(payload),
	})
	require.NoError(t, err)

	for _, body := range [][]byte{payload, wrapped} {
		event, err := svc.ParseEvent(body)
		require.NoError(t, err)
		assert.Equal(t, "pi_123", event.PaymentIntentID)
	}

	_, err = svc.ParseEvent([]byte(`{"hello":"world"}`))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = svc.ParseEvent([]byte(`not json`))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func newStripeTestServer(t *testing.T, handler http.HandlerFunc) *StripeService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeService("sk_test", testWebhookSecret, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}

func TestCreatePaymentIntent_SendsAmountMetadataAndIdempotencyKey(t *testing.T) {
	svc := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "2450", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "7", r.PostForm.Get("metadata[user_id]"))
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
		assert.Equal(t, "idem-1", r.Header.Get("Idempotency-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret_abc"}`))
	})

	res, err := svc.CreatePaymentIntent(context.Background(), PaymentIntentParams{
		AmountMinorUnits: 2450,
		Currency:         "usd",
		Metadata:         map[string]string{models.MetadataUserID: "7"},
		CustomerRef:      "cus_1",
		IdempotencyKey:   "idem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", res.ID)
	assert.Equal(t, "pi_1_secret_abc", res.ClientSecret)
}

func TestCreateCheckoutSession_CopiesMetadataToPaymentIntent(t *testing.T) {
	svc := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "849", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "2", r.PostForm.Get("payment_intent_data[metadata][product_source]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.com/c/cs_1"}`))
	})

	res, err := svc.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		Lines:      []CheckoutSessionLine{{Name: "Runner - 42", UnitAmountMinorUnits: 849, Quantity: 2}},
		Currency:   "usd",
		SuccessURL: "https://shop.example.com/success",
		CancelURL:  "https://shop.example.com/cancel",
		Metadata:   map[string]string{models.MetadataProductSource: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", res.URL)
}

func TestDeleteCustomer_TreatsMissingCustomerAsDeleted(t *testing.T) {
	svc := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such customer"}}`))
	})

	assert.NoError(t, svc.DeleteCustomer(context.Background(), "cus_gone"))
}
