package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	StripeSignatureHeader = "Stripe-Signature"

	// Stripe caps event payloads well below this.
	maxWebhookBodyBytes = 1 << 16
)

// WebhookHandler is satisfied by services.Reconciler.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (services.Outcome, error)
}

type WebhookController struct {
	Handler WebhookHandler
	Logger  *zap.Logger
}

func NewWebhookController(h WebhookHandler, logger *zap.Logger) *WebhookController {
	return &WebhookController{Handler: h, Logger: logger}
}

// HandleStripeEvent answers 200 for anything the provider should stop sending,
// 400 when the signature or payload is bad, and 500 when the event must be retried.
func (wc *WebhookController) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		fail(c, apperrors.ErrBadRequest.Wrap(err))
		return
	}

	outcome, err := wc.Handler.HandleWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader))
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			fail(c, appErr)
			return
		}
		wc.Logger.Error("Webhook processing failed, asking for redelivery", zap.Error(err))
		fail(c, apperrors.ErrInternalServer.Wrap(err))
		return
	}

	wc.Logger.Debug("Webhook acknowledged", zap.String("outcome", string(outcome)))
	c.Status(http.StatusOK)
}
