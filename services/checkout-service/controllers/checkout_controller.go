package controllers

import (
	"net/http"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/middleware"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	"github.com/gin-gonic/gin"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutController struct {
	Service services.CheckoutService
}

func NewCheckoutController(svc services.CheckoutService) *CheckoutController {
	return &CheckoutController{Service: svc}
}

// CreatePaymentIntent prices the request and returns the client secret for an embedded payment form.
func (cc *CheckoutController) CreatePaymentIntent(c *gin.Context) {
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := cc.Service.CreatePaymentIntent(c.Request.Context(), middleware.GetUserID(c), &req, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client_secret": res.ClientSecret})
}

// CreateCheckoutSession returns the URL of a hosted checkout page.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := cc.Service.CreateCheckoutSession(c.Request.Context(), middleware.GetUserID(c), &req, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": res.URL})
}
