package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderController(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("List", mock.Anything, uint(42), 2, 5).Return(&models.OrderListResponse{
		Orders: []models.Transaction{{ID: 9, PaymentIntentID: "pi_9", UserID: 42, Amount: 2450}},
		Meta:   models.PageMeta{Page: 2, Limit: 5, Total: 6},
	}, nil)
	svc.On("List", mock.Anything, uint(42), 1, 10).Return(&models.OrderListResponse{Orders: []models.Transaction{}}, nil)
	svc.On("Get", mock.Anything, uint(42), uint(7)).Return(nil, apperrors.ErrNotFound)

	r := newTestRouter()
	oc := NewOrderController(svc)
	r.GET("/orders", oc.ListOrders)
	r.GET("/orders/:id", oc.GetOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?page=2&limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payment_intent_id":"pi_9"`)
	assert.Contains(t, w.Body.String(), `"total":6`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?page=x", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/7", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	svc.AssertExpectations(t)
}
