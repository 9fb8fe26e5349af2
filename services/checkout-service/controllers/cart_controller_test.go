package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartRouter(svc *MockCartService) http.Handler {
	r := newTestRouter()
	cc := NewCartController(svc)
	r.GET("/cart", cc.GetCart)
	r.POST("/cart", cc.AddItem)
	r.PATCH("/cart/:id", cc.UpdateItem)
	r.DELETE("/cart/:id", cc.RemoveItem)
	return r
}

func TestCartController(t *testing.T) {
	svc := new(MockCartService)
	svc.On("List", mock.Anything, uint(42)).Return([]models.CartLineView{{ID: 1, VariantID: 5, Quantity: 2}}, nil)
	svc.On("Add", mock.Anything, uint(42), &models.AddCartItemRequest{VariantID: 5, Quantity: 1}).
		Return(&models.CartLineView{ID: 1, VariantID: 5, Quantity: 3}, nil)
	svc.On("UpdateQuantity", mock.Anything, uint(42), uint(1), &models.UpdateCartItemRequest{Quantity: 4}).
		Return(nil, apperrors.ErrNotFound.WithDetails(map[string]any{"id": 1}))
	svc.On("Remove", mock.Anything, uint(42), uint(1)).Return(nil)
	r := newCartRouter(svc)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "list", method: http.MethodGet, path: "/cart", wantStatus: http.StatusOK},
		{name: "add", method: http.MethodPost, path: "/cart", body: `{"variant_id":5,"quantity":1}`, wantStatus: http.StatusOK},
		{name: "add invalid", method: http.MethodPost, path: "/cart", body: `{"variant_id":5,"quantity":0}`, wantStatus: http.StatusBadRequest},
		{name: "update foreign line", method: http.MethodPatch, path: "/cart/1", body: `{"quantity":4}`, wantStatus: http.StatusNotFound},
		{name: "update bad id", method: http.MethodPatch, path: "/cart/abc", body: `{"quantity":4}`, wantStatus: http.StatusBadRequest},
		{name: "remove", method: http.MethodDelete, path: "/cart/1", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
	svc.AssertExpectations(t)
}
