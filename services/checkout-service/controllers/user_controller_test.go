package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserController(t *testing.T) {
	svc := new(MockUserService)
	svc.On("CreateUser", mock.Anything, &models.CreateUserRequest{Email: "a@example.com", FirstName: "A"}).
		Return(&models.User{ID: 1, Email: "a@example.com", StripeCustomerID: "cus_1"}, nil)
	svc.On("CreateUser", mock.Anything, &models.CreateUserRequest{Email: "dup@example.com"}).
		Return(nil, apperrors.ErrAlreadyExists)
	svc.On("UpdateEmail", mock.Anything, uint(1), "b@example.com").
		Return(nil, apperrors.ErrServiceUnavailable.Wrap(errors.New("stripe down")))
	svc.On("DeleteUser", mock.Anything, uint(1)).Return(nil)
	svc.On("DeleteUser", mock.Anything, uint(2)).Return(apperrors.ErrHasOrders.WithDetails(map[string]any{"id": 2}))

	r := newTestRouter()
	uc := NewUserController(svc)
	r.POST("/internal/users", uc.CreateUser)
	r.PATCH("/internal/users/:id/email", uc.UpdateEmail)
	r.DELETE("/internal/users/:id", uc.DeleteUser)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "create", method: http.MethodPost, path: "/internal/users", body: `{"email":"a@example.com","first_name":"A"}`, wantStatus: http.StatusCreated},
		{name: "create duplicate", method: http.MethodPost, path: "/internal/users", body: `{"email":"dup@example.com"}`, wantStatus: http.StatusConflict},
		{name: "create bad email", method: http.MethodPost, path: "/internal/users", body: `{"email":"nope"}`, wantStatus: http.StatusBadRequest},
		{name: "update email provider down", method: http.MethodPatch, path: "/internal/users/1/email", body: `{"email":"b@example.com"}`, wantStatus: http.StatusServiceUnavailable},
		{name: "delete", method: http.MethodDelete, path: "/internal/users/1", wantStatus: http.StatusNoContent},
		{name: "delete user with orders", method: http.MethodDelete, path: "/internal/users/2", wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), "cus_1")
		})
	}
	svc.AssertExpectations(t)
}
