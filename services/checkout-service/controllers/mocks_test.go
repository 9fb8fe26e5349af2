package controllers

import (
	"context"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/middleware"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockCheckoutService struct{ mock.Mock }

func (m *MockCheckoutService) CreatePaymentIntent(ctx context.Context, userID uint, req *models.CheckoutRequest, key string) (*services.PaymentIntentResult, error) {
	args := m.Called(ctx, userID, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentIntentResult), args.Error(1)
}

func (m *MockCheckoutService) CreateCheckoutSession(ctx context.Context, userID uint, req *models.CheckoutRequest, key string) (*services.CheckoutSessionResult, error) {
	args := m.Called(ctx, userID, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutSessionResult), args.Error(1)
}

type MockWebhookHandler struct{ mock.Mock }

func (m *MockWebhookHandler) HandleWebhook(ctx context.Context, payload []byte, sig string) (services.Outcome, error) {
	args := m.Called(ctx, payload, sig)
	return args.Get(0).(services.Outcome), args.Error(1)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) List(ctx context.Context, userID uint) ([]models.CartLineView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartLineView), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID uint, req *models.AddCartItemRequest) (*models.CartLineView, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartLineView), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID, itemID uint, req *models.UpdateCartItemRequest) (*models.CartLineView, error) {
	args := m.Called(ctx, userID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartLineView), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, userID, itemID uint) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) List(ctx context.Context, userID uint, page, limit int) (*models.OrderListResponse, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderListResponse), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateEmail(ctx context.Context, userID uint, email string) (*models.User, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

// newTestRouter mounts the error renderer and a fake authenticated user 42.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, uint(42))
		c.Next()
	})
	return r
}
