package services_test

import (
	"context"

	awspkg "github.com/AI-zik/shoe-store-backend/pkg/aws"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct{ mock.Mock }

func (m *MockPaymentProvider) CreatePaymentIntent(ctx context.Context, p services.PaymentIntentParams) (*services.PaymentIntentResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentIntentResult), args.Error(1)
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, p services.CheckoutSessionParams) (*services.CheckoutSessionResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutSessionResult), args.Error(1)
}

func (m *MockPaymentProvider) VerifyEvent(payload []byte, sig string) (*services.PaymentEvent, error) {
	args := m.Called(payload, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentEvent), args.Error(1)
}

func (m *MockPaymentProvider) ParseEvent(payload []byte) (*services.PaymentEvent, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentEvent), args.Error(1)
}

type MockCustomerProvisioner struct{ mock.Mock }

func (m *MockCustomerProvisioner) CreateCustomer(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockCustomerProvisioner) UpdateCustomerEmail(ctx context.Context, customerID, email string) error {
	args := m.Called(ctx, customerID, email)
	return args.Error(0)
}

func (m *MockCustomerProvisioner) DeleteCustomer(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type MockPoller struct{ mock.Mock }

func (m *MockPoller) StartPolling(ctx context.Context, handler awspkg.MessageHandler) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}
