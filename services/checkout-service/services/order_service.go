package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
)

const (
	defaultOrderPage  = 1
	defaultOrderLimit = 10
	maxOrderLimit     = 100
)

// OrderService is the read side of the order ledger.
type OrderService interface {
	List(ctx context.Context, userID uint, page, limit int) (*models.OrderListResponse, error)
	Get(ctx context.Context, userID, transactionID uint) (*models.Transaction, error)
}

type orderServiceImpl struct {
	repos repository.Repositories
}

func NewOrderService(repos repository.Repositories) OrderService {
	return &orderServiceImpl{repos: repos}
}

func (s *orderServiceImpl) List(ctx context.Context, userID uint, page, limit int) (*models.OrderListResponse, error) {
	if page < 1 {
		page = defaultOrderPage
	}
	if limit < 1 {
		limit = defaultOrderLimit
	}
	if limit > maxOrderLimit {
		limit = maxOrderLimit
	}

	txns, total, err := s.repos.Ledger().FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return &models.OrderListResponse{
		Orders: txns,
		Meta:   models.PageMeta{Page: page, Limit: limit, Total: total},
	}, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, userID, transactionID uint) (*models.Transaction, error) {
	txn, err := s.repos.Ledger().FindByID(ctx, userID, transactionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithDetails(map[string]any{"id": transactionID})
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", transactionID, err)
	}
	return txn, nil
}
