package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"go.uber.org/zap"
)

// UserService keeps local users and their payment provider customers in step.
type UserService interface {
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	UpdateEmail(ctx context.Context, userID uint, email string) (*models.User, error)
	DeleteUser(ctx context.Context, userID uint) error
}

type userServiceImpl struct {
	store       repository.Transactor
	provisioner CustomerProvisioner
	logger      *zap.Logger
}

func NewUserService(store repository.Transactor, provisioner CustomerProvisioner, logger *zap.Logger) UserService {
	return &userServiceImpl{store: store, provisioner: provisioner, logger: logger}
}

// CreateUser inserts the user and its provider customer together. If the
// customer cannot be created the insert is rolled back.
func (s *userServiceImpl) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	var customerID string
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		id, err := s.provisioner.CreateCustomer(ctx, user)
		if err != nil {
			return apperrors.ErrServiceUnavailable.Wrap(err)
		}
		customerID = id
		user.StripeCustomerID = id
		return tx.Users().SetStripeCustomerID(ctx, user.ID, id)
	})
	if err != nil {
		if customerID != "" {
			s.discardCustomer(customerID)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.ErrAlreadyExists.WithDetails(map[string]any{"email": req.Email})
		}
		if errors.Is(err, apperrors.ErrServiceUnavailable) {
			s.logger.Error("Customer provisioning failed", zap.String("email", req.Email), zap.Error(err))
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created", zap.Uint("user_id", user.ID), zap.String("stripe_customer_id", customerID))
	return user, nil
}

func (s *userServiceImpl) UpdateEmail(ctx context.Context, userID uint, email string) (*models.User, error) {
	var user *models.User
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		u, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdateEmail(ctx, userID, email); err != nil {
			return err
		}
		if u.StripeCustomerID != "" {
			if err := s.provisioner.UpdateCustomerEmail(ctx, u.StripeCustomerID, email); err != nil {
				return apperrors.ErrServiceUnavailable.Wrap(err)
			}
		}
		u.Email = email
		user = u
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.ErrNotFound.WithDetails(map[string]any{"id": userID})
	case errors.Is(err, repository.ErrConflict):
		return nil, apperrors.ErrAlreadyExists.WithDetails(map[string]any{"email": email})
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		s.logger.Error("Customer email sync failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("update email for user %d: %w", userID, err)
	}

	s.logger.Info("User email updated", zap.Uint("user_id", userID))
	return user, nil
}

// DeleteUser removes the provider customer first so a failure leaves the user intact.
// Users with recorded orders are refused since the order ledger is never pruned.
func (s *userServiceImpl) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.store.Users().FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFound.WithDetails(map[string]any{"id": userID})
	}
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	orders, err := s.store.Ledger().CountByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("count orders for user %d: %w", userID, err)
	}
	if orders > 0 {
		return apperrors.ErrHasOrders.WithDetails(map[string]any{"id": userID, "orders": orders})
	}

	if user.StripeCustomerID != "" {
		if err := s.provisioner.DeleteCustomer(ctx, user.StripeCustomerID); err != nil {
			s.logger.Error("Customer deletion failed", zap.Uint("user_id", userID), zap.Error(err))
			return apperrors.ErrServiceUnavailable.Wrap(err)
		}
	}

	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if _, err := tx.Carts().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFound.WithDetails(map[string]any{"id": userID})
	}
	if errors.Is(err, repository.ErrReferenced) {
		// a payment was recorded after the order check
		s.logger.Warn("User gained orders during deletion", zap.Uint("user_id", userID))
		return apperrors.ErrHasOrders.WithDetails(map[string]any{"id": userID})
	}
	if err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}

	s.logger.Info("User deleted", zap.Uint("user_id", userID))
	return nil
}

// discardCustomer undoes a customer whose local user never committed.
func (s *userServiceImpl) discardCustomer(customerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.provisioner.DeleteCustomer(ctx, customerID); err != nil {
		s.logger.Error("Failed to discard orphaned customer", zap.String("stripe_customer_id", customerID), zap.Error(err))
	}
}
