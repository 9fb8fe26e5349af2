package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
	"go.uber.org/zap"
)

type CartService interface {
	List(ctx context.Context, userID uint) ([]models.CartLineView, error)
	Add(ctx context.Context, userID uint, req *models.AddCartItemRequest) (*models.CartLineView, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint, req *models.UpdateCartItemRequest) (*models.CartLineView, error)
	Remove(ctx context.Context, userID, itemID uint) error
}

type cartServiceImpl struct {
	repos  repository.Repositories
	logger *zap.Logger
}

func NewCartService(repos repository.Repositories, logger *zap.Logger) CartService {
	return &cartServiceImpl{repos: repos, logger: logger}
}

func (s *cartServiceImpl) List(ctx context.Context, userID uint) ([]models.CartLineView, error) {
	items, err := s.repos.Carts().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	views := make([]models.CartLineView, 0, len(items))
	for _, item := range items {
		views = append(views, models.NewCartLineView(item))
	}
	return views, nil
}

// Add puts a variant in the cart or tops up the existing line. The resulting
// quantity never exceeds what is in stock.
func (s *cartServiceImpl) Add(ctx context.Context, userID uint, req *models.AddCartItemRequest) (*models.CartLineView, error) {
	available, err := s.available(ctx, req.VariantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repos.Carts().FindByUserAndVariant(ctx, userID, req.VariantID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		item := &models.CartItem{
			UserID:    userID,
			VariantID: req.VariantID,
			Quantity:  clampQuantity(req.Quantity, available),
		}
		if err := s.repos.Carts().Create(ctx, item); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, apperrors.ErrAlreadyExists.WithDetails(map[string]any{"variant_id": req.VariantID})
			}
			return nil, fmt.Errorf("create cart line: %w", err)
		}
		s.logger.Info("Cart line added",
			zap.Uint("user_id", userID),
			zap.Uint("variant_id", req.VariantID),
			zap.Int("quantity", item.Quantity),
		)
		return s.view(ctx, userID, item.ID)

	case err != nil:
		return nil, fmt.Errorf("load cart line: %w", err)
	}

	quantity := clampQuantity(existing.Quantity+req.Quantity, available)
	if err := s.repos.Carts().UpdateQuantity(ctx, existing.ID, quantity); err != nil {
		return nil, fmt.Errorf("update cart line %d: %w", existing.ID, err)
	}
	return s.view(ctx, userID, existing.ID)
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, userID, itemID uint, req *models.UpdateCartItemRequest) (*models.CartLineView, error) {
	item, err := s.repos.Carts().FindByID(ctx, userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithDetails(map[string]any{"id": itemID})
	}
	if err != nil {
		return nil, fmt.Errorf("load cart line %d: %w", itemID, err)
	}

	available, err := s.available(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Carts().UpdateQuantity(ctx, item.ID, clampQuantity(req.Quantity, available)); err != nil {
		return nil, fmt.Errorf("update cart line %d: %w", itemID, err)
	}
	return s.view(ctx, userID, item.ID)
}

func (s *cartServiceImpl) Remove(ctx context.Context, userID, itemID uint) error {
	err := s.repos.Carts().Delete(ctx, userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFound.WithDetails(map[string]any{"id": itemID})
	}
	if err != nil {
		return fmt.Errorf("delete cart line %d: %w", itemID, err)
	}
	s.logger.Info("Cart line removed", zap.Uint("user_id", userID), zap.Uint("cart_item_id", itemID))
	return nil
}

// available fails when the variant is unknown or sold out, since a cart line holds at least one unit.
func (s *cartServiceImpl) available(ctx context.Context, variantID uint) (int, error) {
	available, err := s.repos.Inventory().AvailableQuantity(ctx, variantID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperrors.ErrNotFound.WithDetails(map[string]any{"variant_id": variantID})
	}
	if err != nil {
		return 0, fmt.Errorf("load stock for variant %d: %w", variantID, err)
	}
	if available <= 0 {
		return 0, apperrors.ErrInsufficientStock.WithDetails(map[string]any{
			"variant_id": variantID,
			"available":  0,
		})
	}
	return available, nil
}

func (s *cartServiceImpl) view(ctx context.Context, userID, itemID uint) (*models.CartLineView, error) {
	item, err := s.repos.Carts().FindByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("reload cart line %d: %w", itemID, err)
	}
	v := models.NewCartLineView(*item)
	return &v, nil
}

func clampQuantity(requested, available int) int {
	if requested > available {
		return available
	}
	return requested
}
