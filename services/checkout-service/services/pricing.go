package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	apperrors "github.com/AI-zik/shoe-store-backend/services/common/errors"
)

// Pricer takes the read-only price snapshot a checkout is built from.
type Pricer struct {
	repos repository.Repositories
}

func NewPricer(repos repository.Repositories) *Pricer {
	return &Pricer{repos: repos}
}

// Snapshot resolves the products to price. A cart checkout uses the user's cart and
// ignores products; a buy-now checkout requires them.
func (p *Pricer) Snapshot(ctx context.Context, userID uint, source models.ProductSource, products models.ProductRequests) ([]models.PricedLine, error) {
	requests, err := p.resolveRequests(ctx, userID, source, products)
	if err != nil {
		return nil, err
	}

	lines := make([]models.PricedLine, 0, len(requests))
	for _, req := range requests.Merge() {
		if req.Quantity < 1 {
			return nil, apperrors.ErrValidation.WithDetails(map[string]any{
				"products": fmt.Sprintf("quantity for variant %d must be at least 1", req.VariantID),
			})
		}

		variant, err := p.repos.Inventory().GetVariant(ctx, req.VariantID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrNotFound.WithDetails(map[string]any{"variant_id": req.VariantID})
		}
		if err != nil {
			return nil, fmt.Errorf("load variant %d: %w", req.VariantID, err)
		}

		if req.Quantity > variant.Quantity {
			return nil, apperrors.ErrInsufficientStock.WithDetails(map[string]any{
				"variant_id": variant.ID,
				"requested":  req.Quantity,
				"available":  variant.Quantity,
			})
		}

		lines = append(lines, models.PricedLine{
			VariantID: variant.ID,
			Quantity:  req.Quantity,
			Price:     variant.Price,
			Discount:  variant.Discount,
			Name:      variant.DisplayName(),
		})
	}
	return lines, nil
}

func (p *Pricer) resolveRequests(ctx context.Context, userID uint, source models.ProductSource, products models.ProductRequests) (models.ProductRequests, error) {
	switch source {
	case models.SourceCart:
		items, err := p.repos.Carts().ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		if len(items) == 0 {
			return nil, apperrors.ErrValidation.WithDetails(map[string]any{"products": "cart is empty"})
		}
		requests := make(models.ProductRequests, 0, len(items))
		for _, item := range items {
			requests = append(requests, models.ProductRequest{VariantID: item.VariantID, Quantity: item.Quantity})
		}
		return requests, nil

	case models.SourceBuyNow:
		if len(products) == 0 {
			return nil, apperrors.ErrValidation.WithDetails(map[string]any{"products": "at least one product is required"})
		}
		return products, nil

	default:
		return nil, apperrors.ErrValidation.WithDetails(map[string]any{
			"product_source": "must be 1 (cart) or 2 (buy now)",
		})
	}
}
