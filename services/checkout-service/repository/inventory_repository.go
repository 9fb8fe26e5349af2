package repository

import (
	"context"
	"fmt"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	GetVariant(ctx context.Context, variantID uint) (*models.ShoeVariant, error)
	AvailableQuantity(ctx context.Context, variantID uint) (int, error)
	// DecrementAvailable takes a row lock on the variant and lowers its quantity
	// by amount, never below zero.
	DecrementAvailable(ctx context.Context, variantID uint, amount int) (models.StockChange, error)
}

type gormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &gormInventoryRepository{db: db}
}

func (r *gormInventoryRepository) GetVariant(ctx context.Context, variantID uint) (*models.ShoeVariant, error) {
	var v models.ShoeVariant
	if err := r.db.WithContext(ctx).Preload("Shoe").First(&v, variantID).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (r *gormInventoryRepository) AvailableQuantity(ctx context.Context, variantID uint) (int, error) {
	var v models.ShoeVariant
	if err := r.db.WithContext(ctx).Select("id", "quantity").First(&v, variantID).Error; err != nil {
		return 0, notFound(err)
	}
	return v.Quantity, nil
}

func (r *gormInventoryRepository) DecrementAvailable(ctx context.Context, variantID uint, amount int) (models.StockChange, error) {
	if amount < 0 {
		return models.StockChange{}, fmt.Errorf("decrement of variant %d by negative amount %d", variantID, amount)
	}

	var change models.StockChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.ShoeVariant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "quantity").
			First(&v, variantID).Error; err != nil {
			return notFound(err)
		}

		next := v.Quantity - amount
		if next < 0 {
			next = 0
		}
		if err := tx.Model(&models.ShoeVariant{}).Where("id = ?", variantID).Update("quantity", next).Error; err != nil {
			return err
		}

		change = models.StockChange{VariantID: variantID, Previous: v.Quantity, Available: next}
		return nil
	})
	return change, err
}
