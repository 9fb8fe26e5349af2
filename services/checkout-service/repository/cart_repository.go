package repository

import (
	"context"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"gorm.io/gorm"
)

// ClampResult counts cart lines touched after a variant's stock changed.
type ClampResult struct {
	Clamped int64
	Removed int64
}

type CartRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error)
	FindByID(ctx context.Context, userID, itemID uint) (*models.CartItem, error)
	FindByUserAndVariant(ctx context.Context, userID, variantID uint) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID uint, quantity int) error
	Delete(ctx context.Context, userID, itemID uint) error
	DeleteByUserAndVariant(ctx context.Context, userID, variantID uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	// ClampToAvailable lowers every line for variantID above available down to it.
	// With nothing available the lines are removed, since a line holds at least one unit.
	ClampToAvailable(ctx context.Context, variantID uint, available int) (ClampResult, error)
}

type gormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &gormCartRepository{db: db}
}

func (r *gormCartRepository) ListByUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Variant.Shoe").
		Where("user_id = ? AND quantity > 0", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	return items, err
}

func (r *gormCartRepository) FindByID(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Variant.Shoe").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *gormCartRepository) FindByUserAndVariant(ctx context.Context, userID, variantID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND variant_id = ?", userID, variantID).
		First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *gormCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	err := r.db.WithContext(ctx).Omit("Variant").Create(item).Error
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *gormCartRepository) UpdateQuantity(ctx context.Context, itemID uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCartRepository) Delete(ctx context.Context, userID, itemID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCartRepository) DeleteByUserAndVariant(ctx context.Context, userID, variantID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND variant_id = ?", userID, variantID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *gormCartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *gormCartRepository) ClampToAvailable(ctx context.Context, variantID uint, available int) (ClampResult, error) {
	db := r.db.WithContext(ctx)

	if available <= 0 {
		res := db.Where("variant_id = ?", variantID).Delete(&models.CartItem{})
		return ClampResult{Removed: res.RowsAffected}, res.Error
	}

	res := db.Model(&models.CartItem{}).
		Where("variant_id = ? AND quantity > ?", variantID, available).
		Update("quantity", available)
	return ClampResult{Clamped: res.RowsAffected}, res.Error
}
