package repository

import (
	"context"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateEmail(ctx context.Context, userID uint, email string) error
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
	Delete(ctx context.Context, userID uint) error
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) FindByID(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *gormUserRepository) UpdateEmail(ctx context.Context, userID uint, email string) error {
	return r.updateColumn(ctx, userID, "email", email)
}

func (r *gormUserRepository) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	return r.updateColumn(ctx, userID, "stripe_customer_id", customerID)
}

func (r *gormUserRepository) Delete(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, userID)
	if isForeignKeyViolation(res.Error) {
		return ErrReferenced
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) updateColumn(ctx context.Context, userID uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if isUniqueViolation(res.Error) {
		return ErrConflict
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
