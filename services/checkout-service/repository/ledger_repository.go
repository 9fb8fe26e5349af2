package repository

import (
	"context"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"gorm.io/gorm"
)

// LedgerRepository is append-only: transactions and their purchase lines are
// never updated, and purchases go away only with their transaction.
type LedgerRepository interface {
	// RecordTransaction returns ErrAlreadyRecorded when the payment intent id is taken.
	RecordTransaction(ctx context.Context, txn *models.Transaction) error
	AppendPurchase(ctx context.Context, purchase *models.Purchase) error
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Transaction, error)
	FindByID(ctx context.Context, userID, transactionID uint) (*models.Transaction, error)
	FindByUserID(ctx context.Context, userID uint, page, limit int) ([]models.Transaction, int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type gormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) LedgerRepository {
	return &gormLedgerRepository{db: db}
}

func (r *gormLedgerRepository) RecordTransaction(ctx context.Context, txn *models.Transaction) error {
	err := r.db.WithContext(ctx).Omit("User", "Purchases").Create(txn).Error
	if isUniqueViolation(err) {
		return ErrAlreadyRecorded
	}
	return err
}

func (r *gormLedgerRepository) AppendPurchase(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Omit("Variant").Create(purchase).Error
}

func (r *gormLedgerRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Purchases").
		Where("payment_intent_id = ?", paymentIntentID).
		First(&txn).Error; err != nil {
		return nil, notFound(err)
	}
	return &txn, nil
}

func (r *gormLedgerRepository) FindByID(ctx context.Context, userID, transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Purchases").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&txn).Error; err != nil {
		return nil, notFound(err)
	}
	return &txn, nil
}

func (r *gormLedgerRepository) FindByUserID(ctx context.Context, userID uint, page, limit int) ([]models.Transaction, int64, error) {
	var (
		txns  []models.Transaction
		total int64
	)
	db := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Purchases").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&txns).Error
	return txns, total, err
}

func (r *gormLedgerRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}
