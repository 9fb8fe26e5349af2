package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is created exactly once per confirmed payment intent. A user
// referenced by a transaction cannot be deleted.
type Transaction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PaymentIntentID string     `gorm:"type:varchar(120);not null;uniqueIndex" json:"payment_intent_id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            User       `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Amount          int64      `gorm:"not null;default:0" json:"amount"`
	Source          int        `gorm:"not null" json:"product_source"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Purchases       []Purchase `gorm:"constraint:OnDelete:CASCADE" json:"purchases,omitempty"`
}

// Purchase is one line of a Transaction, unique per (transaction, variant).
type Purchase struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID uint            `gorm:"not null;uniqueIndex:idx_purchase_tx_variant" json:"transaction_id"`
	VariantID     uint            `gorm:"not null;uniqueIndex:idx_purchase_tx_variant" json:"variant_id"`
	Variant       ShoeVariant     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Name          string          `gorm:"type:varchar(80)" json:"name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(7,2);not null" json:"price"`
	Discount      decimal.Decimal `gorm:"type:numeric(4,3);not null;default:0" json:"discount"`
}

type OrderListResponse struct {
	Orders []Transaction `json:"orders"`
	Meta   PageMeta      `json:"meta"`
}

type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
