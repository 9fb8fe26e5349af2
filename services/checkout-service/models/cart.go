package models

import "time"

type CartItem struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_cart_user_variant" json:"user_id"`
	VariantID uint        `gorm:"not null;uniqueIndex:idx_cart_user_variant;index" json:"variant_id"`
	Variant   ShoeVariant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Quantity  int         `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type AddCartItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartLineView is the cart line as returned to the shopper.
type CartLineView struct {
	ID        uint   `json:"id"`
	VariantID uint   `json:"variant_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Discount  string `json:"discount"`
	Available int    `json:"available"`
}

func NewCartLineView(item CartItem) CartLineView {
	return CartLineView{
		ID:        item.ID,
		VariantID: item.VariantID,
		Name:      item.Variant.DisplayName(),
		Quantity:  item.Quantity,
		Price:     item.Variant.Price.StringFixed(2),
		Discount:  item.Variant.Discount.String(),
		Available: item.Variant.Quantity,
	}
}
