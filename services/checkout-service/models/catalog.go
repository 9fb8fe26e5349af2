package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Shoe is the catalog product. Variants carry the sellable stock.
type Shoe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Display     bool      `gorm:"not null;default:false" json:"display"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ShoeVariant is one purchasable size of a shoe. Discount is a fraction in [0,1].
type ShoeVariant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ShoeID    uint            `gorm:"not null;index" json:"shoe_id"`
	Shoe      Shoe            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Size      string          `gorm:"type:varchar(10);not null" json:"size"`
	Quantity  int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(7,2);not null" json:"price"`
	Discount  decimal.Decimal `gorm:"type:numeric(4,3);not null;default:0" json:"discount"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *ShoeVariant) DisplayName() string {
	if v.Shoe.Name == "" {
		return fmt.Sprintf("Variant %d - %s", v.ID, v.Size)
	}
	return fmt.Sprintf("%s - %s", v.Shoe.Name, v.Size)
}

// StockChange is the result of an inventory decrement.
type StockChange struct {
	VariantID uint
	Previous  int
	Available int
}

// Shortfall is how many units were requested beyond what was in stock.
func (s StockChange) Shortfall(requested int) int {
	if requested > s.Previous {
		return requested - s.Previous
	}
	return 0
}
