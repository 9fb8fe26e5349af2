package repository_test

import (
	"testing"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/database"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*repository.GormStore, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return repository.NewGormStore(db), db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedVariant(t *testing.T, db *gorm.DB, quantity int, price, discount string) models.ShoeVariant {
	t.Helper()
	shoe := models.Shoe{Name: "Runner"}
	require.NoError(t, db.Create(&shoe).Error)
	v := models.ShoeVariant{
		ShoeID:   shoe.ID,
		Size:     "42",
		Quantity: quantity,
		Price:    decimal.RequireFromString(price),
		Discount: decimal.RequireFromString(discount),
	}
	require.NoError(t, db.Omit("Shoe").Create(&v).Error)
	return v
}

func seedCartItem(t *testing.T, db *gorm.DB, userID, variantID uint, quantity int) models.CartItem {
	t.Helper()
	item := models.CartItem{UserID: userID, VariantID: variantID, Quantity: quantity}
	require.NoError(t, db.Omit("Variant").Create(&item).Error)
	return item
}
