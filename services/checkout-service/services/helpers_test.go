package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/database"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/repository"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
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
	u := models.User{Email: email, FirstName: "Test"}
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

func variantQuantity(t *testing.T, db *gorm.DB, variantID uint) int {
	t.Helper()
	var v models.ShoeVariant
	require.NoError(t, db.First(&v, variantID).Error)
	return v.Quantity
}

func cartQuantity(t *testing.T, db *gorm.DB, userID, variantID uint) (int, bool) {
	t.Helper()
	var items []models.CartItem
	require.NoError(t, db.Where("user_id = ? AND variant_id = ?", userID, variantID).Find(&items).Error)
	if len(items) == 0 {
		return 0, false
	}
	return items[0].Quantity, true
}

func line(v models.ShoeVariant, quantity int) models.PricedLine {
	return models.PricedLine{
		VariantID: v.ID,
		Quantity:  quantity,
		Price:     v.Price,
		Discount:  v.Discount,
		Name:      "Runner - 42",
	}
}

func succeededEvent(t *testing.T, paymentIntentID string, userID uint, source models.ProductSource, lines ...models.PricedLine) *services.PaymentEvent {
	t.Helper()
	intent := models.CheckoutIntent{UserID: userID, Source: source, Lines: lines}
	md, err := intent.Metadata()
	require.NoError(t, err)
	return &services.PaymentEvent{
		ID:              "evt_" + paymentIntentID,
		Type:            services.EventPaymentSucceeded,
		PaymentIntentID: paymentIntentID,
		Amount:          intent.AmountMinorUnits(),
		Metadata:        md,
	}
}

type stubVerifier struct {
	event *services.PaymentEvent
	err   error
}

func (s stubVerifier) VerifyEvent([]byte, string) (*services.PaymentEvent, error) {
	return s.event, s.err
}

type capturePublisher struct {
	mu     sync.Mutex
	events []models.OrderRecordedEvent
}

func (c *capturePublisher) PublishOrderRecorded(_ context.Context, event models.OrderRecordedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) Events() []models.OrderRecordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.OrderRecordedEvent(nil), c.events...)
}
