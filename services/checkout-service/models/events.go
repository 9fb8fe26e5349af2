package models

import "time"

const EventOrderRecorded = "order_recorded"

type OrderRecordedEvent struct {
	EventID         string              `json:"event_id"`
	Type            string              `json:"type"`
	TransactionID   uint                `json:"transaction_id"`
	PaymentIntentID string              `json:"payment_intent_id"`
	UserID          uint                `json:"user_id"`
	Amount          int64               `json:"amount"`
	Source          string              `json:"product_source"`
	Lines           []OrderRecordedLine `json:"lines"`
	Timestamp       time.Time           `json:"timestamp"`
}

type OrderRecordedLine struct {
	VariantID uint   `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
	Price     string `json:"price"`
	Discount  string `json:"discount"`
}
