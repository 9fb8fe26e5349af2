package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

type ProductSource int

const (
	SourceCart   ProductSource = 1
	SourceBuyNow ProductSource = 2
)

func (s ProductSource) Valid() bool {
	return s == SourceCart || s == SourceBuyNow
}

func (s ProductSource) String() string {
	switch s {
	case SourceCart:
		return "cart"
	case SourceBuyNow:
		return "buy_now"
	}
	return "unknown"
}

type ProductRequest struct {
	VariantID uint `json:"id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// ProductRequests accepts either a JSON array or a single object.
type ProductRequests []ProductRequest

func (p *ProductRequests) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if data[0] == '{' {
		var one ProductRequest
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*p = ProductRequests{one}
		return nil
	}
	var many []ProductRequest
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*p = many
	return nil
}

// Merge folds repeated variant ids into one request, keeping first-seen order.
func (p ProductRequests) Merge() ProductRequests {
	out := make(ProductRequests, 0, len(p))
	index := make(map[uint]int, len(p))
	for _, r := range p {
		if i, ok := index[r.VariantID]; ok {
			out[i].Quantity += r.Quantity
			continue
		}
		index[r.VariantID] = len(out)
		out = append(out, r)
	}
	return out
}

type CheckoutRequest struct {
	ProductSource ProductSource   `json:"product_source" binding:"required"`
	Products      ProductRequests `json:"products" binding:"omitempty,dive"`
}

// PricedLine is the price snapshot of one variant taken when the checkout starts.
// Price is the list unit price and Discount the fraction taken off it.
type PricedLine struct {
	VariantID uint            `json:"id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Name      string          `json:"name"`
}

// UnitAmount is the price after discount.
func (l PricedLine) UnitAmount() decimal.Decimal {
	return l.Price.Sub(l.Price.Mul(l.Discount))
}

func (l PricedLine) Total() decimal.Decimal {
	return l.UnitAmount().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// MinorUnits is the line total in cents, rounded down.
func (l PricedLine) MinorUnits() int64 {
	return l.Total().Shift(2).Floor().IntPart()
}

// UnitMinorUnits is the discounted unit price in cents, rounded down.
func (l PricedLine) UnitMinorUnits() int64 {
	return l.UnitAmount().Shift(2).Floor().IntPart()
}

// CheckoutIntent only ever lives inside the provider's payment object as metadata.
type CheckoutIntent struct {
	UserID uint
	Source ProductSource
	Lines  []PricedLine
}

func (c CheckoutIntent) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// AmountMinorUnits sums the per-line cent amounts.
func (c CheckoutIntent) AmountMinorUnits() int64 {
	var amount int64
	for _, l := range c.Lines {
		amount += l.MinorUnits()
	}
	return amount
}

const (
	MetadataUserID        = "user_id"
	MetadataProducts      = "products"
	MetadataProductSource = "product_source"

	// MaxMetadataValueLength is Stripe's per-value metadata limit.
	MaxMetadataValueLength = 500
)

var (
	ErrInvalidMetadata    = errors.New("invalid checkout metadata")
	ErrMetadataTooLarge   = errors.New("checkout metadata exceeds provider limit")
	ErrEmptyCheckoutLines = errors.New("checkout has no products")
)

// Metadata encodes the intent into the provider metadata contract.
func (c CheckoutIntent) Metadata() (map[string]string, error) {
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCheckoutLines
	}
	products, err := json.Marshal(c.Lines)
	if err != nil {
		return nil, fmt.Errorf("encode products: %w", err)
	}
	if len(products) > MaxMetadataValueLength {
		return nil, fmt.Errorf("%w: products is %d characters", ErrMetadataTooLarge, len(products))
	}
	return map[string]string{
		MetadataUserID:        strconv.FormatUint(uint64(c.UserID), 10),
		MetadataProducts:      string(products),
		MetadataProductSource: strconv.Itoa(int(c.Source)),
	}, nil
}

// DecodeCheckoutMetadata rebuilds the intent from provider metadata alone.
func DecodeCheckoutMetadata(md map[string]string) (*CheckoutIntent, error) {
	userID, err := strconv.ParseUint(md[MetadataUserID], 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: user_id %q", ErrInvalidMetadata, md[MetadataUserID])
	}

	source, err := strconv.Atoi(md[MetadataProductSource])
	if err != nil || !ProductSource(source).Valid() {
		return nil, fmt.Errorf("%w: product_source %q", ErrInvalidMetadata, md[MetadataProductSource])
	}

	var lines []PricedLine
	if err := json.Unmarshal([]byte(md[MetadataProducts]), &lines); err != nil {
		return nil, fmt.Errorf("%w: products: %v", ErrInvalidMetadata, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: products is empty", ErrInvalidMetadata)
	}
	for _, l := range lines {
		if l.VariantID == 0 || l.Quantity < 1 {
			return nil, fmt.Errorf("%w: bad line for variant %d", ErrInvalidMetadata, l.VariantID)
		}
	}

	return &CheckoutIntent{
		UserID: uint(userID),
		Source: ProductSource(source),
		Lines:  lines,
	}, nil
}
