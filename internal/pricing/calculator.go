// Package pricing turns cart lines and payments into reconciled amounts.
// Every function here is pure; persistence and validation live in the
// service layer.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds to two decimal places, halves away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FinalPrice prices one line: unitPrice*quantity, then the percent discount,
// then the fixed discount. The order of the two discounts matters.
// Negative results are kept; they represent credit or alteration lines.
func FinalPrice(unitPrice, discountPercent, discountAmount decimal.Decimal, quantity int) decimal.Decimal {
	base := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if discountPercent.IsPositive() {
		base = base.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(hundred)))
	}
	if discountAmount.IsPositive() {
		base = base.Sub(discountAmount)
	}
	return Round2(base)
}

// LineInput is a cart line as submitted by a client. Nil fields are
// filled with defaults by Normalize.
type LineInput struct {
	Code            string           `json:"code" validate:"required"`
	ItemID          *uuid.UUID       `json:"item_id,omitempty"`
	Quantity        *int             `json:"quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,dec_2dp"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty" validate:"omitempty,dec_2dp"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty" validate:"omitempty,dec_2dp"`
}

// Line is a fully specified cart line.
type Line struct {
	Code            string
	ItemID          *uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
}

// Normalize applies the lenient input defaults: quantity 1, money fields 0.
func (in LineInput) Normalize() Line {
	line := Line{
		Code:     in.Code,
		ItemID:   in.ItemID,
		Quantity: 1,
	}
	if in.Quantity != nil {
		line.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		line.UnitPrice = *in.UnitPrice
	}
	if in.DiscountPercent != nil {
		line.DiscountPercent = *in.DiscountPercent
	}
	if in.DiscountAmount != nil {
		line.DiscountAmount = *in.DiscountAmount
	}
	return line
}

// FinalPrice prices the line.
func (l Line) FinalPrice() decimal.Decimal {
	return FinalPrice(l.UnitPrice, l.DiscountPercent, l.DiscountAmount, l.Quantity)
}
