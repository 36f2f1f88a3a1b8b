package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is a point-of-sale transaction. Once printed it is never re-priced;
// it only changes through void or reprint marking.
type Receipt struct {
	BaseModel
	Store         Warehouse        `gorm:"type:varchar(20);not null;index" json:"store"`
	Cashier       string           `gorm:"type:varchar(255);not null" json:"cashier"`
	CashierID     string           `gorm:"type:varchar(255)" json:"cashier_id"`
	Reference     string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	Lines         []ReceiptLine    `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"lines"`
	Payments      []ReceiptPayment `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"payments"`
	Total         decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"total"`
	Voided        bool             `gorm:"not null;default:false;index" json:"voided"`
	VoidedAt      *time.Time       `json:"voided_at,omitempty"`
	PrintCount    int              `gorm:"not null;default:1" json:"print_count"`
	LastPrintedAt *time.Time       `json:"last_printed_at,omitempty"`
}

// ReceiptLine is one priced line of a receipt. FinalPrice is frozen at print time.
type ReceiptLine struct {
	ID              uint            `gorm:"primaryKey" json:"-"`
	ReceiptID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position        int             `gorm:"not null" json:"position"`
	Code            string          `gorm:"type:varchar(50);not null" json:"code"`
	ItemID          *uuid.UUID      `gorm:"type:uuid" json:"item_id,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	FinalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_price"`
}

// ReceiptPayment is one tender applied to a receipt.
type ReceiptPayment struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position  int             `gorm:"not null" json:"position"`
	Method    string          `gorm:"type:varchar(50);not null" json:"method"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}
