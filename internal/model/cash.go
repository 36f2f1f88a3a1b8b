package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashEntryType classifies a cash drawer ledger row.
type CashEntryType string

const (
	CashIn      CashEntryType = "in"
	CashOut     CashEntryType = "out"
	CashOpening CashEntryType = "opening"
	CashClosing CashEntryType = "closing"
)

// IsMovement reports whether t is a manual cash movement rather than a balance.
func (t CashEntryType) IsMovement() bool {
	return t == CashIn || t == CashOut
}

// IsBalance reports whether t is an opening or closing balance.
func (t CashEntryType) IsBalance() bool {
	return t == CashOpening || t == CashClosing
}

// CashEntry is an append-only cash drawer record for one store and business day.
type CashEntry struct {
	BaseModel
	Store        Warehouse       `gorm:"type:varchar(20);not null;index:idx_cash_store_day" json:"store"`
	BusinessDate time.Time       `gorm:"type:date;not null;index:idx_cash_store_day" json:"business_date"`
	Type         CashEntryType   `gorm:"type:varchar(10);not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Remark       string          `gorm:"type:text" json:"remark"`
}

// SignedAmount is the entry's effect on the drawer: out entries subtract.
// Balances are reported separately and contribute zero.
func (e *CashEntry) SignedAmount() decimal.Decimal {
	switch e.Type {
	case CashIn:
		return e.Amount
	case CashOut:
		return e.Amount.Neg()
	default:
		return decimal.Zero
	}
}
