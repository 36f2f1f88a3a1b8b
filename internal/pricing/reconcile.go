package pricing

import "github.com/shopspring/decimal"

// Payment is one tender entry.
type Payment struct {
	Method string
	Amount decimal.Decimal
}

// PaymentInput is a tender as submitted by a client; a nil Amount asks for
// the outstanding balance to be suggested.
type PaymentInput struct {
	Method string           `json:"method" validate:"required"`
	Amount *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,dec_2dp"`
}

// Balance classifies a reconciliation.
type Balance int

const (
	Settled Balance = iota
	Underpaid
	Overpaid
)

func (b Balance) String() string {
	switch b {
	case Underpaid:
		return "underpaid"
	case Overpaid:
		return "overpaid"
	default:
		return "settled"
	}
}

// Reconciliation is the paid/owed position of a cart.
type Reconciliation struct {
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Reconcile sums the final prices of lines and the amounts of payments.
// The result does not depend on line or payment order.
func Reconcile(lines []Line, payments []Payment) Reconciliation {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.FinalPrice())
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	total = Round2(total)
	paid = Round2(paid)
	return Reconciliation{Total: total, Paid: paid, Remaining: total.Sub(paid)}
}

// Balance compares remaining against zero at two-decimal precision, without
// any tolerance: 0.01 short is underpaid.
func (r Reconciliation) Balance() Balance {
	switch r.Remaining.StringFixed(2) {
	case "0.00", "-0.00":
		return Settled
	}
	if r.Remaining.IsPositive() {
		return Underpaid
	}
	return Overpaid
}

// Printable reports whether a receipt with this reconciliation may be committed.
func (r Reconciliation) Printable() bool {
	return r.Balance() == Settled
}
