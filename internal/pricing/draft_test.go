package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDraftIsValue(t *testing.T) {
	qty := 2
	price := dec("100")
	pct := dec("10")
	amt := dec("5")

	empty := NewDraft()
	withLine := empty.WithLine(LineInput{Code: "A", Quantity: &qty, UnitPrice: &price, DiscountPercent: &pct, DiscountAmount: &amt})

	require.Empty(t, empty.Lines())
	require.Len(t, withLine.Lines(), 1)
	require.Equal(t, "175.00", withLine.Reconcile().Total.StringFixed(2))
}

func TestDraftPaymentPrefill(t *testing.T) {
	price := dec("205")
	d := NewDraft().WithLine(LineInput{Code: "A", UnitPrice: &price})

	cash := dec("100")
	d = d.WithPayment(PaymentInput{Method: "cash", Amount: &cash})
	d = d.WithPayment(PaymentInput{Method: "card"})

	payments := d.Payments()
	require.Len(t, payments, 2)
	require.Equal(t, "105.00", payments[1].Amount.StringFixed(2))
	require.Equal(t, Settled, d.Reconcile().Balance())
}

func TestDraftRoundsOnlyTheSumOfPayments(t *testing.T) {
	price := dec("0.01")
	half := dec("0.005")
	d := NewDraft().WithLine(LineInput{Code: "A", UnitPrice: &price}).
		WithPayment(PaymentInput{Method: "cash", Amount: &half}).
		WithPayment(PaymentInput{Method: "card", Amount: &half})

	rec := d.Reconcile()
	require.Equal(t, "0.01", rec.Paid.StringFixed(2))
	require.Equal(t, Settled, rec.Balance())
	require.Equal(t, "0.005", d.Payments()[0].Amount.String())
}

func TestDraftPrefillIsNotAnInvariant(t *testing.T) {
	price := dec("50")
	d := NewDraft().WithLine(LineInput{Code: "A", UnitPrice: &price}).WithPayment(PaymentInput{Method: "cash"})
	require.Equal(t, Settled, d.Reconcile().Balance())

	// Adding a line afterwards does not re-adjust the earlier payment.
	d = d.WithLine(LineInput{Code: "B", UnitPrice: &price})
	require.Equal(t, Underpaid, d.Reconcile().Balance())
}

func TestDraftRemove(t *testing.T) {
	price := dec("10")
	d := NewDraft().WithLine(LineInput{Code: "A", UnitPrice: &price}).WithLine(LineInput{Code: "B", UnitPrice: &price})
	trimmed := d.WithoutLine(0)
	require.Len(t, d.Lines(), 2)
	require.Len(t, trimmed.Lines(), 1)
	require.Equal(t, "B", trimmed.Lines()[0].Code)
	require.Len(t, trimmed.WithoutLine(5).Lines(), 1)

	d = d.WithPayment(PaymentInput{Method: "cash"})
	require.Empty(t, d.WithoutPayment(0).Payments())
}
