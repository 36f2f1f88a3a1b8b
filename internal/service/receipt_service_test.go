package service

import (
	"context"
	"testing"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/pricing"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// cart is the 175.00 + 30.00 example: 100 x 2 less 10% less 5, plus a plain 30.
func cart(itemID *uuid.UUID) []pricing.LineInput {
	return []pricing.LineInput{
		{Code: "D-1", ItemID: itemID, Quantity: intp(2), UnitPrice: dec("100"), DiscountPercent: dec("10"), DiscountAmount: dec("5")},
		{Code: "ALT", UnitPrice: dec("30")},
	}
}

func TestPrintSettledReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, 5)

	receipt, err := f.receipts.Print(ctx, &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: cart(&item.ID),
		Payments: []pricing.PaymentInput{
			{Method: "cash", Amount: dec("105")},
			{Method: "card", Amount: dec("100.00")},
		},
	}, "", testActor)
	require.NoError(t, err)
	require.Equal(t, "205.00", receipt.Total.StringFixed(2))
	require.Equal(t, "Ana", receipt.Cashier)
	require.Equal(t, 1, receipt.PrintCount)
	require.Len(t, receipt.Lines, 2)
	require.Equal(t, "175.00", receipt.Lines[0].FinalPrice.StringFixed(2))
	require.Equal(t, 1, receipt.Lines[1].Quantity, "missing quantity defaults to 1")
	require.Contains(t, receipt.Reference, "RSTOREA-")
	require.Equal(t, 3, f.stockOf(t, item))

	got, err := f.receipts.Get(ctx, receipt.ID)
	require.NoError(t, err)
	require.Equal(t, receipt.Reference, got.Reference)
	require.Equal(t, "cash", got.Payments[0].Method)
	require.Contains(t, f.events.actions(EventReceiptUpdate), "receipt_printed")
}

func TestPrintBlocksOnMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, 5)

	_, err := f.receipts.Print(ctx, &PrintReceiptRequest{
		Store:    model.WarehouseStoreA,
		Lines:    cart(&item.ID),
		Payments: []pricing.PaymentInput{{Method: "cash", Amount: dec("204.99")}},
	}, "", testActor)
	var pme *PaymentMismatchError
	require.ErrorAs(t, err, &pme)
	require.Equal(t, "underpaid", pme.Kind)
	require.Equal(t, "0.01", pme.Remaining.StringFixed(2))

	_, err = f.receipts.Print(ctx, &PrintReceiptRequest{
		Store:    model.WarehouseStoreA,
		Lines:    cart(nil),
		Payments: []pricing.PaymentInput{{Method: "cash", Amount: dec("210")}},
	}, "", testActor)
	require.ErrorAs(t, err, &pme)
	require.Equal(t, "overpaid", pme.Kind)
	require.Equal(t, "-5.00", pme.Remaining.StringFixed(2))

	require.Equal(t, 5, f.stockOf(t, item))
	receipts, err := f.receipts.List(ctx, repository.ReceiptFilter{IncludeVoided: true})
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestPrintPrefillsOpenPayment(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.receipts.Print(context.Background(), &PrintReceiptRequest{
		Store:    model.WarehouseStoreB,
		Lines:    cart(nil),
		Payments: []pricing.PaymentInput{{Method: "card", Amount: dec("5")}, {Method: "cash"}},
	}, "", testActor)
	require.NoError(t, err)
	require.Equal(t, "200.00", receipt.Payments[1].Amount.StringFixed(2))
}

func TestPrintEmptyCartWithoutPayments(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.receipts.Print(context.Background(), &PrintReceiptRequest{Store: model.WarehouseStoreA}, "", testActor)
	require.NoError(t, err)
	require.True(t, receipt.Total.IsZero())
}

func TestPrintValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ve *ValidationError

	_, err := f.receipts.Print(ctx, &PrintReceiptRequest{Store: model.WarehouseLiveStream}, "", testActor)
	require.ErrorAs(t, err, &ve)

	_, err = f.receipts.Print(ctx, &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: []pricing.LineInput{{UnitPrice: dec("10")}},
	}, "", testActor)
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "required", ve.Tag)

	_, err = f.receipts.Print(ctx, &PrintReceiptRequest{
		Store:    model.WarehouseStoreA,
		Lines:    []pricing.LineInput{{Code: "D-1", UnitPrice: dec("10")}},
		Payments: []pricing.PaymentInput{{Amount: dec("10")}},
	}, "", testActor)
	require.ErrorAs(t, err, &ve)

	_, err = f.receipts.Print(ctx, &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: []pricing.LineInput{{Code: "D-1", Quantity: intp(-1), UnitPrice: dec("10")}},
	}, "", testActor)
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "gte", ve.Tag)
}

func TestPrintRejectsSubCentAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ve *ValidationError

	req := &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: []pricing.LineInput{{Code: "X", UnitPrice: dec("0.01")}},
		Payments: []pricing.PaymentInput{
			{Method: "cash", Amount: dec("0.005")},
			{Method: "card", Amount: dec("0.005")},
		},
	}
	_, err := f.receipts.Preview(ctx, req)
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "dec_2dp", ve.Tag)
	_, err = f.receipts.Print(ctx, req, "", testActor)
	require.ErrorAs(t, err, &ve)

	_, err = f.receipts.Print(ctx, &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: []pricing.LineInput{{Code: "X", UnitPrice: dec("9.999")}},
	}, "", testActor)
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "dec_2dp", ve.Tag)

	receipts, err := f.receipts.List(ctx, repository.ReceiptFilter{IncludeVoided: true})
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestPrintInsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plenty := f.item(t, 10)
	scarce, err := f.catalog.CreateItems(ctx, &CreateItemsRequest{
		DesignID:   plenty.DesignID,
		Warehouses: []model.Warehouse{model.WarehouseStoreA},
		Colors:     []string{"white"},
		Sizes:      []string{"M"},
	}, testActor)
	require.NoError(t, err)

	req := &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: []pricing.LineInput{
			{Code: "D-1", ItemID: &plenty.ID, UnitPrice: dec("10")},
			{Code: "D-1", ItemID: &scarce[0].ID, UnitPrice: dec("10")},
		},
		Payments: []pricing.PaymentInput{{Method: "cash"}},
	}
	_, err = f.receipts.Print(ctx, req, "key-1", testActor)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Equal(t, 10, f.stockOf(t, plenty))

	// The failed print released its key, so the retry goes through once restocked.
	_, err = f.stock.ApplyDelta(ctx, scarce[0].ID, 1, "", testActor)
	require.NoError(t, err)
	_, err = f.receipts.Print(ctx, req, "key-1", testActor)
	require.NoError(t, err)
	require.Equal(t, 9, f.stockOf(t, plenty))
	require.Equal(t, 0, f.stockOf(t, &scarce[0]))
}

func TestPrintRejectsReusedReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, 5)
	req := &PrintReceiptRequest{
		Store:     model.WarehouseStoreA,
		Reference: "R-1",
		Lines:     []pricing.LineInput{{Code: "D-1", ItemID: &item.ID, UnitPrice: dec("10")}},
		Payments:  []pricing.PaymentInput{{Method: "cash"}},
	}

	_, err := f.receipts.Print(ctx, req, "", testActor)
	require.NoError(t, err)
	_, err = f.receipts.Print(ctx, req, "", testActor)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "PrintReceiptRequest.Reference", ve.Field)
	require.Equal(t, "unique", ve.Tag)
	require.Equal(t, 4, f.stockOf(t, item))

	receipts, err := f.receipts.List(ctx, repository.ReceiptFilter{})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
}

func TestPrintRejectsItemFromAnotherStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, 5)

	_, err := f.receipts.Print(ctx, &PrintReceiptRequest{
		Store:    model.WarehouseStoreB,
		Lines:    []pricing.LineInput{{Code: "D-1", ItemID: &item.ID, UnitPrice: dec("10")}},
		Payments: []pricing.PaymentInput{{Method: "cash"}},
	}, "", testActor)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "warehouse", ve.Tag)
	require.Equal(t, 5, f.stockOf(t, item))
}

func TestPrintIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &PrintReceiptRequest{
		Store:    model.WarehouseStoreA,
		Lines:    cart(nil),
		Payments: []pricing.PaymentInput{{Method: "cash"}},
	}

	_, err := f.receipts.Print(ctx, req, "click-1", testActor)
	require.NoError(t, err)
	_, err = f.receipts.Print(ctx, req, "click-1", testActor)
	require.ErrorIs(t, err, ErrDuplicateRequest)
	_, err = f.receipts.Print(ctx, req, "click-2", testActor)
	require.NoError(t, err)

	receipts, err := f.receipts.List(ctx, repository.ReceiptFilter{})
	require.NoError(t, err)
	require.Len(t, receipts, 2)
}

func TestPrintBackendUnavailable(t *testing.T) {
	f := newFixture(t)
	f.redis.Close()

	_, err := f.receipts.Print(context.Background(), &PrintReceiptRequest{Store: model.WarehouseStoreA}, "k", testActor)
	var bue *BackendUnavailableError
	require.ErrorAs(t, err, &bue)
}

func TestVoidReprintDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, 5)
	receipt, err := f.receipts.Print(ctx, &PrintReceiptRequest{
		Store:    model.WarehouseStoreA,
		Lines:    cart(&item.ID),
		Payments: []pricing.PaymentInput{{Method: "cash"}},
	}, "", testActor)
	require.NoError(t, err)

	reprinted, err := f.receipts.Reprint(ctx, receipt.ID, testActor)
	require.NoError(t, err)
	require.Equal(t, 2, reprinted.PrintCount)
	require.Equal(t, "205.00", reprinted.Total.StringFixed(2))

	voided, err := f.receipts.Void(ctx, receipt.ID, testActor)
	require.NoError(t, err)
	require.True(t, voided.Voided)
	require.NotNil(t, voided.VoidedAt)

	got, err := f.receipts.Get(ctx, receipt.ID)
	require.NoError(t, err)
	require.True(t, got.Voided)
	require.Equal(t, "205.00", got.Total.StringFixed(2))
	require.Len(t, got.Lines, 2)
	require.Len(t, got.Payments, 1)
	require.Equal(t, 3, f.stockOf(t, item), "void does not restock")

	// Voiding twice is a no-op.
	_, err = f.receipts.Void(ctx, receipt.ID, testActor)
	require.NoError(t, err)
	require.Equal(t, 1, countAction(f.events.actions(EventReceiptUpdate), "receipt_voided"))

	_, err = f.receipts.Reprint(ctx, receipt.ID, testActor)
	require.ErrorIs(t, err, ErrReceiptVoided)

	listed, err := f.receipts.List(ctx, repository.ReceiptFilter{})
	require.NoError(t, err)
	require.Empty(t, listed)
	listed, err = f.receipts.List(ctx, repository.ReceiptFilter{IncludeVoided: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, f.receipts.Delete(ctx, receipt.ID, testActor))
	_, err = f.receipts.Get(ctx, receipt.ID)
	require.ErrorIs(t, err, ErrReceiptNotFound)
	listed, err = f.receipts.List(ctx, repository.ReceiptFilter{IncludeVoided: true})
	require.NoError(t, err)
	require.Empty(t, listed)
	require.ErrorIs(t, f.receipts.Delete(ctx, receipt.ID, testActor), ErrReceiptNotFound)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)

	preview, err := f.receipts.Preview(context.Background(), &PrintReceiptRequest{
		Store:    model.WarehouseStoreA,
		Lines:    cart(nil),
		Payments: []pricing.PaymentInput{{Method: "cash", Amount: dec("200")}},
	})
	require.NoError(t, err)
	require.Equal(t, "underpaid", preview.Balance)
	require.False(t, preview.Printable)
	require.Equal(t, "5.00", preview.Reconciliation.Remaining.StringFixed(2))
	require.Equal(t, "175.00", preview.Lines[0].FinalPrice.StringFixed(2))
}

func TestNewReference(t *testing.T) {
	id := uuid.MustParse("0a1b2c3d-0000-4000-8000-000000000000")
	at := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	require.Equal(t, "RSTOREB-20240309-0A1B2C3D", newReference(model.WarehouseStoreB, at, id))
}

func countAction(actions []string, want string) int {
	n := 0
	for _, a := range actions {
		if a == want {
			n++
		}
	}
	return n
}
