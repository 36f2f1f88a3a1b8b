package service

import (
	"context"
	"testing"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/pricing"

	"github.com/stretchr/testify/require"
)

func (f *fixture) sell(t *testing.T, store model.Warehouse, amount string, method string) *model.Receipt {
	t.Helper()
	receipt, err := f.receipts.Print(context.Background(), &PrintReceiptRequest{
		Store:    store,
		Lines:    []pricing.LineInput{{Code: "X", UnitPrice: dec(amount)}},
		Payments: []pricing.PaymentInput{{Method: method}},
	}, "", testActor)
	require.NoError(t, err)
	return receipt
}

func TestDailySalesExcludesVoided(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := time.Now()
	day := SalesRange{Store: model.WarehouseStoreA, From: today, To: today}

	f.sell(t, model.WarehouseStoreA, "175", "cash")
	second := f.sell(t, model.WarehouseStoreA, "30", "card")
	f.sell(t, model.WarehouseStoreB, "99", "cash")

	rows, err := f.reports.DailySales(ctx, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, today.Format(dateLayout), rows[0].Date)
	require.Equal(t, "205.00", rows[0].Total.StringFixed(2))
	require.Equal(t, 2, rows[0].Count)

	_, err = f.receipts.Void(ctx, second.ID, testActor)
	require.NoError(t, err)

	rows, err = f.reports.DailySales(ctx, day)
	require.NoError(t, err)
	require.Equal(t, "175.00", rows[0].Total.StringFixed(2))
	require.Equal(t, 1, rows[0].Count)

	all, err := f.reports.DailySales(ctx, SalesRange{From: today, To: today})
	require.NoError(t, err)
	require.Equal(t, "274.00", all[0].Total.StringFixed(2))
}

func TestPaymentMethodSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := time.Now()

	_, err := f.receipts.Print(ctx, &PrintReceiptRequest{
		Store: model.WarehouseStoreA,
		Lines: []pricing.LineInput{{Code: "X", UnitPrice: dec("205")}},
		Payments: []pricing.PaymentInput{
			{Method: "cash", Amount: dec("105")},
			{Method: "card", Amount: dec("100")},
		},
	}, "", testActor)
	require.NoError(t, err)
	f.sell(t, model.WarehouseStoreA, "20", "cash")

	rows, err := f.reports.PaymentMethodSales(ctx, SalesRange{From: today.AddDate(0, 0, -1), To: today})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "card", rows[0].Method)
	require.Equal(t, "100.00", rows[0].Total.StringFixed(2))
	require.Equal(t, "cash", rows[1].Method)
	require.Equal(t, "125.00", rows[1].Total.StringFixed(2))
	require.Equal(t, 2, rows[1].Count)
}

func TestSalesRollupsAreCachedUntilBumped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := time.Now()
	day := SalesRange{From: today, To: today}

	f.sell(t, model.WarehouseStoreA, "10", "cash")
	rows, err := f.reports.DailySales(ctx, day)
	require.NoError(t, err)
	require.Equal(t, "10.00", rows[0].Total.StringFixed(2))

	// A write that skips the service leaves the cached rollup in place.
	require.NoError(t, f.store.Receipts().Create(ctx, &model.Receipt{
		Store:     model.WarehouseStoreA,
		Cashier:   "Ana",
		Reference: "manual-1",
		Total:     *dec("5"),
	}))
	rows, err = f.reports.DailySales(ctx, day)
	require.NoError(t, err)
	require.Equal(t, "10.00", rows[0].Total.StringFixed(2))

	f.sell(t, model.WarehouseStoreA, "1", "cash")
	rows, err = f.reports.DailySales(ctx, day)
	require.NoError(t, err)
	require.Equal(t, "16.00", rows[0].Total.StringFixed(2))
}

func TestSalesRangeValidation(t *testing.T) {
	f := newFixture(t)
	today := time.Now()

	_, err := f.reports.DailySales(context.Background(), SalesRange{From: today, To: today.AddDate(0, 0, -1)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "gtefield", ve.Tag)

	_, err = f.reports.GetStockMovement(context.Background(), 0)
	require.ErrorAs(t, err, &ve)
}

func TestGetStockMovement(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, 10)
	_, err := f.stock.ApplyDelta(context.Background(), item.ID, -4, "", testActor)
	require.NoError(t, err)

	data, err := f.reports.GetStockMovement(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, data, 1)
	require.Equal(t, 10, data[0].Inbound)
	require.Equal(t, 4, data[0].Outbound)
}
