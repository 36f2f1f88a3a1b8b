package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, s *Store, stock int) model.Item {
	t.Helper()
	ctx := context.Background()
	d := &model.Design{Code: "D-1", Name: "Shirt", SalePrice: decimal.NewFromInt(100)}
	require.NoError(t, s.Designs().Create(ctx, d))
	items := []model.Item{{DesignID: d.ID, Warehouse: model.WarehouseStoreA, Color: "black", Size: "M", Stock: stock}}
	require.NoError(t, s.Items().CreateBatch(ctx, items))
	return items[0]
}

func TestWithTxRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	item := seedItem(t, s, 5)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Items().UpdateStock(ctx, item.ID, 1, "op"))
		require.NoError(t, tx.Movements().Create(ctx, &model.StockMovement{ItemID: item.ID, Delta: -4, StockAfter: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Items().FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.Stock)
	movements, err := s.Movements().FindByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, movements)

	require.NoError(t, s.WithTx(ctx, func(tx repository.Store) error {
		return tx.Items().UpdateStock(ctx, item.ID, 2, "op")
	}))
	got, err = s.Items().FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Stock)
}

func TestWithTxRollsBackOnCancelledContext(t *testing.T) {
	s := New()
	item := seedItem(t, s, 5)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithTx(ctx, func(tx repository.Store) error {
		cancel()
		return tx.Items().UpdateStock(ctx, item.ID, 2, "op")
	})
	require.ErrorIs(t, err, context.Canceled)

	got, err := s.Items().FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.Stock)
}

func TestConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	item := seedItem(t, s, 5)

	require.ErrorIs(t, s.Designs().Create(ctx, &model.Design{Code: "D-1"}), ErrDuplicate)
	require.ErrorIs(t, s.Items().CreateBatch(ctx, []model.Item{{
		DesignID: item.DesignID, Warehouse: model.WarehouseStoreA, Color: "black", Size: "M",
	}}), ErrDuplicate)
	require.Error(t, s.Items().UpdateStock(ctx, item.ID, -1, "op"))

	_, err := s.Items().FindByID(ctx, model.Item{}.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReceiptsAreCopied(t *testing.T) {
	clock := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	r := &model.Receipt{
		Store:     model.WarehouseStoreA,
		Reference: "R-1",
		Total:     decimal.NewFromInt(30),
		Lines:     []model.ReceiptLine{{Position: 1, Code: "X", Quantity: 1, FinalPrice: decimal.NewFromInt(30)}},
	}
	require.NoError(t, s.Receipts().Create(ctx, r))
	r.Lines[0].Code = "changed"

	got, err := s.Receipts().FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, "X", got.Lines[0].Code)
	require.Equal(t, clock, got.CreatedAt)

	require.ErrorIs(t, s.Receipts().Create(ctx, &model.Receipt{Reference: "R-1"}), ErrDuplicate)

	clock = clock.Add(time.Hour)
	require.NoError(t, s.Receipts().MarkReprinted(ctx, r.ID, clock, "op"))
	require.NoError(t, s.Receipts().MarkVoided(ctx, r.ID, clock, "op"))
	got, err = s.Receipts().FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.PrintCount)
	require.True(t, got.Voided)

	from := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	listed, err := s.Receipts().FindAll(ctx, repository.ReceiptFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Empty(t, listed)
	listed, err = s.Receipts().FindAll(ctx, repository.ReceiptFilter{From: &from, To: &to, IncludeVoided: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed, err = s.Receipts().FindAll(ctx, repository.ReceiptFilter{From: &to, IncludeVoided: true})
	require.NoError(t, err)
	require.Empty(t, listed)
}
