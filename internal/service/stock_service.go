package service

import (
	"context"
	"log/slog"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
)

type StockService interface {
	// ApplyDelta adds delta to the item's stock; a negative delta may not take it below zero.
	ApplyDelta(ctx context.Context, itemID uuid.UUID, delta int, remark string, actor Actor) (*model.Item, error)
	// SetStock overwrites the item's stock. Reserved for manual corrections.
	SetStock(ctx context.Context, itemID uuid.UUID, newStock int, remark string, actor Actor) (*model.Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*model.Item, error)
	GetMovements(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error)
}

type stockService struct {
	store  repository.Store
	events EventPublisher
	log    *slog.Logger
}

func NewStockService(store repository.Store, events EventPublisher, logger *slog.Logger) StockService {
	return &stockService{store: store, events: publisherOrNop(events), log: loggerOrDefault(logger)}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// stockChange describes one ledger mutation inside an open transaction.
type stockChange struct {
	itemID uuid.UUID
	delta  int
	reason model.MovementReason
	refID  *uuid.UUID
	note   string
	// warehouse, when set, is the only location the item may belong to.
	warehouse model.Warehouse
}

// applyStockDelta locks the item row, validates the delta against the current
// stock and records the movement. It must run inside WithTx.
// The stock held before the change is returned alongside the updated item.
func applyStockDelta(ctx context.Context, tx repository.Store, ch stockChange, actor Actor) (*model.Item, int, error) {
	item, err := tx.Items().FindByIDForUpdate(ctx, ch.itemID)
	if err != nil {
		return nil, 0, backendErr("item.lock", err, ErrItemNotFound)
	}
	if ch.warehouse != "" && item.Warehouse != ch.warehouse {
		return nil, item.Stock, &ValidationError{Field: "ItemID", Tag: "warehouse"}
	}
	oldStock := item.Stock
	if oldStock+ch.delta < 0 {
		return nil, oldStock, &InsufficientStockError{ItemID: item.ID, Stock: oldStock, Delta: ch.delta}
	}
	updated, err := writeStock(ctx, tx, item, oldStock+ch.delta, ch, actor)
	return updated, oldStock, err
}

func writeStock(ctx context.Context, tx repository.Store, item *model.Item, newStock int, ch stockChange, actor Actor) (*model.Item, error) {
	if err := tx.Items().UpdateStock(ctx, item.ID, newStock, actor.ID); err != nil {
		return nil, backendErr("item.updateStock", err, ErrItemNotFound)
	}
	movement := &model.StockMovement{
		ItemID:     item.ID,
		Delta:      newStock - item.Stock,
		StockAfter: newStock,
		Reason:     ch.reason,
		RefID:      ch.refID,
		Note:       ch.note,
	}
	movement.CreatedBy = actor.ID
	movement.UpdatedBy = actor.ID
	if err := tx.Movements().Create(ctx, movement); err != nil {
		return nil, backendErr("movement.create", err, nil)
	}
	item.Stock = newStock
	item.UpdatedBy = actor.ID
	return item, nil
}

func (s *stockService) ApplyDelta(ctx context.Context, itemID uuid.UUID, delta int, remark string, actor Actor) (*model.Item, error) {
	if delta == 0 {
		return nil, &ValidationError{Field: "delta", Tag: "ne"}
	}

	var (
		updated  *model.Item
		oldStock int
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		updated, oldStock, err = applyStockDelta(ctx, tx, stockChange{
			itemID: itemID, delta: delta, reason: model.MovementAdjustment, note: remark,
		}, actor)
		return err
	})
	if err != nil {
		s.log.Warn("stock delta rejected", slog.String("item_id", itemID.String()), slog.Int("delta", delta), slog.Any("error", err))
		return nil, err
	}

	s.log.Info("stock adjusted", slog.String("item_id", itemID.String()), slog.Int("old", oldStock), slog.Int("new", updated.Stock), actor.logAttr())
	s.publish("stock_adjusted", updated, oldStock, actor)
	return updated, nil
}

func (s *stockService) SetStock(ctx context.Context, itemID uuid.UUID, newStock int, remark string, actor Actor) (*model.Item, error) {
	if newStock < 0 {
		return nil, &InvalidStockError{ItemID: itemID, Value: newStock}
	}

	var (
		updated  *model.Item
		oldStock int
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		item, err := tx.Items().FindByIDForUpdate(ctx, itemID)
		if err != nil {
			return backendErr("item.lock", err, ErrItemNotFound)
		}
		oldStock = item.Stock
		updated, err = writeStock(ctx, tx, item, newStock, stockChange{
			itemID: itemID, reason: model.MovementCorrection, note: remark,
		}, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock corrected", slog.String("item_id", itemID.String()), slog.Int("old", oldStock), slog.Int("new", newStock), actor.logAttr())
	s.publish("stock_corrected", updated, oldStock, actor)
	return updated, nil
}

func (s *stockService) GetItem(ctx context.Context, itemID uuid.UUID) (*model.Item, error) {
	item, err := s.store.Items().FindByID(ctx, itemID)
	if err != nil {
		return nil, backendErr("item.get", err, ErrItemNotFound)
	}
	return item, nil
}

func (s *stockService) GetMovements(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error) {
	if _, err := s.store.Items().FindByID(ctx, itemID); err != nil {
		return nil, backendErr("item.get", err, ErrItemNotFound)
	}
	movements, err := s.store.Movements().FindByItem(ctx, itemID)
	if err != nil {
		return nil, backendErr("movement.list", err, nil)
	}
	return movements, nil
}

func (s *stockService) publish(action string, item *model.Item, oldStock int, actor Actor) {
	s.events.Publish(EventStockUpdate, map[string]interface{}{
		"action": action,
		"item": map[string]interface{}{
			"id":        item.ID,
			"design_id": item.DesignID,
			"warehouse": item.Warehouse,
			"color":     item.Color,
			"size":      item.Size,
			"old_stock": oldStock,
			"new_stock": item.Stock,
		},
		"user": actor.payload(),
	})
}
