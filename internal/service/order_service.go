package service

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CreateOrderRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"uuid_required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
	Remark   string    `json:"remark"`
}

type EditOrderRequest struct {
	Remark *string `json:"remark" validate:"required"`
}

// TransitionRequest moves an order to Status. ShippedDate (YYYY-MM-DD) is
// required when the target is shipped and ignored otherwise.
type TransitionRequest struct {
	Status      *model.OrderStatus `json:"status" validate:"required"`
	ShippedDate string             `json:"shipped_date"`
}

type OrderService interface {
	Create(ctx context.Context, req *CreateOrderRequest, actor Actor) (*model.Order, error)
	Edit(ctx context.Context, id uuid.UUID, req *EditOrderRequest, actor Actor) (*model.Order, error)
	Transition(ctx context.Context, id uuid.UUID, req *TransitionRequest, actor Actor) (*model.Order, error)
	// Reset returns the order to pending and clears its shipped date. Stock is untouched.
	Reset(ctx context.Context, id uuid.UUID, actor Actor) (*model.Order, error)
	// Delete retires the orders without reversing the stock they took.
	Delete(ctx context.Context, ids []uuid.UUID, actor Actor) (int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)
	Export(ctx context.Context, filter repository.OrderFilter, w io.Writer) error
}

type orderService struct {
	store  repository.Store
	events EventPublisher
	log    *slog.Logger
}

func NewOrderService(store repository.Store, events EventPublisher, logger *slog.Logger) OrderService {
	return &orderService{store: store, events: publisherOrNop(events), log: loggerOrDefault(logger)}
}

func (s *orderService) Create(ctx context.Context, req *CreateOrderRequest, actor Actor) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	order := &model.Order{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		Remark:   req.Remark,
		Status:   model.OrderPending,
	}
	order.ID = uuid.New()
	order.CreatedBy = actor.ID
	order.UpdatedBy = actor.ID

	var (
		item     *model.Item
		oldStock int
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		item, oldStock, err = applyStockDelta(ctx, tx, stockChange{
			itemID: req.ItemID,
			delta:  -req.Quantity,
			reason: model.MovementOrder,
			refID:  &order.ID,
			note:   req.Remark,
		}, actor)
		if err != nil {
			return err
		}
		return backendErr("order.create", tx.Orders().Create(ctx, order), ErrItemNotFound)
	})
	if err != nil {
		s.log.Warn("order rejected", slog.String("item_id", req.ItemID.String()), slog.Int("quantity", req.Quantity), slog.Any("error", err))
		return nil, err
	}

	s.log.Info("order created", slog.String("order_id", order.ID.String()), slog.String("item_id", item.ID.String()), slog.Int("quantity", order.Quantity), actor.logAttr())
	s.publish("order_created", order, actor)
	s.events.Publish(EventStockUpdate, map[string]interface{}{
		"action": "order_created",
		"item": map[string]interface{}{
			"id":        item.ID,
			"old_stock": oldStock,
			"new_stock": item.Stock,
		},
		"user": actor.payload(),
	})
	return order, nil
}

func (s *orderService) Edit(ctx context.Context, id uuid.UUID, req *EditOrderRequest, actor Actor) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, actor, "order_edited", func(o *model.Order) (bool, error) {
		if o.Remark == *req.Remark {
			return false, nil
		}
		o.Remark = *req.Remark
		return true, nil
	})
}

func (s *orderService) Transition(ctx context.Context, id uuid.UUID, req *TransitionRequest, actor Actor) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	target := *req.Status
	if !target.Valid() {
		return nil, &ValidationError{Field: "TransitionRequest.Status", Tag: "oneof"}
	}
	var shipped *time.Time
	if target == model.OrderShipped {
		if strings.TrimSpace(req.ShippedDate) == "" {
			return nil, &ValidationError{Field: "TransitionRequest.ShippedDate", Tag: "required_if"}
		}
		d, err := time.Parse(dateLayout, strings.TrimSpace(req.ShippedDate))
		if err != nil {
			return nil, &ValidationError{Field: "TransitionRequest.ShippedDate", Tag: "datetime"}
		}
		shipped = &d
	}

	return s.mutate(ctx, id, actor, "order_transitioned", func(o *model.Order) (bool, error) {
		if !o.Status.CanTransitionTo(target) {
			s.log.Warn("illegal order transition", slog.String("order_id", o.ID.String()),
				slog.String("from", o.Status.String()), slog.String("to", target.String()))
			return false, ErrIllegalTransition
		}
		if o.Status == target && sameDate(o.ShippedDate, shipped) {
			return false, nil
		}
		o.Status = target
		o.ShippedDate = shipped
		return true, nil
	})
}

func (s *orderService) Reset(ctx context.Context, id uuid.UUID, actor Actor) (*model.Order, error) {
	return s.mutate(ctx, id, actor, "order_reset", func(o *model.Order) (bool, error) {
		if o.Status == model.OrderPending && o.ShippedDate == nil {
			return false, nil
		}
		o.Status = model.OrderPending
		o.ShippedDate = nil
		return true, nil
	})
}

// mutate loads the order, applies change and saves it when change reports a difference.
func (s *orderService) mutate(ctx context.Context, id uuid.UUID, actor Actor, action string, change func(*model.Order) (bool, error)) (*model.Order, error) {
	var (
		order   *model.Order
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindByID(ctx, id)
		if err != nil {
			return backendErr("order.get", err, ErrOrderNotFound)
		}
		if changed, err = change(order); err != nil || !changed {
			return err
		}
		order.UpdatedBy = actor.ID
		return backendErr("order.update", tx.Orders().Update(ctx, order), ErrOrderNotFound)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("order updated", slog.String("order_id", order.ID.String()), slog.String("action", action),
			slog.String("status", order.Status.String()), actor.logAttr())
		s.publish(action, order, actor)
	}
	return order, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(dateLayout) == b.Format(dateLayout)
}

func (s *orderService) Delete(ctx context.Context, ids []uuid.UUID, actor Actor) (int64, error) {
	if len(ids) == 0 {
		return 0, &ValidationError{Field: "ids", Tag: "min"}
	}

	var affected int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		affected, err = tx.Orders().Delete(ctx, ids, actor.ID)
		if err != nil {
			return backendErr("order.delete", err, nil)
		}
		if affected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("orders deleted", slog.Int64("count", affected), actor.logAttr())
	s.events.Publish(EventOrderUpdate, map[string]interface{}{
		"action": "orders_deleted",
		"ids":    ids,
		"user":   actor.payload(),
	})
	return affected, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, backendErr("order.get", err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	orders, err := s.store.Orders().FindAll(ctx, filter)
	if err != nil {
		return nil, backendErr("order.list", err, nil)
	}
	return orders, nil
}

var orderExportHeader = []string{
	"id", "item_id", "design_code", "warehouse", "color", "size",
	"quantity", "status", "shipped_date", "remark", "created_at",
}

func (s *orderService) Export(ctx context.Context, filter repository.OrderFilter, w io.Writer) error {
	orders, err := s.List(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(orderExportHeader); err != nil {
		return err
	}
	for _, o := range orders {
		var designCode, warehouse, color, size, shipped string
		if o.Item != nil {
			warehouse, color, size = string(o.Item.Warehouse), o.Item.Color, o.Item.Size
			if o.Item.Design != nil {
				designCode = o.Item.Design.Code
			}
		}
		if o.ShippedDate != nil {
			shipped = o.ShippedDate.Format(dateLayout)
		}
		row := []string{
			o.ID.String(), o.ItemID.String(), designCode, warehouse, color, size,
			strconv.Itoa(o.Quantity), o.Status.String(), shipped, o.Remark,
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *orderService) publish(action string, o *model.Order, actor Actor) {
	var shipped interface{}
	if o.ShippedDate != nil {
		shipped = o.ShippedDate.Format(dateLayout)
	}
	s.events.Publish(EventOrderUpdate, map[string]interface{}{
		"action": action,
		"order": map[string]interface{}{
			"id":           o.ID,
			"item_id":      o.ItemID,
			"quantity":     o.Quantity,
			"status":       o.Status.String(),
			"shipped_date": shipped,
			"remark":       o.Remark,
		},
		"user": actor.payload(),
	})
}
