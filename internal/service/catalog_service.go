package service

import (
	"context"
	"errors"
	"log/slog"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
)

// CreateItemsRequest stocks a design into every warehouse × color × size combination.
type CreateItemsRequest struct {
	DesignID     uuid.UUID         `json:"design_id" validate:"uuid_required"`
	Warehouses   []model.Warehouse `json:"warehouses" validate:"required,min=1"`
	Colors       []string          `json:"colors" validate:"required,min=1,dive,required"`
	Sizes        []string          `json:"sizes" validate:"required,min=1,dive,required"`
	InitialStock int               `json:"initial_stock" validate:"gte=0"`
}

type CatalogService interface {
	CreateDesign(ctx context.Context, req *model.Design, actor Actor) error
	UpdateDesign(ctx context.Context, id uuid.UUID, req *model.Design, actor Actor) (*model.Design, error)
	GetDesign(ctx context.Context, id uuid.UUID) (*model.Design, error)
	ListDesigns(ctx context.Context) ([]model.Design, error)
	CreateItems(ctx context.Context, req *CreateItemsRequest, actor Actor) ([]model.Item, error)
}

type catalogService struct {
	store  repository.Store
	events EventPublisher
	log    *slog.Logger
}

func NewCatalogService(store repository.Store, events EventPublisher, logger *slog.Logger) CatalogService {
	return &catalogService{store: store, events: publisherOrNop(events), log: loggerOrDefault(logger)}
}

func (s *catalogService) CreateDesign(ctx context.Context, req *model.Design, actor Actor) error {
	if err := validate(req); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.ensureCodeFree(ctx, tx, req.Code, uuid.Nil); err != nil {
			return err
		}
		req.ID = uuid.Nil
		req.Items = nil
		req.CreatedBy = actor.ID
		req.UpdatedBy = actor.ID
		return backendErr("design.create", tx.Designs().Create(ctx, req), nil)
	})
	if err != nil {
		return err
	}

	s.log.Info("design created", slog.String("design_id", req.ID.String()), slog.String("code", req.Code), actor.logAttr())
	return nil
}

func (s *catalogService) UpdateDesign(ctx context.Context, id uuid.UUID, req *model.Design, actor Actor) (*model.Design, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated *model.Design
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Designs().FindByID(ctx, id)
		if err != nil {
			return backendErr("design.get", err, ErrDesignNotFound)
		}
		if err := s.ensureCodeFree(ctx, tx, req.Code, id); err != nil {
			return err
		}

		existing.Code = req.Code
		existing.Name = req.Name
		existing.Types = req.Types
		existing.PurchasePrice = req.PurchasePrice
		existing.SalePrice = req.SalePrice
		existing.Fabric = req.Fabric
		existing.Colors = req.Colors
		existing.Sizes = req.Sizes
		existing.Hotness = req.Hotness
		existing.Remark = req.Remark
		existing.UpdatedBy = actor.ID

		if err := tx.Designs().Update(ctx, existing); err != nil {
			return backendErr("design.update", err, ErrDesignNotFound)
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) ensureCodeFree(ctx context.Context, tx repository.Store, code string, self uuid.UUID) error {
	existing, err := tx.Designs().FindByCode(ctx, code)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return backendErr("design.findByCode", err, nil)
	case existing.ID != self:
		return &ValidationError{Field: "Design.Code", Tag: "unique"}
	}
	return nil
}

func (s *catalogService) GetDesign(ctx context.Context, id uuid.UUID) (*model.Design, error) {
	design, err := s.store.Designs().FindByID(ctx, id)
	if err != nil {
		return nil, backendErr("design.get", err, ErrDesignNotFound)
	}
	items, err := s.store.Items().FindByDesign(ctx, id)
	if err != nil {
		return nil, backendErr("item.listByDesign", err, nil)
	}
	design.Items = items
	design.Stock = 0
	for _, it := range items {
		design.Stock += it.Stock
	}
	return design, nil
}

func (s *catalogService) ListDesigns(ctx context.Context) ([]model.Design, error) {
	designs, err := s.store.Designs().FindAll(ctx)
	if err != nil {
		return nil, backendErr("design.list", err, nil)
	}
	ids := make([]uuid.UUID, len(designs))
	for i := range designs {
		ids[i] = designs[i].ID
	}
	sums, err := s.store.Items().SumStockByDesign(ctx, ids)
	if err != nil {
		return nil, backendErr("item.sumStock", err, nil)
	}
	for i := range designs {
		designs[i].Stock = sums[designs[i].ID]
	}
	return designs, nil
}

func (s *catalogService) CreateItems(ctx context.Context, req *CreateItemsRequest, actor Actor) ([]model.Item, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	for _, w := range req.Warehouses {
		if !w.Valid() {
			return nil, &ValidationError{Field: "CreateItemsRequest.Warehouses", Tag: "oneof"}
		}
	}

	var created []model.Item
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		design, err := tx.Designs().FindByID(ctx, req.DesignID)
		if err != nil {
			return backendErr("design.get", err, ErrDesignNotFound)
		}
		for _, c := range req.Colors {
			if !design.HasColor(c) {
				return &ValidationError{Field: "CreateItemsRequest.Colors", Tag: "design_color"}
			}
		}
		for _, sz := range req.Sizes {
			if !design.HasSize(sz) {
				return &ValidationError{Field: "CreateItemsRequest.Sizes", Tag: "design_size"}
			}
		}

		batch, err := s.fanOut(ctx, tx, req, actor)
		if err != nil {
			return err
		}
		if err := tx.Items().CreateBatch(ctx, batch); err != nil {
			return backendErr("item.createBatch", err, ErrDesignNotFound)
		}
		for i := range batch {
			if batch[i].Stock == 0 {
				continue
			}
			movement := &model.StockMovement{
				ItemID:     batch[i].ID,
				Delta:      batch[i].Stock,
				StockAfter: batch[i].Stock,
				Reason:     model.MovementInitial,
			}
			movement.CreatedBy = actor.ID
			movement.UpdatedBy = actor.ID
			if err := tx.Movements().Create(ctx, movement); err != nil {
				return backendErr("movement.create", err, nil)
			}
		}
		created = batch
		return nil
	})
	if err != nil {
		s.log.Warn("item fan-out rejected", slog.String("design_id", req.DesignID.String()), slog.Any("error", err))
		return nil, err
	}

	s.log.Info("items created", slog.String("design_id", req.DesignID.String()), slog.Int("count", len(created)), actor.logAttr())
	s.events.Publish(EventStockUpdate, map[string]interface{}{
		"action":    "items_created",
		"design_id": req.DesignID,
		"count":     len(created),
		"user":      actor.payload(),
	})
	return created, nil
}

// fanOut builds one Item per combination, rejecting repeats within the request
// and units that already exist.
func (s *catalogService) fanOut(ctx context.Context, tx repository.Store, req *CreateItemsRequest, actor Actor) ([]model.Item, error) {
	seen := make(map[[3]string]bool)
	var batch []model.Item
	for _, w := range req.Warehouses {
		for _, c := range req.Colors {
			for _, sz := range req.Sizes {
				key := [3]string{string(w), c, sz}
				if seen[key] {
					return nil, &ValidationError{Field: "CreateItemsRequest", Tag: "unique"}
				}
				seen[key] = true

				_, err := tx.Items().FindUnit(ctx, req.DesignID, w, c, sz)
				if err == nil {
					return nil, &ValidationError{Field: "CreateItemsRequest", Tag: "unique"}
				}
				if !errors.Is(err, repository.ErrNotFound) {
					return nil, backendErr("item.findUnit", err, nil)
				}

				item := model.Item{
					DesignID:  req.DesignID,
					Warehouse: w,
					Color:     c,
					Size:      sz,
					Stock:     req.InitialStock,
				}
				item.CreatedBy = actor.ID
				item.UpdatedBy = actor.ID
				batch = append(batch, item)
			}
		}
	}
	return batch, nil
}
