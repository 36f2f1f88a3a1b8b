package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("Item").Create(order).Error
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("Item").Save(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Preload("Item.Design").First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Preload("Item.Design")

	if filter.ItemID != nil {
		query = query.Where("orders.item_id = ?", *filter.ItemID)
	}
	if filter.Status != nil {
		query = query.Where("orders.status = ?", *filter.Status)
	}
	if filter.Warehouse != "" {
		query = query.Joins("JOIN items ON items.id = orders.item_id").
			Where("items.warehouse = ?", filter.Warehouse)
	}
	if filter.From != nil {
		query = query.Where("orders.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("orders.created_at < ?", *filter.To)
	}

	var orders []model.Order
	err := query.Order("orders.created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Delete(ctx context.Context, ids []uuid.UUID, deletedBy string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("NOW()"),
			"deleted_by": deletedBy,
		})
	return res.RowsAffected, res.Error
}
