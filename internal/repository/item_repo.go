package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) CreateBatch(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Design").Create(&items).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).Preload("Design").First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindByIDForUpdate must run inside WithTx for the lock to mean anything.
func (r *itemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *itemRepo) FindByDesign(ctx context.Context, designID uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("design_id = ?", designID).
		Order("warehouse ASC, color ASC, size ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) FindUnit(ctx context.Context, designID uuid.UUID, warehouse model.Warehouse, color, size string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("design_id = ? AND warehouse = ? AND color = ? AND size = ?", designID, warehouse, color, size).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// UpdateStock writes the value computed under the row lock taken by FindByIDForUpdate.
func (r *itemRepo) UpdateStock(ctx context.Context, id uuid.UUID, newStock int, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepo) SumStockByDesign(ctx context.Context, designIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	sums := make(map[uuid.UUID]int, len(designIDs))
	if len(designIDs) == 0 {
		return sums, nil
	}

	rows, err := r.db.WithContext(ctx).Model(&model.Item{}).
		Select("design_id, COALESCE(SUM(stock), 0)").
		Where("design_id IN ?", designIDs).
		Group("design_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		sums[id] = total
	}
	return sums, rows.Err()
}
