package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cashRepo struct {
	db *gorm.DB
}

func NewCashRepo(db *gorm.DB) CashRepository {
	return &cashRepo{db}
}

func (r *cashRepo) Create(ctx context.Context, entry *model.CashEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *cashRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashEntry, error) {
	var entry model.CashEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (r *cashRepo) FindByStoreAndDay(ctx context.Context, store model.Warehouse, day time.Time) ([]model.CashEntry, error) {
	var entries []model.CashEntry
	err := r.db.WithContext(ctx).
		Where("store = ? AND business_date = ?", store, day.Format("2006-01-02")).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *cashRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.CashEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("NOW()"),
			"deleted_by": deletedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
