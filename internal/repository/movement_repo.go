package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return r.db.WithContext(ctx).Omit("Item").Create(movement).Error
}

func (r *movementRepo) FindByItem(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *movementRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per day
	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
