package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type designRepo struct {
	db *gorm.DB
}

func NewDesignRepo(db *gorm.DB) DesignRepository {
	return &designRepo{db}
}

func (r *designRepo) Create(ctx context.Context, design *model.Design) error {
	return r.db.WithContext(ctx).Omit("Items").Create(design).Error
}

func (r *designRepo) Update(ctx context.Context, design *model.Design) error {
	return r.db.WithContext(ctx).Omit("Items").Save(design).Error
}

func (r *designRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Design, error) {
	var design model.Design
	if err := r.db.WithContext(ctx).First(&design, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &design, nil
}

func (r *designRepo) FindByCode(ctx context.Context, code string) (*model.Design, error) {
	var design model.Design
	if err := r.db.WithContext(ctx).First(&design, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &design, nil
}

func (r *designRepo) FindAll(ctx context.Context) ([]model.Design, error) {
	var designs []model.Design
	err := r.db.WithContext(ctx).Order("code ASC").Find(&designs).Error
	return designs, err
}
