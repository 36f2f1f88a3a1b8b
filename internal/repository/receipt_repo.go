package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type receiptRepo struct {
	db *gorm.DB
}

func NewReceiptRepo(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db}
}

func orderedChildren(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *receiptRepo) Create(ctx context.Context, receipt *model.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedChildren).
		Preload("Payments", orderedChildren).
		First(&receipt, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &receipt, nil
}

func (r *receiptRepo) FindByReference(ctx context.Context, reference string) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := r.db.WithContext(ctx).First(&receipt, "reference = ?", reference).Error; err != nil {
		return nil, translate(err)
	}
	return &receipt, nil
}

func (r *receiptRepo) FindAll(ctx context.Context, filter ReceiptFilter) ([]model.Receipt, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", orderedChildren).
		Preload("Payments", orderedChildren)

	if filter.Store != "" {
		query = query.Where("store = ?", filter.Store)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if !filter.IncludeVoided {
		query = query.Where("voided = ?", false)
	}

	var receipts []model.Receipt
	err := query.Order("created_at DESC").Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepo) MarkVoided(ctx context.Context, id uuid.UUID, at time.Time, by string) error {
	res := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"voided":     true,
			"voided_at":  at,
			"updated_by": by,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *receiptRepo) MarkReprinted(ctx context.Context, id uuid.UUID, at time.Time, by string) error {
	res := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"print_count":     gorm.Expr("print_count + 1"),
			"last_printed_at": at,
			"updated_by":      by,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete is a hard delete: the receipt must vanish from every retrieval path.
func (r *receiptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("receipt_id = ?", id).Delete(&model.ReceiptLine{}).Error; err != nil {
		return err
	}
	if err := db.Where("receipt_id = ?", id).Delete(&model.ReceiptPayment{}).Error; err != nil {
		return err
	}
	res := db.Unscoped().Delete(&model.Receipt{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
