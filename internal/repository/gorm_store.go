package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore builds the postgres-backed Store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Designs() DesignRepository     { return NewDesignRepo(s.db) }
func (s *gormStore) Items() ItemRepository         { return NewItemRepo(s.db) }
func (s *gormStore) Movements() MovementRepository { return NewMovementRepo(s.db) }
func (s *gormStore) Orders() OrderRepository       { return NewOrderRepo(s.db) }
func (s *gormStore) Receipts() ReceiptRepository   { return NewReceiptRepo(s.db) }
func (s *gormStore) Cash() CashRepository          { return NewCashRepo(s.db) }

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps gorm sentinel errors onto repository ones.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
