package repository

import (
	"context"
	"errors"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned by every repository when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store groups the repositories and the transaction boundary.
// Repositories obtained from the Store passed to WithTx share that transaction.
type Store interface {
	Designs() DesignRepository
	Items() ItemRepository
	Movements() MovementRepository
	Orders() OrderRepository
	Receipts() ReceiptRepository
	Cash() CashRepository

	// WithTx runs fn in a single transaction; any error rolls back every write.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type DesignRepository interface {
	Create(ctx context.Context, design *model.Design) error
	Update(ctx context.Context, design *model.Design) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Design, error)
	FindByCode(ctx context.Context, code string) (*model.Design, error)
	FindAll(ctx context.Context) ([]model.Design, error)
}

type ItemRepository interface {
	CreateBatch(ctx context.Context, items []model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	// FindByIDForUpdate reads the item and locks the row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindByDesign(ctx context.Context, designID uuid.UUID) ([]model.Item, error)
	FindUnit(ctx context.Context, designID uuid.UUID, warehouse model.Warehouse, color, size string) (*model.Item, error)
	UpdateStock(ctx context.Context, id uuid.UUID, newStock int, updatedBy string) error
	// SumStockByDesign returns total stock per design id.
	SumStockByDesign(ctx context.Context, designIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type MovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]model.StockMovement, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
}

// OrderFilter narrows order listings and exports. Zero values match everything.
type OrderFilter struct {
	ItemID    *uuid.UUID
	Status    *model.OrderStatus
	Warehouse model.Warehouse
	From      *time.Time
	To        *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Update(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	// Delete retires the orders; it reports how many rows were affected.
	Delete(ctx context.Context, ids []uuid.UUID, deletedBy string) (int64, error)
}

// ReceiptFilter narrows receipt listings. From is inclusive, To is exclusive.
type ReceiptFilter struct {
	Store         model.Warehouse
	From          *time.Time
	To            *time.Time
	IncludeVoided bool
}

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *model.Receipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	FindByReference(ctx context.Context, reference string) (*model.Receipt, error)
	FindAll(ctx context.Context, filter ReceiptFilter) ([]model.Receipt, error)
	MarkVoided(ctx context.Context, id uuid.UUID, at time.Time, by string) error
	MarkReprinted(ctx context.Context, id uuid.UUID, at time.Time, by string) error
	// Delete removes the receipt with its lines and payments permanently.
	Delete(ctx context.Context, id uuid.UUID) error
}

type CashRepository interface {
	Create(ctx context.Context, entry *model.CashEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashEntry, error)
	FindByStoreAndDay(ctx context.Context, store model.Warehouse, day time.Time) ([]model.CashEntry, error)
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
}
