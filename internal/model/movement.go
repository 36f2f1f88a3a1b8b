package model

import "github.com/google/uuid"

// MovementReason explains why an item's stock changed.
type MovementReason string

const (
	MovementInitial    MovementReason = "initial"
	MovementAdjustment MovementReason = "adjustment"
	MovementCorrection MovementReason = "correction"
	MovementOrder      MovementReason = "order"
	MovementSale       MovementReason = "sale"
)

// StockMovement is the audit row written for every committed stock mutation.
type StockMovement struct {
	BaseModel
	ItemID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id"`
	Item       *Item          `json:"item,omitempty"`
	Delta      int            `gorm:"not null" json:"delta"`
	StockAfter int            `gorm:"not null" json:"stock_after"`
	Reason     MovementReason `gorm:"type:varchar(20);not null" json:"reason"`
	RefID      *uuid.UUID     `gorm:"type:uuid" json:"ref_id,omitempty"`
	Note       string         `json:"note"`
}
