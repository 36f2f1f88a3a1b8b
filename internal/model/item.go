package model

import "github.com/google/uuid"

// Item is one stock-keeping unit: (Design, Warehouse, Color, Size).
// Stock is mutated only through the stock ledger.
type Item struct {
	BaseModel
	DesignID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_unit" json:"design_id"`
	Design    *Design   `json:"design,omitempty"`
	Warehouse Warehouse `gorm:"type:varchar(20);not null;uniqueIndex:idx_item_unit" json:"warehouse"`
	Color     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_item_unit" json:"color"`
	Size      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_item_unit" json:"size"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
}
