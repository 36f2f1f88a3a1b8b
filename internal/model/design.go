package model

import "github.com/shopspring/decimal"

// Design is a catalog product ("style"). Read-only to the transaction engine.
type Design struct {
	BaseModel
	Code          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Name          string          `gorm:"type:varchar(255)" json:"name"`
	Types         []string        `gorm:"serializer:json" json:"types"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price" validate:"dec_gte0"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price" validate:"dec_gte0"`
	Fabric        string          `gorm:"type:varchar(255)" json:"fabric"`
	Colors        []string        `gorm:"serializer:json" json:"colors" validate:"required,min=1,dive,required"`
	Sizes         []string        `gorm:"serializer:json" json:"sizes" validate:"required,min=1,dive,required"`
	Hotness       int             `gorm:"default:0" json:"hotness"`
	Remark        string          `gorm:"type:text" json:"remark"`

	// Stock is derived from the design's items on read.
	Stock int `gorm:"-" json:"stock"`

	Items []Item `json:"items,omitempty" validate:"-"`
}

// HasColor reports whether color is one of the design's available colors.
func (d *Design) HasColor(color string) bool {
	return contains(d.Colors, color)
}

// HasSize reports whether size is one of the design's available sizes.
func (d *Design) HasSize(size string) bool {
	return contains(d.Sizes, size)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
