package model

// Warehouse is one of the fixed stock locations of the business.
type Warehouse string

const (
	WarehouseStoreA     Warehouse = "store_a"
	WarehouseStoreB     Warehouse = "store_b"
	WarehouseLiveStream Warehouse = "live_stream"
)

// Warehouses lists every valid location in display order.
var Warehouses = []Warehouse{WarehouseStoreA, WarehouseStoreB, WarehouseLiveStream}

// Valid reports whether w is one of the known locations.
func (w Warehouse) Valid() bool {
	for _, known := range Warehouses {
		if w == known {
			return true
		}
	}
	return false
}

// IsStore reports whether w is a physical store (receipts and cash drawers live there).
func (w Warehouse) IsStore() bool {
	return w == WarehouseStoreA || w == WarehouseStoreB
}
