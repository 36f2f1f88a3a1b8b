package model

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an adjustment order.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderShipped
	OrderCompleted
	OrderOutOfStock
	OrderDamaged
)

var orderStatusNames = [...]string{
	OrderPending:    "pending",
	OrderShipped:    "shipped",
	OrderCompleted:  "completed",
	OrderOutOfStock: "out_of_stock",
	OrderDamaged:    "damaged",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s >= OrderPending && s <= OrderDamaged
}

func (s OrderStatus) String() string {
	if !s.Valid() {
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
	return orderStatusNames[s]
}

// CanTransitionTo reports whether target is reachable from s by a forward
// transition. Reset is not a transition and is always allowed.
// Re-applying the current state is accepted so repeated clicks are harmless.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return target != OrderPending
	}
	switch s {
	case OrderPending:
		return target == OrderShipped || target == OrderCompleted ||
			target == OrderOutOfStock || target == OrderDamaged
	case OrderShipped:
		return target == OrderCompleted || target == OrderOutOfStock || target == OrderDamaged
	default:
		return false
	}
}

// ParseOrderStatus accepts both the names and the legacy numeric codes ("0".."4").
func ParseOrderStatus(v string) (OrderStatus, error) {
	if n, err := strconv.Atoi(v); err == nil {
		s := OrderStatus(n)
		if !s.Valid() {
			return 0, fmt.Errorf("unknown order status %q", v)
		}
		return s, nil
	}
	for i, name := range orderStatusNames {
		if name == v {
			return OrderStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", v)
}

// MarshalText renders the status name in JSON payloads.
func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown order status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name or numeric code.
func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalJSON accepts a status name or a numeric code, quoted or not.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	return s.UnmarshalText(bytes.Trim(data, `"`))
}

// Order is a stock movement record tied to one Item: a store-internal
// adjustment or a customer order. Stock is taken when the order is created.
type Order struct {
	BaseModel
	ItemID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"item_id"`
	Item        *Item       `json:"item,omitempty"`
	Quantity    int         `gorm:"not null;check:quantity > 0" json:"quantity"`
	Remark      string      `gorm:"type:text" json:"remark"`
	Status      OrderStatus `gorm:"type:smallint;not null;default:0;index" json:"status"`
	ShippedDate *time.Time  `gorm:"type:date" json:"shipped_date"`
}
