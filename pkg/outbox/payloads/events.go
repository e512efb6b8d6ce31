package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// OrderCreatedEvent signals a new POS order was opened.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID  `json:"orderId"`
	OrderRef    string     `json:"orderRef"`
	BranchID    uuid.UUID  `json:"branchId"`
	TableID     *uuid.UUID `json:"tableId,omitempty"`
	TableNumber string     `json:"tableNumber,omitempty"`
	WaiterUser  string     `json:"waiterUser"`
}

// OrderUpdatedEvent is emitted when lines are added or edited on an open
// order, so display consumers can refresh without waiting for the poll tick.
type OrderUpdatedEvent struct {
	OrderID  uuid.UUID   `json:"orderId"`
	OrderRef string      `json:"orderRef"`
	BranchID uuid.UUID   `json:"branchId"`
	LineIDs  []uuid.UUID `json:"lineIds,omitempty"`
}

// OrderStatusChangedEvent is emitted on every order status transition.
type OrderStatusChangedEvent struct {
	OrderID  uuid.UUID         `json:"orderId"`
	OrderRef string            `json:"orderRef"`
	BranchID uuid.UUID         `json:"branchId"`
	From     enums.OrderStatus `json:"from"`
	To       enums.OrderStatus `json:"to"`
	Reason   string            `json:"reason,omitempty"`
}

// OrderLineCancelledEvent is emitted when a waiter voids a single line.
type OrderLineCancelledEvent struct {
	OrderID  uuid.UUID `json:"orderId"`
	OrderRef string    `json:"orderRef"`
	LineID   uuid.UUID `json:"lineId"`
	ItemCode string    `json:"itemCode"`
	Qty      int       `json:"qty"`
	Reason   string    `json:"reason"`
}

// OrderServedEvent reports lines delivered to the table.
type OrderServedEvent struct {
	OrderID  uuid.UUID   `json:"orderId"`
	OrderRef string      `json:"orderRef"`
	LineIDs  []uuid.UUID `json:"lineIds"`
	ServedAt time.Time   `json:"servedAt"`
}

// OrderDispatchedEvent reports lines sent to the kitchen as a new ticket.
type OrderDispatchedEvent struct {
	OrderID  uuid.UUID   `json:"orderId"`
	OrderRef string      `json:"orderRef"`
	KOTID    uuid.UUID   `json:"kotId"`
	LineIDs  []uuid.UUID `json:"lineIds"`
}

// KOTCreatedEvent signals a new kitchen ticket for display boards.
type KOTCreatedEvent struct {
	KOTID     uuid.UUID        `json:"kotId"`
	OrderID   uuid.UUID        `json:"orderId"`
	OrderRef  string           `json:"orderRef"`
	BranchID  uuid.UUID        `json:"branchId"`
	ItemCount int              `json:"itemCount"`
	Items     []KOTItemSummary `json:"items"`
}

// KOTItemSummary is the display line carried inside kitchen events.
type KOTItemSummary struct {
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	Qty      int    `json:"qty"`
	Note     string `json:"note,omitempty"`
}

// KOTStatusChangedEvent is emitted when the derived ticket status moves.
type KOTStatusChangedEvent struct {
	KOTID    uuid.UUID       `json:"kotId"`
	OrderID  uuid.UUID       `json:"orderId"`
	OrderRef string          `json:"orderRef"`
	BranchID uuid.UUID       `json:"branchId"`
	From     enums.KOTStatus `json:"from"`
	To       enums.KOTStatus `json:"to"`
	Reason   string          `json:"reason,omitempty"`
}

// KitchenItemStatusChangedEvent tracks a single ticket line moving through
// the kitchen pipeline.
type KitchenItemStatusChangedEvent struct {
	KOTID     uuid.UUID               `json:"kotId"`
	KOTItemID uuid.UUID               `json:"kotItemId"`
	OrderID   uuid.UUID               `json:"orderId"`
	BranchID  uuid.UUID               `json:"branchId"`
	ItemCode  string                  `json:"itemCode"`
	From      enums.KitchenItemStatus `json:"from"`
	To        enums.KitchenItemStatus `json:"to"`
	Reason    string                  `json:"reason,omitempty"`
}

// TableAssignedEvent is emitted when an order claims a table.
type TableAssignedEvent struct {
	TableID     uuid.UUID `json:"tableId"`
	TableNumber string    `json:"tableNumber"`
	BranchID    uuid.UUID `json:"branchId"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderRef    string    `json:"orderRef"`
}

// TableReleasedEvent is emitted when an order closes and frees its table.
type TableReleasedEvent struct {
	TableID     uuid.UUID `json:"tableId"`
	TableNumber string    `json:"tableNumber"`
	BranchID    uuid.UUID `json:"branchId"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderRef    string    `json:"orderRef"`
}
