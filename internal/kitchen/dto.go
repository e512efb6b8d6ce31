package kitchen

import (
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// DispatchInput sends an order's undispatched lines to the kitchen.
type DispatchInput struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

// DispatchResult reports the ticket that was created. Confirmation carries
// the human-readable lines shown to the waiter, e.g. "2x Nasi Goreng".
type DispatchResult struct {
	KOTID        uuid.UUID `json:"kotId"`
	OrderRef     string    `json:"orderRef"`
	Confirmation []string  `json:"confirmation"`
}

// ItemStatusInput moves one ticket line through the kitchen pipeline.
type ItemStatusInput struct {
	KOTItemID uuid.UUID               `json:"kotItemId" validate:"required"`
	Target    enums.KitchenItemStatus `json:"target" validate:"required"`
	Reason    string                  `json:"reason,omitempty"`
}

// CancelTicketInput voids a whole ticket. Lines already Ready or Served stay
// untouched; the rest return to the order as undispatched.
type CancelTicketInput struct {
	KOTID  uuid.UUID `json:"kotId" validate:"required"`
	Reason string    `json:"reason" validate:"required"`
}

// TicketItemView is the display projection of one ticket line.
type TicketItemView struct {
	ID           uuid.UUID               `json:"id"`
	ItemCode     string                  `json:"itemCode"`
	ItemName     string                  `json:"itemName"`
	Qty          int                     `json:"qty"`
	Note         *string                 `json:"note,omitempty"`
	Attributes   string                  `json:"attributes,omitempty"`
	Status       enums.KitchenItemStatus `json:"status"`
	CancelReason *string                 `json:"cancelReason,omitempty"`
	LastUpdate   time.Time               `json:"lastUpdate"`
}

// TicketView is one kitchen display card.
type TicketView struct {
	ID          uuid.UUID        `json:"id"`
	OrderRef    string           `json:"orderRef"`
	BranchID    uuid.UUID        `json:"branchId"`
	TableNumber string           `json:"tableNumber,omitempty"`
	Status      enums.KOTStatus  `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	AgeSeconds  int64            `json:"ageSeconds"`
	Items       []TicketItemView `json:"items"`
}

// DisplayBoard is the kitchen display payload for one branch.
type DisplayBoard struct {
	BranchID    uuid.UUID    `json:"branchId"`
	Tickets     []TicketView `json:"tickets"`
	GeneratedAt time.Time    `json:"generatedAt"`
}
