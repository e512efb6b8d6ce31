package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/itbpos/restaurant-backend/pkg/enums"
	"github.com/itbpos/restaurant-backend/pkg/pagination"
)

// Actor identifies the staff member performing an operation. User is the
// host-system login; BranchID is the branch the terminal is signed into.
type Actor struct {
	User     string
	BranchID *uuid.UUID
	Role     enums.StaffRole
}

// LineInput is one requested order line. Attributes records the variant
// selection that produced ItemCode, for display on tickets.
type LineInput struct {
	ItemCode   string            `json:"itemCode" validate:"required"`
	Qty        int               `json:"qty" validate:"required,gt=0"`
	Note       *string           `json:"note,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// CreateOrderInput opens a new order, optionally claiming a table.
type CreateOrderInput struct {
	BranchID     uuid.UUID   `json:"branchId" validate:"required"`
	TableID      *uuid.UUID  `json:"tableId,omitempty"`
	CustomerName *string     `json:"customerName,omitempty"`
	Lines        []LineInput `json:"lines" validate:"dive"`
}

// AddLinesInput appends lines to an open order.
type AddLinesInput struct {
	OrderID uuid.UUID   `json:"orderId" validate:"required"`
	Lines   []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// UpdateLineInput edits a line that has not been dispatched.
type UpdateLineInput struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	LineID  uuid.UUID `json:"lineId" validate:"required"`
	Qty     int       `json:"qty" validate:"required,gt=0"`
	Note    *string   `json:"note,omitempty"`
}

// CancelLineInput voids one line. Reason is mandatory.
type CancelLineInput struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	LineID  uuid.UUID `json:"lineId" validate:"required"`
	Reason  string    `json:"reason" validate:"required"`
}

// MarkServedInput records delivery of dispatched lines to the table. An
// empty LineIDs serves every dispatched line not already served or
// cancelled.
type MarkServedInput struct {
	OrderID uuid.UUID   `json:"orderId" validate:"required"`
	LineIDs []uuid.UUID `json:"lineIds,omitempty"`
}

// StatusChangeInput moves an order through its lifecycle. Reason is required
// when cancelling.
type StatusChangeInput struct {
	OrderID uuid.UUID         `json:"orderId" validate:"required"`
	Target  enums.OrderStatus `json:"target" validate:"required"`
	Reason  string            `json:"reason,omitempty"`
}

// ListFilters narrow the order list. A zero Limit with no Cursor returns the
// full match set, which snapshot and export callers rely on.
type ListFilters struct {
	Status   *enums.OrderStatus
	BranchID *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Query    string
	Limit    int
	Cursor   *pagination.Cursor
}

// OrderListResult is one page of the order list.
type OrderListResult struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// LineView is the waiter-facing projection of one order line.
type LineView struct {
	ID            uuid.UUID                `json:"id"`
	ItemCode      string                   `json:"itemCode"`
	ItemName      string                   `json:"itemName"`
	Qty           int                      `json:"qty"`
	Rate          decimal.Decimal          `json:"rate"`
	Amount        decimal.Decimal          `json:"amount"`
	Note          *string                  `json:"note,omitempty"`
	SentToKitchen bool                     `json:"sentToKitchen"`
	Cancelled     bool                     `json:"cancelled"`
	CancelReason  *string                  `json:"cancelReason,omitempty"`
	KitchenStatus *enums.KitchenItemStatus `json:"kitchenStatus,omitempty"`
	KitchenUpdate *time.Time               `json:"kitchenUpdate,omitempty"`
}

// OrderSummary is the list row returned by ListOrders.
type OrderSummary struct {
	ID           uuid.UUID         `json:"id"`
	OrderRef     string            `json:"orderRef"`
	BranchID     uuid.UUID         `json:"branchId"`
	TableNumber  string            `json:"tableNumber,omitempty"`
	CustomerName *string           `json:"customerName,omitempty"`
	WaiterUser   string            `json:"waiterUser"`
	Status       enums.OrderStatus `json:"status"`
	Total        decimal.Decimal   `json:"total"`
	LineCount    int               `json:"lineCount"`
	OrderedAt    time.Time         `json:"orderedAt"`
}

// OrderDetail is the full order view including lines.
type OrderDetail struct {
	OrderSummary
	FinalBilled  bool       `json:"finalBilled"`
	CancelReason *string    `json:"cancelReason,omitempty"`
	Lines        []LineView `json:"lines"`
}
