package enums

import "fmt"

// OrderStatus tracks the lifecycle of a POS order.
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "Draft"
	OrderStatusInProgress      OrderStatus = "In Progress"
	OrderStatusReadyForBilling OrderStatus = "Ready for Billing"
	OrderStatusFinalBilled     OrderStatus = "Final Billed"
	OrderStatusPaid            OrderStatus = "Paid"
	OrderStatusCancelled       OrderStatus = "Cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusInProgress,
	OrderStatusReadyForBilling,
	OrderStatusFinalBilled,
	OrderStatusPaid,
	OrderStatusCancelled,
}

// orderStatusTransitions lists the allowed next statuses per current status.
// Cancelled is reachable from every non-terminal status.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:           {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress:      {OrderStatusReadyForBilling, OrderStatusCancelled},
	OrderStatusReadyForBilling: {OrderStatusFinalBilled, OrderStatusPaid, OrderStatusCancelled},
	OrderStatusFinalBilled:     {OrderStatusPaid},
	OrderStatusPaid:            {},
	OrderStatusCancelled:       {},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions.
func (o OrderStatus) IsTerminal() bool {
	next, ok := orderStatusTransitions[o]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the transition o -> target is allowed.
func (o OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, candidate := range orderStatusTransitions[o] {
		if candidate == target {
			return true
		}
	}
	return false
}

// OpenOrderStatuses are the statuses that keep a table occupied.
func OpenOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusDraft, OrderStatusInProgress, OrderStatusReadyForBilling}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
