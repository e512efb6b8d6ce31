package enums

import "fmt"

// KitchenItemStatus tracks the cooking state of a single dispatched line.
type KitchenItemStatus string

const (
	KitchenItemStatusQueued    KitchenItemStatus = "Queued"
	KitchenItemStatusCooking   KitchenItemStatus = "Cooking"
	KitchenItemStatusReady     KitchenItemStatus = "Ready"
	KitchenItemStatusServed    KitchenItemStatus = "Served"
	KitchenItemStatusCancelled KitchenItemStatus = "Cancelled"
)

var validKitchenItemStatuses = []KitchenItemStatus{
	KitchenItemStatusQueued,
	KitchenItemStatusCooking,
	KitchenItemStatusReady,
	KitchenItemStatusServed,
	KitchenItemStatusCancelled,
}

// Single-step forward transitions; Cancelled is reachable only while the item
// has not left the kitchen (Queued/Cooking) and requires a reason.
var kitchenItemStatusTransitions = map[KitchenItemStatus][]KitchenItemStatus{
	KitchenItemStatusQueued:    {KitchenItemStatusCooking, KitchenItemStatusCancelled},
	KitchenItemStatusCooking:   {KitchenItemStatusReady, KitchenItemStatusCancelled},
	KitchenItemStatusReady:     {KitchenItemStatusServed},
	KitchenItemStatusServed:    {},
	KitchenItemStatusCancelled: {},
}

// String implements fmt.Stringer.
func (s KitchenItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known KitchenItemStatus.
func (s KitchenItemStatus) IsValid() bool {
	for _, candidate := range validKitchenItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions.
func (s KitchenItemStatus) IsTerminal() bool {
	next, ok := kitchenItemStatusTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the transition s -> target is allowed.
func (s KitchenItemStatus) CanTransitionTo(target KitchenItemStatus) bool {
	for _, candidate := range kitchenItemStatusTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// RequiresReason reports whether entering the status needs a free-text reason.
func (s KitchenItemStatus) RequiresReason() bool {
	return s == KitchenItemStatusCancelled
}

// ParseKitchenItemStatus converts raw input into a KitchenItemStatus.
func ParseKitchenItemStatus(value string) (KitchenItemStatus, error) {
	for _, candidate := range validKitchenItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kitchen item status %q", value)
}
