package enums

import "fmt"

// KOTStatus tracks the aggregate lifecycle of a kitchen order ticket.
type KOTStatus string

const (
	KOTStatusNew        KOTStatus = "New"
	KOTStatusInProgress KOTStatus = "In Progress"
	KOTStatusReady      KOTStatus = "Ready"
	KOTStatusServed     KOTStatus = "Served"
	KOTStatusCancelled  KOTStatus = "Cancelled"
)

var validKOTStatuses = []KOTStatus{
	KOTStatusNew,
	KOTStatusInProgress,
	KOTStatusReady,
	KOTStatusServed,
	KOTStatusCancelled,
}

var kotStatusTransitions = map[KOTStatus][]KOTStatus{
	KOTStatusNew:        {KOTStatusInProgress, KOTStatusCancelled},
	KOTStatusInProgress: {KOTStatusReady, KOTStatusCancelled},
	KOTStatusReady:      {KOTStatusServed, KOTStatusCancelled},
	KOTStatusServed:     {},
	KOTStatusCancelled:  {},
}

// String implements fmt.Stringer.
func (k KOTStatus) String() string {
	return string(k)
}

// IsValid reports whether the value is a known KOTStatus.
func (k KOTStatus) IsValid() bool {
	for _, candidate := range validKOTStatuses {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions.
func (k KOTStatus) IsTerminal() bool {
	next, ok := kotStatusTransitions[k]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the transition k -> target is allowed.
func (k KOTStatus) CanTransitionTo(target KOTStatus) bool {
	for _, candidate := range kotStatusTransitions[k] {
		if candidate == target {
			return true
		}
	}
	return false
}

// DeriveKOTStatus computes the aggregate ticket status from its item
// statuses. Cancelled items are ignored; a ticket with no remaining active
// items is Cancelled.
func DeriveKOTStatus(items []KitchenItemStatus) KOTStatus {
	active := 0
	served := 0
	readyOrServed := 0
	started := 0
	for _, s := range items {
		if s == KitchenItemStatusCancelled {
			continue
		}
		active++
		switch s {
		case KitchenItemStatusCooking:
			started++
		case KitchenItemStatusReady:
			readyOrServed++
			started++
		case KitchenItemStatusServed:
			readyOrServed++
			served++
			started++
		}
	}
	switch {
	case active == 0:
		return KOTStatusCancelled
	case served == active:
		return KOTStatusServed
	case readyOrServed == active:
		return KOTStatusReady
	case started > 0:
		return KOTStatusInProgress
	default:
		return KOTStatusNew
	}
}

// ParseKOTStatus converts raw input into a KOTStatus.
func ParseKOTStatus(value string) (KOTStatus, error) {
	for _, candidate := range validKOTStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kot status %q", value)
}
