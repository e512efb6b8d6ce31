package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregatePOSOrder OutboxAggregateType = "pos_order"
	AggregateKOT      OutboxAggregateType = "kot"
	AggregateTable    OutboxAggregateType = "pos_table"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregatePOSOrder,
	AggregateKOT,
	AggregateTable,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated             OutboxEventType = "order_created"
	EventOrderUpdated             OutboxEventType = "order_updated"
	EventOrderStatusChanged       OutboxEventType = "order_status_changed"
	EventOrderLineCancelled       OutboxEventType = "order_line_cancelled"
	EventOrderServed              OutboxEventType = "order_served"
	EventOrderDispatched          OutboxEventType = "order_dispatched"
	EventKOTCreated               OutboxEventType = "kot_created"
	EventKOTStatusChanged         OutboxEventType = "kot_status_changed"
	EventKitchenItemStatusChanged OutboxEventType = "kitchen_item_status_changed"
	EventTableAssigned            OutboxEventType = "table_assigned"
	EventTableReleased            OutboxEventType = "table_released"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderUpdated,
	EventOrderStatusChanged,
	EventOrderLineCancelled,
	EventOrderServed,
	EventOrderDispatched,
	EventKOTCreated,
	EventKOTStatusChanged,
	EventKitchenItemStatusChanged,
	EventTableAssigned,
	EventTableReleased,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
