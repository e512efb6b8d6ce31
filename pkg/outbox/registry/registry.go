package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
	"github.com/itbpos/restaurant-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/subject/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Subject        string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured NATS subjects.
func NewEventRegistry(cfg config.NATSConfig) (*EventRegistry, error) {
	if cfg.OrdersSubject == "" {
		return nil, fmt.Errorf("orders subject is required")
	}
	if cfg.KitchenSubject == "" {
		return nil, fmt.Errorf("kitchen subject is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	ordersSubject := cfg.OrdersSubject
	kitchenSubject := cfg.KitchenSubject

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventOrderCreated,
			AggregateType:  enums.AggregatePOSOrder,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.OrderCreatedEvent{} },
		},
		{
			EventType:      enums.EventOrderUpdated,
			AggregateType:  enums.AggregatePOSOrder,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.OrderUpdatedEvent{} },
		},
		{
			EventType:      enums.EventOrderStatusChanged,
			AggregateType:  enums.AggregatePOSOrder,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.OrderStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventOrderLineCancelled,
			AggregateType:  enums.AggregatePOSOrder,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.OrderLineCancelledEvent{} },
		},
		{
			EventType:      enums.EventOrderServed,
			AggregateType:  enums.AggregatePOSOrder,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.OrderServedEvent{} },
		},
		{
			EventType:      enums.EventOrderDispatched,
			AggregateType:  enums.AggregatePOSOrder,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.OrderDispatchedEvent{} },
		},
		{
			EventType:      enums.EventTableAssigned,
			AggregateType:  enums.AggregateTable,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.TableAssignedEvent{} },
		},
		{
			EventType:      enums.EventTableReleased,
			AggregateType:  enums.AggregateTable,
			Subject:        ordersSubject,
			PayloadFactory: func() interface{} { return &payloads.TableReleasedEvent{} },
		},
	} {
		reg.register(desc)
	}

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventKOTCreated,
			AggregateType:  enums.AggregateKOT,
			Subject:        kitchenSubject,
			PayloadFactory: func() interface{} { return &payloads.KOTCreatedEvent{} },
		},
		{
			EventType:      enums.EventKOTStatusChanged,
			AggregateType:  enums.AggregateKOT,
			Subject:        kitchenSubject,
			PayloadFactory: func() interface{} { return &payloads.KOTStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventKitchenItemStatusChanged,
			AggregateType:  enums.AggregateKOT,
			Subject:        kitchenSubject,
			PayloadFactory: func() interface{} { return &payloads.KitchenItemStatusChangedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
