package main

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	pkgnats "github.com/itbpos/restaurant-backend/pkg/nats"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
)

type fakeJob struct {
	name string
	runs int
}

func (f *fakeJob) Name() string { return f.name }

func (f *fakeJob) Run(context.Context) error {
	f.runs++
	return nil
}

type fakeLoop struct{}

func (fakeLoop) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeSub struct{}

func (fakeSub) Unsubscribe() error { return nil }

type fakeSubscriber struct {
	handlers map[string]pkgnats.HandlerFunc
}

func (f *fakeSubscriber) Subscribe(_ context.Context, subject string, handler pkgnats.HandlerFunc) (unsubscriber, error) {
	if f.handlers == nil {
		f.handlers = map[string]pkgnats.HandlerFunc{}
	}
	f.handlers[subject] = handler
	return fakeSub{}, nil
}

type fakeDedupe struct {
	seen map[uuid.UUID]bool
}

func (f *fakeDedupe) CheckAndMarkProcessed(_ context.Context, _ string, eventID uuid.UUID) (bool, error) {
	if f.seen == nil {
		f.seen = map[uuid.UUID]bool{}
	}
	if f.seen[eventID] {
		return true, nil
	}
	f.seen[eventID] = true
	return false, nil
}

func workerTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "kds-test", Level: zerolog.Disabled, Output: io.Discard})
}

func workerTestConfig() *config.Config {
	return &config.Config{
		NATS: config.NATSConfig{
			KitchenSubject: "kitchen.events",
			OrdersSubject:  "orders.events",
		},
	}
}

func envelopeBytes(t *testing.T, eventID uuid.UUID) []byte {
	t.Helper()
	msg, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return msg
}

func newWorker(t *testing.T) (*Service, *fakeJob, *fakeJob) {
	t.Helper()
	kitchenJob := &fakeJob{name: "kitchen-snapshot"}
	ordersJob := &fakeJob{name: "orders-snapshot"}
	service, err := NewService(ServiceParams{
		Config:      workerTestConfig(),
		Logger:      workerTestLogger(),
		Kitchen:     kitchenJob,
		Orders:      ordersJob,
		Loops:       []refreshRunner{fakeLoop{}},
		Subscriber:  &fakeSubscriber{},
		Idempotency: &fakeDedupe{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return service, kitchenJob, ordersJob
}

func TestEventHandlerRebuildsSnapshot(t *testing.T) {
	service, kitchenJob, _ := newWorker(t)

	handler := service.eventHandler(kitchenJob)
	if err := handler(context.Background(), envelopeBytes(t, uuid.New())); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if kitchenJob.runs != 1 {
		t.Fatalf("expected one rebuild, got %d", kitchenJob.runs)
	}
}

func TestEventHandlerSkipsDuplicateEvents(t *testing.T) {
	service, kitchenJob, _ := newWorker(t)

	handler := service.eventHandler(kitchenJob)
	eventID := uuid.New()
	msg := envelopeBytes(t, eventID)
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("first delivery returned error: %v", err)
	}
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("redelivery returned error: %v", err)
	}
	if kitchenJob.runs != 1 {
		t.Fatalf("redelivery must not rebuild again, got %d runs", kitchenJob.runs)
	}
}

func TestEventHandlerRejectsMalformedEnvelope(t *testing.T) {
	service, kitchenJob, _ := newWorker(t)

	handler := service.eventHandler(kitchenJob)
	if err := handler(context.Background(), []byte("not-json")); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := handler(context.Background(), []byte(`{"version":1,"eventId":"nope","data":{}}`)); err == nil {
		t.Fatalf("expected invalid event id error")
	}
	if kitchenJob.runs != 0 {
		t.Fatalf("malformed events must not trigger rebuilds")
	}
}

func TestRunSubscribesBothSubjects(t *testing.T) {
	service, _, _ := newWorker(t)
	sub := &fakeSubscriber{}
	service.subscriber = sub

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if _, ok := sub.handlers["kitchen.events"]; !ok {
		t.Fatalf("kitchen subject not subscribed")
	}
	if _, ok := sub.handlers["orders.events"]; !ok {
		t.Fatalf("orders subject not subscribed")
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{
		Config:      workerTestConfig(),
		Logger:      workerTestLogger(),
		Kitchen:     &fakeJob{name: "kitchen-snapshot"},
		Orders:      &fakeJob{name: "orders-snapshot"},
		Subscriber:  &fakeSubscriber{},
		Idempotency: &fakeDedupe{},
	}); err == nil {
		t.Fatalf("expected error for missing refresh loops")
	}
}
