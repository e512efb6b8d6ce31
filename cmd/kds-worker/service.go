package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/internal/refresh"
	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	pkgnats "github.com/itbpos/restaurant-backend/pkg/nats"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
	"github.com/itbpos/restaurant-backend/pkg/outbox/idempotency"
)

const consumerName = "kds-worker"

type refreshRunner interface {
	Run(ctx context.Context) error
}

type subscriber interface {
	Subscribe(ctx context.Context, subject string, handler pkgnats.HandlerFunc) (unsubscriber, error)
}

type unsubscriber interface {
	Unsubscribe() error
}

type dedupe interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
}

type ServiceParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Kitchen     refresh.Job
	Orders      refresh.Job
	Loops       []refreshRunner
	Subscriber  subscriber
	Idempotency dedupe
}

// Service keeps the kitchen and orders display snapshots fresh. The periodic
// loops rebuild every branch on a cadence; the NATS subscriptions rebuild the
// affected view the moment a domain event lands so displays never wait for
// the next tick.
type Service struct {
	cfg         *config.Config
	logg        *logger.Logger
	kitchenJob  refresh.Job
	ordersJob   refresh.Job
	loops       []refreshRunner
	subscriber  subscriber
	idempotency dedupe
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Kitchen == nil {
		return nil, errors.New("kitchen snapshot job is required")
	}
	if params.Orders == nil {
		return nil, errors.New("orders snapshot job is required")
	}
	if len(params.Loops) == 0 {
		return nil, errors.New("at least one refresh loop is required")
	}
	if params.Subscriber == nil {
		return nil, errors.New("nats subscriber is required")
	}
	if params.Idempotency == nil {
		return nil, errors.New("idempotency guard is required")
	}
	return &Service{
		cfg:         params.Config,
		logg:        params.Logger,
		kitchenJob:  params.Kitchen,
		ordersJob:   params.Orders,
		loops:       params.Loops,
		subscriber:  params.Subscriber,
		idempotency: params.Idempotency,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	kitchenSub, err := s.subscriber.Subscribe(ctx, s.cfg.NATS.KitchenSubject, s.eventHandler(s.kitchenJob))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.NATS.KitchenSubject, err)
	}
	defer func() {
		if err := kitchenSub.Unsubscribe(); err != nil {
			s.logg.Error(ctx, "failed to unsubscribe kitchen events", err)
		}
	}()

	ordersSub, err := s.subscriber.Subscribe(ctx, s.cfg.NATS.OrdersSubject, s.eventHandler(s.ordersJob))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.NATS.OrdersSubject, err)
	}
	defer func() {
		if err := ordersSub.Unsubscribe(); err != nil {
			s.logg.Error(ctx, "failed to unsubscribe order events", err)
		}
	}()

	errCh := make(chan error, len(s.loops))
	for _, loop := range s.loops {
		loop := loop
		go func() {
			errCh <- loop.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		s.logg.Info(ctx, "kds worker context canceled")
		return ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logg.Error(ctx, "refresh loop stopped unexpectedly", err)
			return err
		}
		return err
	}
}

// eventHandler rebuilds one snapshot view in response to a domain event.
// Events are deduplicated per consumer so redeliveries and restarts do not
// trigger redundant rebuilds inside the guard TTL.
func (s *Service) eventHandler(job refresh.Job) pkgnats.HandlerFunc {
	return func(ctx context.Context, msg []byte) error {
		var envelope outbox.PayloadEnvelope
		if err := json.Unmarshal(msg, &envelope); err != nil {
			s.logg.Error(ctx, "failed to decode event envelope", err)
			return err
		}

		eventID, err := uuid.Parse(envelope.EventID)
		if err != nil {
			s.logg.Error(ctx, "event envelope carries invalid event id", err)
			return err
		}

		seen, err := s.idempotency.CheckAndMarkProcessed(ctx, consumerName, eventID)
		if err != nil {
			s.logg.Error(ctx, "idempotency check failed", err)
			return err
		}
		if seen {
			return nil
		}

		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id": envelope.EventID,
			"job":      job.Name(),
		})
		if err := job.Run(logCtx); err != nil {
			s.logg.Error(logCtx, "event-driven refresh failed", err)
			return err
		}
		s.logg.Info(logCtx, "snapshot rebuilt from event")
		return nil
	}
}

// natsSubscriber adapts the NATS client to the subscriber interface.
type natsSubscriber struct {
	client *pkgnats.Client
}

func (n natsSubscriber) Subscribe(ctx context.Context, subject string, handler pkgnats.HandlerFunc) (unsubscriber, error) {
	return n.client.Subscribe(ctx, subject, handler)
}

var _ dedupe = (*idempotency.Manager)(nil)
