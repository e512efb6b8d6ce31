package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM outbox_events")
	})
	return db
}

func insertOutboxRow(t *testing.T, db *gorm.DB, eventType enums.OutboxEventType) models.OutboxEvent {
	t.Helper()
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregatePOSOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1,"eventId":"x","data":{}}`),
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestEmitPersistsEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	aggregateID := uuid.New()
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePOSOrder,
			AggregateID:   aggregateID,
			Actor:         &ActorRef{User: "waiter@branch", Role: "waiter"},
			Data:          map[string]any{"orderRef": "BR1-20250901-0001"},
			Version:       1,
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, enums.EventOrderCreated, row.EventType)
	assert.Equal(t, aggregateID, row.AggregateID)
	assert.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, "waiter@branch", envelope.Actor.User)
}

func TestEmitRequiresTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	err := svc.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregatePOSOrder,
		AggregateID:   uuid.New(),
	})
	require.Error(t, err)
}

func TestEmitIfNotExistsSkipsDuplicates(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	aggregateID := uuid.New()
	emit := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(context.Background(), tx, DomainEvent{
				EventType:     enums.EventTableAssigned,
				AggregateType: enums.AggregateTable,
				AggregateID:   aggregateID,
				Data:          map[string]any{"tableNumber": "T-12"},
				Version:       1,
			})
		})
	}

	require.NoError(t, emit())
	require.NoError(t, emit())

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFetchUnpublishedAndMark(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	first := insertOutboxRow(t, db, enums.EventOrderCreated)
	second := insertOutboxRow(t, db, enums.EventOrderStatusChanged)

	rows, err := repo.FetchUnpublished(10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublished(first.ID))
	require.NoError(t, repo.MarkFailed(second.ID, errors.New("nats unavailable")))

	rows, err = repo.FetchUnpublished(10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)
	require.NotNil(t, rows[0].LastError)
	assert.Equal(t, "nats unavailable", *rows[0].LastError)
	assert.Equal(t, 1, rows[0].AttemptCount)

	rows, err = repo.FetchUnpublished(10, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	pending, err := repo.CountUnpublished()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}
