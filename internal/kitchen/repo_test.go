package kitchen

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

func setupKitchenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS branches (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  disabled INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS pos_tables (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  table_number TEXT NOT NULL,
  section TEXT,
  capacity INTEGER NOT NULL DEFAULT 2,
  status TEXT NOT NULL DEFAULT 'Available',
  disabled INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS pos_orders (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  branch_id TEXT NOT NULL,
  table_id TEXT,
  customer_name TEXT,
  waiter_user TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Draft',
  total NUMERIC NOT NULL DEFAULT 0,
  final_billed INTEGER NOT NULL DEFAULT 0,
  cancel_reason TEXT,
  ordered_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS pos_order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_code TEXT NOT NULL,
  item_name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  rate NUMERIC NOT NULL,
  amount NUMERIC NOT NULL,
  note TEXT,
  attributes TEXT,
  sent_to_kitchen INTEGER NOT NULL DEFAULT 0,
  cancelled INTEGER NOT NULL DEFAULT 0,
  cancel_reason TEXT,
  kot_id TEXT,
  kitchen_status TEXT,
  kitchen_update DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS kots (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  order_ref TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'New',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS kot_items (
  id TEXT PRIMARY KEY,
  kot_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  item_code TEXT NOT NULL,
  item_name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  note TEXT,
  attributes TEXT,
  status TEXT NOT NULL DEFAULT 'Queued',
  cancel_reason TEXT,
  last_update DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	t.Cleanup(func() {
		for _, table := range []string{"kot_items", "kots", "pos_order_items", "pos_orders", "pos_tables", "branches"} {
			db.Exec("DELETE FROM " + table)
		}
	})
	return db
}

func seedKitchenOrder(t *testing.T, db *gorm.DB, branchID uuid.UUID, ref string) models.POSOrder {
	t.Helper()
	order := models.POSOrder{
		ID:         uuid.New(),
		OrderID:    ref,
		BranchID:   branchID,
		WaiterUser: "budi",
		Status:     enums.OrderStatusInProgress,
		Total:      decimal.Zero,
		OrderedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func seedKOT(t *testing.T, db *gorm.DB, branchID uuid.UUID, order models.POSOrder, status enums.KOTStatus, createdAt time.Time) models.KOT {
	t.Helper()
	kot := models.KOT{
		ID:        uuid.New(),
		BranchID:  branchID,
		OrderID:   order.ID,
		OrderRef:  order.OrderID,
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&kot).Error)
	return kot
}

func TestListActiveKOTsFiltersAndOrders(t *testing.T) {
	db := setupKitchenTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	require.NoError(t, db.Create(&models.Branch{ID: branchID, Code: "JKT01", Name: "Jakarta"}).Error)
	order := seedKitchenOrder(t, db, branchID, "JKT01-20260901-0001")

	now := time.Now()
	older := seedKOT(t, db, branchID, order, enums.KOTStatusNew, now.Add(-10*time.Minute))
	newer := seedKOT(t, db, branchID, order, enums.KOTStatusInProgress, now.Add(-2*time.Minute))
	seedKOT(t, db, branchID, order, enums.KOTStatusServed, now.Add(-30*time.Minute))
	seedKOT(t, db, uuid.New(), order, enums.KOTStatusNew, now)

	rows, err := repo.ListActiveKOTs(ctx, branchID, displayStatuses())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, older.ID, rows[0].ID)
	assert.Equal(t, newer.ID, rows[1].ID)
}

func TestFindKOTPreloadsItems(t *testing.T) {
	db := setupKitchenTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	order := seedKitchenOrder(t, db, branchID, "JKT01-20260901-0001")
	kot := seedKOT(t, db, branchID, order, enums.KOTStatusNew, time.Now())

	item := models.KOTItem{
		ID:          uuid.New(),
		KOTID:       kot.ID,
		OrderItemID: uuid.New(),
		ItemCode:    "NASI-GORENG",
		ItemName:    "Nasi Goreng",
		Qty:         2,
		Status:      enums.KitchenItemStatusQueued,
		LastUpdate:  time.Now(),
	}
	require.NoError(t, db.Create(&item).Error)

	loaded, err := repo.FindKOT(ctx, kot.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "NASI-GORENG", loaded.Items[0].ItemCode)
}

func TestUpdateOrderItemsClearsDispatchFields(t *testing.T) {
	db := setupKitchenTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	order := seedKitchenOrder(t, db, branchID, "JKT01-20260901-0001")
	kot := seedKOT(t, db, branchID, order, enums.KOTStatusNew, time.Now())

	queued := enums.KitchenItemStatusQueued
	kotID := kot.ID
	now := time.Now()
	line := models.POSOrderItem{
		ID:            uuid.New(),
		OrderID:       order.ID,
		ItemCode:      "NASI-GORENG",
		ItemName:      "Nasi Goreng",
		Qty:           1,
		Rate:          decimal.RequireFromString("25000"),
		Amount:        decimal.RequireFromString("25000"),
		SentToKitchen: true,
		KOTID:         &kotID,
		KitchenStatus: &queued,
		KitchenUpdate: &now,
	}
	require.NoError(t, db.Create(&line).Error)

	require.NoError(t, repo.UpdateOrderItems(ctx, []uuid.UUID{line.ID}, map[string]any{
		"sent_to_kitchen": false,
		"kot_id":          nil,
		"kitchen_status":  nil,
		"kitchen_update":  nil,
	}))

	var reloaded models.POSOrderItem
	require.NoError(t, db.Where("id = ?", line.ID).First(&reloaded).Error)
	assert.False(t, reloaded.SentToKitchen)
	assert.Nil(t, reloaded.KOTID)
	assert.Nil(t, reloaded.KitchenStatus)
	assert.Nil(t, reloaded.KitchenUpdate)
}
