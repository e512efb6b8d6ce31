package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/internal/variants"
	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
	"github.com/itbpos/restaurant-backend/pkg/outbox/payloads"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type stubOrdersRepo struct {
	branches map[uuid.UUID]*models.Branch
	tables   map[uuid.UUID]*models.POSTable
	orders   map[uuid.UUID]*models.POSOrder
	items    map[uuid.UUID]*models.POSOrderItem
	kots     map[uuid.UUID]*models.KOT
	kotItems map[uuid.UUID]*models.KOTItem
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		branches: map[uuid.UUID]*models.Branch{},
		tables:   map[uuid.UUID]*models.POSTable{},
		orders:   map[uuid.UUID]*models.POSOrder{},
		items:    map[uuid.UUID]*models.POSOrderItem{},
		kots:     map[uuid.UUID]*models.KOT{},
		kotItems: map[uuid.UUID]*models.KOTItem{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.POSOrder) (*models.POSOrder, error) {
	for _, existing := range s.orders {
		if existing.OrderID == order.OrderID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	copied := *order
	s.orders[order.ID] = &copied
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderItems(ctx context.Context, items []models.POSOrderItem) error {
	for i := range items {
		copied := items[i]
		s.items[copied.ID] = &copied
	}
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.POSOrder, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = nil
	for _, item := range s.items {
		if item.OrderID == id {
			copied.Items = append(copied.Items, *item)
		}
	}
	if order.TableID != nil {
		copied.Table = s.tables[*order.TableID]
	}
	return &copied, nil
}

func (s *stubOrdersRepo) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.POSOrder, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindOrderItem(ctx context.Context, lineID uuid.UUID) (*models.POSOrderItem, error) {
	item, ok := s.items[lineID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubOrdersRepo) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.POSOrderItem, error) {
	var out []models.POSOrderItem
	for _, item := range s.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	branch, ok := s.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return branch, nil
}

func (s *stubOrdersRepo) FindTable(ctx context.Context, id uuid.UUID) (*models.POSTable, error) {
	table, ok := s.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return table, nil
}

func (s *stubOrdersRepo) FindOpenOrderForTable(ctx context.Context, tableID uuid.UUID) (*models.POSOrder, error) {
	for _, order := range s.orders {
		if order.TableID == nil || *order.TableID != tableID {
			continue
		}
		for _, open := range enums.OpenOrderStatuses() {
			if order.Status == open {
				copied := *order
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (s *stubOrdersRepo) CountOrdersForBranchBetween(ctx context.Context, branchID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	for _, order := range s.orders {
		if order.BranchID == branchID && !order.OrderedAt.Before(from) && order.OrderedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		order.Status = v.(enums.OrderStatus)
	}
	if v, ok := updates["total"]; ok {
		order.Total = v.(decimal.Decimal)
	}
	if v, ok := updates["final_billed"]; ok {
		order.FinalBilled = v.(bool)
	}
	if v, ok := updates["cancel_reason"]; ok {
		reason := v.(string)
		order.CancelReason = &reason
	}
	return nil
}

func (s *stubOrdersRepo) UpdateOrderItem(ctx context.Context, lineID uuid.UUID, updates map[string]any) error {
	item, ok := s.items[lineID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["qty"]; ok {
		item.Qty = v.(int)
	}
	if v, ok := updates["amount"]; ok {
		item.Amount = v.(decimal.Decimal)
	}
	if v, ok := updates["note"]; ok {
		note := v.(string)
		item.Note = &note
	}
	if v, ok := updates["cancelled"]; ok {
		item.Cancelled = v.(bool)
	}
	if v, ok := updates["cancel_reason"]; ok {
		reason := v.(string)
		item.CancelReason = &reason
	}
	return nil
}

func (s *stubOrdersRepo) UpdateOrderItemsKitchenStatus(ctx context.Context, lineIDs []uuid.UUID, status enums.KitchenItemStatus, at time.Time) error {
	for _, id := range lineIDs {
		item, ok := s.items[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		copied := status
		item.KitchenStatus = &copied
		updated := at
		item.KitchenUpdate = &updated
	}
	return nil
}

func (s *stubOrdersRepo) FindKOTItemsForOrderItems(ctx context.Context, orderItemIDs []uuid.UUID) ([]models.KOTItem, error) {
	var out []models.KOTItem
	for _, id := range orderItemIDs {
		for _, item := range s.kotItems {
			if item.OrderItemID == id {
				out = append(out, *item)
			}
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) FindKOTItems(ctx context.Context, kotID uuid.UUID) ([]models.KOTItem, error) {
	var out []models.KOTItem
	for _, item := range s.kotItems {
		if item.KOTID == kotID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) UpdateKOTItemsStatus(ctx context.Context, itemIDs []uuid.UUID, status enums.KitchenItemStatus, at time.Time) error {
	for _, id := range itemIDs {
		item, ok := s.kotItems[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		item.Status = status
		item.LastUpdate = at
	}
	return nil
}

func (s *stubOrdersRepo) UpdateKOT(ctx context.Context, kotID uuid.UUID, updates map[string]any) error {
	kot, ok := s.kots[kotID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		kot.Status = v.(enums.KOTStatus)
	}
	return nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, branchIDs []uuid.UUID, filters ListFilters) ([]models.POSOrder, string, error) {
	var out []models.POSOrder
	for _, order := range s.orders {
		if branchIDs != nil {
			allowed := false
			for _, id := range branchIDs {
				if id == order.BranchID {
					allowed = true
				}
			}
			if !allowed {
				continue
			}
		}
		out = append(out, *order)
	}
	return out, "", nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeMenu struct {
	items  map[string]models.Item
	prices map[string]decimal.Decimal
}

func (f *fakeMenu) EnsureSellable(ctx context.Context, itemCode string) (*models.Item, error) {
	item, ok := f.items[itemCode]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if item.HasVariants {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item has variants; resolve a variant before adding")
	}
	return &item, nil
}

func (f *fakeMenu) PriceFor(ctx context.Context, itemCode string) (*variants.PriceResult, error) {
	rate, ok := f.prices[itemCode]
	if !ok {
		return &variants.PriceResult{ItemCode: itemCode, Rate: decimal.Zero, Warned: true}, nil
	}
	return &variants.PriceResult{ItemCode: itemCode, Rate: rate}, nil
}

type fakeInvalidator struct {
	branches []uuid.UUID
}

func (f *fakeInvalidator) InvalidateAvailability(ctx context.Context, branchID uuid.UUID) {
	f.branches = append(f.branches, branchID)
}

type ordersFixture struct {
	repo        *stubOrdersRepo
	outbox      *fakeOutbox
	menu        *fakeMenu
	invalidator *fakeInvalidator
	svc         Service
	branch      models.Branch
	table       models.POSTable
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()

	repo := newStubOrdersRepo()
	branch := models.Branch{ID: uuid.New(), Code: "JKT01", Name: "Jakarta Pusat"}
	repo.branches[branch.ID] = &branch
	table := models.POSTable{ID: uuid.New(), BranchID: branch.ID, TableNumber: "T1", Capacity: 4}
	repo.tables[table.ID] = &table

	outboxStub := &fakeOutbox{}
	menu := &fakeMenu{
		items: map[string]models.Item{
			"NASI-GORENG": {Code: "NASI-GORENG", Name: "Nasi Goreng"},
			"ES-TEH":      {Code: "ES-TEH", Name: "Es Teh", HasVariants: true},
		},
		prices: map[string]decimal.Decimal{
			"NASI-GORENG": decimal.RequireFromString("25000"),
		},
	}
	invalidator := &fakeInvalidator{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: zerolog.ErrorLevel})

	svc, err := NewService(repo, stubTx{}, outboxStub, menu, invalidator, logg)
	require.NoError(t, err)

	return &ordersFixture{
		repo:        repo,
		outbox:      outboxStub,
		menu:        menu,
		invalidator: invalidator,
		svc:         svc,
		branch:      branch,
		table:       table,
	}
}

func waiterActor(branchID uuid.UUID) Actor {
	id := branchID
	return Actor{User: "budi", BranchID: &id, Role: enums.StaffRoleWaiter}
}

func allBranches() visibility.BranchScope {
	return visibility.BranchScope{All: true}
}

func TestCreateOrderAssignsRefAndTotal(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	tableID := f.table.ID
	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		TableID:  &tableID,
		Lines: []LineInput{
			{ItemCode: "NASI-GORENG", Qty: 2},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^JKT01-\d{8}-0001$`, detail.OrderRef)
	assert.Equal(t, enums.OrderStatusDraft, detail.Status)
	assert.True(t, detail.Total.Equal(decimal.RequireFromString("50000")))
	require.Len(t, detail.Lines, 1)
	assert.True(t, detail.Lines[0].Amount.Equal(decimal.RequireFromString("50000")))

	require.Len(t, f.outbox.events, 2)
	assert.Equal(t, enums.EventOrderCreated, f.outbox.events[0].EventType)
	assert.Equal(t, enums.EventTableAssigned, f.outbox.events[1].EventType)
	assert.Equal(t, []uuid.UUID{f.branch.ID}, f.invalidator.branches)
}

func TestCreateOrderRejectsOccupiedTable(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()
	tableID := f.table.ID

	_, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		TableID:  &tableID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		TableID:  &tableID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCreateOrderRejectsTemplateItem(t *testing.T) {
	f := newOrdersFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "ES-TEH", Qty: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, f.repo.orders)
}

func TestCreateOrderForbiddenOutsideScope(t *testing.T) {
	f := newOrdersFixture(t)

	scope := visibility.BranchScope{BranchIDs: []uuid.UUID{uuid.New()}}
	_, err := f.svc.CreateOrder(context.Background(), waiterActor(f.branch.ID), scope, CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestAddLinesEmitsOrderUpdated(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)

	updated, err := f.svc.AddLines(ctx, waiterActor(f.branch.ID), allBranches(), AddLinesInput{
		OrderID: detail.ID,
		Lines:   []LineInput{{ItemCode: "NASI-GORENG", Qty: 2}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)

	last := f.outbox.events[len(f.outbox.events)-1]
	require.Equal(t, enums.EventOrderUpdated, last.EventType)
	payload := last.Data.(payloads.OrderUpdatedEvent)
	assert.Equal(t, detail.ID, payload.OrderID)
	assert.Len(t, payload.LineIDs, 1)
}

func TestUpdateLineEmitsOrderUpdated(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)
	lineID := detail.Lines[0].ID

	err = f.svc.UpdateLine(ctx, waiterActor(f.branch.ID), allBranches(), UpdateLineInput{
		OrderID: detail.ID,
		LineID:  lineID,
		Qty:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.repo.items[lineID].Qty)

	last := f.outbox.events[len(f.outbox.events)-1]
	require.Equal(t, enums.EventOrderUpdated, last.EventType)
	payload := last.Data.(payloads.OrderUpdatedEvent)
	assert.Equal(t, []uuid.UUID{lineID}, payload.LineIDs)
}

func TestCancelLineRequiresReasonAndRecomputesTotal(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines: []LineInput{
			{ItemCode: "NASI-GORENG", Qty: 2},
			{ItemCode: "NASI-GORENG", Qty: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)

	err = f.svc.CancelLine(ctx, waiterActor(f.branch.ID), allBranches(), CancelLineInput{
		OrderID: detail.ID,
		LineID:  detail.Lines[0].ID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	err = f.svc.CancelLine(ctx, waiterActor(f.branch.ID), allBranches(), CancelLineInput{
		OrderID: detail.ID,
		LineID:  detail.Lines[0].ID,
		Reason:  "customer changed mind",
	})
	require.NoError(t, err)

	order := f.repo.orders[detail.ID]
	assert.True(t, order.Total.Equal(decimal.RequireFromString("25000")))

	var cancelled *models.POSOrderItem
	for _, item := range f.repo.items {
		if item.ID == detail.Lines[0].ID {
			cancelled = item
		}
	}
	require.NotNil(t, cancelled)
	assert.True(t, cancelled.Cancelled)
	require.NotNil(t, cancelled.CancelReason)

	last := f.outbox.events[len(f.outbox.events)-1]
	assert.Equal(t, enums.EventOrderLineCancelled, last.EventType)
}

func TestCancelLineRejectsDispatchedLine(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)

	f.repo.items[detail.Lines[0].ID].SentToKitchen = true

	err = f.svc.CancelLine(ctx, waiterActor(f.branch.ID), allBranches(), CancelLineInput{
		OrderID: detail.ID,
		LineID:  detail.Lines[0].ID,
		Reason:  "too late",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestMarkServedRequiresDispatchedLines(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)
	lineID := detail.Lines[0].ID

	err = f.svc.MarkServed(ctx, waiterActor(f.branch.ID), allBranches(), MarkServedInput{
		OrderID: detail.ID,
		LineIDs: []uuid.UUID{lineID},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	cooking := enums.KitchenItemStatusCooking
	f.repo.items[lineID].KitchenStatus = &cooking

	err = f.svc.MarkServed(ctx, waiterActor(f.branch.ID), allBranches(), MarkServedInput{
		OrderID: detail.ID,
		LineIDs: []uuid.UUID{lineID},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.KitchenItemStatusServed, *f.repo.items[lineID].KitchenStatus)

	last := f.outbox.events[len(f.outbox.events)-1]
	assert.Equal(t, enums.EventOrderServed, last.EventType)
}

func TestMarkServedWithoutLineIDsServesAllOutstanding(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines: []LineInput{
			{ItemCode: "NASI-GORENG", Qty: 1},
			{ItemCode: "NASI-GORENG", Qty: 2},
		},
	})
	require.NoError(t, err)

	cooking := enums.KitchenItemStatusCooking
	served := enums.KitchenItemStatusServed
	f.repo.items[detail.Lines[0].ID].KitchenStatus = &cooking
	f.repo.items[detail.Lines[1].ID].KitchenStatus = &served

	err = f.svc.MarkServed(ctx, waiterActor(f.branch.ID), allBranches(), MarkServedInput{
		OrderID: detail.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.KitchenItemStatusServed, *f.repo.items[detail.Lines[0].ID].KitchenStatus)

	last := f.outbox.events[len(f.outbox.events)-1]
	require.Equal(t, enums.EventOrderServed, last.EventType)
	assert.Equal(t, []uuid.UUID{detail.Lines[0].ID}, last.Data.(payloads.OrderServedEvent).LineIDs)

	// Everything already delivered: a repeat call is a silent no-op.
	before := len(f.outbox.events)
	err = f.svc.MarkServed(ctx, waiterActor(f.branch.ID), allBranches(), MarkServedInput{
		OrderID: detail.ID,
	})
	require.NoError(t, err)
	assert.Len(t, f.outbox.events, before)
}

func TestMarkServedSyncsKitchenTicket(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines: []LineInput{
			{ItemCode: "NASI-GORENG", Qty: 1},
			{ItemCode: "NASI-GORENG", Qty: 1},
		},
	})
	require.NoError(t, err)

	ready := enums.KitchenItemStatusReady
	kot := models.KOT{ID: uuid.New(), BranchID: f.branch.ID, OrderID: detail.ID, OrderRef: detail.OrderRef, Status: enums.KOTStatusReady}
	f.repo.kots[kot.ID] = &kot
	for _, line := range detail.Lines {
		f.repo.items[line.ID].KitchenStatus = &ready
		ticketItem := models.KOTItem{
			ID:          uuid.New(),
			KOTID:       kot.ID,
			OrderItemID: line.ID,
			ItemCode:    "NASI-GORENG",
			ItemName:    "Nasi Goreng",
			Qty:         1,
			Status:      enums.KitchenItemStatusReady,
		}
		f.repo.kotItems[ticketItem.ID] = &ticketItem
	}

	err = f.svc.MarkServed(ctx, waiterActor(f.branch.ID), allBranches(), MarkServedInput{
		OrderID: detail.ID,
	})
	require.NoError(t, err)

	for _, item := range f.repo.kotItems {
		assert.Equal(t, enums.KitchenItemStatusServed, item.Status)
	}
	assert.Equal(t, enums.KOTStatusServed, f.repo.kots[kot.ID].Status)
}

func TestMarkServedRejectsCancelledLine(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)
	lineID := detail.Lines[0].ID

	cancelled := enums.KitchenItemStatusCancelled
	f.repo.items[lineID].KitchenStatus = &cancelled

	err = f.svc.MarkServed(ctx, waiterActor(f.branch.ID), allBranches(), MarkServedInput{
		OrderID: detail.ID,
		LineIDs: []uuid.UUID{lineID},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSetStatusEnforcesTransitionsAndRoles(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)

	err = f.svc.SetStatus(ctx, waiterActor(f.branch.ID), allBranches(), StatusChangeInput{
		OrderID: detail.ID,
		Target:  enums.OrderStatusPaid,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	err = f.svc.SetStatus(ctx, waiterActor(f.branch.ID), allBranches(), StatusChangeInput{
		OrderID: detail.ID,
		Target:  enums.OrderStatusReadyForBilling,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	err = f.svc.SetStatus(ctx, waiterActor(f.branch.ID), allBranches(), StatusChangeInput{
		OrderID: detail.ID,
		Target:  enums.OrderStatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusInProgress, f.repo.orders[detail.ID].Status)

	err = f.svc.SetStatus(ctx, waiterActor(f.branch.ID), allBranches(), StatusChangeInput{
		OrderID: detail.ID,
		Target:  enums.OrderStatusCancelled,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestTerminalStatusReleasesTable(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	tableID := f.table.ID
	detail, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		TableID:  &tableID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)

	cashier := Actor{User: "sari", Role: enums.StaffRoleCashier}
	f.repo.orders[detail.ID].Status = enums.OrderStatusReadyForBilling

	err = f.svc.SetStatus(ctx, cashier, allBranches(), StatusChangeInput{
		OrderID: detail.ID,
		Target:  enums.OrderStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, f.repo.orders[detail.ID].Status)

	last := f.outbox.events[len(f.outbox.events)-1]
	assert.Equal(t, enums.EventTableReleased, last.EventType)
	assert.Len(t, f.invalidator.branches, 2)
}

func TestListOrdersWarnedScopeMatchesNone(t *testing.T) {
	f := newOrdersFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, waiterActor(f.branch.ID), allBranches(), CreateOrderInput{
		BranchID: f.branch.ID,
		Lines:    []LineInput{{ItemCode: "NASI-GORENG", Qty: 1}},
	})
	require.NoError(t, err)

	page, err := f.svc.ListOrders(ctx, visibility.BranchScope{Warned: true}, ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, page.Orders)

	page, err = f.svc.ListOrders(ctx, allBranches(), ListFilters{})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)
}
