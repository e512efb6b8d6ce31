package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/internal/variants"
	"github.com/itbpos/restaurant-backend/pkg/db"
	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
	"github.com/itbpos/restaurant-backend/pkg/outbox/payloads"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type menuResolver interface {
	EnsureSellable(ctx context.Context, itemCode string) (*models.Item, error)
	PriceFor(ctx context.Context, itemCode string) (*variants.PriceResult, error)
}

type tableInvalidator interface {
	InvalidateAvailability(ctx context.Context, branchID uuid.UUID)
}

// Service defines waiter-facing order operations.
type Service interface {
	CreateOrder(ctx context.Context, actor Actor, scope visibility.BranchScope, input CreateOrderInput) (*OrderDetail, error)
	AddLines(ctx context.Context, actor Actor, scope visibility.BranchScope, input AddLinesInput) (*OrderDetail, error)
	UpdateLine(ctx context.Context, actor Actor, scope visibility.BranchScope, input UpdateLineInput) error
	CancelLine(ctx context.Context, actor Actor, scope visibility.BranchScope, input CancelLineInput) error
	MarkServed(ctx context.Context, actor Actor, scope visibility.BranchScope, input MarkServedInput) error
	SetStatus(ctx context.Context, actor Actor, scope visibility.BranchScope, input StatusChangeInput) error
	GetOrder(ctx context.Context, scope visibility.BranchScope, orderID uuid.UUID) (*OrderDetail, error)
	ListOrders(ctx context.Context, scope visibility.BranchScope, filters ListFilters) (*OrderListResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	menu   menuResolver
	tables tableInvalidator
	logg   *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, menu menuResolver, tables tableInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if menu == nil {
		return nil, fmt.Errorf("menu resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		menu:   menu,
		tables: tables,
		logg:   logg,
	}, nil
}

const orderRefRetries = 3

func (s *service) CreateOrder(ctx context.Context, actor Actor, scope visibility.BranchScope, input CreateOrderInput) (*OrderDetail, error) {
	if strings.TrimSpace(actor.User) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := visibility.EnsureBranchAccess(scope, input.BranchID); err != nil {
		return nil, err
	}

	now := time.Now()
	var detail *OrderDetail

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		branch, err := repo.FindBranch(ctx, input.BranchID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
		}
		if branch.Disabled {
			return pkgerrors.New(pkgerrors.CodeValidation, "branch is disabled")
		}

		var table *models.POSTable
		if input.TableID != nil {
			table, err = s.claimTable(ctx, repo, branch.ID, *input.TableID)
			if err != nil {
				return err
			}
		}

		lines, total, err := s.buildLines(ctx, input.Lines)
		if err != nil {
			return err
		}

		order := &models.POSOrder{
			ID:           uuid.New(),
			BranchID:     branch.ID,
			TableID:      input.TableID,
			CustomerName: input.CustomerName,
			WaiterUser:   actor.User,
			Status:       enums.OrderStatusDraft,
			Total:        total,
			OrderedAt:    now,
		}

		if err := s.createWithRef(ctx, repo, order, branch.Code, now); err != nil {
			return err
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}

		created := payloads.OrderCreatedEvent{
			OrderID:    order.ID,
			OrderRef:   order.OrderID,
			BranchID:   branch.ID,
			TableID:    input.TableID,
			WaiterUser: actor.User,
		}
		if table != nil {
			created.TableNumber = table.TableNumber
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePOSOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data:          created,
		}); err != nil {
			return err
		}

		if table != nil {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventTableAssigned,
				AggregateType: enums.AggregateTable,
				AggregateID:   table.ID,
				Version:       1,
				Actor:         buildActor(actor),
				Data: payloads.TableAssignedEvent{
					TableID:     table.ID,
					TableNumber: table.TableNumber,
					BranchID:    branch.ID,
					OrderID:     order.ID,
					OrderRef:    order.OrderID,
				},
			}); err != nil {
				return err
			}
		}

		order.Items = lines
		order.Table = table
		detail = newOrderDetail(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.TableID != nil && s.tables != nil {
		s.tables.InvalidateAvailability(ctx, input.BranchID)
	}
	return detail, nil
}

func (s *service) AddLines(ctx context.Context, actor Actor, scope visibility.BranchScope, input AddLinesInput) (*OrderDetail, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line required")
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOpenOrder(ctx, repo, scope, input.OrderID)
		if err != nil {
			return err
		}

		lines, added, err := s.buildLines(ctx, input.Lines)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}

		total := order.Total.Add(added)
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"total": total}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
		}

		reloaded, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		detail = newOrderDetail(reloaded)

		lineIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			lineIDs = append(lineIDs, line.ID)
		}
		return s.emitOrderUpdated(ctx, tx, actor, order, lineIDs)
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) UpdateLine(ctx context.Context, actor Actor, scope visibility.BranchScope, input UpdateLineInput) error {
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOpenOrder(ctx, repo, scope, input.OrderID)
		if err != nil {
			return err
		}
		line, err := s.loadLine(ctx, repo, order.ID, input.LineID)
		if err != nil {
			return err
		}
		if line.SentToKitchen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "line already sent to kitchen")
		}
		if line.Cancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "line is cancelled")
		}

		amount := line.Rate.Mul(decimalFromInt(input.Qty))
		updates := map[string]any{
			"qty":    input.Qty,
			"amount": amount,
		}
		if input.Note != nil {
			updates["note"] = *input.Note
		}
		if err := repo.UpdateOrderItem(ctx, line.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
		}
		if err := s.recomputeTotal(ctx, repo, order.ID); err != nil {
			return err
		}
		return s.emitOrderUpdated(ctx, tx, actor, order, []uuid.UUID{line.ID})
	})
}

func (s *service) CancelLine(ctx context.Context, actor Actor, scope visibility.BranchScope, input CancelLineInput) error {
	if strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOpenOrder(ctx, repo, scope, input.OrderID)
		if err != nil {
			return err
		}
		line, err := s.loadLine(ctx, repo, order.ID, input.LineID)
		if err != nil {
			return err
		}
		if line.Cancelled {
			return nil
		}
		if line.SentToKitchen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "line already in the kitchen; cancel it from the kitchen ticket")
		}

		if err := repo.UpdateOrderItem(ctx, line.ID, map[string]any{
			"cancelled":     true,
			"cancel_reason": input.Reason,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order line")
		}
		if err := s.recomputeTotal(ctx, repo, order.ID); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderLineCancelled,
			AggregateType: enums.AggregatePOSOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: payloads.OrderLineCancelledEvent{
				OrderID:  order.ID,
				OrderRef: order.OrderID,
				LineID:   line.ID,
				ItemCode: line.ItemCode,
				Qty:      line.Qty,
				Reason:   input.Reason,
			},
		})
	})
}

func (s *service) MarkServed(ctx context.Context, actor Actor, scope visibility.BranchScope, input MarkServedInput) error {
	now := time.Now()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadScopedOrder(ctx, repo, scope, input.OrderID)
		if err != nil {
			return err
		}

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}

		targets, err := serveTargets(items, input.LineIDs)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}

		if err := repo.UpdateOrderItemsKitchenStatus(ctx, targets, enums.KitchenItemStatusServed, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark lines served")
		}
		if err := s.syncServedTickets(ctx, repo, targets, now); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderServed,
			AggregateType: enums.AggregatePOSOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: payloads.OrderServedEvent{
				OrderID:  order.ID,
				OrderRef: order.OrderID,
				LineIDs:  targets,
				ServedAt: now,
			},
		})
	})
}

// serveTargets picks the lines to serve. With no explicit ids every
// dispatched line that is not already served or cancelled is taken; explicit
// ids must name dispatched, uncancelled lines, and already-served ones are
// skipped so the operation stays idempotent.
func serveTargets(items []models.POSOrderItem, lineIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(lineIDs) == 0 {
		var targets []uuid.UUID
		for _, item := range items {
			if item.KitchenStatus == nil || item.Cancelled {
				continue
			}
			switch *item.KitchenStatus {
			case enums.KitchenItemStatusServed, enums.KitchenItemStatusCancelled:
				continue
			}
			targets = append(targets, item.ID)
		}
		return targets, nil
	}

	byID := make(map[uuid.UUID]models.POSOrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var targets []uuid.UUID
	for _, lineID := range lineIDs {
		line, ok := byID[lineID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not found on order").
				WithDetails(map[string]any{"line_id": lineID})
		}
		if line.KitchenStatus == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "line has not been sent to the kitchen").
				WithDetails(map[string]any{"line_id": lineID})
		}
		switch *line.KitchenStatus {
		case enums.KitchenItemStatusCancelled:
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled lines cannot be served").
				WithDetails(map[string]any{"line_id": lineID})
		case enums.KitchenItemStatusServed:
			continue
		}
		targets = append(targets, lineID)
	}
	return targets, nil
}

// syncServedTickets mirrors the served status onto the kitchen copies of the
// lines and re-derives each touched ticket's aggregate status, so a fully
// delivered ticket leaves the kitchen board.
func (s *service) syncServedTickets(ctx context.Context, repo Repository, lineIDs []uuid.UUID, now time.Time) error {
	kotItems, err := repo.FindKOTItemsForOrderItems(ctx, lineIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket lines")
	}

	touched := make(map[uuid.UUID]struct{}, len(kotItems))
	var itemIDs []uuid.UUID
	for _, item := range kotItems {
		if item.Status == enums.KitchenItemStatusCancelled {
			continue
		}
		itemIDs = append(itemIDs, item.ID)
		touched[item.KOTID] = struct{}{}
	}
	if len(itemIDs) == 0 {
		return nil
	}

	if err := repo.UpdateKOTItemsStatus(ctx, itemIDs, enums.KitchenItemStatusServed, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark ticket lines served")
	}

	for kotID := range touched {
		ticketItems, err := repo.FindKOTItems(ctx, kotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ticket lines")
		}
		statuses := make([]enums.KitchenItemStatus, 0, len(ticketItems))
		for _, item := range ticketItems {
			statuses = append(statuses, item.Status)
		}
		derived := enums.DeriveKOTStatus(statuses)
		if err := repo.UpdateKOT(ctx, kotID, map[string]any{"status": derived}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ticket status")
		}
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, actor Actor, scope visibility.BranchScope, input StatusChangeInput) error {
	if !input.Target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.Target == enums.OrderStatusCancelled && strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}
	if isBillingStatus(input.Target) && !actor.Role.CanBill() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot perform billing transitions")
	}

	var releasedBranch uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadScopedOrderForUpdate(ctx, repo, scope, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == input.Target {
			return nil
		}
		if !order.Status.CanTransitionTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": input.Target})
		}

		updates := map[string]any{"status": input.Target}
		if input.Target == enums.OrderStatusFinalBilled {
			updates["final_billed"] = true
		}
		if input.Target == enums.OrderStatusCancelled {
			updates["cancel_reason"] = input.Reason
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregatePOSOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:  order.ID,
				OrderRef: order.OrderID,
				BranchID: order.BranchID,
				From:     order.Status,
				To:       input.Target,
				Reason:   input.Reason,
			},
		}); err != nil {
			return err
		}

		if order.TableID != nil && input.Target.IsTerminal() {
			table, err := repo.FindTable(ctx, *order.TableID)
			if err != nil && err != gorm.ErrRecordNotFound {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
			}
			released := payloads.TableReleasedEvent{
				TableID:  *order.TableID,
				BranchID: order.BranchID,
				OrderID:  order.ID,
				OrderRef: order.OrderID,
			}
			if table != nil {
				released.TableNumber = table.TableNumber
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventTableReleased,
				AggregateType: enums.AggregateTable,
				AggregateID:   *order.TableID,
				Version:       1,
				Actor:         buildActor(actor),
				Data:          released,
			}); err != nil {
				return err
			}
			releasedBranch = order.BranchID
		}
		return nil
	})
	if err != nil {
		return err
	}

	if releasedBranch != uuid.Nil && s.tables != nil {
		s.tables.InvalidateAvailability(ctx, releasedBranch)
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, scope visibility.BranchScope, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := visibility.EnsureBranchAccess(scope, order.BranchID); err != nil {
		return nil, err
	}
	return newOrderDetail(order), nil
}

func (s *service) ListOrders(ctx context.Context, scope visibility.BranchScope, filters ListFilters) (*OrderListResult, error) {
	if scope.MatchNone() {
		s.logg.Warn(ctx, "user has no branch permissions; order list is empty")
		return &OrderListResult{Orders: []OrderSummary{}}, nil
	}
	if filters.BranchID != nil && !scope.Allows(*filters.BranchID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "branch not permitted")
	}

	var branchIDs []uuid.UUID
	if !scope.All {
		branchIDs = scope.BranchIDs
	}
	rows, nextCursor, err := s.repo.ListOrders(ctx, branchIDs, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, newOrderSummary(&rows[i]))
	}
	return &OrderListResult{Orders: summaries, NextCursor: nextCursor}, nil
}

// claimTable validates the table belongs to the branch, is usable, and has no
// open order. Availability is rechecked inside the transaction so two waiters
// cannot claim the same table.
func (s *service) claimTable(ctx context.Context, repo Repository, branchID, tableID uuid.UUID) (*models.POSTable, error) {
	table, err := repo.FindTable(ctx, tableID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}
	if table.BranchID != branchID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table belongs to a different branch")
	}
	if table.Disabled || table.Status == enums.TableStatusMaintenance {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table is not in service")
	}

	open, err := repo.FindOpenOrderForTable(ctx, tableID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check table availability")
	}
	if open != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "table already has an open order").
			WithDetails(map[string]any{"order_ref": open.OrderID})
	}
	return table, nil
}

// buildLines resolves and prices the requested lines. Templates and disabled
// items are rejected before anything is written.
func (s *service) buildLines(ctx context.Context, inputs []LineInput) ([]models.POSOrderItem, decimal.Decimal, error) {
	total := decimal.Zero
	lines := make([]models.POSOrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Qty <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"item_code": in.ItemCode})
		}
		item, err := s.menu.EnsureSellable(ctx, in.ItemCode)
		if err != nil {
			return nil, decimal.Zero, err
		}
		price, err := s.menu.PriceFor(ctx, item.Code)
		if err != nil {
			return nil, decimal.Zero, err
		}

		var attrs json.RawMessage
		if len(in.Attributes) > 0 {
			raw, err := json.Marshal(in.Attributes)
			if err != nil {
				return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode line attributes")
			}
			attrs = raw
		}

		amount := price.Rate.Mul(decimalFromInt(in.Qty))
		lines = append(lines, models.POSOrderItem{
			ID:         uuid.New(),
			ItemCode:   item.Code,
			ItemName:   item.Name,
			Qty:        in.Qty,
			Rate:       price.Rate,
			Amount:     amount,
			Note:       in.Note,
			Attributes: attrs,
		})
		total = total.Add(amount)
	}
	return lines, total, nil
}

// createWithRef assigns the next daily sequence and retries on an order_id
// collision from a concurrent create.
func (s *service) createWithRef(ctx context.Context, repo Repository, order *models.POSOrder, branchCode string, now time.Time) error {
	dayStart, dayEnd := dayWindow(now)
	for attempt := 0; attempt < orderRefRetries; attempt++ {
		count, err := repo.CountOrdersForBranchBetween(ctx, order.BranchID, dayStart, dayEnd)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch orders")
		}
		order.OrderID = FormatOrderRef(branchCode, now, count+1+int64(attempt))

		_, err = repo.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	return pkgerrors.New(pkgerrors.CodeDependency, "could not allocate order reference")
}

func (s *service) recomputeTotal(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	items, err := repo.FindOrderItems(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order lines")
	}
	total := decimal.Zero
	for _, item := range items {
		if item.Cancelled {
			continue
		}
		total = total.Add(item.Amount)
	}
	if err := repo.UpdateOrder(ctx, orderID, map[string]any{"total": total}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
	}
	return nil
}

// emitOrderUpdated records a line-level edit so display consumers refresh
// from the event stream instead of the poll interval.
func (s *service) emitOrderUpdated(ctx context.Context, tx *gorm.DB, actor Actor, order *models.POSOrder, lineIDs []uuid.UUID) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderUpdated,
		AggregateType: enums.AggregatePOSOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         buildActor(actor),
		Data: payloads.OrderUpdatedEvent{
			OrderID:  order.ID,
			OrderRef: order.OrderID,
			BranchID: order.BranchID,
			LineIDs:  lineIDs,
		},
	})
}

// loadOpenOrder fetches the order and rejects edits once it has left the
// editable statuses.
func (s *service) loadOpenOrder(ctx context.Context, repo Repository, scope visibility.BranchScope, orderID uuid.UUID) (*models.POSOrder, error) {
	order, err := s.loadScopedOrderForUpdate(ctx, repo, scope, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case enums.OrderStatusDraft, enums.OrderStatusInProgress:
		return order, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be edited").
			WithDetails(map[string]any{"status": order.Status})
	}
}

func (s *service) loadScopedOrder(ctx context.Context, repo Repository, scope visibility.BranchScope, orderID uuid.UUID) (*models.POSOrder, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := visibility.EnsureBranchAccess(scope, order.BranchID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) loadScopedOrderForUpdate(ctx context.Context, repo Repository, scope visibility.BranchScope, orderID uuid.UUID) (*models.POSOrder, error) {
	order, err := repo.FindOrderForUpdate(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := visibility.EnsureBranchAccess(scope, order.BranchID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) loadLine(ctx context.Context, repo Repository, orderID, lineID uuid.UUID) (*models.POSOrderItem, error) {
	line, err := repo.FindOrderItem(ctx, lineID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
	}
	if line.OrderID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "line does not belong to order")
	}
	return line, nil
}

func isBillingStatus(status enums.OrderStatus) bool {
	return status == enums.OrderStatusFinalBilled || status == enums.OrderStatusPaid
}

func buildActor(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		User:     actor.User,
		BranchID: actor.BranchID,
		Role:     string(actor.Role),
	}
}

func newOrderSummary(order *models.POSOrder) OrderSummary {
	summary := OrderSummary{
		ID:           order.ID,
		OrderRef:     order.OrderID,
		BranchID:     order.BranchID,
		CustomerName: order.CustomerName,
		WaiterUser:   order.WaiterUser,
		Status:       order.Status,
		Total:        order.Total,
		LineCount:    len(order.Items),
		OrderedAt:    order.OrderedAt,
	}
	if order.Table != nil {
		summary.TableNumber = order.Table.TableNumber
	}
	return summary
}

func newOrderDetail(order *models.POSOrder) *OrderDetail {
	detail := &OrderDetail{
		OrderSummary: newOrderSummary(order),
		FinalBilled:  order.FinalBilled,
		CancelReason: order.CancelReason,
	}
	detail.Lines = make([]LineView, 0, len(order.Items))
	for _, item := range order.Items {
		detail.Lines = append(detail.Lines, LineView{
			ID:            item.ID,
			ItemCode:      item.ItemCode,
			ItemName:      item.ItemName,
			Qty:           item.Qty,
			Rate:          item.Rate,
			Amount:        item.Amount,
			Note:          item.Note,
			SentToKitchen: item.SentToKitchen,
			Cancelled:     item.Cancelled,
			CancelReason:  item.CancelReason,
			KitchenStatus: item.KitchenStatus,
			KitchenUpdate: item.KitchenUpdate,
		})
	}
	return detail
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
