package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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

// Actor identifies the staff member performing a kitchen operation.
type Actor struct {
	User     string
	BranchID *uuid.UUID
	Role     enums.StaffRole
}

// Service defines kitchen ticket operations.
type Service interface {
	Dispatch(ctx context.Context, actor Actor, scope visibility.BranchScope, input DispatchInput) (*DispatchResult, error)
	UpdateItemStatus(ctx context.Context, actor Actor, scope visibility.BranchScope, input ItemStatusInput) error
	CancelTicket(ctx context.Context, actor Actor, scope visibility.BranchScope, input CancelTicketInput) error
	GetTicket(ctx context.Context, scope visibility.BranchScope, kotID uuid.UUID) (*TicketView, error)
	Display(ctx context.Context, scope visibility.BranchScope, branchID uuid.UUID) (*DisplayBoard, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds a kitchen service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("kitchen repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		logg:   logg,
	}, nil
}

// displayStatuses are the ticket states the kitchen board acts on.
func displayStatuses() []enums.KOTStatus {
	return []enums.KOTStatus{enums.KOTStatusNew, enums.KOTStatusInProgress, enums.KOTStatusReady}
}

func (s *service) Dispatch(ctx context.Context, actor Actor, scope visibility.BranchScope, input DispatchInput) (*DispatchResult, error) {
	if !actor.Role.CanDispatch() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot send items to the kitchen")
	}

	now := time.Now()
	var result *DispatchResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := visibility.EnsureBranchAccess(scope, order.BranchID); err != nil {
			return err
		}
		if order.Status != enums.OrderStatusDraft && order.Status != enums.OrderStatusInProgress {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not open for dispatch").
				WithDetails(map[string]any{"status": order.Status})
		}

		lines, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}
		var eligible []models.POSOrderItem
		for _, line := range lines {
			if line.DispatchEligible() {
				eligible = append(eligible, line)
			}
		}
		if len(eligible) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no new items to send to the kitchen")
		}

		// A draft order is submitted implicitly by its first dispatch.
		if order.Status == enums.OrderStatusDraft {
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusInProgress}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit draft order")
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
					From:     enums.OrderStatusDraft,
					To:       enums.OrderStatusInProgress,
				},
			}); err != nil {
				return err
			}
		}

		kot := &models.KOT{
			ID:       uuid.New(),
			BranchID: order.BranchID,
			OrderID:  order.ID,
			OrderRef: order.OrderID,
			Status:   enums.KOTStatusNew,
		}
		if _, err := repo.CreateKOT(ctx, kot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create kitchen ticket")
		}

		ticketItems := make([]models.KOTItem, 0, len(eligible))
		summaries := make([]payloads.KOTItemSummary, 0, len(eligible))
		confirmation := make([]string, 0, len(eligible))
		lineIDs := make([]uuid.UUID, 0, len(eligible))
		for _, line := range eligible {
			ticketItems = append(ticketItems, models.KOTItem{
				ID:          uuid.New(),
				KOTID:       kot.ID,
				OrderItemID: line.ID,
				ItemCode:    line.ItemCode,
				ItemName:    line.ItemName,
				Qty:         line.Qty,
				Note:        line.Note,
				Attributes:  line.Attributes,
				Status:      enums.KitchenItemStatusQueued,
				LastUpdate:  now,
			})
			summary := payloads.KOTItemSummary{
				ItemCode: line.ItemCode,
				ItemName: line.ItemName,
				Qty:      line.Qty,
			}
			if line.Note != nil {
				summary.Note = *line.Note
			}
			summaries = append(summaries, summary)
			confirmation = append(confirmation, fmt.Sprintf("%dx %s", line.Qty, line.ItemName))
			lineIDs = append(lineIDs, line.ID)
		}
		if err := repo.CreateKOTItems(ctx, ticketItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ticket items")
		}

		if err := repo.UpdateOrderItems(ctx, lineIDs, map[string]any{
			"sent_to_kitchen": true,
			"kot_id":          kot.ID,
			"kitchen_status":  enums.KitchenItemStatusQueued,
			"kitchen_update":  now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark lines dispatched")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDispatched,
			AggregateType: enums.AggregatePOSOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: payloads.OrderDispatchedEvent{
				OrderID:  order.ID,
				OrderRef: order.OrderID,
				KOTID:    kot.ID,
				LineIDs:  lineIDs,
			},
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventKOTCreated,
			AggregateType: enums.AggregateKOT,
			AggregateID:   kot.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: payloads.KOTCreatedEvent{
				KOTID:     kot.ID,
				OrderID:   order.ID,
				OrderRef:  order.OrderID,
				BranchID:  order.BranchID,
				ItemCount: len(ticketItems),
				Items:     summaries,
			},
		}); err != nil {
			return err
		}

		result = &DispatchResult{
			KOTID:        kot.ID,
			OrderRef:     order.OrderID,
			Confirmation: confirmation,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_ref": result.OrderRef,
		"kot_id":    result.KOTID.String(),
		"items":     len(result.Confirmation),
	})
	s.logg.Info(logCtx, "kitchen ticket created")
	return result, nil
}

func (s *service) UpdateItemStatus(ctx context.Context, actor Actor, scope visibility.BranchScope, input ItemStatusInput) error {
	if !actor.Role.CanUpdateKitchen() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot update kitchen items")
	}
	if !input.Target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid kitchen item status")
	}
	if input.Target.RequiresReason() && strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	now := time.Now()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindKOTItem(ctx, input.KOTItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ticket item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket item")
		}
		kot, err := repo.FindKOTForUpdate(ctx, item.KOTID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
		}
		if err := visibility.EnsureBranchAccess(scope, kot.BranchID); err != nil {
			return err
		}

		if item.Status == input.Target {
			return nil
		}
		if !item.Status.CanTransitionTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item status transition not allowed").
				WithDetails(map[string]any{"from": item.Status, "to": input.Target})
		}

		updates := map[string]any{
			"status":      input.Target,
			"last_update": now,
		}
		if input.Reason != "" {
			updates["cancel_reason"] = input.Reason
		}
		if err := repo.UpdateKOTItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ticket item")
		}
		if err := repo.UpdateOrderItems(ctx, []uuid.UUID{item.OrderItemID}, map[string]any{
			"kitchen_status": input.Target,
			"kitchen_update": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror line status")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventKitchenItemStatusChanged,
			AggregateType: enums.AggregateKOT,
			AggregateID:   kot.ID,
			Version:       1,
			Actor:         buildActor(actor),
			Data: payloads.KitchenItemStatusChangedEvent{
				KOTID:     kot.ID,
				KOTItemID: item.ID,
				OrderID:   kot.OrderID,
				BranchID:  kot.BranchID,
				ItemCode:  item.ItemCode,
				From:      item.Status,
				To:        input.Target,
				Reason:    input.Reason,
			},
		}); err != nil {
			return err
		}

		return s.syncTicketStatus(ctx, tx, repo, actor, kot)
	})
}

func (s *service) CancelTicket(ctx context.Context, actor Actor, scope visibility.BranchScope, input CancelTicketInput) error {
	if !actor.Role.CanUpdateKitchen() && !actor.Role.CanDispatch() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot cancel kitchen tickets")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	now := time.Now()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		kot, err := repo.FindKOTForUpdate(ctx, input.KOTID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
		}
		if err := visibility.EnsureBranchAccess(scope, kot.BranchID); err != nil {
			return err
		}
		if kot.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is already closed").
				WithDetails(map[string]any{"status": kot.Status})
		}

		items, err := repo.FindKOTItems(ctx, kot.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket items")
		}

		// Lines already plated stay on the ticket; everything still in the
		// queue returns to the order as undispatched.
		var revertLineIDs []uuid.UUID
		for _, item := range items {
			switch item.Status {
			case enums.KitchenItemStatusQueued, enums.KitchenItemStatusCooking:
				if err := repo.UpdateKOTItem(ctx, item.ID, map[string]any{
					"status":        enums.KitchenItemStatusCancelled,
					"cancel_reason": input.Reason,
					"last_update":   now,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel ticket item")
				}
				revertLineIDs = append(revertLineIDs, item.OrderItemID)
			}
		}
		if err := repo.UpdateOrderItems(ctx, revertLineIDs, map[string]any{
			"sent_to_kitchen": false,
			"kot_id":          nil,
			"kitchen_status":  nil,
			"kitchen_update":  nil,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert order lines")
		}

		return s.syncTicketStatus(ctx, tx, repo, actor, kot)
	})
}

func (s *service) GetTicket(ctx context.Context, scope visibility.BranchScope, kotID uuid.UUID) (*TicketView, error) {
	kot, err := s.repo.FindKOT(ctx, kotID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
	}
	if err := visibility.EnsureBranchAccess(scope, kot.BranchID); err != nil {
		return nil, err
	}
	view := newTicketView(kot, time.Now())
	return &view, nil
}

func (s *service) Display(ctx context.Context, scope visibility.BranchScope, branchID uuid.UUID) (*DisplayBoard, error) {
	if err := visibility.EnsureBranchAccess(scope, branchID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListActiveKOTs(ctx, branchID, displayStatuses())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list kitchen tickets")
	}

	now := time.Now()
	board := &DisplayBoard{
		BranchID:    branchID,
		Tickets:     make([]TicketView, 0, len(rows)),
		GeneratedAt: now,
	}
	for i := range rows {
		board.Tickets = append(board.Tickets, newTicketView(&rows[i], now))
	}
	return board, nil
}

// syncTicketStatus recomputes the aggregate ticket status from its items and
// emits a change event when it moved.
func (s *service) syncTicketStatus(ctx context.Context, tx *gorm.DB, repo Repository, actor Actor, kot *models.KOT) error {
	items, err := repo.FindKOTItems(ctx, kot.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ticket items")
	}
	statuses := make([]enums.KitchenItemStatus, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, item.Status)
	}
	derived := enums.DeriveKOTStatus(statuses)
	if derived == kot.Status {
		return nil
	}

	if err := repo.UpdateKOT(ctx, kot.ID, map[string]any{"status": derived}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ticket status")
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventKOTStatusChanged,
		AggregateType: enums.AggregateKOT,
		AggregateID:   kot.ID,
		Version:       1,
		Actor:         buildActor(actor),
		Data: payloads.KOTStatusChangedEvent{
			KOTID:    kot.ID,
			OrderID:  kot.OrderID,
			OrderRef: kot.OrderRef,
			BranchID: kot.BranchID,
			From:     kot.Status,
			To:       derived,
		},
	})
}

func buildActor(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		User:     actor.User,
		BranchID: actor.BranchID,
		Role:     string(actor.Role),
	}
}

// formatAttributes renders a stored variant selection as "Size: Large" pairs
// in key order.
func formatAttributes(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var attrs map[string]string
	if err := json.Unmarshal(raw, &attrs); err != nil || len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, attrs[k]))
	}
	return strings.Join(parts, ", ")
}

func newTicketView(kot *models.KOT, now time.Time) TicketView {
	view := TicketView{
		ID:         kot.ID,
		OrderRef:   kot.OrderRef,
		BranchID:   kot.BranchID,
		Status:     kot.Status,
		CreatedAt:  kot.CreatedAt,
		AgeSeconds: int64(now.Sub(kot.CreatedAt).Seconds()),
		Items:      make([]TicketItemView, 0, len(kot.Items)),
	}
	if kot.Order != nil && kot.Order.Table != nil {
		view.TableNumber = kot.Order.Table.TableNumber
	}
	for _, item := range kot.Items {
		view.Items = append(view.Items, TicketItemView{
			ID:           item.ID,
			ItemCode:     item.ItemCode,
			ItemName:     item.ItemName,
			Qty:          item.Qty,
			Note:         item.Note,
			Attributes:   formatAttributes(item.Attributes),
			Status:       item.Status,
			CancelReason: item.CancelReason,
			LastUpdate:   item.LastUpdate,
		})
	}
	return view
}
