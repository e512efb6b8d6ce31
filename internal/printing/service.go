package printing

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type ticketSource interface {
	GetTicket(ctx context.Context, scope visibility.BranchScope, kotID uuid.UUID) (*kitchen.TicketView, error)
}

type orderSource interface {
	GetOrder(ctx context.Context, scope visibility.BranchScope, orderID uuid.UUID) (*orders.OrderDetail, error)
}

type branchSource interface {
	FindBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error)
}

// Service renders printer-ready documents for kitchen tickets and customer
// receipts.
type Service interface {
	RenderKOT(ctx context.Context, scope visibility.BranchScope, kotID uuid.UUID) ([]byte, error)
	RenderReceipt(ctx context.Context, scope visibility.BranchScope, orderID uuid.UUID) ([]byte, error)
}

type service struct {
	tickets  ticketSource
	orders   orderSource
	branches branchSource
	kotTmpl  *template.Template
	rcptTmpl *template.Template
	logg     *logger.Logger
}

// NewService parses the print templates once at startup.
func NewService(tickets ticketSource, ordersSvc orderSource, branches branchSource, logg *logger.Logger) (Service, error) {
	if tickets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "printing service requires a ticket source")
	}
	if ordersSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "printing service requires an order source")
	}
	if branches == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "printing service requires a branch source")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "printing service requires a logger")
	}
	kotTmpl, err := template.New("kot").Parse(kotTemplate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse kot template")
	}
	rcptTmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse receipt template")
	}
	return &service{
		tickets:  tickets,
		orders:   ordersSvc,
		branches: branches,
		kotTmpl:  kotTmpl,
		rcptTmpl: rcptTmpl,
		logg:     logg,
	}, nil
}

type kotDocument struct {
	OrderRef    string
	TableNumber string
	PrintedAt   time.Time
	Items       []kotDocumentItem
}

type kotDocumentItem struct {
	Qty        int
	ItemName   string
	Note       string
	Attributes string
	Cancelled  bool
}

func (s *service) RenderKOT(ctx context.Context, scope visibility.BranchScope, kotID uuid.UUID) ([]byte, error) {
	ticket, err := s.tickets.GetTicket(ctx, scope, kotID)
	if err != nil {
		return nil, err
	}

	doc := kotDocument{
		OrderRef:    ticket.OrderRef,
		TableNumber: ticket.TableNumber,
		PrintedAt:   time.Now(),
		Items:       make([]kotDocumentItem, 0, len(ticket.Items)),
	}
	for _, item := range ticket.Items {
		line := kotDocumentItem{
			Qty:        item.Qty,
			ItemName:   item.ItemName,
			Attributes: item.Attributes,
			Cancelled:  item.Status == enums.KitchenItemStatusCancelled,
		}
		if item.Note != nil {
			line.Note = *item.Note
		}
		doc.Items = append(doc.Items, line)
	}

	var buf bytes.Buffer
	if err := s.kotTmpl.Execute(&buf, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render kot")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"kot_id":    kotID,
		"order_ref": ticket.OrderRef,
	})
	s.logg.Info(logCtx, "kitchen ticket rendered")
	return buf.Bytes(), nil
}

type receiptDocument struct {
	BranchName   string
	OrderRef     string
	TableNumber  string
	CustomerName string
	WaiterUser   string
	PrintedAt    time.Time
	Lines        []receiptLine
	Total        string
}

type receiptLine struct {
	Qty      int
	ItemName string
	Amount   string
}

func (s *service) RenderReceipt(ctx context.Context, scope visibility.BranchScope, orderID uuid.UUID) ([]byte, error) {
	order, err := s.orders.GetOrder(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a draft order has no receipt")
	}

	branch, err := s.branches.FindBranch(ctx, order.BranchID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	doc := receiptDocument{
		BranchName: branch.Name,
		OrderRef:   order.OrderRef,
		WaiterUser: order.WaiterUser,
		PrintedAt:  time.Now(),
		Total:      order.Total.StringFixed(2),
	}
	doc.TableNumber = order.TableNumber
	if order.CustomerName != nil {
		doc.CustomerName = *order.CustomerName
	}
	for _, line := range order.Lines {
		if line.Cancelled {
			continue
		}
		doc.Lines = append(doc.Lines, receiptLine{
			Qty:      line.Qty,
			ItemName: line.ItemName,
			Amount:   line.Amount.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := s.rcptTmpl.Execute(&buf, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":  orderID,
		"order_ref": order.OrderRef,
	})
	s.logg.Info(logCtx, "receipt rendered")
	return buf.Bytes(), nil
}
