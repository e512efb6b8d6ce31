package printing

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type stubTicketSource struct {
	ticket *kitchen.TicketView
	err    error
}

func (s *stubTicketSource) GetTicket(_ context.Context, _ visibility.BranchScope, _ uuid.UUID) (*kitchen.TicketView, error) {
	return s.ticket, s.err
}

type stubOrderSource struct {
	order *orders.OrderDetail
	err   error
}

func (s *stubOrderSource) GetOrder(_ context.Context, _ visibility.BranchScope, _ uuid.UUID) (*orders.OrderDetail, error) {
	return s.order, s.err
}

type stubBranchSource struct {
	branch *models.Branch
}

func (s *stubBranchSource) FindBranch(_ context.Context, _ uuid.UUID) (*models.Branch, error) {
	if s.branch == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.branch, nil
}

func printTestLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "printing-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func strPtr(s string) *string { return &s }

func newPrintFixture(t *testing.T, tickets *stubTicketSource, ordersSvc *stubOrderSource, branches *stubBranchSource) Service {
	t.Helper()
	svc, err := NewService(tickets, ordersSvc, branches, printTestLogger())
	require.NoError(t, err)
	return svc
}

func TestRenderKOTIncludesItemsAndAttributes(t *testing.T) {
	ticket := &kitchen.TicketView{
		ID:          uuid.New(),
		OrderRef:    "JKT01-20260901-0003",
		TableNumber: "T5",
		Status:      enums.KOTStatusNew,
		CreatedAt:   time.Now(),
		Items: []kitchen.TicketItemView{
			{
				ID:       uuid.New(),
				ItemCode: "NASI-GORENG",
				ItemName: "Nasi Goreng",
				Qty:      2,
				Note:     strPtr("extra spicy"),
				Status:   enums.KitchenItemStatusQueued,
			},
			{
				ID:         uuid.New(),
				ItemCode:   "ES-TEH-L",
				ItemName:   "Es Teh (Large)",
				Qty:        1,
				Attributes: "Size: Large",
				Status:     enums.KitchenItemStatusCancelled,
			},
		},
	}
	svc := newPrintFixture(t, &stubTicketSource{ticket: ticket}, &stubOrderSource{}, &stubBranchSource{})

	out, err := svc.RenderKOT(context.Background(), visibility.BranchScope{All: true}, ticket.ID)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "JKT01-20260901-0003")
	assert.Contains(t, html, "Table: T5")
	assert.Contains(t, html, "2x")
	assert.Contains(t, html, "Nasi Goreng")
	assert.Contains(t, html, "extra spicy")
	assert.Contains(t, html, "Size: Large")
	assert.Contains(t, html, `class="cancelled"`)
}

func TestRenderKOTPropagatesSourceError(t *testing.T) {
	src := &stubTicketSource{err: pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")}
	svc := newPrintFixture(t, src, &stubOrderSource{}, &stubBranchSource{})

	_, err := svc.RenderKOT(context.Background(), visibility.BranchScope{All: true}, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRenderReceiptSkipsCancelledLines(t *testing.T) {
	branchID := uuid.New()
	order := &orders.OrderDetail{
		OrderSummary: orders.OrderSummary{
			ID:          uuid.New(),
			OrderRef:    "JKT01-20260901-0007",
			BranchID:    branchID,
			TableNumber: "T2",
			WaiterUser:  "budi",
			Status:      enums.OrderStatusReadyForBilling,
			Total:       decimal.NewFromInt(50000),
		},
		Lines: []orders.LineView{
			{ItemName: "Nasi Goreng", Qty: 2, Amount: decimal.NewFromInt(50000)},
			{ItemName: "Es Teh (Large)", Qty: 1, Amount: decimal.NewFromInt(8500), Cancelled: true},
		},
	}
	branch := &models.Branch{ID: branchID, Code: "JKT01", Name: "Warung Pusat"}
	svc := newPrintFixture(t, &stubTicketSource{}, &stubOrderSource{order: order}, &stubBranchSource{branch: branch})

	out, err := svc.RenderReceipt(context.Background(), visibility.BranchScope{All: true}, order.ID)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Warung Pusat")
	assert.Contains(t, html, "JKT01-20260901-0007")
	assert.Contains(t, html, "Nasi Goreng")
	assert.Contains(t, html, "50000.00")
	assert.NotContains(t, html, "Es Teh")
	assert.Contains(t, html, "Served by: budi")
}

func TestRenderReceiptRejectsDraftOrder(t *testing.T) {
	order := &orders.OrderDetail{
		OrderSummary: orders.OrderSummary{
			ID:       uuid.New(),
			OrderRef: "JKT01-20260901-0001",
			BranchID: uuid.New(),
			Status:   enums.OrderStatusDraft,
		},
	}
	svc := newPrintFixture(t, &stubTicketSource{}, &stubOrderSource{order: order}, &stubBranchSource{})

	_, err := svc.RenderReceipt(context.Background(), visibility.BranchScope{All: true}, order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, &stubOrderSource{}, &stubBranchSource{}, printTestLogger())
	assert.Error(t, err)

	_, err = NewService(&stubTicketSource{}, &stubOrderSource{}, &stubBranchSource{}, nil)
	assert.Error(t, err)
}
