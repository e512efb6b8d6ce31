package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/pkg/config"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type ordersLister interface {
	ListOrders(ctx context.Context, scope visibility.BranchScope, filters orders.ListFilters) (*orders.OrderListResult, error)
}

// ExportResult points the caller at the file written to the export directory.
type ExportResult struct {
	FileName    string    `json:"fileName"`
	Location    string    `json:"location"`
	RowCount    int       `json:"rowCount"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Service writes order lists as CSV files served from a static directory.
type Service interface {
	ExportOrders(ctx context.Context, scope visibility.BranchScope, filters orders.ListFilters) (*ExportResult, error)
}

type service struct {
	orders ordersLister
	cfg    config.ExportsConfig
	logg   *logger.Logger
}

func NewService(ordersSvc ordersLister, cfg config.ExportsConfig, logg *logger.Logger) (Service, error) {
	if ordersSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "exports service requires an orders lister")
	}
	if cfg.Dir == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "exports service requires a target directory")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "exports service requires a logger")
	}
	return &service{orders: ordersSvc, cfg: cfg, logg: logg}, nil
}

var exportHeader = []string{
	"order_ref", "branch_id", "table", "customer", "waiter",
	"status", "total", "line_count", "ordered_at",
}

func (s *service) ExportOrders(ctx context.Context, scope visibility.BranchScope, filters orders.ListFilters) (*ExportResult, error) {
	// Exports ignore pagination so the file always holds the full match set.
	filters.Limit = 0
	filters.Cursor = nil
	page, err := s.orders.ListOrders(ctx, scope, filters)
	if err != nil {
		return nil, err
	}
	rows := page.Orders

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create export directory")
	}

	now := time.Now()
	fileName := fmt.Sprintf("orders-%s-%s.csv", now.Format("20060102-150405"), uuid.New().String()[:8])
	fullPath := filepath.Join(s.cfg.Dir, fileName)

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create export file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(exportHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write export header")
	}
	for _, row := range rows {
		record := []string{
			row.OrderRef,
			row.BranchID.String(),
			row.TableNumber,
			stringOrEmpty(row.CustomerName),
			row.WaiterUser,
			row.Status.String(),
			row.Total.StringFixed(2),
			fmt.Sprintf("%d", row.LineCount),
			row.OrderedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write export row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flush export file")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"file": fileName,
		"rows": len(rows),
	})
	s.logg.Info(logCtx, "orders export written")

	return &ExportResult{
		FileName:    fileName,
		Location:    path.Join(s.cfg.BaseURL, fileName),
		RowCount:    len(rows),
		GeneratedAt: now,
	}, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
