package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/internal/tables"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

const defaultSnapshotTTL = 2 * time.Minute

// snapshotStore persists serialized display snapshots.
type snapshotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(view, branch string) string
}

type kitchenBoard interface {
	Display(ctx context.Context, scope visibility.BranchScope, branchID uuid.UUID) (*kitchen.DisplayBoard, error)
}

type ordersLister interface {
	ListOrders(ctx context.Context, scope visibility.BranchScope, filters orders.ListFilters) (*orders.OrderListResult, error)
}

type tablesLister interface {
	ListAvailable(ctx context.Context, scope visibility.BranchScope, branchID uuid.UUID) (*tables.AvailableTablesResult, error)
}

// KitchenSnapshotJobParams configure the kitchen display snapshot job.
type KitchenSnapshotJobParams struct {
	Logger   *logger.Logger
	Branches BranchSource
	Kitchen  kitchenBoard
	Store    snapshotStore
	TTL      time.Duration
}

// NewKitchenSnapshotJob builds the job that refreshes the kitchen display
// snapshot for every active branch.
func NewKitchenSnapshotJob(params KitchenSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Branches == nil {
		return nil, fmt.Errorf("branch source required")
	}
	if params.Kitchen == nil {
		return nil, fmt.Errorf("kitchen service required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &kitchenSnapshotJob{
		logg:     params.Logger,
		branches: params.Branches,
		kitchen:  params.Kitchen,
		store:    params.Store,
		ttl:      ttl,
	}, nil
}

type kitchenSnapshotJob struct {
	logg     *logger.Logger
	branches BranchSource
	kitchen  kitchenBoard
	store    snapshotStore
	ttl      time.Duration
}

func (j *kitchenSnapshotJob) Name() string { return "kitchen-snapshot" }

func (j *kitchenSnapshotJob) Run(ctx context.Context) error {
	branches, err := j.branches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	scope := visibility.BranchScope{All: true}
	var errs error
	for _, branch := range branches {
		board, err := j.kitchen.Display(ctx, scope, branch.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
			continue
		}
		payload, err := json.Marshal(board)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
			continue
		}
		key := j.store.SnapshotKey("kitchen", branch.ID.String())
		if err := j.store.Set(ctx, key, payload, j.ttl); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
		}
	}
	return errs
}

// OrdersSnapshotJobParams configure the open orders snapshot job.
type OrdersSnapshotJobParams struct {
	Logger   *logger.Logger
	Branches BranchSource
	Orders   ordersLister
	Store    snapshotStore
	TTL      time.Duration
}

// NewOrdersSnapshotJob builds the job that refreshes the open-orders snapshot
// waiter terminals poll.
func NewOrdersSnapshotJob(params OrdersSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Branches == nil {
		return nil, fmt.Errorf("branch source required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &ordersSnapshotJob{
		logg:     params.Logger,
		branches: params.Branches,
		orders:   params.Orders,
		store:    params.Store,
		ttl:      ttl,
	}, nil
}

type ordersSnapshotJob struct {
	logg     *logger.Logger
	branches BranchSource
	orders   ordersLister
	store    snapshotStore
	ttl      time.Duration
}

func (j *ordersSnapshotJob) Name() string { return "orders-snapshot" }

func (j *ordersSnapshotJob) Run(ctx context.Context) error {
	branches, err := j.branches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	scope := visibility.BranchScope{All: true}
	var errs error
	for _, branch := range branches {
		branchID := branch.ID
		page, err := j.orders.ListOrders(ctx, scope, orders.ListFilters{BranchID: &branchID})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
			continue
		}
		open := make([]orders.OrderSummary, 0, len(page.Orders))
		for _, row := range page.Orders {
			if !row.Status.IsTerminal() {
				open = append(open, row)
			}
		}
		payload, err := json.Marshal(open)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
			continue
		}
		key := j.store.SnapshotKey("orders", branch.ID.String())
		if err := j.store.Set(ctx, key, payload, j.ttl); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
		}
	}
	return errs
}

// TablesWarmJobParams configure the table availability warmer.
type TablesWarmJobParams struct {
	Logger   *logger.Logger
	Branches BranchSource
	Tables   tablesLister
}

// NewTablesWarmJob builds the job that keeps the availability cache warm so
// floor terminals never hit a cold lookup.
func NewTablesWarmJob(params TablesWarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Branches == nil {
		return nil, fmt.Errorf("branch source required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("tables service required")
	}
	return &tablesWarmJob{
		logg:     params.Logger,
		branches: params.Branches,
		tables:   params.Tables,
	}, nil
}

type tablesWarmJob struct {
	logg     *logger.Logger
	branches BranchSource
	tables   tablesLister
}

func (j *tablesWarmJob) Name() string { return "tables-availability" }

func (j *tablesWarmJob) Run(ctx context.Context) error {
	branches, err := j.branches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	scope := visibility.BranchScope{All: true}
	var errs error
	for _, branch := range branches {
		if _, err := j.tables.ListAvailable(ctx, scope, branch.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.Code, err))
		}
	}
	return errs
}
