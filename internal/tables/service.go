package tables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/redis"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

const defaultCacheTTL = 30 * time.Second

type availabilityCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	AvailableTablesKey(branchID string) string
}

// Service exposes table lookups for order taking.
type Service interface {
	Get(ctx context.Context, scope visibility.BranchScope, tableID uuid.UUID) (*TableView, error)
	ListAvailable(ctx context.Context, scope visibility.BranchScope, branchID uuid.UUID) (*AvailableTablesResult, error)
	InvalidateAvailability(ctx context.Context, branchID uuid.UUID)
}

type service struct {
	repo     Repository
	cache    availabilityCache
	logg     *logger.Logger
	cacheTTL time.Duration
}

// NewService builds a tables service with the required dependencies.
func NewService(repo Repository, cache availabilityCache, logg *logger.Logger, cacheTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &service{
		repo:     repo,
		cache:    cache,
		logg:     logg,
		cacheTTL: cacheTTL,
	}, nil
}

// Get resolves the table with its branch and any open order holding it.
func (s *service) Get(ctx context.Context, scope visibility.BranchScope, tableID uuid.UUID) (*TableView, error) {
	if tableID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table id is required")
	}
	table, err := s.repo.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading table")
	}
	if err := visibility.EnsureBranchAccess(scope, table.BranchID); err != nil {
		return nil, err
	}
	openOrder, err := s.repo.FindOpenOrderForTable(ctx, table.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking table occupancy")
	}
	view := newTableView(*table, openOrder)
	return &view, nil
}

// ListAvailable returns branch tables that no open order references. Results
// are cached briefly; order mutations invalidate the cache.
func (s *service) ListAvailable(ctx context.Context, scope visibility.BranchScope, branchID uuid.UUID) (*AvailableTablesResult, error) {
	if err := visibility.EnsureBranchAccess(scope, branchID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBranchByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading branch")
	}

	if cached := s.fromCache(ctx, branchID); cached != nil {
		return cached, nil
	}

	rows, err := s.repo.ListAvailable(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing available tables")
	}

	result := &AvailableTablesResult{
		BranchID:  branchID,
		Tables:    make([]TableView, 0, len(rows)),
		FetchedAt: time.Now().UTC(),
	}
	for _, row := range rows {
		result.Tables = append(result.Tables, newTableView(row, nil))
	}

	s.storeCache(ctx, branchID, result)
	return result, nil
}

// InvalidateAvailability drops the cached list after an order claims or frees a table.
func (s *service) InvalidateAvailability(ctx context.Context, branchID uuid.UUID) {
	if s.cache == nil || branchID == uuid.Nil {
		return
	}
	key := s.cache.AvailableTablesKey(branchID.String())
	if err := s.cache.Del(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "branch_id", branchID.String()), "failed to invalidate table availability cache")
	}
}

func (s *service) fromCache(ctx context.Context, branchID uuid.UUID) *AvailableTablesResult {
	if s.cache == nil {
		return nil
	}
	key := s.cache.AvailableTablesKey(branchID.String())
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			s.logg.Warn(s.logg.WithField(ctx, "branch_id", branchID.String()), "table availability cache read failed")
		}
		return nil
	}
	var result AvailableTablesResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil
	}
	result.FromCache = true
	return &result
}

func (s *service) storeCache(ctx context.Context, branchID uuid.UUID, result *AvailableTablesResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	key := s.cache.AvailableTablesKey(branchID.String())
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "branch_id", branchID.String()), "table availability cache write failed")
	}
}
