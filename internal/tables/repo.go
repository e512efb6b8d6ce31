package tables

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tables repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.POSTable, error) {
	var table models.POSTable
	err := r.db.WithContext(ctx).
		Preload("Branch").
		Where("id = ?", id).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.POSTable, error) {
	var tables []models.POSTable
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND disabled = ?", branchID, false).
		Order("table_number ASC").
		Find(&tables).Error
	return tables, err
}

// ListAvailable returns tables in the branch not referenced by any open order.
func (r *repository) ListAvailable(ctx context.Context, branchID uuid.UUID) ([]models.POSTable, error) {
	var tables []models.POSTable
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND disabled = ?", branchID, false).
		Where("status <> ?", enums.TableStatusMaintenance).
		Where("id NOT IN (?)", r.db.
			Model(&models.POSOrder{}).
			Select("table_id").
			Where("table_id IS NOT NULL AND status IN ?", enums.OpenOrderStatuses())).
		Order("table_number ASC").
		Find(&tables).Error
	return tables, err
}

func (r *repository) FindOpenOrderForTable(ctx context.Context, tableID uuid.UUID) (*models.POSOrder, error) {
	var order models.POSOrder
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND status IN ?", tableID, enums.OpenOrderStatuses()).
		Order("ordered_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindBranchByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}
